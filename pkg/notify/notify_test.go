package notify

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToaster_ExpiresAndCaps(t *testing.T) {
	now := time.Unix(1000, 0)
	toaster := NewToaster(5 * time.Second)
	toaster.now = func() time.Time { return now }

	toaster.Success("Node deleted", "N1")
	now = now.Add(3 * time.Second)
	toaster.Error("Failed to delete node", "Graph not found")

	active := toaster.Active()
	require.Len(t, active, 2)
	assert.Equal(t, LevelSuccess, active[0].Level)

	now = now.Add(3 * time.Second)
	active = toaster.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Graph not found", active[0].Detail)

	for i := 0; i < 10; i++ {
		toaster.Success("x", "")
	}
	assert.Len(t, toaster.Active(), 5)
}

func TestMulti(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	toaster := NewToaster(time.Minute)

	Multi{log, toaster}.Error("Failed to delete node", "boom")

	assert.Contains(t, buf.String(), "Failed to delete node")
	assert.Contains(t, buf.String(), "detail=boom")
	assert.Len(t, toaster.Active(), 1)
}
