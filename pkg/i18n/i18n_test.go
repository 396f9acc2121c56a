package i18n

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNew_MatchesLocale(t *testing.T) {
	tests := []struct {
		name      string
		preferred []string
		want      language.Tag
	}{
		{"empty", nil, language.English},
		{"posix english", []string{"en_US.UTF-8"}, language.English},
		{"posix chinese", []string{"zh_CN.UTF-8"}, language.MustParse("zh-CN")},
		{"unsupported", []string{"sw"}, language.English},
		{"C locale", []string{"C"}, language.English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.preferred...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tr.Locale())
		})
	}
}

func TestT(t *testing.T) {
	tr := MustNew("en")

	assert.Equal(t, "Delete", tr.T("action.delete"))
	assert.Equal(t,
		"Are you sure you want to delete node N1?",
		tr.T("action.deleteNodeConfirmationWithName", Subs{"name": "N1"}))
	assert.Equal(t, "Add Connection from N1", tr.T("header.menuGraph.addConnectionFromNode", Subs{"node": "N1"}))
	assert.Equal(t, "no.such.key", tr.T("no.such.key"))
}

func TestT_Chinese(t *testing.T) {
	tr := MustNew("zh-CN")
	assert.Equal(t, "删除", tr.T("action.delete"))
}

func TestT_ChineseSubstitution(t *testing.T) {
	tr := MustNew("zh_CN.UTF-8")
	assert.Equal(t, "确定要删除节点 N1 吗？", tr.T("action.deleteNodeConfirmationWithName", Subs{"name": "N1"}))
	assert.Equal(t, "未找到图", tr.T("error.graphNotFound"))
}

func TestT_MergesSubs(t *testing.T) {
	tr := MustNew("en")
	assert.Equal(t, "Logs api", tr.T("popup.logViewer.title", Subs{"title": "ignored"}, Subs{"name": "api"}))
	assert.Equal(t, "Terminal {{x}}", tr.T("popup.terminal.title", Subs{"title": "{{x}}"}))
}

func TestLocales_SameKeys(t *testing.T) {
	keys := func(tag string) []string {
		data, err := localeFS.ReadFile("locales/" + tag + ".json")
		require.NoError(t, err)
		var m map[string]string
		require.NoError(t, json.Unmarshal(data, &m))
		out := make([]string, 0, len(m))
		for k := range m {
			out = append(out, k)
		}
		return out
	}
	assert.ElementsMatch(t, keys("en"), keys("zh-CN"))
}
