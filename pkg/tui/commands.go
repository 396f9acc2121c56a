package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rmax-ai/graphdeck/pkg/client"
	"github.com/rmax-ai/graphdeck/pkg/designer"
	"github.com/rmax-ai/graphdeck/pkg/store/redis"
)

const (
	requestTimeout = 15 * time.Second
	toastRate      = time.Second
)

type tickMsg time.Time

type graphsMsg struct {
	graphs []client.Graph
	err    error
}

type refreshedMsg struct {
	graphID string
	err     error
}

type dialogResolvedMsg struct {
	id  string
	err error
}

type graphChangedMsg redis.GraphChange

func fetchGraphs(sess *designer.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		graphs, err := sess.ListGraphs(ctx)
		return graphsMsg{graphs: graphs, err: err}
	}
}

func refreshGraph(sess *designer.Session, graphID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return refreshedMsg{graphID: graphID, err: sess.RefreshGraph(ctx, graphID)}
	}
}

// resolveDialog runs the dialog callback off the update loop.
func resolveDialog(sess *designer.Session, id string, confirm bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if confirm {
			err = sess.Dialogs.Confirm(ctx, id)
		} else {
			err = sess.Dialogs.Cancel(ctx, id)
		}
		return dialogResolvedMsg{id: id, err: err}
	}
}

func waitForChange(changes <-chan redis.GraphChange) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-changes
		if !ok {
			return nil
		}
		return graphChangedMsg(change)
	}
}

func tick() tea.Cmd {
	return tea.Tick(toastRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
