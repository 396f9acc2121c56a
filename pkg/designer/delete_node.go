package designer

import (
	"context"
	"fmt"

	"github.com/rmax-ai/graphdeck/pkg/client"
	"github.com/rmax-ai/graphdeck/pkg/dialog"
	"github.com/rmax-ai/graphdeck/pkg/flow"
	"github.com/rmax-ai/graphdeck/pkg/i18n"
	"github.com/rmax-ai/graphdeck/pkg/identity"
	"github.com/rmax-ai/graphdeck/pkg/store"
	"github.com/rmax-ai/graphdeck/pkg/store/redis"
)

// RequestDeleteNode opens the confirmation dialog for deleting node.
// Triggering it again for the same node name replaces the open dialog.
func (s *Session) RequestDeleteNode(node flow.Node, baseDir, graphID string) string {
	id := identity.DeleteNodeDialogID(node.Data.Name)

	s.Dialogs.Append(dialog.Dialog{
		ID:      id,
		Title:   s.T("action.delete"),
		Content: s.T("action.deleteNodeConfirmationWithName", i18n.Subs{"name": node.Data.Name}),
		Variant: dialog.VariantDestructive,
		OnCancel: func(ctx context.Context) {
			DialogsResolvedTotal.WithLabelValues("cancel").Inc()
			s.Dialogs.Release(ctx, id)
			s.record(ctx, store.Event{EventType: store.EventTypeDialogResolved, GraphID: graphID,
				NodeName: node.Data.Name, SubjectID: id, Payload: mustJSON(map[string]string{"outcome": "cancel"})})
		},
		OnConfirm: func(ctx context.Context) {
			DialogsResolvedTotal.WithLabelValues("confirm").Inc()
			defer s.Dialogs.Release(ctx, id)
			defer s.recoverDelete(node, graphID)
			// once sent, the request is not abortable
			s.confirmDeleteNode(context.WithoutCancel(ctx), node, baseDir, graphID)
		},
	})

	s.record(context.Background(), store.Event{EventType: store.EventTypeDialogOpened,
		GraphID: graphID, NodeName: node.Data.Name, SubjectID: id})
	return id
}

// confirmDeleteNode runs the delete request and the refresh that follows.
// Every failure is caught here and surfaced as a toast.
func (s *Session) confirmDeleteNode(ctx context.Context, node flow.Node, baseDir, graphID string) {
	if baseDir == "" || graphID == "" {
		NodeDeletesTotal.WithLabelValues(resultSkipped).Inc()
		return
	}

	log := s.log.With("graph_id", graphID, "node", node.Data.Name)

	err := s.graphs.DeleteNode(ctx, client.DeleteNodeRequest{
		GraphID:        graphID,
		Name:           node.Data.Name,
		Addon:          node.Data.Addon,
		ExtensionGroup: node.Data.ExtensionGroup,
	})
	if err != nil {
		NodeDeletesTotal.WithLabelValues(resultRequestFailed).Inc()
		s.notifier.Error(s.T("action.deleteNodeFailed"), s.errorDetail(err))
		log.Error("Failed to delete node", "error", err)
		s.record(ctx, store.Event{EventType: store.EventTypeNodeDeleteFailed, GraphID: graphID,
			NodeName: node.Data.Name, Payload: mustJSON(map[string]string{"error": err.Error()})})
		return
	}

	s.notifier.Success(s.T("popup.node.deleteNodeSuccess"), node.Data.Name)
	s.record(ctx, store.Event{EventType: store.EventTypeNodeDeleted, GraphID: graphID, NodeName: node.Data.Name,
		Payload: mustJSON(map[string]string{"addon": node.Data.Addon, "extension_group": node.Data.ExtensionGroup})})
	s.publish(ctx, redis.GraphChange{GraphID: graphID, NodeName: node.Data.Name, Kind: string(store.EventTypeNodeDeleted)})

	if err := s.RefreshGraph(ctx, graphID); err != nil {
		NodeDeletesTotal.WithLabelValues(resultRefreshFailed).Inc()
		s.notifier.Error(s.T("action.deleteNodeFailed"), s.errorDetail(err))
		log.Error("Failed to refresh graph after delete", "error", err)
		s.record(ctx, store.Event{EventType: store.EventTypeGraphRefreshed, GraphID: graphID,
			Payload: mustJSON(map[string]any{"ok": false, "error": err.Error()})})
		return
	}

	NodeDeletesTotal.WithLabelValues(resultSuccess).Inc()
	log.Info("Node deleted")
	s.record(ctx, store.Event{EventType: store.EventTypeGraphRefreshed, GraphID: graphID,
		Payload: mustJSON(map[string]any{"ok": true})})
}

// recoverDelete turns a panic in the confirm path into a failure toast so it
// never escapes the dialog store.
func (s *Session) recoverDelete(node flow.Node, graphID string) {
	r := recover()
	if r == nil {
		return
	}
	err := fmt.Errorf("delete node %s: %v", node.Data.Name, r)
	NodeDeletesTotal.WithLabelValues(resultPanicked).Inc()
	s.notifier.Error(s.T("action.deleteNodeFailed"), s.T("error.unknown"))
	s.log.Error("Delete node panicked", "graph_id", graphID, "node", node.Data.Name, "error", err)
}

// publish announces a change if a broadcaster is configured.
func (s *Session) publish(ctx context.Context, change redis.GraphChange) {
	if s.broadcast == nil {
		return
	}
	change.SessionID = s.ID
	if err := s.broadcast.Publish(ctx, change); err != nil {
		s.log.Warn("Failed to broadcast graph change", "error", fmt.Errorf("graph %s: %w", change.GraphID, err))
	}
}
