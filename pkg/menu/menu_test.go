package menu

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rmax-ai/graphdeck/pkg/client"
	"github.com/rmax-ai/graphdeck/pkg/designer"
	"github.com/rmax-ai/graphdeck/pkg/flow"
	"github.com/rmax-ai/graphdeck/pkg/i18n"
	"github.com/rmax-ai/graphdeck/pkg/identity"
	"github.com/rmax-ai/graphdeck/pkg/notify"
	"github.com/rmax-ai/graphdeck/pkg/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopGraphs struct{}

func (nopGraphs) DeleteNode(ctx context.Context, req client.DeleteNodeRequest) error {
	return nil
}

func (nopGraphs) ListGraphs(ctx context.Context) ([]client.Graph, error) {
	return nil, nil
}

type nopResolver struct{}

func (nopResolver) ResolveNodesAndEdges(ctx context.Context, g client.Graph) ([]flow.Node, []flow.Edge, error) {
	return nil, nil, nil
}

func newSession() *designer.Session {
	clock := time.UnixMilli(1_000)
	return designer.NewSession(designer.Options{
		Graphs:     nopGraphs{},
		Resolver:   nopResolver{},
		Translator: i18n.MustNew("en"),
		Notifier:   notify.NewToaster(time.Minute),
		IDs:        identity.NewSchemeWithClock(func() time.Time { return clock }),
	})
}

func node(name string) flow.Node {
	return flow.Node{ID: name, Data: flow.NodeData{Name: name, Addon: "addon_" + name, URL: "/p/ext/" + name}}
}

type closeCounter struct{ n int }

func (c *closeCounter) close() { c.n++ }

func scoped(n flow.Node, closer *closeCounter) Props {
	return Props{Visible: true, Node: n, BaseDir: "/p", GraphID: "g1", OnClose: closer.close}
}

var gatedItems = []string{
	ItemUpdateNodeProperties,
	ItemAddConnectionFrom,
	ItemAddConnectionTo,
	ItemReplaceNode,
	ItemDeleteNode,
}

func TestBuildNodeMenu_Structure(t *testing.T) {
	items := BuildNodeMenu(newSession(), scoped(node("N1"), &closeCounter{}))

	var got []string
	Walk(items, func(depth int, it Item) {
		switch it.(type) {
		case Separator:
			got = append(got, "---")
		default:
			got = append(got, ID(it))
		}
	})

	assert.Equal(t, []string{
		ItemEditExtension, ItemEditManifest, ItemEditProperty,
		"---",
		ItemUpdateNodeProperties, ItemAddConnectionFrom, ItemAddConnectionTo,
		"---",
		ItemLaunchTerminal, ItemLaunchLogViewer,
		"---",
		ItemReplaceNode, ItemDeleteNode,
	}, got)

	it, ok := Find(items, ItemAddConnectionFrom)
	require.True(t, ok)
	assert.Equal(t, "Add Connection from N1", it.(Button).Label)
}

func TestBuildNodeMenu_ScopeGating(t *testing.T) {
	tests := []struct {
		name    string
		baseDir string
		graphID string
		gated   bool
	}{
		{"full scope", "/p", "g1", false},
		{"no base dir", "", "g1", true},
		{"no graph", "/p", "", true},
		{"nothing", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newSession()
			items := BuildNodeMenu(sess, Props{Node: node("N1"), BaseDir: tt.baseDir, GraphID: tt.graphID})

			for _, id := range gatedItems {
				it, ok := Find(items, id)
				require.True(t, ok, id)
				assert.Equal(t, tt.gated, it.(Button).Disabled, id)
			}

			term, _ := Find(items, ItemLaunchTerminal)
			assert.False(t, term.(Button).Disabled)

			if !tt.gated {
				return
			}
			for _, id := range gatedItems {
				assert.ErrorIs(t, Invoke(items, id), ErrDisabled)
				// handlers re-check scope even when called directly
				it, _ := Find(items, id)
				it.(Button).OnClick()
			}
			assert.Zero(t, sess.Widgets.Len())
			assert.Empty(t, sess.Dialogs.List())
		})
	}
}

func TestBuildNodeMenu_RecordsOnlyActionsThatRan(t *testing.T) {
	counts := func() map[string]float64 {
		out := make(map[string]float64)
		for _, id := range gatedItems {
			out[id] = testutil.ToFloat64(designer.MenuActionsTotal.WithLabelValues(id))
		}
		return out
	}

	sess := newSession()
	before := counts()
	unscoped := BuildNodeMenu(sess, Props{Node: node("N1")})
	for _, id := range gatedItems {
		it, _ := Find(unscoped, id)
		it.(Button).OnClick()
	}
	assert.Equal(t, before, counts())

	items := BuildNodeMenu(sess, scoped(node("N1"), &closeCounter{}))
	require.NoError(t, Invoke(items, ItemDeleteNode))
	after := counts()
	assert.Equal(t, before[ItemDeleteNode]+1, after[ItemDeleteNode])
	assert.Equal(t, before[ItemReplaceNode], after[ItemReplaceNode])
}

func TestUpdateNodeProperties_ReplacesInPlace(t *testing.T) {
	sess := newSession()
	closer := &closeCounter{}

	first := node("N1")
	require.NoError(t, Invoke(BuildNodeMenu(sess, scoped(first, closer)), ItemUpdateNodeProperties))
	second := node("N1")
	second.Data.Addon = "changed"
	require.NoError(t, Invoke(BuildNodeMenu(sess, scoped(second, closer)), ItemUpdateNodeProperties))

	require.Equal(t, 1, sess.Widgets.Len())
	w, ok := sess.Widgets.Get("graph-actions-update-N1")
	require.True(t, ok)
	assert.Equal(t, widget.GroupGraph, w.GroupID)
	assert.True(t, w.MetadataMatches())
	meta := w.Metadata.(widget.GraphActionData)
	assert.Equal(t, identity.KindUpdateNodeProperty, meta.Kind)
	assert.Equal(t, "changed", meta.Node.Data.Addon)
	assert.Equal(t, "/p", meta.BaseDir)
	assert.Equal(t, "g1", meta.GraphID)
	assert.Equal(t, widget.PopupGeometry{Width: widget.Fixed(340), Height: widget.Fraction(0.8)}, w.Popup)
	assert.Equal(t, 2, closer.n)

	require.NoError(t, Invoke(BuildNodeMenu(sess, scoped(node("N2"), closer)), ItemUpdateNodeProperties))
	assert.Equal(t, 2, sess.Widgets.Len())
}

func TestAddConnection_SharesOneSlot(t *testing.T) {
	sess := newSession()
	items := BuildNodeMenu(sess, scoped(node("N1"), &closeCounter{}))

	require.NoError(t, Invoke(items, ItemAddConnectionFrom))
	require.NoError(t, Invoke(items, ItemAddConnectionTo))

	graphWidgets := sess.Widgets.ByGroup(widget.ContainerDefault, widget.GroupGraph)
	require.Len(t, graphWidgets, 1)
	assert.Equal(t, "graph-actions-add_connection-N1", graphWidgets[0].ID)

	meta := graphWidgets[0].Metadata.(widget.GraphActionData)
	assert.Nil(t, meta.SrcNode)
	require.NotNil(t, meta.DestNode)
	assert.Equal(t, "N1", meta.DestNode.Data.Name)
}

func TestReplaceNode_DedupedPerGraph(t *testing.T) {
	sess := newSession()
	closer := &closeCounter{}

	require.NoError(t, Invoke(BuildNodeMenu(sess, scoped(node("N1"), closer)), ItemReplaceNode))
	require.NoError(t, Invoke(BuildNodeMenu(sess, scoped(node("N2"), closer)), ItemReplaceNode))

	require.Equal(t, 1, sess.Widgets.Len())
	w, ok := sess.Widgets.Get("graph-actions-replace_node-/p-g1")
	require.True(t, ok)
	assert.Equal(t, "N2", w.Metadata.(widget.GraphActionData).Node.Data.Name)
	assert.Equal(t, widget.Fixed(340), w.Popup.Width)
	assert.False(t, w.Popup.Height.IsSet())

	other := scoped(node("N1"), closer)
	other.GraphID = "g2"
	require.NoError(t, Invoke(BuildNodeMenu(sess, other), ItemReplaceNode))
	assert.Equal(t, 2, sess.Widgets.Len())
}

func TestEditExtension_OpensFreshEditors(t *testing.T) {
	sess := newSession()
	closer := &closeCounter{}
	items := BuildNodeMenu(sess, scoped(node("N1"), closer))

	require.NoError(t, Invoke(items, ItemEditManifest))
	require.NoError(t, Invoke(items, ItemEditManifest))
	require.NoError(t, Invoke(items, ItemEditProperty))

	editors := sess.Widgets.ByGroup(widget.ContainerDefault, widget.GroupEditor)
	require.Len(t, editors, 3)
	assert.NotEqual(t, editors[0].ID, editors[1].ID)
	assert.Equal(t, "/p/ext/N1/manifest.json-1000", editors[0].ID)

	data := editors[2].Metadata.(widget.EditorData)
	assert.Equal(t, "/p/ext/N1/property.json", data.URL)
	assert.Equal(t, "N1 property.json", data.Title)

	require.NotNil(t, editors[0].Actions)
	assert.Equal(t, []widget.PredefinedCheck{widget.CheckEditorUnsavedChanges}, editors[0].Actions.Checks)
	assert.Equal(t, "save-file", editors[0].Actions.Custom[0].ID)
	assert.Equal(t, 3, closer.n)
}

type savingEditor struct{ saved bool }

func (e *savingEditor) Save() error {
	e.saved = true
	return nil
}

func TestEditExtension_SaveActionReachesEditor(t *testing.T) {
	sess := newSession()
	require.NoError(t, Invoke(BuildNodeMenu(sess, scoped(node("N1"), &closeCounter{})), ItemEditManifest))

	w := sess.Widgets.List()[0]
	ed := &savingEditor{}
	sess.EditorRefs.Register(w.ID, ed)

	w.Actions.Custom[0].OnClick()
	assert.True(t, ed.saved)
}

func TestEditExtension_NoURLIsGuardedNoop(t *testing.T) {
	sess := newSession()
	closer := &closeCounter{}
	n := node("N1")
	n.Data.URL = ""

	items := BuildNodeMenu(sess, scoped(n, closer))
	it, _ := Find(items, ItemEditManifest)
	assert.False(t, it.(Button).Disabled)

	require.NoError(t, Invoke(items, ItemEditManifest))
	assert.Zero(t, sess.Widgets.Len())
	assert.Equal(t, 1, closer.n)
}

func TestLaunchers(t *testing.T) {
	sess := newSession()
	closer := &closeCounter{}

	var term widget.TerminalData
	var logged flow.Node
	p := scoped(node("N1"), closer)
	p.OnLaunchTerminal = func(d widget.TerminalData) { term = d }
	p.OnLaunchLogViewer = func(n flow.Node) { logged = n }

	items := BuildNodeMenu(sess, p)
	require.NoError(t, Invoke(items, ItemLaunchTerminal))
	require.NoError(t, Invoke(items, ItemLaunchLogViewer))

	assert.Equal(t, widget.TerminalData{Title: "N1", URL: "/p/ext/N1"}, term)
	assert.Equal(t, "N1", logged.Data.Name)
	assert.Zero(t, sess.Widgets.Len())
	assert.Equal(t, 2, closer.n)

	p.OnLaunchLogViewer = nil
	assert.ErrorIs(t, Invoke(BuildNodeMenu(sess, p), ItemLaunchLogViewer), ErrDisabled)
}

func TestDeleteNode_OpensDialog(t *testing.T) {
	sess := newSession()
	closer := &closeCounter{}
	items := BuildNodeMenu(sess, scoped(node("N1"), closer))

	require.NoError(t, Invoke(items, ItemDeleteNode))
	require.NoError(t, Invoke(items, ItemDeleteNode))

	dialogs := sess.Dialogs.List()
	require.Len(t, dialogs, 1)
	assert.Equal(t, "delete-node-dialog-N1", dialogs[0].ID)
	assert.Equal(t, 2, closer.n)
}

func TestInvoke_Errors(t *testing.T) {
	items := BuildNodeMenu(newSession(), scoped(node("N1"), &closeCounter{}))

	assert.ErrorIs(t, Invoke(items, "nope"), ErrUnknownItem)
	assert.ErrorIs(t, Invoke(items, ItemEditExtension), ErrNotInvokable)
	assert.ErrorIs(t, Invoke(items, ""), ErrUnknownItem)
}

func TestFlatten(t *testing.T) {
	items := BuildNodeMenu(newSession(), scoped(node("N1"), &closeCounter{}))

	collapsed := Flatten(items, nil)
	assert.Len(t, collapsed, 11)
	assert.Equal(t, ItemEditExtension, ID(collapsed[0].Item))
	assert.Equal(t, ItemUpdateNodeProperties, ID(collapsed[2].Item))

	open := Flatten(items, func(s SubMenu) bool { return s.ID == ItemEditExtension })
	require.Len(t, open, 13)
	assert.Equal(t, 1, open[1].Depth)
	assert.Equal(t, ItemEditManifest, ID(open[1].Item))
}
