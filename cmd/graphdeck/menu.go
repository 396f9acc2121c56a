package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rmax-ai/graphdeck/pkg/designer"
	"github.com/rmax-ai/graphdeck/pkg/menu"
	"github.com/rmax-ai/graphdeck/pkg/notify"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu <graph-id> <node>",
	Short: "Print a node's context menu, optionally clicking one item",
	Example: `  graphdeck menu 3f1c... my_extension
  graphdeck menu 3f1c... my_extension --invoke delete-node --yes`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		item, _ := cmd.Flags().GetString("invoke")
		yes, _ := cmd.Flags().GetBool("yes")

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		graphID, name := args[0], args[1]
		if err := a.sess.RefreshGraph(ctx, graphID); err != nil {
			return fmt.Errorf("failed to load graph %s: %w", graphID, err)
		}
		node, ok := a.sess.Flow.Node(name)
		if !ok {
			return fmt.Errorf("node %s not found in graph %s", name, graphID)
		}

		baseDir := cfg.BaseDir
		if baseDir == "" {
			graphs, err := a.sess.ListGraphs(ctx)
			if err != nil {
				return err
			}
			for _, g := range graphs {
				if g.UUID == graphID {
					baseDir = g.BaseDir
				}
			}
		}

		items := menu.BuildNodeMenu(a.sess, menu.Props{
			Visible:           true,
			Node:              node,
			BaseDir:           baseDir,
			GraphID:           graphID,
			OnLaunchTerminal:  a.sess.LaunchTerminal,
			OnLaunchLogViewer: a.sess.LaunchLogViewer,
		})

		out := cmd.OutOrStdout()
		if item == "" {
			printMenu(out, items)
			return nil
		}

		if err := menu.Invoke(items, item); err != nil {
			return err
		}
		return settleDialogs(cmd, a.sess, a.toaster, yes)
	},
}

func init() {
	menuCmd.Flags().String("invoke", "", "Menu item id to click")
	menuCmd.Flags().Bool("yes", false, "Confirm the dialog opened by the item instead of cancelling it")
}

func printMenu(w io.Writer, items []menu.Item) {
	menu.Walk(items, func(depth int, it menu.Item) {
		indent := strings.Repeat("  ", depth)
		switch v := it.(type) {
		case menu.Separator:
			fmt.Fprintf(w, "%s---\n", indent)
		case menu.SubMenu:
			fmt.Fprintf(w, "%s%-24s %s >\n", indent, v.ID, v.Label)
		case menu.Button:
			state := ""
			if v.Disabled {
				state = " (disabled)"
			}
			fmt.Fprintf(w, "%s%-24s %s%s\n", indent, v.ID, v.Label, state)
		default:
			panic(fmt.Sprintf("graphdeck: unhandled menu item %T", it))
		}
	})
}

// settleDialogs answers every dialog the invoked item opened and prints the
// resulting toasts.
func settleDialogs(cmd *cobra.Command, sess *designer.Session, toaster *notify.Toaster, confirm bool) error {
	out := cmd.OutOrStdout()
	for {
		d, ok := sess.Dialogs.Top()
		if !ok {
			break
		}
		fmt.Fprintf(out, "%s: %s\n", d.Title, d.Content)
		var err error
		if confirm {
			err = sess.Dialogs.Confirm(cmd.Context(), d.ID)
		} else {
			fmt.Fprintln(out, "Cancelled (pass --yes to confirm)")
			err = sess.Dialogs.Cancel(cmd.Context(), d.ID)
		}
		if err != nil {
			return err
		}
	}

	failed := false
	for _, t := range toaster.Active() {
		fmt.Fprintf(out, "%s: %s %s\n", t.Level, t.Message, t.Detail)
		failed = failed || t.Level == notify.LevelError
	}
	for _, w := range sess.Widgets.List() {
		fmt.Fprintf(out, "opened %s %q\n", w.Category, w.Title)
	}
	if failed {
		return errors.New("action failed, see messages above")
	}
	return nil
}
