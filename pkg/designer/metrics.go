package designer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MenuActionsTotal counts context menu actions that ran, by item
	MenuActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphdeck_menu_actions_total",
			Help: "Total number of context menu items invoked",
		},
		[]string{"item"},
	)

	// DialogsResolvedTotal counts dialog resolutions
	DialogsResolvedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphdeck_dialogs_resolved_total",
			Help: "Total number of dialogs confirmed or cancelled",
		},
		[]string{"outcome"},
	)

	// NodeDeletesTotal counts delete-node outcomes
	NodeDeletesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphdeck_node_deletes_total",
			Help: "Total number of delete-node attempts by result",
		},
		[]string{"result"},
	)

	// OpenWidgets tracks the widgets currently in the store
	OpenWidgets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphdeck_open_widgets",
			Help: "Number of widgets currently open",
		},
	)
)

const (
	resultSuccess       = "success"
	resultRequestFailed = "request_failed"
	resultRefreshFailed = "refresh_failed"
	resultSkipped       = "skipped"
	resultPanicked      = "panicked"
)

func init() {
	prometheus.MustRegister(MenuActionsTotal)
	prometheus.MustRegister(DialogsResolvedTotal)
	prometheus.MustRegister(NodeDeletesTotal)
	prometheus.MustRegister(OpenWidgets)
}
