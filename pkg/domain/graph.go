package domain

// Workflow graph node names. The graph is fixed: every inbound user message
// runs progress_update -> dispatch -> one specialist branch -> synthesize,
// then loops or ends.
const (
	NodeProgressUpdate = "progress_update"
	NodeDispatch       = "dispatch"
	NodeRespond        = "respond"
	NodeBuildProgress  = "build_progress"
	NodeSynthesize     = "synthesize"
	NodeEnd            = "end"
)

// GraphNode describes one workflow graph node for introspection and
// visualization tools. Targets lists the node names an execution may move
// to next; conditional edges carry a label explaining the condition.
type GraphNode struct {
	Name    string   `json:"name"`
	Purpose string   `json:"purpose"`
	Targets []string `json:"targets,omitempty"`

	// EdgeLabels maps a target name to the condition that selects it,
	// empty for unconditional edges.
	EdgeLabels map[string]string `json:"edge_labels,omitempty"`
}
