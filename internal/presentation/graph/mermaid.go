package graph

import (
	"fmt"
	"strings"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// Overlay contains dynamic session data to visualize on the graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces Mermaid flowchart syntax from the workflow graph
// description. Shapes carry the node semantics:
//   - end: ((circle))
//   - dispatch: {diamond}
//   - respond / build_progress: [[subroutine]], they delegate to a responder
//   - default: [rectangle]
//
// Edges pointing back to an earlier node render dotted, which marks the
// within-turn loop. Overlay styles mark visited and current nodes when
// provided.
func GenerateMermaid(nodes []domain.GraphNode, overlay *Overlay) string {
	order := make(map[string]int, len(nodes))
	for i, n := range nodes {
		order[n.Name] = i
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, node := range nodes {
		safeID := sanitizeMermaidID(node.Name)

		opener, closer := "[", "]"
		switch node.Name {
		case domain.NodeEnd:
			opener, closer = "((", "))"
		case domain.NodeDispatch:
			opener, closer = "{", "}"
		case domain.NodeRespond, domain.NodeBuildProgress:
			opener, closer = "[[", "]]"
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node.Name, closer))

		for _, target := range node.Targets {
			safeTo := sanitizeMermaidID(target)

			idx, known := order[target]
			isBack := known && idx < i

			arrow := "-->"
			if isBack {
				arrow = "-.->"
			}
			if label := node.EdgeLabels[target]; label != "" {
				safeLabel := strings.ReplaceAll(label, "\"", "'")
				arrow = fmt.Sprintf("-- \"%s\" -->", safeLabel)
				if isBack {
					arrow = fmt.Sprintf("-. \"%s\" .->", safeLabel)
				}
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, safeTo))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	// Mermaid reserves the word "end" in flowcharts; the label keeps the
	// real node name.
	if s == "end" {
		return "end_"
	}
	return s
}
