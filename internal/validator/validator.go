// Package validator checks the conversation graph for structural
// defects. The graph is defined in code, so this is a guard against
// rewiring mistakes rather than user input validation.
package validator

import (
	"fmt"
	"strings"

	"github.com/cairnlabs/cairn/pkg/domain"
)

// ValidateGraph crawls the node set from entry and collects every
// problem it finds: edges into undefined nodes, labels on edges that do
// not exist, nodes unreachable from the entry, and nodes from which the
// terminal node cannot be reached.
func ValidateGraph(nodes []domain.GraphNode, entry string) error {
	byName := make(map[string]domain.GraphNode, len(nodes))
	for _, n := range nodes {
		byName[n.Name] = n
	}

	if _, ok := byName[entry]; !ok {
		return fmt.Errorf("entry node '%s' is not defined", entry)
	}

	var problems []string

	visited := make(map[string]bool)
	queue := []string{entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		node := byName[current]
		for _, target := range node.Targets {
			if _, ok := byName[target]; !ok {
				problems = append(problems, fmt.Sprintf("node '%s' targets undefined node '%s'", current, target))
				continue
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
		for labeled := range node.EdgeLabels {
			if !hasTarget(node, labeled) {
				problems = append(problems, fmt.Sprintf("node '%s' labels an edge to '%s' it does not have", current, labeled))
			}
		}
	}

	for _, n := range nodes {
		if !visited[n.Name] {
			problems = append(problems, fmt.Sprintf("node '%s' is unreachable from '%s'", n.Name, entry))
		}
	}

	if _, ok := byName[domain.NodeEnd]; !ok {
		problems = append(problems, fmt.Sprintf("no terminal '%s' node defined", domain.NodeEnd))
	} else {
		for _, name := range deadEnds(nodes, visited) {
			problems = append(problems, fmt.Sprintf("node '%s' cannot reach '%s'", name, domain.NodeEnd))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("found %d problems:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

// deadEnds returns reachable nodes with no path to the terminal node, in
// input order. Works backwards from the terminal over reversed edges.
func deadEnds(nodes []domain.GraphNode, visited map[string]bool) []string {
	incoming := make(map[string][]string)
	for _, n := range nodes {
		for _, target := range n.Targets {
			incoming[target] = append(incoming[target], n.Name)
		}
	}

	canFinish := map[string]bool{domain.NodeEnd: true}
	queue := []string{domain.NodeEnd}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, from := range incoming[current] {
			if !canFinish[from] {
				canFinish[from] = true
				queue = append(queue, from)
			}
		}
	}

	var out []string
	for _, n := range nodes {
		if visited[n.Name] && !canFinish[n.Name] {
			out = append(out, n.Name)
		}
	}
	return out
}

func hasTarget(node domain.GraphNode, name string) bool {
	for _, t := range node.Targets {
		if t == name {
			return true
		}
	}
	return false
}
