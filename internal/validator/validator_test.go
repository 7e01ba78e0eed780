package validator

import (
	"strings"
	"testing"

	"github.com/cairnlabs/cairn"
	"github.com/cairnlabs/cairn/pkg/domain"
)

func TestValidateGraph_EngineGraph(t *testing.T) {
	// The graph the engine actually runs must always pass its own checks.
	eng, err := cairn.New()
	if err != nil {
		t.Fatalf("engine setup failed: %v", err)
	}
	if err := ValidateGraph(eng.Inspect(), domain.NodeProgressUpdate); err != nil {
		t.Errorf("shipped graph failed validation: %v", err)
	}
}

func TestValidateGraph_Valid(t *testing.T) {
	nodes := []domain.GraphNode{
		{Name: "start", Targets: []string{"work"}},
		{Name: "work", Targets: []string{"start", "end"}, EdgeLabels: map[string]string{"start": "loop"}},
		{Name: "end"},
	}
	if err := ValidateGraph(nodes, "start"); err != nil {
		t.Errorf("expected a clean pass, got: %v", err)
	}
}

func TestValidateGraph_UndefinedTarget(t *testing.T) {
	nodes := []domain.GraphNode{
		{Name: "start", Targets: []string{"ghost"}},
		{Name: "end"},
	}
	err := ValidateGraph(nodes, "start")
	if err == nil {
		t.Fatal("expected an error for an edge into an undefined node")
	}
	if !strings.Contains(err.Error(), "undefined node 'ghost'") {
		t.Errorf("error does not name the missing node: %v", err)
	}
}

func TestValidateGraph_Unreachable(t *testing.T) {
	nodes := []domain.GraphNode{
		{Name: "start", Targets: []string{"end"}},
		{Name: "island", Targets: []string{"end"}},
		{Name: "end"},
	}
	err := ValidateGraph(nodes, "start")
	if err == nil {
		t.Fatal("expected an error for an unreachable node")
	}
	if !strings.Contains(err.Error(), "'island' is unreachable") {
		t.Errorf("error does not name the orphan: %v", err)
	}
}

func TestValidateGraph_DeadEnd(t *testing.T) {
	// trap loops on itself forever, so a run entering it never finishes.
	nodes := []domain.GraphNode{
		{Name: "start", Targets: []string{"trap", "end"}},
		{Name: "trap", Targets: []string{"trap"}},
		{Name: "end"},
	}
	err := ValidateGraph(nodes, "start")
	if err == nil {
		t.Fatal("expected an error for a node that cannot reach the terminal")
	}
	if !strings.Contains(err.Error(), "'trap' cannot reach 'end'") {
		t.Errorf("error does not name the dead end: %v", err)
	}
}

func TestValidateGraph_StrayLabel(t *testing.T) {
	nodes := []domain.GraphNode{
		{Name: "start", Targets: []string{"end"}, EdgeLabels: map[string]string{"elsewhere": "never"}},
		{Name: "end"},
	}
	err := ValidateGraph(nodes, "start")
	if err == nil {
		t.Fatal("expected an error for a label on a missing edge")
	}
	if !strings.Contains(err.Error(), "labels an edge to 'elsewhere'") {
		t.Errorf("error does not name the stray label: %v", err)
	}
}

func TestValidateGraph_MissingEntry(t *testing.T) {
	nodes := []domain.GraphNode{{Name: "end"}}
	err := ValidateGraph(nodes, "start")
	if err == nil || !strings.Contains(err.Error(), "entry node 'start' is not defined") {
		t.Errorf("expected a missing entry error, got: %v", err)
	}
}

func TestValidateGraph_CollectsAllProblems(t *testing.T) {
	nodes := []domain.GraphNode{
		{Name: "start", Targets: []string{"ghost", "end"}},
		{Name: "island", Targets: []string{"end"}},
		{Name: "end"},
	}
	err := ValidateGraph(nodes, "start")
	if err == nil {
		t.Fatal("expected errors")
	}
	if !strings.Contains(err.Error(), "found 2 problems") {
		t.Errorf("expected both problems in one report, got: %v", err)
	}
}
