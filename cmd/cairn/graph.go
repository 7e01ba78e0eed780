package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cairnlabs/cairn/internal/cli"
	"github.com/cairnlabs/cairn/internal/logging"
	"github.com/cairnlabs/cairn/internal/presentation/graph"
	"github.com/cairnlabs/cairn/internal/validator"
	"github.com/cairnlabs/cairn/pkg/adapters/memory"
	"github.com/cairnlabs/cairn/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the coaching graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the conversation graph.
With --session, the nodes the session's last turn went through are
highlighted. With --check, validates graph consistency instead of
printing the diagram.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optsFromFlags(cmd)
		sessionID, _ := cmd.Flags().GetString("session")
		check, _ := cmd.Flags().GetBool("check")

		engine, err := cli.NewEngine(cmd.Context(), opts, logging.NewNop(), memory.NewDocStore())
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		if check {
			nodes := engine.Inspect()
			if err := validator.ValidateGraph(nodes, domain.NodeProgressUpdate); err != nil {
				fmt.Printf("Graph check failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Graph OK: %d nodes, all reachable.\n", len(nodes))
			return
		}

		var overlay *graph.Overlay
		if sessionID != "" {
			stores, err := cli.NewStores(opts)
			if err != nil {
				fmt.Printf("Error opening store: %v\n", err)
				os.Exit(1)
			}
			defer stores.Close()

			session, err := stores.Sessions.Load(cmd.Context(), sessionID)
			if err != nil {
				fmt.Printf("Error loading session '%s': %v\n", sessionID, err)
				os.Exit(1)
			}
			overlay = overlayForSession(session)
		}

		fmt.Print(graph.GenerateMermaid(engine.Inspect(), overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringP("session", "s", "", "Highlight the path of this session's last turn")
	graphCmd.Flags().Bool("check", false, "Validate graph consistency and exit")
}

// overlayForSession reconstructs the last turn's path from the stored
// state. The trace is approximate: only the responder choice and any
// error node survive in the session.
func overlayForSession(s *domain.Session) *graph.Overlay {
	if len(s.Turns) == 0 && s.Error == nil {
		return nil
	}

	o := &graph.Overlay{
		VisitedNodes: []string{domain.NodeProgressUpdate, domain.NodeDispatch},
	}

	if s.ActiveAgent != "" {
		node := domain.NodeRespond
		if s.ActiveAgent == domain.ResponderProgress {
			node = domain.NodeBuildProgress
		}
		o.VisitedNodes = append(o.VisitedNodes, node)
	}

	if s.Error != nil {
		o.CurrentNode = s.Error.Node
		return o
	}

	o.VisitedNodes = append(o.VisitedNodes, domain.NodeSynthesize, domain.NodeEnd)
	o.CurrentNode = domain.NodeEnd
	return o
}
