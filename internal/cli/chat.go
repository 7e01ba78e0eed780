package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/cairnlabs/cairn/internal/presentation/tui"
	"github.com/cairnlabs/cairn/pkg/runner"
)

// RunChat executes a single interactive coaching session.
func RunChat(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	if !opts.JSON {
		tui.PrintBanner()
	}

	stores, err := NewStores(opts)
	if err != nil {
		return err
	}
	defer stores.Close()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	engine, err := NewEngine(sigCtx, opts, logger, stores.Docs)
	if err != nil {
		return err
	}

	if opts.Fresh && opts.SessionID != "" {
		if err := stores.Sessions.Delete(sigCtx, opts.SessionID); err != nil {
			logger.Warn("fresh reset failed", "session_id", opts.SessionID, "err", err)
		}
	}

	runnerOpts := []runner.Option{
		runner.WithEngine(engine),
		runner.WithLogger(logger),
		runner.WithManager(stores.Manager(logger)),
		runner.WithSessionID(opts.SessionID),
	}
	if opts.JSON {
		runnerOpts = append(runnerOpts, runner.WithInputHandler(runner.NewJSONHandler(os.Stdin, os.Stdout)))
	} else {
		runnerOpts = append(runnerOpts, runner.WithRenderer(tui.NewRenderer()))
	}

	r := runner.NewRunner(runnerOpts...)

	runErr := r.Run(sigCtx)

	if sig := sigCtx.Signal(); sig != nil && !opts.JSON {
		// The prompt line is still open when a signal lands mid-read.
		fmt.Printf("\n")
		printSystemMessage("Interrupted. Session state was saved.")
	}

	return runErr
}
