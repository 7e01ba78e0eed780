package cli

import (
	"context"
	"crypto/md5"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cairnlabs/cairn/internal/presentation/tui"
	"github.com/cairnlabs/cairn/pkg/runner"
	"github.com/cairnlabs/cairn/pkg/session"
)

// RunWatch executes chat in rules-development mode: the signal table is
// reloaded from the rules file whenever it changes, and the conversation
// resumes where it left off. Useful when tuning a coaching vocabulary
// against a live session.
func RunWatch(opts RunOptions) error {
	logger := createLogger(opts.Debug)
	tui.PrintBanner()

	// Default session for watch mode so reloads are stateful. Scoped by
	// rules path hash to prevent collisions between projects.
	if opts.SessionID == "" {
		abs, err := filepath.Abs(opts.RulesPath)
		if err != nil {
			abs = opts.RulesPath
		}
		hash := md5.Sum([]byte(abs))
		opts.SessionID = fmt.Sprintf("watch-%x", hash[:4])
	}

	stores, err := NewStores(opts)
	if err != nil {
		return err
	}
	defer stores.Close()

	if opts.Fresh {
		if err := stores.Sessions.Delete(context.Background(), opts.SessionID); err != nil {
			logger.Warn("fresh reset failed", "session_id", opts.SessionID, "err", err)
		}
	}

	manager := stores.Manager(logger)

	logger.Info("Starting Watcher", "rules", opts.RulesPath, "session_id", opts.SessionID)
	printSystemMessage("Watching '%s'. Session '%s'.", opts.RulesPath, opts.SessionID)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	watcher, err := newRulesWatcher(opts.RulesPath, logger)
	if err != nil {
		return fmt.Errorf("failed to watch rules file: %w", err)
	}
	defer watcher.Close()

	// One shared handler across iterations so there is a single stdin
	// pump. A second pump would steal lines from the first.
	ioHandler := runner.NewTextHandler(os.Stdin, os.Stdout,
		runner.WithTextHandlerRenderer(tui.NewRenderer()))

	for {
		if !runWatchIteration(sigCtx, opts, logger, manager, stores, ioHandler, watcher) {
			break
		}
		logger.Info("Watcher restarting")
	}

	if sig := sigCtx.Signal(); sig != nil {
		fmt.Printf("\n")
		printSystemMessage("Interrupted. Session state was saved.")
	}
	return nil
}

// runWatchIteration runs one engine lifetime: build from the current
// rules file, chat until the rules change or the session ends. Returns
// false when the watch loop should stop.
func runWatchIteration(parentCtx *SignalContext, opts RunOptions, logger *slog.Logger, manager *session.Manager, stores *Stores, ioHandler runner.IOHandler, watcher *rulesWatcher) bool {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	engine, err := NewEngine(ctx, opts, logger, stores.Docs)
	if err != nil {
		// Usually a broken rules file mid-edit. Hold until the next
		// change instead of exiting.
		printSystemMessage("Engine rebuild failed: %v", err)
		printSystemMessage("Waiting for changes...")
		select {
		case <-parentCtx.Done():
			return false
		case <-watcher.Changed():
			return true
		}
	}

	r := runner.NewRunner(
		runner.WithEngine(engine),
		runner.WithLogger(logger),
		runner.WithManager(manager),
		runner.WithSessionID(opts.SessionID),
		runner.WithInputHandler(ioHandler),
	)

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- r.Run(ctx)
	}()

	select {
	case <-parentCtx.Done():
		cancel()
		<-doneCh
		logger.Info("Stopping watcher (signal received)", "signal", parentCtx.Signal())
		return false
	case <-watcher.Changed():
		printSystemMessage("Rules changed, reloading...")
		cancel()
		<-doneCh
		return true
	case err := <-doneCh:
		if err != nil {
			logger.Error("Runtime error", "err", err)
			printSystemMessage("Error: %v", err)
			printSystemMessage("Waiting for changes...")
			select {
			case <-parentCtx.Done():
				return false
			case <-watcher.Changed():
				return true
			}
		}
		// Clean return: the user quit or the brief completed.
		return false
	}
}

// rulesWatcher emits on its channel when the rules file changes. It
// watches the parent directory because editors replace files on save,
// which drops a watch held on the file itself.
type rulesWatcher struct {
	w    *fsnotify.Watcher
	path string
	ch   chan string
}

func newRulesWatcher(path string, logger *slog.Logger) (*rulesWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	rw := &rulesWatcher{w: w, path: abs, ch: make(chan string, 1)}
	go rw.run(logger)
	return rw, nil
}

// Changed returns the notification channel. The channel is buffered and
// sends are non-blocking, so bursts of editor events coalesce into one
// reload.
func (rw *rulesWatcher) Changed() <-chan string {
	return rw.ch
}

func (rw *rulesWatcher) Close() error {
	return rw.w.Close()
}

func (rw *rulesWatcher) run(logger *slog.Logger) {
	for {
		select {
		case event, ok := <-rw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != rw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Debug("rules file event", "op", event.Op.String(), "path", event.Name)
			// Let the editor finish writing before the reload reads.
			time.Sleep(100 * time.Millisecond)
			select {
			case rw.ch <- event.Name:
			default:
			}
		case err, ok := <-rw.w.Errors:
			if !ok {
				return
			}
			logger.Warn("rules watcher error", "err", err)
		}
	}
}
