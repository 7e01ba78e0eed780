package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/cairnlabs/cairn/internal/logging"
	"github.com/cairnlabs/cairn/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows
// retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger. Log lines go to stderr
// so they stay clear of the conversation on stdout. CAIRN_LOG_LEVEL
// overrides the level when it parses; otherwise --debug decides.
func createLogger(debug bool) *slog.Logger {
	if raw := os.Getenv("CAIRN_LOG_LEVEL"); raw != "" {
		if level, err := logging.Parse(raw); err == nil {
			return logging.New(level)
		}
	}
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Enter Node", "node", e.Node)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			if e.Target != "" {
				logger.Debug("Leave Node", "node", e.Node, "target", e.Target)
				return
			}
			logger.Debug("Leave Node", "node", e.Node, "completeness", e.Completeness)
		},
		OnResponderCall: func(ctx context.Context, e *domain.ResponderEvent) {
			logger.Debug("Responder Call", "responder", e.Responder)
		},
		OnResponderReturn: func(ctx context.Context, e *domain.ResponderEvent) {
			if e.IsError {
				logger.Debug("Responder Return (Error)", "responder", e.Responder)
				return
			}
			logger.Debug("Responder Return", "responder", e.Responder)
		},
	}
}

// mergeHooks fans each event out to both hook sets, so debug logging and
// metrics collection can be active at the same time.
func mergeHooks(a, b domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter:       mergeNodeHook(a.OnNodeEnter, b.OnNodeEnter),
		OnNodeLeave:       mergeNodeHook(a.OnNodeLeave, b.OnNodeLeave),
		OnResponderCall:   mergeResponderHook(a.OnResponderCall, b.OnResponderCall),
		OnResponderReturn: mergeResponderHook(a.OnResponderReturn, b.OnResponderReturn),
	}
}

func mergeNodeHook(a, b func(context.Context, *domain.NodeEvent)) func(context.Context, *domain.NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func mergeResponderHook(a, b func(context.Context, *domain.ResponderEvent)) func(context.Context, *domain.ResponderEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.ResponderEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
