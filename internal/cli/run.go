// Package cli implements the command logic behind cmd/cairn: flag
// plumbing, store and engine construction, the interactive chat loop, and
// the rules-file watch mode.
package cli

import (
	"fmt"
)

// RunOptions contains all the configuration for the chat command.
type RunOptions struct {
	Debug     bool
	JSON      bool
	Watch     bool
	Fresh     bool
	SessionID string
	Store     string // memory | file | redis
	DataDir   string
	RedisAddr string
	RulesPath string
	Model     string // Gemini model name; scripted responders when empty
}

// Execute handles the 'chat' command logic, dispatching to session or
// watch mode.
func Execute(opts RunOptions) error {
	if opts.Watch {
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		if opts.RulesPath == "" {
			return fmt.Errorf("--watch requires --rules: there is no file to watch otherwise")
		}
		return RunWatch(opts)
	}

	return RunChat(opts)
}
