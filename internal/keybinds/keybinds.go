// Package keybinds maps terminal keys to TUI actions. Defaults cover
// every action; a keybinds.json in the config directory overrides
// individual keys.
package keybinds

import "fmt"

// Action identifies something the TUI can do in response to a key.
type Action string

const (
	ActionSubmit      Action = "submit"       // analyze the current input
	ActionSubmitBatch Action = "submit_batch" // analyze one text per line
	ActionToggleMode  Action = "toggle_mode"  // switch single <-> batch
	ActionToggleStats Action = "toggle_stats" // show/hide session statistics
	ActionCopyResult  Action = "copy_result"  // copy last result JSON
	ActionQuit        Action = "quit"
	ActionNone        Action = ""
)

// validActions is the set of actions a config file may bind.
var validActions = map[Action]bool{
	ActionSubmit:      true,
	ActionSubmitBatch: true,
	ActionToggleMode:  true,
	ActionToggleStats: true,
	ActionCopyResult:  true,
	ActionQuit:        true,
}

// Registry resolves key strings (as reported by bubbletea, e.g.
// "enter", "ctrl+s") to actions.
type Registry struct {
	bindings map[string]Action
}

// NewDefaultRegistry returns the built-in bindings.
func NewDefaultRegistry() *Registry {
	return &Registry{bindings: map[string]Action{
		"enter":  ActionSubmit,
		"ctrl+s": ActionSubmitBatch,
		"tab":    ActionToggleMode,
		"ctrl+t": ActionToggleStats,
		"ctrl+y": ActionCopyResult,
		"ctrl+c": ActionQuit,
	}}
}

// Register binds key to action, replacing any previous binding for the
// key. Binding a key to ActionNone removes it.
func (r *Registry) Register(key string, action Action) {
	if action == ActionNone {
		delete(r.bindings, key)
		return
	}
	r.bindings[key] = action
}

// Lookup returns the action bound to key, or ActionNone.
func (r *Registry) Lookup(key string) Action {
	return r.bindings[key]
}

// KeyFor returns the first key bound to action; used for help text.
func (r *Registry) KeyFor(action Action) string {
	for _, key := range orderedKeys {
		if r.bindings[key] == action {
			return key
		}
	}
	for key, bound := range r.bindings {
		if bound == action {
			return key
		}
	}
	return ""
}

// orderedKeys keeps KeyFor deterministic for the default bindings.
var orderedKeys = []string{"enter", "ctrl+s", "tab", "ctrl+t", "ctrl+y", "ctrl+c"}

// Validate reports configuration problems: unknown actions and quit
// left unbound. Duplicate keys cannot occur since bindings is a map.
func (r *Registry) Validate() error {
	quitBound := false
	for key, action := range r.bindings {
		if !validActions[action] {
			return fmt.Errorf("key %q bound to unknown action %q", key, action)
		}
		if action == ActionQuit {
			quitBound = true
		}
	}
	if !quitBound {
		return fmt.Errorf("no key bound to quit")
	}
	return nil
}
