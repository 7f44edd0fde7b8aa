// Package keymap defines key bindings and action dispatch for the player.
package keymap

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Action represents a user-triggerable action.
type Action string

const (
	ActionQuit        Action = "quit"
	ActionPlay        Action = "play"         // start from the top, or restart
	ActionStop        Action = "stop"         // stop playback
	ActionSeekForward Action = "seek_forward" // jump ahead one seek step
	ActionSeekBack    Action = "seek_back"    // jump back one seek step
	ActionSeekStart   Action = "seek_start"   // jump to the start of the score
	ActionHelp        Action = "help"
)

// Binding maps keys to an action.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
}

// All contains the player's key bindings.
var All = []Binding{
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit"},
	{ActionPlay, []string{"enter", " "}, "Play from start"},
	{ActionStop, []string{"s", "esc"}, "Stop"},
	{ActionSeekForward, []string{"right", "l"}, "Seek forward"},
	{ActionSeekBack, []string{"left", "h"}, "Seek back"},
	{ActionSeekStart, []string{"home", "0"}, "Seek to start"},
	{ActionHelp, []string{"?"}, "Toggle help"},
}

// Resolver maps key strings to actions.
type Resolver struct {
	bindings map[string]Action   // key -> action
	byAction map[Action][]string // action -> keys (for help)
	help     []key.Binding       // one per action, in declaration order
	actions  []Action
}

// NewResolver creates a resolver from bindings.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: make(map[string]Action),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, k := range b.Keys {
			r.bindings[k] = b.Action
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
	}
	for action, keys := range r.byAction {
		r.byAction[action] = dedupe(keys)
	}
	for _, b := range bindings {
		if _, done := r.indexOf(b.Action); done || len(b.Keys) == 0 {
			continue
		}
		keys := r.byAction[b.Action]
		r.actions = append(r.actions, b.Action)
		r.help = append(r.help, key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(helpKeys(keys), b.Description),
		))
	}
	return r
}

func (r *Resolver) indexOf(action Action) (int, bool) {
	for i, a := range r.actions {
		if a == action {
			return i, true
		}
	}
	return -1, false
}

// Binding returns the bubbles key binding for action, for use with
// key.Matches and the help component.
func (r *Resolver) Binding(action Action) key.Binding {
	if i, ok := r.indexOf(action); ok {
		return r.help[i]
	}
	return key.NewBinding(key.WithDisabled())
}

// ShortHelp returns the bindings shown in the one-line hint.
func (r *Resolver) ShortHelp() []key.Binding {
	return []key.Binding{r.Binding(ActionHelp), r.Binding(ActionQuit)}
}

// FullHelp returns every binding, one column per group.
func (r *Resolver) FullHelp() [][]key.Binding {
	return [][]key.Binding{r.help}
}

// helpKeys renders keys for display, naming the space bar.
func helpKeys(keys []string) string {
	display := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		display[i] = k
	}
	return strings.Join(display, "/")
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.bindings[key]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

func dedupe(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
