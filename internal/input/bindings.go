package input

import (
	"fmt"
	"strings"
)

// Bindings maps a frontend-neutral key name ("w", "space", "up") to an action.
type Bindings map[string]Action

func DefaultBindings() Bindings {
	return Bindings{
		"w":     Forward,
		"s":     Backward,
		"a":     Left,
		"d":     Right,
		"up":    Forward,
		"down":  Backward,
		"left":  Left,
		"right": Right,
		"space": Attack,
		"f":     Fire,
	}
}

// ParseBindings builds bindings from a key -> action-name table.
func ParseBindings(raw map[string]string) (Bindings, error) {
	out := make(Bindings, len(raw))
	for key, name := range raw {
		action, ok := ParseAction(name)
		if !ok {
			return nil, fmt.Errorf("key %q: unknown action %q", key, name)
		}
		out[normalizeKey(key)] = action
	}
	return out, nil
}

func (b Bindings) Lookup(key string) (Action, bool) {
	a, ok := b[normalizeKey(key)]
	return a, ok
}

// Keys returns every key bound to the action.
func (b Bindings) Keys(a Action) []string {
	var keys []string
	for k, v := range b {
		if v == a {
			keys = append(keys, k)
		}
	}
	return keys
}

func normalizeKey(key string) string {
	if key == " " {
		return "space"
	}
	return strings.ToLower(strings.TrimSpace(key))
}
