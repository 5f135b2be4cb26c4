package input

import (
	"strings"
	"sync"
)

type Action uint8

const (
	Forward Action = iota
	Backward
	Left
	Right
	Attack
	Fire
)

var actionNames = [...]string{
	Forward:  "forward",
	Backward: "backward",
	Left:     "left",
	Right:    "right",
	Attack:   "attack",
	Fire:     "fire",
}

func Actions() []Action {
	return []Action{Forward, Backward, Left, Right, Attack, Fire}
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

func ParseAction(name string) (Action, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}

// Snapshot is the held status of every action, read once per tick.
type Snapshot struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Attack   bool
	Fire     bool
}

func (s Snapshot) Held(a Action) bool {
	switch a {
	case Forward:
		return s.Forward
	case Backward:
		return s.Backward
	case Left:
		return s.Left
	case Right:
		return s.Right
	case Attack:
		return s.Attack
	case Fire:
		return s.Fire
	}
	return false
}

func (s *Snapshot) set(a Action, held bool) {
	switch a {
	case Forward:
		s.Forward = held
	case Backward:
		s.Backward = held
	case Left:
		s.Left = held
	case Right:
		s.Right = held
	case Attack:
		s.Attack = held
	case Fire:
		s.Fire = held
	}
}

// State is written by input edge handlers and read by the tick.
type State struct {
	mu   sync.Mutex
	held Snapshot
}

func NewState() *State {
	return &State{}
}

// Set records an edge and reports whether it changed the held status.
// A repeated press (key auto-repeat) is not an edge.
func (s *State) Set(a Action, pressed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held.Held(a) == pressed {
		return false
	}
	s.held.set(a, pressed)
	return true
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

func (s *State) Reset() {
	s.mu.Lock()
	s.held = Snapshot{}
	s.mu.Unlock()
}
