package engine

import (
	"slices"
	"strings"
	"time"
)

const (
	// NoActor is the ActorIndex value before the first round has started.
	NoActor = -1

	// TimerWaiting marks the countdown as stopped between rounds.
	TimerWaiting = -1
)

// Rules holds the timing knobs for one session. Every duration is compared
// against wall-clock elapsed time, never against tick counts, so jittery
// ticking cannot skip transitions.
type Rules struct {
	RoundSeconds  int
	InterRoundGap time.Duration
	WordTimeout   time.Duration
	TimerStep     time.Duration
	JoinGrace     time.Duration
}

func DefaultRules() Rules {
	return Rules{
		RoundSeconds:  60,
		InterRoundGap: 5 * time.Second,
		WordTimeout:   10 * time.Second,
		TimerStep:     time.Second,
		JoinGrace:     2 * time.Second,
	}
}

// State is the full per-room game state. It is owned by exactly one session
// goroutine; Apply mutates it only through that owner.
type State struct {
	Room         string
	Order        []string
	Points       map[string]int
	ActorIndex   int
	CurrentWord  string
	Choices      []string
	Fallback     string
	Timer        int
	RoundRunning bool
	Guessed      map[string]bool
	LastAdvance  time.Time
	Rules        Rules
}

// NewState builds the pre-round state for a room: everyone at zero points,
// rotation in join order, countdown parked at the waiting sentinel.
func NewState(room string, members []string, now time.Time, rules Rules) State {
	s := State{
		Room:        strings.ToUpper(room),
		Order:       slices.Clone(members),
		Points:      make(map[string]int, len(members)),
		ActorIndex:  NoActor,
		Timer:       TimerWaiting,
		Guessed:     make(map[string]bool),
		LastAdvance: now,
		Rules:       rules,
	}
	for _, m := range members {
		s.Points[m] = 0
	}
	return s
}

// Actor returns the member currently acting out the word, or "" if no round
// has started or the actor slot is vacant after a departure.
func (s State) Actor() string {
	if s.ActorIndex < 0 || s.ActorIndex >= len(s.Order) {
		return ""
	}
	return s.Order[s.ActorIndex]
}

// IsMember reports whether name belongs to the session.
func (s State) IsMember(name string) bool {
	_, ok := s.Points[name]
	return ok
}

func (s State) pointsSnapshot() map[string]int {
	out := make(map[string]int, len(s.Points))
	for m, p := range s.Points {
		out[m] = p
	}
	return out
}
