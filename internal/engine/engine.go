package engine

import (
	"errors"
	"math/rand"
	"slices"
	"time"
)

var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdTick       CommandType = "Tick"
	CmdMessage    CommandType = "Message"
	CmdChooseWord CommandType = "ChooseWord"
	CmdJoin       CommandType = "Join"
	CmdLeave      CommandType = "Leave"
	CmdSync       CommandType = "Sync"
)

// Command is one serialized input to a session: either the periodic tick or
// an externally triggered event. Now carries the wall-clock time the command
// was accepted, so Apply itself never reads the clock.
type Command struct {
	Type   CommandType
	Now    time.Time
	Member string
	Text   string
	Word   string
}

type EventType string

const (
	EvtActorAssigned EventType = "ActorAssigned"
	EvtWordChoices   EventType = "WordChoices"
	EvtWordRevealed  EventType = "WordRevealed"
	EvtTimerUpdate   EventType = "TimerUpdate"
	EvtGuessCorrect  EventType = "GuessCorrect"
	EvtPointsUpdate  EventType = "PointsUpdate"
	EvtChatMessage   EventType = "ChatMessage"
	EvtNotice        EventType = "Notice"
)

// Event is one outbound notification. An empty To means broadcast to the
// whole room; otherwise it is delivered only to the listed members.
type Event struct {
	Type    EventType
	To      []string
	Actor   string
	Word    string
	Choices []string
	Seconds int
	Guesser string
	From    string
	Text    string
	Points  map[string]int
}

const wordChoiceCount = 3

// Engine applies commands to session state. It carries the only two
// impurities the rules need: the vocabulary and a randomness source.
type Engine struct {
	bank *WordBank
	rng  *rand.Rand
}

// New returns an engine over bank. A nil rng gets a time-seeded source;
// tests pass a fixed seed instead.
func New(bank *WordBank, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{bank: bank, rng: rng}
}

// Apply advances s by one command and returns the notifications to deliver.
// Gameplay races (stale joins, double leaves, invalid word picks, wrong
// guesses) produce no error; they either no-op or fall through to chat.
func (e *Engine) Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdTick:
		return e.tick(s, cmd.Now)
	case CmdMessage:
		return e.message(s, cmd)
	case CmdChooseWord:
		return chooseWord(s, cmd)
	case CmdJoin:
		return join(s, cmd)
	case CmdLeave:
		return leave(s, cmd)
	case CmdSync:
		return syncMember(s, cmd)
	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// tick evaluates the time-gated transitions: starting the next round after
// the inter-round gap, auto-picking the word after the choice timeout, and
// decrementing the countdown once per timer step.
func (e *Engine) tick(s State, now time.Time) ([]Event, State, error) {
	if len(s.Order) == 0 {
		return nil, s, nil
	}

	roundOver := len(s.Order) != 1 && len(s.Guessed) == len(s.Order)-1
	if s.Timer <= TimerWaiting || roundOver {
		if now.Sub(s.LastAdvance) <= s.Rules.InterRoundGap {
			return nil, s, nil
		}
		return e.startRound(s, now)
	}

	switch {
	case len(s.Order) == 1:
		// Nobody left to guess; freeze the countdown.
		s.RoundRunning = false
	case !s.RoundRunning:
		// Membership recovered while suspended; park the timer so the next
		// tick starts a fresh round.
		s.Timer = TimerWaiting
	}

	var events []Event
	switch {
	case s.CurrentWord == "":
		if now.Sub(s.LastAdvance) >= s.Rules.WordTimeout {
			s.CurrentWord = s.Fallback
			events = append(events, Event{Type: EvtWordRevealed, Word: s.CurrentWord})
		}
	case s.RoundRunning && s.Timer == 0:
		// Countdown exhausted, or forced to zero by an actor departure:
		// end the round now, the inter-round gap starts here.
		s.Timer = TimerWaiting
		s.RoundRunning = false
		s.LastAdvance = now
		events = append(events, Event{Type: EvtTimerUpdate, Seconds: s.Timer})
	case s.RoundRunning && now.Sub(s.LastAdvance) > s.Rules.TimerStep:
		s.Timer--
		s.LastAdvance = now
		events = append(events, Event{Type: EvtTimerUpdate, Seconds: s.Timer})
	}
	return events, s, nil
}

func (e *Engine) startRound(s State, now time.Time) ([]Event, State, error) {
	s.ActorIndex++
	if s.ActorIndex >= len(s.Order) {
		e.rng.Shuffle(len(s.Order), func(i, j int) {
			s.Order[i], s.Order[j] = s.Order[j], s.Order[i]
		})
		s.ActorIndex = 0
	}
	actor := s.Order[s.ActorIndex]

	choices, err := e.bank.Sample(e.rng, wordChoiceCount)
	if err != nil {
		return nil, s, err
	}
	s.CurrentWord = ""
	s.Choices = choices
	s.Fallback = choices[e.rng.Intn(len(choices))]
	s.Guessed = make(map[string]bool)
	s.Timer = s.Rules.RoundSeconds
	s.RoundRunning = true
	s.LastAdvance = now

	events := []Event{
		{Type: EvtActorAssigned, Actor: actor},
		{Type: EvtWordChoices, To: []string{actor}, Choices: choices},
		{Type: EvtTimerUpdate, Seconds: s.Timer},
	}
	return events, s, nil
}

// chooseWord handles an explicit pick by the actor, pre-empting the word
// timeout. Picks by anyone else, or of a word not on offer, are ignored.
func chooseWord(s State, cmd Command) ([]Event, State, error) {
	if cmd.Member != s.Actor() || s.CurrentWord != "" {
		return nil, s, nil
	}
	if !slices.Contains(s.Choices, cmd.Word) {
		return nil, s, nil
	}
	s.CurrentWord = cmd.Word
	return []Event{{Type: EvtWordRevealed, Word: s.CurrentWord}}, s, nil
}

func join(s State, cmd Command) ([]Event, State, error) {
	if s.IsMember(cmd.Member) {
		return nil, s, nil
	}
	s.Points[cmd.Member] = 0
	s.Order = append(s.Order, cmd.Member)
	return nil, s, nil
}

func leave(s State, cmd Command) ([]Event, State, error) {
	member := cmd.Member
	if !s.IsMember(member) {
		return nil, s, nil
	}
	wasActor := member == s.Actor()

	delete(s.Points, member)
	delete(s.Guessed, member)
	if i := slices.Index(s.Order, member); i >= 0 {
		if i < s.ActorIndex {
			// Keep the index pointing at the same member.
			s.ActorIndex--
		}
		s.Order = slices.Delete(s.Order, i, i+1)
	}

	if wasActor || len(s.Order) == 1 {
		// Force the round to end on the next tick.
		s.Timer = 0
	}
	return nil, s, nil
}

// syncMember resends the in-progress round to one late joiner, after the
// transport's join grace delay has passed.
func syncMember(s State, cmd Command) ([]Event, State, error) {
	if !s.IsMember(cmd.Member) || !s.RoundRunning || s.CurrentWord == "" {
		return nil, s, nil
	}
	to := []string{cmd.Member}
	events := []Event{
		{Type: EvtActorAssigned, To: to, Actor: s.Actor()},
		{Type: EvtWordRevealed, To: to, Word: s.CurrentWord},
	}
	return events, s, nil
}
