package engine

import (
	"strings"
	"time"
)

// message implements the send-message flow: the text is evaluated as a guess
// first; only a non-matching message falls through to chat routing. A correct
// guess is never relayed verbatim.
func (e *Engine) message(s State, cmd Command) ([]Event, State, error) {
	if correct, events, next := evaluateGuess(s, cmd.Member, cmd.Text, cmd.Now); correct {
		return events, next, nil
	}
	return routeChat(s, cmd.Member, cmd.Text), s, nil
}

// evaluateGuess fails closed: unless the sender is a member, is not the
// actor, the word is set, and the sender has not already solved it, the text
// is not a guess. Matching is trimmed, case-insensitive, exact.
func evaluateGuess(s State, guesser, text string, now time.Time) (bool, []Event, State) {
	if !s.IsMember(guesser) || guesser == s.Actor() {
		return false, nil, s
	}
	if s.CurrentWord == "" || s.Guessed[guesser] {
		return false, nil, s
	}
	if foldGuess(text) != foldGuess(s.CurrentWord) {
		return false, nil, s
	}

	s.Guessed[guesser] = true
	awardPoints(&s, guesser)
	s.Timer = reduceTimer(s.Timer)
	if len(s.Order) > 1 && len(s.Guessed) == len(s.Order)-1 {
		// Last guesser ends the round; the inter-round gap runs from here,
		// not from the previous countdown decrement.
		s.LastAdvance = now
	}

	events := []Event{
		{Type: EvtGuessCorrect, Guesser: guesser},
		{Type: EvtWordRevealed, To: []string{guesser}, Word: s.CurrentWord},
		{Type: EvtNotice, Text: guesser + " has guessed the word!"},
		{Type: EvtPointsUpdate, Points: s.pointsSnapshot()},
		{Type: EvtTimerUpdate, Seconds: s.Timer},
	}
	return true, events, s
}

func foldGuess(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}
