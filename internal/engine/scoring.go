package engine

const (
	actorAward            = 100
	guesserAwardPerSecond = 10
)

// awardPoints pays out for one correct guess, using the countdown value
// before it is reduced: faster guessers earn more, and the actor collects a
// flat bonus for every guesser who succeeds, not once per round.
func awardPoints(s *State, guesser string) {
	s.Points[guesser] += s.Timer * guesserAwardPerSecond
	if actor := s.Actor(); actor != "" {
		s.Points[actor] += actorAward
	}
}

// reduceTimer shaves a quarter off the remaining time, rounding up, so each
// solve shortens the round for everyone still guessing.
func reduceTimer(timer int) int {
	if timer <= 0 {
		return timer
	}
	return (timer*3 + 3) / 4
}
