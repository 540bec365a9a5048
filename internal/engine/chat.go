package engine

// routeChat decides who may see a chat line. Members who already solved the
// word talk only among themselves and the actor, so they cannot spoil it for
// the rest; the actor's own chat is suppressed outright to keep the word from
// leaking through text. Everyone else broadcasts to the room.
func routeChat(s State, sender, text string) []Event {
	if !s.IsMember(sender) {
		return nil
	}

	if s.Guessed[sender] {
		actor := s.Actor()
		to := make([]string, 0, len(s.Guessed)+1)
		for _, m := range s.Order {
			if s.Guessed[m] || m == actor {
				to = append(to, m)
			}
		}
		return []Event{{Type: EvtChatMessage, To: to, From: sender, Text: text}}
	}

	if sender == s.Actor() {
		return nil
	}

	return []Event{{Type: EvtChatMessage, From: sender, Text: text}}
}
