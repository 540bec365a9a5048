// Package wire defines the JSON messages exchanged with clients. The exact
// encoding lives here, at the edge; the engine only ever sees tagged
// commands and events.
package wire

// ClientMessage is what a connected client sends.
//
// Types:
//
//	start   {}                  start the room's game
//	chat    {text}              chat line, evaluated as a guess first
//	word    {word}              actor's explicit word choice
type ClientMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Word string `json:"word,omitempty"`
}

// ServerMessage is what the server pushes.
//
// Types: joined, started, actor, wordChoices, word, timer, guessed, points,
// message, error. Seconds is set only on timer messages; it is a pointer so
// a countdown reaching zero still goes out on the wire.
type ServerMessage struct {
	Type    string         `json:"type"`
	Room    string         `json:"room,omitempty"`
	Name    string         `json:"name,omitempty"`
	Actor   string         `json:"actor,omitempty"`
	Word    string         `json:"word,omitempty"`
	Choices []string       `json:"choices,omitempty"`
	Seconds *int           `json:"seconds,omitempty"`
	Guesser string         `json:"guesser,omitempty"`
	From    string         `json:"from,omitempty"`
	Text    string         `json:"text,omitempty"`
	Points  map[string]int `json:"points,omitempty"`
	Error   string         `json:"error,omitempty"`
}
