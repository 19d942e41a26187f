package request

import "fmt"

// Message is the JSON body of every monitoring server error response.
type Message struct {
	Message string `json:"Message"`
}

// NewMessage creates a new Message, formatting it when args are given.
func NewMessage(message string, args ...any) *Message {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return &Message{
		Message: message,
	}
}
