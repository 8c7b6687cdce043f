package types

import (
	"fmt"
	"strings"
	"time"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry of a conversation transcript.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type Mode string

const (
	Emergency Mode = "emergency"
	Advice    Mode = "advice"
)

// ParseMode accepts the mode names case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Emergency:
		return Emergency, nil
	case Advice:
		return Advice, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}
