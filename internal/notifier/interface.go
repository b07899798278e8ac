package notifier

import (
	"context"
	"time"

	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/report"
)

// Message is the notification form of a finished report
type Message struct {
	RunID       string
	Action      core.Action
	Score       float64
	Signals     []string
	Text        string
	GeneratedAt time.Time
}

// FromReport builds a Message from a report and its rendered text
func FromReport(r report.Report, text string) Message {
	return Message{
		RunID:       r.RunID,
		Action:      r.Score.Action,
		Score:       r.Score.Value,
		Signals:     r.Score.Signals(),
		Text:        text,
		GeneratedAt: r.GeneratedAt,
	}
}

// Notifier delivers a report notification
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Notify sends one message
	Notify(ctx context.Context, msg Message) error
}
