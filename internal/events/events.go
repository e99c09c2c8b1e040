package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource = "faq-service"

	QuestionCreated  = "question.created"
	QuestionReviewed = "question.reviewed"
)

// Event is the envelope published for every lifecycle change
type Event struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Source    string        `json:"source"`
	Timestamp time.Time     `json:"timestamp"`
	Data      QuestionEvent `json:"data"`
}

type QuestionEvent struct {
	QuestionID string `json:"questionId"`
	Status     string `json:"status"`
	ActorID    string `json:"actorId"`
}

func NewEvent(eventType string, data QuestionEvent) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher delivers lifecycle events. Delivery is best effort; callers log failures.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
