package events

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Event types, also used as AMQP routing keys.
const (
	InterviewCreated   = "interview.created"
	InterviewCompleted = "interview.completed"
	InterviewDeleted   = "interview.deleted"
	AnswerEvaluated    = "answer.evaluated"
	ScoreComputed      = "score.computed"
	SkillGapsAnalyzed  = "skill_gaps.analyzed"
)

// Event is a domain notification emitted after a change has been committed.
type Event struct {
	Type       string      `json:"type"`
	UserID     string      `json:"user_id"`
	SessionID  string      `json:"session_id,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func New(eventType, userID, sessionID string, payload interface{}) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		SessionID:  sessionID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to several publishers. Every publisher is tried;
// the joined errors are returned.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes the event and logs, rather than returns, any failure.
func Emit(ctx context.Context, p Publisher, log *zap.Logger, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil && log != nil {
		log.Warn("Failed to publish event",
			zap.String("event", event.Type),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
	}
}
