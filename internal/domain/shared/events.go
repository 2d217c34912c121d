// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Gamification side effects hang off these.
const (
	// Quiz events
	EventAnswerRecorded EventType = "answer.recorded"
	EventQuizStarted    EventType = "quiz.started"
	EventQuizCompleted  EventType = "quiz.completed"

	// Gamification events
	EventAchievementUnlocked EventType = "achievement.unlocked"

	// System events
	EventSessionsEvicted EventType = "session.evicted"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	// For per-user events this is the user id.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ══════════════════════════════════════════════════════════════════════════════
// Quiz Events
// ══════════════════════════════════════════════════════════════════════════════

// AnswerRecordedEvent is emitted after the progress ledger stored an answer.
type AnswerRecordedEvent struct {
	BaseEvent
	UserID   string  `json:"user_id"`
	Subject  Subject `json:"subject"`
	Topic    Topic   `json:"topic,omitempty"`
	Correct  bool    `json:"correct"`
	Question string  `json:"question"`
}

// Payload implements Event interface.
func (e AnswerRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  e.UserID,
		"subject":  e.Subject.String(),
		"topic":    e.Topic.String(),
		"correct":  e.Correct,
		"question": e.Question,
	}
}

// NewAnswerRecordedEvent creates a new AnswerRecordedEvent.
func NewAnswerRecordedEvent(userID string, subject Subject, topic Topic, correct bool, question string) AnswerRecordedEvent {
	return AnswerRecordedEvent{
		BaseEvent: NewBaseEvent(EventAnswerRecorded, userID),
		UserID:    userID,
		Subject:   subject,
		Topic:     topic,
		Correct:   correct,
		Question:  question,
	}
}

// QuizStartedEvent is emitted when a question session begins.
type QuizStartedEvent struct {
	BaseEvent
	UserID  string  `json:"user_id"`
	Subject Subject `json:"subject"`
	Grade   Grade   `json:"grade"`
	Count   int     `json:"count"`
}

// Payload implements Event interface.
func (e QuizStartedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"subject": e.Subject.String(),
		"grade":   e.Grade.Int(),
		"count":   e.Count,
	}
}

// NewQuizStartedEvent creates a new QuizStartedEvent.
func NewQuizStartedEvent(userID string, subject Subject, grade Grade, count int) QuizStartedEvent {
	return QuizStartedEvent{
		BaseEvent: NewBaseEvent(EventQuizStarted, userID),
		UserID:    userID,
		Subject:   subject,
		Grade:     grade,
		Count:     count,
	}
}

// QuizCompletedEvent is emitted when the last question of a session was answered correctly.
type QuizCompletedEvent struct {
	BaseEvent
	UserID    string  `json:"user_id"`
	Subject   Subject `json:"subject"`
	Questions int     `json:"questions"`
}

// Payload implements Event interface.
func (e QuizCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"subject":   e.Subject.String(),
		"questions": e.Questions,
	}
}

// NewQuizCompletedEvent creates a new QuizCompletedEvent.
func NewQuizCompletedEvent(userID string, subject Subject, questions int) QuizCompletedEvent {
	return QuizCompletedEvent{
		BaseEvent: NewBaseEvent(EventQuizCompleted, userID),
		UserID:    userID,
		Subject:   subject,
		Questions: questions,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// Gamification Events
// ══════════════════════════════════════════════════════════════════════════════

// AchievementUnlockedEvent is emitted once per newly earned badge.
type AchievementUnlockedEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
	Name          string `json:"name"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"achievement_id": e.AchievementID,
		"name":           e.Name,
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(userID, achievementID, name string) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, userID),
		UserID:        userID,
		AchievementID: achievementID,
		Name:          name,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// System Events
// ══════════════════════════════════════════════════════════════════════════════

// SessionsEvictedEvent is emitted by the idle-session sweep.
type SessionsEvictedEvent struct {
	BaseEvent
	Evicted int           `json:"evicted"`
	MaxAge  time.Duration `json:"max_age"`
}

// Payload implements Event interface.
func (e SessionsEvictedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"evicted": e.Evicted,
		"max_age": e.MaxAge.String(),
	}
}

// NewSessionsEvictedEvent creates a new SessionsEvictedEvent.
func NewSessionsEvictedEvent(evicted int, maxAge time.Duration) SessionsEvictedEvent {
	return SessionsEvictedEvent{
		BaseEvent: NewBaseEvent(EventSessionsEvicted, "system"),
		Evicted:   evicted,
		MaxAge:    maxAge,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// Bus contracts
// ══════════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(ctx context.Context, event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(ctx context.Context, event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher discards every event. Useful where no bus is wired.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
