package events

import "time"

// SourceCore is the EventBridge source of every integration event.
const SourceCore = "teamchat.core"

// Event types
const (
	TypeMessageSent      = "message.sent"
	TypeReactionChanged  = "message.reaction_changed"
	TypeMemberAdded      = "membership.added"
	TypeMemberRemoved    = "membership.removed"
	TypeMeetingScheduled = "meeting.scheduled"
	TypeTeamCreated      = "team.created"
)

// DomainEvent is an integration event published after a change was handled.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, at time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   at,
		Version:     1,
	}
}

// MessageSent is raised once a new message has been fanned out to members.
type MessageSent struct {
	BaseEvent
	MessageID      string   `json:"message_id"`
	ConversationID string   `json:"conversation_id"`
	SenderID       string   `json:"sender_id"`
	Recipients     []string `json:"recipients"`
}

func NewMessageSent(messageID, conversationID, senderID string, recipients []string, at time.Time) MessageSent {
	return MessageSent{
		BaseEvent:      newBase(messageID, TypeMessageSent, at),
		MessageID:      messageID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Recipients:     recipients,
	}
}

// ReactionChanged carries the full reaction state after a change.
type ReactionChanged struct {
	BaseEvent
	MessageID      string              `json:"message_id"`
	ConversationID string              `json:"conversation_id"`
	Reactions      map[string][]string `json:"reactions"`
}

func NewReactionChanged(messageID, conversationID string, reactions map[string][]string, at time.Time) ReactionChanged {
	return ReactionChanged{
		BaseEvent:      newBase(messageID, TypeReactionChanged, at),
		MessageID:      messageID,
		ConversationID: conversationID,
		Reactions:      reactions,
	}
}

// MembershipChanged is raised when a user joins or leaves a conversation.
type MembershipChanged struct {
	BaseEvent
	UserID           string `json:"user_id"`
	ConversationID   string `json:"conversation_id"`
	ConversationType string `json:"conversation_type"`
	Role             string `json:"role,omitempty"`
}

func NewMemberAdded(userID, conversationID, conversationType, role string, at time.Time) MembershipChanged {
	return MembershipChanged{
		BaseEvent:        newBase(conversationID, TypeMemberAdded, at),
		UserID:           userID,
		ConversationID:   conversationID,
		ConversationType: conversationType,
		Role:             role,
	}
}

func NewMemberRemoved(userID, conversationID, conversationType string, at time.Time) MembershipChanged {
	return MembershipChanged{
		BaseEvent:        newBase(conversationID, TypeMemberRemoved, at),
		UserID:           userID,
		ConversationID:   conversationID,
		ConversationType: conversationType,
	}
}

// MeetingScheduled is raised when a meeting is created or its due time moves.
type MeetingScheduled struct {
	BaseEvent
	MeetingID     string     `json:"meeting_id"`
	TeamID        string     `json:"team_id"`
	DueAt         time.Time  `json:"due_at"`
	PreviousDueAt *time.Time `json:"previous_due_at,omitempty"`
}

func NewMeetingScheduled(meetingID, teamID string, dueAt time.Time, previous *time.Time, at time.Time) MeetingScheduled {
	return MeetingScheduled{
		BaseEvent:     newBase(meetingID, TypeMeetingScheduled, at),
		MeetingID:     meetingID,
		TeamID:        teamID,
		DueAt:         dueAt,
		PreviousDueAt: previous,
	}
}

// TeamCreated is raised after the creator has been made admin of a new team.
type TeamCreated struct {
	BaseEvent
	TeamID         string `json:"team_id"`
	OrganizationID string `json:"organization_id"`
	CreatedBy      string `json:"created_by"`
}

func NewTeamCreated(teamID, organizationID, createdBy string, at time.Time) TeamCreated {
	return TeamCreated{
		BaseEvent:      newBase(teamID, TypeTeamCreated, at),
		TeamID:         teamID,
		OrganizationID: organizationID,
		CreatedBy:      createdBy,
	}
}
