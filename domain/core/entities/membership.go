package entities

import (
	"time"

	"teamchat/domain/core/valueobjects"
)

// Role of a member inside a conversation
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Membership links a user to a team, group or meeting. UnreadMessages is only
// ever mutated with set deltas.
type Membership struct {
	UserID           string                 `dynamodbav:"userId" json:"userId" validate:"required"`
	ConversationID   string                 `dynamodbav:"conversationId" json:"conversationId" validate:"required"`
	ConversationType EntityType             `dynamodbav:"conversationType" json:"conversationType" validate:"required,oneof=Team Group Meeting"`
	Role             Role                   `dynamodbav:"role" json:"role" validate:"required,oneof=admin member"`
	UnreadMessages   valueobjects.StringSet `dynamodbav:"unreadMessages,omitempty" json:"unreadMessages"`
	JoinedAt         time.Time              `dynamodbav:"joinedAt" json:"joinedAt"`
	LastActiveAt     time.Time              `dynamodbav:"lastActiveAt" json:"lastActiveAt"`
	// DueAt is only set for meeting memberships.
	DueAt time.Time `dynamodbav:"dueAt" json:"dueAt,omitempty"`
}

func (Membership) EntityType() EntityType { return TypeMembership }
