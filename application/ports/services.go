package ports

import (
	"context"
	"time"

	"teamchat/domain/core/entities"
)

// PageRequest carries the pagination input of list operations.
type PageRequest struct {
	Cursor string
	Limit  int32
}

// Service inputs

type CreateTeamInput struct {
	OrganizationID string `validate:"required"`
	Name           string `validate:"required,max=128"`
	CreatedBy      string `validate:"required"`
}

type CreateGroupInput struct {
	OrganizationID string `validate:"required"`
	TeamID         string `validate:"required"`
	Name           string `validate:"required,max=128"`
	CreatedBy      string `validate:"required"`
}

type ScheduleMeetingInput struct {
	OrganizationID string    `validate:"required"`
	TeamID         string    `validate:"required"`
	Title          string    `validate:"required,max=256"`
	OrganizerID    string    `validate:"required"`
	DueAt          time.Time `validate:"required"`
}

type AddMemberInput struct {
	UserID           string              `validate:"required"`
	ConversationID   string              `validate:"required"`
	ConversationType entities.EntityType `validate:"required,oneof=Team Group Meeting"`
	Role             entities.Role       `validate:"omitempty,oneof=admin member"`
	// DueAt is required for meeting memberships.
	DueAt time.Time
}

type SendMessageInput struct {
	ConversationID string `validate:"required"`
	SenderID       string `validate:"required"`
	Body           string `validate:"required,max=4000"`
}

type ProvisionUserInput struct {
	// ID is generated when empty.
	ID             string
	OrganizationID string `validate:"required"`
	Email          string `validate:"required,email"`
	DisplayName    string `validate:"required,max=128"`
}

// TeamService manages teams
type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (entities.Team, error)
	Get(ctx context.Context, teamID string) (entities.Team, error)
	ListByOrganization(ctx context.Context, organizationID string, page PageRequest) (Page[entities.Team], error)
	Touch(ctx context.Context, teamID string, at time.Time) error
}

// GroupService manages groups inside teams
type GroupService interface {
	Create(ctx context.Context, input CreateGroupInput) (entities.Group, error)
	Get(ctx context.Context, groupID string) (entities.Group, error)
	ListByTeam(ctx context.Context, teamID string, page PageRequest) (Page[entities.Group], error)
	Touch(ctx context.Context, groupID string, at time.Time) error
}

// MeetingService manages meetings
type MeetingService interface {
	Schedule(ctx context.Context, input ScheduleMeetingInput) (entities.Meeting, error)
	Get(ctx context.Context, meetingID string) (entities.Meeting, error)
	ListUpcomingByTeam(ctx context.Context, teamID string, from time.Time, page PageRequest) (Page[entities.Meeting], error)
	Reschedule(ctx context.Context, meetingID string, dueAt time.Time) (entities.Meeting, error)
}

// MembershipService manages who belongs to which conversation and what they have not read
type MembershipService interface {
	Add(ctx context.Context, input AddMemberInput) (entities.Membership, error)
	Remove(ctx context.Context, userID, conversationID string) error
	IsMember(ctx context.Context, userID, conversationID string) (bool, error)
	ListForUser(ctx context.Context, userID string, target entities.EntityType, page PageRequest) (Page[entities.Membership], error)
	ListMembers(ctx context.Context, conversationID string, page PageRequest) (Page[entities.Membership], error)
	Touch(ctx context.Context, membership entities.Membership, at time.Time) error
	SetDue(ctx context.Context, userID, meetingID string, dueAt time.Time) error
	AddUnread(ctx context.Context, userID, conversationID string, messageIDs ...string) error
	MarkRead(ctx context.Context, userID, conversationID string, messageIDs ...string) error
}

// MessageService manages messages and their reactions
type MessageService interface {
	Send(ctx context.Context, input SendMessageInput) (entities.Message, error)
	Get(ctx context.Context, messageID string) (entities.Message, error)
	ListForConversation(ctx context.Context, conversationID string, page PageRequest) (Page[entities.Message], error)
	AddReaction(ctx context.Context, messageID, reaction, userID string) error
	RemoveReaction(ctx context.Context, messageID, reaction, userID string) error
	Delete(ctx context.Context, messageID string) error
}

// UserService manages users
type UserService interface {
	Provision(ctx context.Context, input ProvisionUserInput) (entities.User, error)
	Get(ctx context.Context, userID string) (entities.User, error)
	GetByEmail(ctx context.Context, email string) (entities.User, error)
}
