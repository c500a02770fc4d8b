package entities

import "time"

// Team is the top-level conversation inside an organization.
type Team struct {
	ID             string    `dynamodbav:"id" json:"id" validate:"required"`
	OrganizationID string    `dynamodbav:"organizationId" json:"organizationId" validate:"required"`
	Name           string    `dynamodbav:"name" json:"name" validate:"required,max=128"`
	CreatedBy      string    `dynamodbav:"createdBy" json:"createdBy" validate:"required"`
	CreatedAt      time.Time `dynamodbav:"createdAt" json:"createdAt"`
	LastActiveAt   time.Time `dynamodbav:"lastActiveAt" json:"lastActiveAt"`
}

func (Team) EntityType() EntityType { return TypeTeam }

// Group is a conversation nested under a team.
type Group struct {
	ID             string    `dynamodbav:"id" json:"id" validate:"required"`
	OrganizationID string    `dynamodbav:"organizationId" json:"organizationId" validate:"required"`
	TeamID         string    `dynamodbav:"teamId" json:"teamId" validate:"required"`
	Name           string    `dynamodbav:"name" json:"name" validate:"required,max=128"`
	CreatedBy      string    `dynamodbav:"createdBy" json:"createdBy" validate:"required"`
	CreatedAt      time.Time `dynamodbav:"createdAt" json:"createdAt"`
	LastActiveAt   time.Time `dynamodbav:"lastActiveAt" json:"lastActiveAt"`
}

func (Group) EntityType() EntityType { return TypeGroup }

// Meeting is a scheduled conversation; it is ordered by DueAt rather than activity.
type Meeting struct {
	ID             string    `dynamodbav:"id" json:"id" validate:"required"`
	OrganizationID string    `dynamodbav:"organizationId" json:"organizationId" validate:"required"`
	TeamID         string    `dynamodbav:"teamId" json:"teamId" validate:"required"`
	Title          string    `dynamodbav:"title" json:"title" validate:"required,max=256"`
	OrganizerID    string    `dynamodbav:"organizerId" json:"organizerId" validate:"required"`
	DueAt          time.Time `dynamodbav:"dueAt" json:"dueAt" validate:"required"`
	CreatedAt      time.Time `dynamodbav:"createdAt" json:"createdAt"`
}

func (Meeting) EntityType() EntityType { return TypeMeeting }
