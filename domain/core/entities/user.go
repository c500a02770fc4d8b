package entities

import "time"

// User is a person belonging to an organization
type User struct {
	ID             string    `dynamodbav:"id" json:"id" validate:"required"`
	OrganizationID string    `dynamodbav:"organizationId" json:"organizationId" validate:"required"`
	Email          string    `dynamodbav:"email" json:"email" validate:"required,email"`
	DisplayName    string    `dynamodbav:"displayName" json:"displayName" validate:"required,max=128"`
	CreatedAt      time.Time `dynamodbav:"createdAt" json:"createdAt"`
	LastActiveAt   time.Time `dynamodbav:"lastActiveAt" json:"lastActiveAt"`
}

func (User) EntityType() EntityType { return TypeUser }
