package entities

import (
	"time"

	"teamchat/domain/core/valueobjects"
)

// Message posted to a conversation. Reactions maps a reaction name to the
// set of user ids that reacted with it.
type Message struct {
	ID             string                            `dynamodbav:"id" json:"id" validate:"required"`
	ConversationID string                            `dynamodbav:"conversationId" json:"conversationId" validate:"required"`
	SenderID       string                            `dynamodbav:"senderId" json:"senderId" validate:"required"`
	Body           string                            `dynamodbav:"body" json:"body" validate:"required,max=4000"`
	SentAt         time.Time                         `dynamodbav:"sentAt" json:"sentAt"`
	Reactions      map[string]valueobjects.StringSet `dynamodbav:"reactions" json:"reactions"`
}

func (Message) EntityType() EntityType { return TypeMessage }

// ReactionCount returns the number of users that reacted with name.
func (m Message) ReactionCount(name string) int {
	return len(m.Reactions[name])
}
