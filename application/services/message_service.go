package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/core/valueobjects"
	"teamchat/domain/keys"
	pkgerrors "teamchat/pkg/errors"
	"teamchat/pkg/utils"
)

const reactionsAttr = "reactions"

// MessageService posts messages and tracks reactions
type MessageService struct {
	store  ports.RecordStore[entities.Message]
	clock  utils.Clock
	logger *zap.Logger
}

var _ ports.MessageService = (*MessageService)(nil)

func NewMessageService(store ports.RecordStore[entities.Message], clock utils.Clock, logger *zap.Logger) *MessageService {
	return &MessageService{store: store, clock: clock, logger: logger}
}

// Send stores a new message. Unread markers are fanned out when the insert
// reaches the stream.
func (s *MessageService) Send(ctx context.Context, input ports.SendMessageInput) (entities.Message, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return entities.Message{}, err
	}

	message := entities.Message{
		ID:             keys.NewID(keys.PrefixMessage),
		ConversationID: input.ConversationID,
		SenderID:       input.SenderID,
		Body:           input.Body,
		SentAt:         s.clock.Now(),
		// reactions.<name> can only be ADDed to an existing map
		Reactions: map[string]valueobjects.StringSet{},
	}

	if err := s.store.Put(ctx, message); err != nil {
		return entities.Message{}, pkgerrors.Wrap(err, "send message")
	}

	s.logger.Debug("Message sent",
		zap.String("messageID", message.ID),
		zap.String("conversationID", message.ConversationID),
	)
	return message, nil
}

func (s *MessageService) Get(ctx context.Context, messageID string) (entities.Message, error) {
	return s.store.Get(ctx, keys.MessageKey(messageID))
}

// ListForConversation returns the conversation's messages, newest first.
func (s *MessageService) ListForConversation(ctx context.Context, conversationID string, page ports.PageRequest) (ports.Page[entities.Message], error) {
	return s.store.Query(ctx, ports.QueryRequest{
		Index:     keys.GSI1,
		Partition: conversationID,
		Sort:      ports.SortPrefix(keys.SentPrefix()),
		Cursor:    page.Cursor,
		Limit:     page.Limit,
	})
}

// AddReaction records userID under reaction. Adding twice is a no-op.
func (s *MessageService) AddReaction(ctx context.Context, messageID, reaction, userID string) error {
	path, err := reactionPath(reaction, userID)
	if err != nil {
		return err
	}
	return s.store.AddToSet(ctx, keys.MessageKey(messageID), path, userID)
}

func (s *MessageService) RemoveReaction(ctx context.Context, messageID, reaction, userID string) error {
	path, err := reactionPath(reaction, userID)
	if err != nil {
		return err
	}
	return s.store.RemoveFromSet(ctx, keys.MessageKey(messageID), path, userID)
}

func (s *MessageService) Delete(ctx context.Context, messageID string) error {
	return s.store.Delete(ctx, keys.MessageKey(messageID))
}

func reactionPath(reaction, userID string) (string, error) {
	if err := utils.RequireNonEmpty("reaction", reaction, "userId", userID); err != nil {
		return "", err
	}
	if strings.Contains(reaction, ".") {
		return "", pkgerrors.NewValidationError("reaction must not contain '.'")
	}
	return reactionsAttr + "." + reaction, nil
}
