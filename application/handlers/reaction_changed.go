package handlers

import (
	"context"
	"reflect"
	"sort"

	"go.uber.org/zap"

	"teamchat/application/dispatch"
	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/events"
)

const reactionsAttr = "reactions"

// ReactionChangedHandler announces the reaction state of a message after it changed.
type ReactionChangedHandler struct {
	origins   Origins
	publisher ports.EventPublisher
	logger    *zap.Logger
}

func NewReactionChangedHandler(origins Origins, publisher ports.EventPublisher, logger *zap.Logger) *ReactionChangedHandler {
	return &ReactionChangedHandler{origins: origins, publisher: publisher, logger: logger}
}

func (h *ReactionChangedHandler) Name() string { return "ReactionChanged" }

func (h *ReactionChangedHandler) Supports(rec dispatch.ChangeRecord) bool {
	if !rec.Is(h.origins.Table, dispatch.Modify, entities.TypeMessage) {
		return false
	}
	return !reflect.DeepEqual(reactionState(rec.Before), reactionState(rec.After))
}

func (h *ReactionChangedHandler) Process(ctx context.Context, rec dispatch.ChangeRecord) error {
	reactions := reactionState(rec.After)
	messageID := rec.After.String("id")

	h.logger.Debug("Reactions changed",
		zap.String("messageID", messageID),
		zap.Int("reactions", len(reactions)),
	)

	return h.publisher.Publish(ctx, events.NewReactionChanged(
		messageID,
		rec.After.String("conversationId"),
		reactions,
		dispatchTime(rec),
	))
}

// reactionState drops empty reactions and sorts users so images compare by content.
func reactionState(img dispatch.Image) map[string][]string {
	state := map[string][]string{}
	reactions := img.Map(reactionsAttr)
	for name := range reactions {
		users := reactions.Strings(name)
		if len(users) == 0 {
			continue
		}
		sort.Strings(users)
		state[name] = users
	}
	return state
}
