// Package handlers holds the change handlers registered with the dispatcher.
// Every handler writes through the entity services and may see the same
// record more than once.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"teamchat/application/dispatch"
	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/keys"
	pkgerrors "teamchat/pkg/errors"
)

// Origins names the sources handlers accept records from.
type Origins struct {
	// Table is the name of the shared table whose stream is dispatched.
	Table string
	// UserTopic is the topic the identity service announces new users on.
	UserTopic string
}

// decodeImage maps a normalized image onto an entity through its json tags.
func decodeImage[T any](img dispatch.Image) (T, error) {
	var out T
	raw, err := json.Marshal(img)
	if err != nil {
		return out, fmt.Errorf("encode image: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

// dispatchTime is when the change happened, or now when the platform did not say.
func dispatchTime(rec dispatch.ChangeRecord) time.Time {
	if rec.At.IsZero() {
		return time.Now().UTC()
	}
	return rec.At
}

// forEachMember walks every page of a conversation's members.
func forEachMember(ctx context.Context, memberships ports.MembershipService, conversationID string, fn func(entities.Membership) error) error {
	page := ports.PageRequest{}
	for {
		result, err := memberships.ListMembers(ctx, conversationID, page)
		if err != nil {
			return fmt.Errorf("list members of %s: %w", conversationID, err)
		}
		for _, m := range result.Items {
			if err := fn(m); err != nil {
				return err
			}
		}
		if !result.HasMore() {
			return nil
		}
		page.Cursor = result.NextCursor
	}
}

// conversationType infers the conversation type from the id prefix.
func conversationType(id string) entities.EntityType {
	switch {
	case strings.HasPrefix(id, keys.PrefixTeam):
		return entities.TypeTeam
	case strings.HasPrefix(id, keys.PrefixGroup):
		return entities.TypeGroup
	case strings.HasPrefix(id, keys.PrefixMeeting):
		return entities.TypeMeeting
	}
	return ""
}

// ignoreExisting treats a lost conditional create as success so redelivered
// records do not fail.
func ignoreExisting(err error) error {
	if pkgerrors.IsAlreadyExists(err) {
		return nil
	}
	return err
}
