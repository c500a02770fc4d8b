package dispatch

import (
	"encoding/json"
	"fmt"
	"time"

	"teamchat/domain/core/entities"
	"teamchat/domain/keys"
)

// ChangeKind is the kind of mutation a record describes.
type ChangeKind string

const (
	Insert  ChangeKind = "Insert"
	Modify  ChangeKind = "Modify"
	Remove  ChangeKind = "Remove"
	Unknown ChangeKind = "Unknown"
)

// Image is a record snapshot with store types already normalized: strings,
// json.Number, bool, []byte, []string for sets, map[string]any, []any and nil.
type Image map[string]any

// String returns attr as a string, or "" when absent or not a string.
func (i Image) String(attr string) string {
	switch v := i[attr].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// Strings returns a set or list attribute as plain strings.
func (i Image) Strings(attr string) []string {
	switch v := i[attr].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Map returns a nested map attribute
func (i Image) Map(attr string) Image {
	switch v := i[attr].(type) {
	case Image:
		return v
	case map[string]any:
		return Image(v)
	}
	return nil
}

// Has reports whether attr is present
func (i Image) Has(attr string) bool {
	_, ok := i[attr]
	return ok
}

// ChangeRecord is the normalized form of one raw change notification.
type ChangeRecord struct {
	// Origin is the table or topic name the change came from.
	Origin string
	Kind   ChangeKind
	Before Image
	After  Image
	// EventID is the platform's id for the raw event, used in logs only.
	EventID string
	// At is when the platform recorded the change; zero when unknown.
	At time.Time
}

// UnknownRecord is the record substituted for a raw event that failed to normalize.
func UnknownRecord() ChangeRecord {
	return ChangeRecord{
		Origin: "",
		Kind:   Unknown,
		Before: Image{},
		After:  Image{},
	}
}

// Current is the image describing the record's latest known state: After,
// or Before for removals.
func (r ChangeRecord) Current() Image {
	if r.Kind == Remove {
		return r.Before
	}
	return r.After
}

// EntityType reads the entityType tag of the current image.
func (r ChangeRecord) EntityType() entities.EntityType {
	return entities.EntityType(r.Current().String(keys.AttrEntityType))
}

// Is reports whether the record has the given origin, kind and entity tag.
// Handlers build their Supports on it. An empty origin never matches.
func (r ChangeRecord) Is(origin string, kind ChangeKind, entityType entities.EntityType) bool {
	return origin != "" && r.Origin == origin && r.Kind == kind && r.EntityType() == entityType
}

func (r ChangeRecord) String() string {
	return fmt.Sprintf("%s %s %s (event %s)", r.Origin, r.Kind, r.EntityType(), r.EventID)
}
