// Package keys holds the key-prefix scheme of the shared table and the pure
// functions deriving primary and secondary-index keys from entities.
package keys

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"teamchat/domain/core/entities"
)

// Attribute names
const (
	AttrPK         = "pk"
	AttrSK         = "sk"
	AttrGSI1PK     = "gsi1pk"
	AttrGSI1SK     = "gsi1sk"
	AttrGSI2PK     = "gsi2pk"
	AttrGSI2SK     = "gsi2sk"
	AttrGSI3PK     = "gsi3pk"
	AttrGSI3SK     = "gsi3sk"
	AttrEntityType = "entityType"
)

// Identifier prefixes
const (
	PrefixUser         = "user-"
	PrefixTeam         = "team-"
	PrefixGroup        = "group-"
	PrefixMeeting      = "meeting-"
	PrefixMessage      = "message-"
	PrefixOrganization = "organization-"
)

// Ordering dimensions, always placed right after the target prefix in index sort keys.
const (
	DimensionActive = "active-"
	DimensionDue    = "due-"
	DimensionSent   = "sent-"
)

// MessageSK is the fixed sort key of every message record.
const MessageSK = "message"

// TimestampLayout is fixed width so lexical order matches time order.
// time.RFC3339Nano trims trailing zeros and does not sort.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// Index identifies the primary key or one of the secondary indexes.
type Index int

const (
	Primary Index = iota
	GSI1
	GSI2
	GSI3
)

// SecondaryIndexes lists every secondary index in attribute order.
var SecondaryIndexes = []Index{GSI1, GSI2, GSI3}

// PartitionAttr returns the partition key attribute name of the index
func (i Index) PartitionAttr() string {
	switch i {
	case GSI1:
		return AttrGSI1PK
	case GSI2:
		return AttrGSI2PK
	case GSI3:
		return AttrGSI3PK
	default:
		return AttrPK
	}
}

// SortAttr returns the sort key attribute name of the index
func (i Index) SortAttr() string {
	switch i {
	case GSI1:
		return AttrGSI1SK
	case GSI2:
		return AttrGSI2SK
	case GSI3:
		return AttrGSI3SK
	default:
		return AttrSK
	}
}

func (i Index) String() string {
	switch i {
	case GSI1:
		return "gsi1"
	case GSI2:
		return "gsi2"
	case GSI3:
		return "gsi3"
	default:
		return "primary"
	}
}

// Key is a (partition, sort) pair on the table or on one index.
type Key struct {
	PK string
	SK string
}

// IsZero reports whether the key is unset
func (k Key) IsZero() bool {
	return k.PK == "" && k.SK == ""
}

// DynamoDB rejects empty strings in key attributes.
func (k Key) complete() bool {
	return k.PK != "" && k.SK != ""
}

// NewID returns a fresh identifier namespaced by prefix.
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}

// IDPrefix returns the identifier prefix used for records of type t.
func IDPrefix(t entities.EntityType) string {
	switch t {
	case entities.TypeUser:
		return PrefixUser
	case entities.TypeTeam:
		return PrefixTeam
	case entities.TypeGroup:
		return PrefixGroup
	case entities.TypeMeeting:
		return PrefixMeeting
	case entities.TypeMessage:
		return PrefixMessage
	}
	return ""
}

// Timestamp formats t for use inside a sort key.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ActivePrefix selects every record of the target type ordered by activity, e.g. "team-active-".
func ActivePrefix(target entities.EntityType) string {
	return IDPrefix(target) + DimensionActive
}

// ActiveSK orders a record of the target type by last activity.
func ActiveSK(target entities.EntityType, at time.Time) string {
	return ActivePrefix(target) + Timestamp(at)
}

// DuePrefix selects meetings ordered by due time.
func DuePrefix() string {
	return PrefixMeeting + DimensionDue
}

// DueSK orders a meeting by due time.
func DueSK(at time.Time) string {
	return DuePrefix() + Timestamp(at)
}

// SentPrefix selects messages ordered by sent time.
func SentPrefix() string {
	return PrefixMessage + DimensionSent
}

// SentSK orders a message by sent time.
func SentSK(at time.Time) string {
	return SentPrefix() + Timestamp(at)
}

// Lookup keys for callers holding only identifiers.

func EntityKey(id string) Key                         { return Key{PK: id, SK: id} }
func MessageKey(id string) Key                        { return Key{PK: id, SK: MessageSK} }
func MembershipKey(userID, conversationID string) Key { return Key{PK: userID, SK: conversationID} }

// Email normalizes an address for use as a partition key
func Email(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PrimaryKey derives the (pk, sk) pair of an entity.
func PrimaryKey(e entities.Entity) Key {
	switch v := e.(type) {
	case entities.User:
		return EntityKey(v.ID)
	case *entities.User:
		return PrimaryKey(*v)
	case entities.Team:
		return EntityKey(v.ID)
	case *entities.Team:
		return PrimaryKey(*v)
	case entities.Group:
		return EntityKey(v.ID)
	case *entities.Group:
		return PrimaryKey(*v)
	case entities.Meeting:
		return EntityKey(v.ID)
	case *entities.Meeting:
		return PrimaryKey(*v)
	case entities.Membership:
		return MembershipKey(v.UserID, v.ConversationID)
	case *entities.Membership:
		return PrimaryKey(*v)
	case entities.Message:
		return MessageKey(v.ID)
	case *entities.Message:
		return PrimaryKey(*v)
	}
	return Key{}
}

// IndexKey derives the key pair of e on a secondary index. ok is false when
// the entity does not project onto idx.
func IndexKey(e entities.Entity, idx Index) (key Key, ok bool) {
	if idx == Primary {
		key = PrimaryKey(e)
		return key, key.complete()
	}

	switch v := e.(type) {
	case entities.User:
		key = userIndexKey(v, idx)
	case *entities.User:
		key = userIndexKey(*v, idx)
	case entities.Team:
		key = teamIndexKey(v, idx)
	case *entities.Team:
		key = teamIndexKey(*v, idx)
	case entities.Group:
		key = groupIndexKey(v, idx)
	case *entities.Group:
		key = groupIndexKey(*v, idx)
	case entities.Meeting:
		key = meetingIndexKey(v, idx)
	case *entities.Meeting:
		key = meetingIndexKey(*v, idx)
	case entities.Membership:
		key = membershipIndexKey(v, idx)
	case *entities.Membership:
		key = membershipIndexKey(*v, idx)
	case entities.Message:
		key = messageIndexKey(v, idx)
	case *entities.Message:
		key = messageIndexKey(*v, idx)
	}
	return key, key.complete()
}

// Attributes returns every key attribute of e, ready to be merged into the stored item.
func Attributes(e entities.Entity) map[string]string {
	primary := PrimaryKey(e)
	attrs := map[string]string{
		AttrPK:         primary.PK,
		AttrSK:         primary.SK,
		AttrEntityType: string(e.EntityType()),
	}
	for _, idx := range SecondaryIndexes {
		if key, ok := IndexKey(e, idx); ok {
			attrs[idx.PartitionAttr()] = key.PK
			attrs[idx.SortAttr()] = key.SK
		}
	}
	return attrs
}

func userIndexKey(u entities.User, idx Index) Key {
	switch idx {
	case GSI1:
		return Key{PK: u.OrganizationID, SK: ActiveSK(entities.TypeUser, u.LastActiveAt)}
	case GSI2:
		// user ids already carry the user- prefix
		return Key{PK: Email(u.Email), SK: u.ID}
	}
	return Key{}
}

func teamIndexKey(t entities.Team, idx Index) Key {
	if idx == GSI1 {
		return Key{PK: t.OrganizationID, SK: ActiveSK(entities.TypeTeam, t.LastActiveAt)}
	}
	return Key{}
}

func groupIndexKey(g entities.Group, idx Index) Key {
	switch idx {
	case GSI1:
		return Key{PK: g.OrganizationID, SK: ActiveSK(entities.TypeGroup, g.LastActiveAt)}
	case GSI2:
		return Key{PK: g.TeamID, SK: ActiveSK(entities.TypeGroup, g.LastActiveAt)}
	}
	return Key{}
}

func meetingIndexKey(m entities.Meeting, idx Index) Key {
	switch idx {
	case GSI1:
		return Key{PK: m.OrganizationID, SK: DueSK(m.DueAt)}
	case GSI2:
		return Key{PK: m.TeamID, SK: DueSK(m.DueAt)}
	}
	return Key{}
}

func membershipIndexKey(m entities.Membership, idx Index) Key {
	switch idx {
	case GSI1:
		if m.ConversationType == entities.TypeMeeting {
			return Key{PK: m.UserID, SK: DueSK(m.DueAt)}
		}
		return Key{PK: m.UserID, SK: ActiveSK(m.ConversationType, m.LastActiveAt)}
	case GSI2:
		return Key{PK: m.ConversationID, SK: m.UserID}
	}
	return Key{}
}

func messageIndexKey(m entities.Message, idx Index) Key {
	switch idx {
	case GSI1:
		return Key{PK: m.ConversationID, SK: SentSK(m.SentAt)}
	case GSI2:
		return Key{PK: m.SenderID, SK: SentSK(m.SentAt)}
	}
	return Key{}
}
