package entities

// EntityType is the closed tag stored in every record's entityType attribute.
type EntityType string

const (
	TypeUser       EntityType = "User"
	TypeTeam       EntityType = "Team"
	TypeGroup      EntityType = "Group"
	TypeMeeting    EntityType = "Meeting"
	TypeMembership EntityType = "Membership"
	TypeMessage    EntityType = "Message"
)

// Valid reports whether t is one of the known entity tags.
func (t EntityType) Valid() bool {
	switch t {
	case TypeUser, TypeTeam, TypeGroup, TypeMeeting, TypeMembership, TypeMessage:
		return true
	}
	return false
}

// IsConversation reports whether records of this type can hold members and messages.
func (t EntityType) IsConversation() bool {
	return t == TypeTeam || t == TypeGroup || t == TypeMeeting
}

// Entity is implemented by every type stored in the shared table.
type Entity interface {
	EntityType() EntityType
}
