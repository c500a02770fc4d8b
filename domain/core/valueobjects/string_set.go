package valueobjects

import (
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// StringSet is an unordered collection of unique strings stored natively as a
// DynamoDB string set. Callers only ever see the plain slice.
//
// DynamoDB cannot hold an empty set, so an empty StringSet marshals to NULL.
// Stored items never keep that NULL: ADD and DELETE reject a NULL operand,
// and the first ADD creates the set.
type StringSet []string

// NewStringSet builds a set from members, dropping duplicates and empty strings.
func NewStringSet(members ...string) StringSet {
	return StringSet(nil).AddMembers(members...)
}

// Contains reports whether member is in the set
func (s StringSet) Contains(member string) bool {
	for _, m := range s {
		if m == member {
			return true
		}
	}
	return false
}

// AddMembers returns the union of s and toAdd. Adding an existing member is a no-op.
func (s StringSet) AddMembers(toAdd ...string) StringSet {
	seen := make(map[string]struct{}, len(s)+len(toAdd))
	out := make(StringSet, 0, len(s)+len(toAdd))
	for _, m := range append(append([]string{}, s...), toAdd...) {
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// RemoveMembers returns s without toRemove. Removing an absent member is a no-op.
func (s StringSet) RemoveMembers(toRemove ...string) StringSet {
	drop := make(map[string]struct{}, len(toRemove))
	for _, m := range toRemove {
		drop[m] = struct{}{}
	}
	out := make(StringSet, 0, len(s))
	for _, m := range s {
		if _, ok := drop[m]; !ok {
			out = append(out, m)
		}
	}
	return out
}

// Equal compares two sets ignoring order
func (s StringSet) Equal(other StringSet) bool {
	a, b := s.Sorted(), other.Sorted()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Sorted returns a sorted copy
func (s StringSet) Sorted() []string {
	out := append([]string{}, NewStringSet(s...)...)
	sort.Strings(out)
	return out
}

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler
func (s StringSet) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	members := NewStringSet(s...)
	if len(members) == 0 {
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
	return &types.AttributeValueMemberSS{Value: []string(members)}, nil
}

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler. Lists of
// strings are accepted as well, since stream images and older items carry them.
func (s *StringSet) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberSS:
		*s = NewStringSet(v.Value...)
	case *types.AttributeValueMemberL:
		members := make([]string, 0, len(v.Value))
		for _, item := range v.Value {
			str, ok := item.(*types.AttributeValueMemberS)
			if !ok {
				return fmt.Errorf("string set list element has type %T", item)
			}
			members = append(members, str.Value)
		}
		*s = NewStringSet(members...)
	case *types.AttributeValueMemberNULL:
		*s = nil
	default:
		return fmt.Errorf("cannot unmarshal %T into StringSet", av)
	}
	return nil
}
