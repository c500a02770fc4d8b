package dynamodb

import (
	"encoding/base64"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "teamchat/pkg/errors"
)

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func TestCursor_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  map[string]types.AttributeValue
	}{
		{"table key", map[string]types.AttributeValue{"pk": s("team-1"), "sk": s("team-1")}},
		{"index key", map[string]types.AttributeValue{
			"pk": s("team-1"), "sk": s("team-1"),
			"gsi1pk": s("organization-1"), "gsi1sk": s("team-active-2024-03-01T09:30:00.000000000Z"),
		}},
		{"characters needing escape", map[string]types.AttributeValue{"pk": s("user-ü/+="), "sk": s(`"quoted"`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor, err := EncodeCursor(tt.key)
			require.NoError(t, err)
			require.NotEmpty(t, cursor)

			decoded, err := DecodeCursor(cursor)
			require.NoError(t, err)
			assert.Equal(t, tt.key, decoded)
		})
	}
}

func TestCursor_EmptyKeyMeansNoCursor(t *testing.T) {
	cursor, err := EncodeCursor(nil)
	require.NoError(t, err)
	assert.Empty(t, cursor)
}

func TestCursor_NonStringAttributeIsRejected(t *testing.T) {
	_, err := EncodeCursor(map[string]types.AttributeValue{"pk": &types.AttributeValueMemberN{Value: "1"}})
	assert.Error(t, err)
}

func TestDecodeCursor_Malformed(t *testing.T) {
	valid, err := EncodeCursor(map[string]types.AttributeValue{"pk": s("team-1"), "sk": s("team-1")})
	require.NoError(t, err)

	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%%%not-a-cursor%%%"},
		{"truncated", valid[:len(valid)-4]},
		{"not json", base64.URLEncoding.EncodeToString([]byte("hello"))},
		{"json array", base64.URLEncoding.EncodeToString([]byte(`["pk"]`))},
		{"empty object", base64.URLEncoding.EncodeToString([]byte(`{}`))},
		{"missing sort key", base64.URLEncoding.EncodeToString([]byte(`{"pk":"team-1"}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.cursor)
			require.Error(t, err)
			assert.ErrorIs(t, err, pkgerrors.ErrMalformedCursor)
			assert.False(t, pkgerrors.IsNotFound(err))
		})
	}
}
