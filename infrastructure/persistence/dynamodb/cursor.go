package dynamodb

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"teamchat/domain/keys"
	pkgerrors "teamchat/pkg/errors"
)

// EncodeCursor turns a LastEvaluatedKey into an opaque pagination token.
// Every key attribute in the table is a string, anything else is rejected.
func EncodeCursor(lastKey map[string]types.AttributeValue) (string, error) {
	if len(lastKey) == 0 {
		return "", nil
	}

	plain := make(map[string]string, len(lastKey))
	for name, av := range lastKey {
		s, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("cursor attribute %s has type %T", name, av)
		}
		plain[name] = s.Value
	}

	data, err := json.Marshal(plain)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// DecodeCursor reverses EncodeCursor. Anything that did not come out of
// EncodeCursor fails with a MALFORMED_CURSOR error.
func DecodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	data, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, pkgerrors.NewMalformedCursorError("invalid encoding").WithCause(err)
	}

	var plain map[string]string
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, pkgerrors.NewMalformedCursorError("invalid payload").WithCause(err)
	}
	if len(plain) == 0 {
		return nil, pkgerrors.NewMalformedCursorError("empty key")
	}
	// index cursors carry the table key too
	if plain[keys.AttrPK] == "" || plain[keys.AttrSK] == "" {
		return nil, pkgerrors.NewMalformedCursorError("missing primary key")
	}

	key := make(map[string]types.AttributeValue, len(plain))
	for name, value := range plain {
		key[name] = &types.AttributeValueMemberS{Value: value}
	}
	return key, nil
}
