package dynamodb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"teamchat/domain/keys"
)

// DynamoDBAPI is the part of *dynamodb.Client the record store calls.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
}

var _ DynamoDBAPI = (*dynamodb.Client)(nil)

// DefaultPageSize is used when a query does not set a limit.
const DefaultPageSize int32 = 25

// TableConfig names the physical table and its secondary indexes.
type TableConfig struct {
	TableName       string
	IndexNames      map[keys.Index]string
	DefaultPageSize int32
}

// NewTableConfig returns a config using the conventional index names gsi1..gsi3.
func NewTableConfig(tableName string) TableConfig {
	return TableConfig{
		TableName: tableName,
		IndexNames: map[keys.Index]string{
			keys.GSI1: keys.GSI1.String(),
			keys.GSI2: keys.GSI2.String(),
			keys.GSI3: keys.GSI3.String(),
		},
		DefaultPageSize: DefaultPageSize,
	}
}

func (c TableConfig) indexName(idx keys.Index) *string {
	if idx == keys.Primary {
		return nil
	}
	if name, ok := c.IndexNames[idx]; ok && name != "" {
		return aws.String(name)
	}
	return aws.String(idx.String())
}

func (c TableConfig) pageSize(limit int32) int32 {
	if limit > 0 {
		return limit
	}
	if c.DefaultPageSize > 0 {
		return c.DefaultPageSize
	}
	return DefaultPageSize
}

func keyAttributes(key keys.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		keys.AttrPK: &types.AttributeValueMemberS{Value: key.PK},
		keys.AttrSK: &types.AttributeValueMemberS{Value: key.SK},
	}
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
