package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"teamchat/application/ports"
	pkgerrors "teamchat/pkg/errors"
)

func buildSortCondition(c *ports.SortCondition, attr string) (expression.KeyConditionBuilder, error) {
	key := expression.Key(attr)
	want := 1
	if c.Operator == ports.SortBetween {
		want = 2
	}
	if len(c.Values) != want {
		return expression.KeyConditionBuilder{}, fmt.Errorf("sort condition needs %d values, got %d", want, len(c.Values))
	}

	switch c.Operator {
	case ports.SortEqual:
		return key.Equal(expression.Value(c.Values[0])), nil
	case ports.SortBeginsWith:
		return key.BeginsWith(c.Values[0]), nil
	case ports.SortBetween:
		return key.Between(expression.Value(c.Values[0]), expression.Value(c.Values[1])), nil
	case ports.SortLessThan:
		return key.LessThan(expression.Value(c.Values[0])), nil
	case ports.SortLessThanEqual:
		return key.LessThanEqual(expression.Value(c.Values[0])), nil
	case ports.SortGreaterThan:
		return key.GreaterThan(expression.Value(c.Values[0])), nil
	case ports.SortGreaterThanEqual:
		return key.GreaterThanEqual(expression.Value(c.Values[0])), nil
	}
	return expression.KeyConditionBuilder{}, fmt.Errorf("unknown sort operator %d", c.Operator)
}

// Query runs a key-condition query. A malformed cursor fails with MALFORMED_CURSOR.
func (s *RecordStore[T]) Query(ctx context.Context, req ports.QueryRequest) (ports.Page[T], error) {
	if req.Partition == "" {
		return ports.Page[T]{}, pkgerrors.NewValidationError("query partition is required")
	}

	keyCond := expression.Key(req.Index.PartitionAttr()).Equal(expression.Value(req.Partition))
	if req.Sort != nil {
		sortCond, err := buildSortCondition(req.Sort, req.Index.SortAttr())
		if err != nil {
			return ports.Page[T]{}, pkgerrors.NewValidationError(err.Error())
		}
		keyCond = keyCond.And(sortCond)
	}

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return ports.Page[T]{}, fmt.Errorf("build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		IndexName:                 s.config.indexName(req.Index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(s.config.pageSize(req.Limit)),
		ScanIndexForward:          aws.Bool(req.ScanForward),
	}

	if req.Cursor != "" {
		startKey, err := DecodeCursor(req.Cursor)
		if err != nil {
			return ports.Page[T]{}, err
		}
		input.ExclusiveStartKey = startKey
	}

	output, err := s.client.Query(ctx, input)
	if err != nil {
		s.logFailure("Query", input, err)
		return ports.Page[T]{}, err
	}

	items := make([]T, 0, len(output.Items))
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &items); err != nil {
		return ports.Page[T]{}, fmt.Errorf("unmarshal query page: %w", err)
	}

	next, err := EncodeCursor(output.LastEvaluatedKey)
	if err != nil {
		return ports.Page[T]{}, err
	}

	s.logger.Debug("Query completed",
		zap.String("index", req.Index.String()),
		zap.String("partition", req.Partition),
		zap.Int("count", len(items)),
		zap.Bool("hasMore", next != ""),
	)
	return ports.Page[T]{Items: items, NextCursor: next}, nil
}
