package dynamodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"teamchat/application/ports"
	"teamchat/domain/core/entities"
	"teamchat/domain/core/valueobjects"
	"teamchat/domain/keys"
	pkgerrors "teamchat/pkg/errors"
)

const (
	batchGetChunkSize   = 100
	maxBatchGetAttempts = 5
	batchGetBaseBackoff = 50 * time.Millisecond
)

// RecordStore reads and writes one entity type in the shared table. T must be
// a value type such as entities.Team.
// It holds no request state and is safe for concurrent use.
//
// Store errors other than a failed existence condition are logged with the
// operation and its full input, then returned unchanged.
type RecordStore[T entities.Entity] struct {
	client DynamoDBAPI
	config TableConfig
	logger *zap.Logger
}

var _ ports.RecordStore[entities.Team] = (*RecordStore[entities.Team])(nil)

// NewRecordStore creates a RecordStore bound to the configured table.
func NewRecordStore[T entities.Entity](client DynamoDBAPI, config TableConfig, logger *zap.Logger) *RecordStore[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordStore[T]{
		client: client,
		config: config,
		logger: logger,
	}
}

// Put creates the record. It fails with ALREADY_EXISTS when (pk, sk) is taken.
func (s *RecordStore[T]) Put(ctx context.Context, entity T) error {
	primary := keys.PrimaryKey(entity)
	if primary.PK == "" || primary.SK == "" {
		return pkgerrors.NewValidationError(fmt.Sprintf("%s has an incomplete primary key", entity.EntityType()))
	}

	item, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", entity.EntityType(), err)
	}
	omitNulls(item)
	for name, value := range keys.Attributes(entity) {
		item[name] = &types.AttributeValueMemberS{Value: value}
	}

	cond := expression.AttributeNotExists(expression.Name(keys.AttrPK)).
		And(expression.AttributeNotExists(expression.Name(keys.AttrSK)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("build put condition: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:                aws.String(s.config.TableName),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewAlreadyExistsError(describeKey(entity.EntityType(), primary)).WithCause(err)
		}
		s.logFailure("Put", input, err)
		return err
	}

	s.logger.Debug("Record created",
		zap.String("entityType", string(entity.EntityType())),
		zap.String("pk", primary.PK),
		zap.String("sk", primary.SK),
	)
	return nil
}

// Get loads one record; NOT_FOUND when absent.
func (s *RecordStore[T]) Get(ctx context.Context, key keys.Key) (T, error) {
	var zero T

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       keyAttributes(key),
	}

	result, err := s.client.GetItem(ctx, input)
	if err != nil {
		s.logFailure("Get", input, err)
		return zero, err
	}
	if len(result.Item) == 0 {
		return zero, pkgerrors.NewNotFoundError(describeKey(zero.EntityType(), key))
	}

	var entity T
	if err := attributevalue.UnmarshalMap(result.Item, &entity); err != nil {
		return zero, fmt.Errorf("unmarshal %s: %w", zero.EntityType(), err)
	}
	return entity, nil
}

// BatchGet fetches keys in parallel chunks. Missing keys are omitted; the
// result follows the order of keys.
func (s *RecordStore[T]) BatchGet(ctx context.Context, batch []keys.Key) ([]T, error) {
	unique := dedupeKeys(batch)
	if len(unique) == 0 {
		return []T{}, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		found    = make(map[keys.Key]T, len(unique))
		firstErr error
	)

	for start := 0; start < len(unique); start += batchGetChunkSize {
		end := start + batchGetChunkSize
		if end > len(unique) {
			end = len(unique)
		}

		wg.Add(1)
		go func(chunk []keys.Key) {
			defer wg.Done()

			items, err := s.batchGetChunk(ctx, chunk)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for k, v := range items {
				found[k] = v
			}
		}(unique[start:end])
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	out := make([]T, 0, len(found))
	for _, k := range unique {
		if entity, ok := found[k]; ok {
			out = append(out, entity)
		}
	}
	return out, nil
}

func (s *RecordStore[T]) batchGetChunk(ctx context.Context, chunk []keys.Key) (map[keys.Key]T, error) {
	request := make([]map[string]types.AttributeValue, len(chunk))
	for i, k := range chunk {
		request[i] = keyAttributes(k)
	}

	found := make(map[keys.Key]T, len(chunk))
	for attempt := 1; len(request) > 0; attempt++ {
		input := &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				s.config.TableName: {Keys: request},
			},
		}

		output, err := s.client.BatchGetItem(ctx, input)
		if err != nil {
			s.logFailure("BatchGet", input, err)
			return nil, err
		}

		for _, item := range output.Responses[s.config.TableName] {
			var entity T
			if err := attributevalue.UnmarshalMap(item, &entity); err != nil {
				return nil, fmt.Errorf("unmarshal %s: %w", entity.EntityType(), err)
			}
			found[keys.PrimaryKey(entity)] = entity
		}

		request = output.UnprocessedKeys[s.config.TableName].Keys
		if len(request) == 0 {
			break
		}
		if attempt >= maxBatchGetAttempts {
			s.logger.Warn("BatchGetItem left unprocessed keys",
				zap.String("table", s.config.TableName),
				zap.Int("unprocessed", len(request)),
				zap.Int("attempts", attempt),
			)
			return nil, pkgerrors.NewTimeoutError("BatchGet").
				WithDetails(map[string]interface{}{"unprocessed": len(request)})
		}

		s.logger.Debug("Retrying unprocessed keys",
			zap.Int("unprocessed", len(request)),
			zap.Int("attempt", attempt),
		)
		if err := sleepContext(ctx, batchGetBaseBackoff<<(attempt-1)); err != nil {
			return nil, err
		}
	}
	return found, nil
}

// Update writes the leaves of updates onto an existing record and returns the
// record as stored afterwards. NOT_FOUND when the record does not exist.
func (s *RecordStore[T]) Update(ctx context.Context, key keys.Key, updates map[string]any) (T, error) {
	var zero T

	update, err := buildSetExpression(updates)
	if err != nil {
		return zero, pkgerrors.NewValidationError(err.Error())
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.TableName),
		Key:                       keyAttributes(key),
		UpdateExpression:          aws.String(update.Expression),
		ConditionExpression:       update.requireExisting(),
		ExpressionAttributeNames:  update.Names,
		ExpressionAttributeValues: update.Values,
		ReturnValues:              types.ReturnValueAllNew,
	}

	output, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return zero, pkgerrors.NewNotFoundError(describeKey(zero.EntityType(), key)).WithCause(err)
		}
		s.logFailure("Update", input, err)
		return zero, err
	}

	var entity T
	if err := attributevalue.UnmarshalMap(output.Attributes, &entity); err != nil {
		return zero, fmt.Errorf("unmarshal %s: %w", zero.EntityType(), err)
	}
	return entity, nil
}

// AddToSet adds members to the string set at path (dot separated).
func (s *RecordStore[T]) AddToSet(ctx context.Context, key keys.Key, path string, members ...string) error {
	return s.applySetDelta(ctx, "AddToSet", "ADD", key, path, members)
}

// RemoveFromSet deletes members from the string set at path (dot separated).
func (s *RecordStore[T]) RemoveFromSet(ctx context.Context, key keys.Key, path string, members ...string) error {
	return s.applySetDelta(ctx, "RemoveFromSet", "DELETE", key, path, members)
}

func (s *RecordStore[T]) applySetDelta(ctx context.Context, operation, action string, key keys.Key, path string, members []string) error {
	var zero T

	update, err := buildSetDeltaExpression(action, path, valueobjects.NewStringSet(members...))
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.TableName),
		Key:                       keyAttributes(key),
		UpdateExpression:          aws.String(update.Expression),
		ConditionExpression:       update.requireExisting(),
		ExpressionAttributeNames:  update.Names,
		ExpressionAttributeValues: update.Values,
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewNotFoundError(describeKey(zero.EntityType(), key)).WithCause(err)
		}
		s.logFailure(operation, input, err)
		return err
	}
	return nil
}

// Delete removes the record. Deleting an absent record is not an error.
func (s *RecordStore[T]) Delete(ctx context.Context, key keys.Key) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       keyAttributes(key),
	}

	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		s.logFailure("Delete", input, err)
		return err
	}
	return nil
}

func (s *RecordStore[T]) logFailure(operation string, input any, err error) {
	var zero T
	s.logger.Error("DynamoDB operation failed",
		zap.String("operation", operation),
		zap.String("table", s.config.TableName),
		zap.String("entityType", string(zero.EntityType())),
		zap.String("errorCode", errorCode(err)),
		zap.Any("input", input),
		zap.Error(err),
	)
}

// omitNulls drops NULL attributes from item and from any nested map, so empty
// sets are absent rather than NULL when a set delta first reaches them.
func omitNulls(item map[string]types.AttributeValue) {
	for name, value := range item {
		switch v := value.(type) {
		case *types.AttributeValueMemberNULL:
			delete(item, name)
		case *types.AttributeValueMemberM:
			omitNulls(v.Value)
		}
	}
}

func describeKey(entityType entities.EntityType, key keys.Key) string {
	return fmt.Sprintf("%s record pk=%s sk=%s", entityType, key.PK, key.SK)
}

func dedupeKeys(in []keys.Key) []keys.Key {
	seen := make(map[keys.Key]struct{}, len(in))
	out := make([]keys.Key, 0, len(in))
	for _, k := range in {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
