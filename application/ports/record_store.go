package ports

import (
	"context"

	"teamchat/domain/core/entities"
	"teamchat/domain/keys"
)

// RecordStore is the single-table access contract EntityServices are built on.
//
// Put fails with ALREADY_EXISTS when the key is taken; Get, Update and the set
// operations fail with NOT_FOUND for a missing record; Query fails with
// MALFORMED_CURSOR for a cursor it did not produce. Other store errors are
// returned unchanged.
type RecordStore[T entities.Entity] interface {
	Put(ctx context.Context, entity T) error
	Get(ctx context.Context, key keys.Key) (T, error)
	BatchGet(ctx context.Context, batch []keys.Key) ([]T, error)
	Update(ctx context.Context, key keys.Key, updates map[string]any) (T, error)
	AddToSet(ctx context.Context, key keys.Key, path string, members ...string) error
	RemoveFromSet(ctx context.Context, key keys.Key, path string, members ...string) error
	Query(ctx context.Context, req QueryRequest) (Page[T], error)
	Delete(ctx context.Context, key keys.Key) error
}

// SortOperator compares the sort key of a query
type SortOperator int

const (
	SortEqual SortOperator = iota + 1
	SortBeginsWith
	SortBetween
	SortLessThan
	SortLessThanEqual
	SortGreaterThan
	SortGreaterThanEqual
)

// SortCondition restricts the sort key of a query. Between uses both values.
type SortCondition struct {
	Operator SortOperator
	Values   []string
}

func SortEquals(v string) *SortCondition {
	return &SortCondition{Operator: SortEqual, Values: []string{v}}
}

func SortPrefix(prefix string) *SortCondition {
	return &SortCondition{Operator: SortBeginsWith, Values: []string{prefix}}
}

func SortRange(lo, hi string) *SortCondition {
	return &SortCondition{Operator: SortBetween, Values: []string{lo, hi}}
}

func SortBefore(v string) *SortCondition {
	return &SortCondition{Operator: SortLessThan, Values: []string{v}}
}

func SortAtOrBefore(v string) *SortCondition {
	return &SortCondition{Operator: SortLessThanEqual, Values: []string{v}}
}

func SortAfter(v string) *SortCondition {
	return &SortCondition{Operator: SortGreaterThan, Values: []string{v}}
}

func SortAtOrAfter(v string) *SortCondition {
	return &SortCondition{Operator: SortGreaterThanEqual, Values: []string{v}}
}

// QueryRequest selects a range of one partition on the table or an index.
type QueryRequest struct {
	Index     keys.Index
	Partition string
	Sort      *SortCondition
	// Cursor resumes after the last item of a previous page.
	Cursor string
	// Limit defaults to the store's page size when zero.
	Limit int32
	// ScanForward reads in ascending sort order. The zero value returns newest first.
	ScanForward bool
}

// Page is one page of query results. NextCursor is empty when no more data exists.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// HasMore reports whether another page may exist
func (p Page[T]) HasMore() bool {
	return p.NextCursor != ""
}
