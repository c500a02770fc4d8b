// Package dispatch turns raw change notifications into ChangeRecords and fans
// each record out to every registered Handler that supports it.
//
// Two raw shapes are understood: DynamoDB stream records (origin is the table
// name) and SNS notifications (origin is the topic name). A raw event that
// cannot be normalized is logged and replaced by UnknownRecord(), a record with an
// empty origin, kind Unknown and empty images, so every event in a batch is
// still offered to every handler.
//
// All supporting handlers of all records in a batch run concurrently and are
// awaited together. There is no ordering between handlers or between records,
// no deduplication and no per-key locking. Delivery is at least once: the same
// record may be processed again after a redelivery, concurrently with other
// records of its batch. Handlers must be idempotent.
//
// Handler failures are aggregated per record and logged; Dispatch never
// returns an error to its caller.
package dispatch
