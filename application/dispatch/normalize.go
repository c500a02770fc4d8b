package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// ChangeKindAttribute is the SNS message attribute carrying the change kind of a bus notification.
const ChangeKindAttribute = "changeKind"

// NormalizeStreamRecord converts a DynamoDB stream record. The origin is the
// table name taken from the stream ARN.
func NormalizeStreamRecord(raw events.DynamoDBEventRecord) (rec ChangeRecord, err error) {
	// attribute accessors of aws-lambda-go panic on type mismatches
	defer func() {
		if p := recover(); p != nil {
			rec, err = ChangeRecord{}, fmt.Errorf("convert stream record %s: %v", raw.EventID, p)
		}
	}()

	origin, err := tableFromStreamARN(raw.EventSourceArn)
	if err != nil {
		return ChangeRecord{}, err
	}

	kind, err := streamKind(raw.EventName)
	if err != nil {
		return ChangeRecord{}, err
	}

	before, err := convertImage(raw.Change.OldImage)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("old image: %w", err)
	}
	after, err := convertImage(raw.Change.NewImage)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("new image: %w", err)
	}

	switch {
	case kind == Remove && len(before) == 0:
		return ChangeRecord{}, fmt.Errorf("REMOVE record %s has no old image", raw.EventID)
	case kind != Remove && len(after) == 0:
		return ChangeRecord{}, fmt.Errorf("%s record %s has no new image", raw.EventName, raw.EventID)
	}

	return ChangeRecord{
		Origin:  origin,
		Kind:    kind,
		Before:  before,
		After:   after,
		EventID: raw.EventID,
		At:      raw.Change.ApproximateCreationDateTime.UTC(),
	}, nil
}

// NormalizeSNSRecord converts a bus notification. The message must be a JSON
// object; it becomes the After image, or the Before image for removals. The
// kind comes from the changeKind message attribute and defaults to Insert.
func NormalizeSNSRecord(raw events.SNSEventRecord) (ChangeRecord, error) {
	origin, err := topicFromARN(raw.SNS.TopicArn)
	if err != nil {
		return ChangeRecord{}, err
	}

	kind := Insert
	if value, ok := snsStringAttribute(raw.SNS.MessageAttributes, ChangeKindAttribute); ok {
		if kind, err = busKind(value); err != nil {
			return ChangeRecord{}, err
		}
	}

	payload, err := decodePayload(raw.SNS.Message)
	if err != nil {
		return ChangeRecord{}, fmt.Errorf("message %s: %w", raw.SNS.MessageID, err)
	}

	rec := ChangeRecord{
		Origin:  origin,
		Kind:    kind,
		Before:  Image{},
		After:   Image{},
		EventID: raw.SNS.MessageID,
		At:      raw.SNS.Timestamp.UTC(),
	}
	if kind == Remove {
		rec.Before = payload
	} else {
		rec.After = payload
	}
	return rec, nil
}

// arn:aws:dynamodb:region:account:table/NAME/stream/LABEL
func tableFromStreamARN(arn string) (string, error) {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[2] != "dynamodb" {
		return "", fmt.Errorf("invalid stream ARN %q", arn)
	}
	resource := strings.Split(parts[5], "/")
	if len(resource) < 2 || resource[0] != "table" || resource[1] == "" {
		return "", fmt.Errorf("invalid stream ARN %q", arn)
	}
	return resource[1], nil
}

// arn:aws:sns:region:account:NAME
func topicFromARN(arn string) (string, error) {
	parts := strings.Split(arn, ":")
	if len(parts) != 6 || parts[2] != "sns" || parts[5] == "" {
		return "", fmt.Errorf("invalid topic ARN %q", arn)
	}
	return parts[5], nil
}

func streamKind(eventName string) (ChangeKind, error) {
	switch eventName {
	case "INSERT":
		return Insert, nil
	case "MODIFY":
		return Modify, nil
	case "REMOVE":
		return Remove, nil
	}
	return "", fmt.Errorf("unknown stream event name %q", eventName)
}

func busKind(value string) (ChangeKind, error) {
	switch strings.ToUpper(value) {
	case "INSERT":
		return Insert, nil
	case "MODIFY":
		return Modify, nil
	case "REMOVE":
		return Remove, nil
	}
	return "", fmt.Errorf("unknown change kind %q", value)
}

// SNS delivers attributes as {"Type": "String", "Value": "..."}.
func snsStringAttribute(attrs map[string]interface{}, name string) (string, bool) {
	raw, ok := attrs[name]
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case map[string]interface{}:
		s, ok := v["Value"].(string)
		return s, ok
	}
	return "", false
}

func decodePayload(message string) (Image, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(message)))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("payload is null")
	}
	return Image(payload), nil
}

func convertImage(image map[string]events.DynamoDBAttributeValue) (Image, error) {
	out := make(Image, len(image))
	for name, av := range image {
		value, err := convertAttribute(av)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		out[name] = value
	}
	return out, nil
}

// convertAttribute normalizes a stream attribute: sets become []string, maps
// and lists are converted recursively.
func convertAttribute(av events.DynamoDBAttributeValue) (any, error) {
	switch av.DataType() {
	case events.DataTypeString:
		return av.String(), nil
	case events.DataTypeNumber:
		return json.Number(av.Number()), nil
	case events.DataTypeBoolean:
		return av.Boolean(), nil
	case events.DataTypeBinary:
		return av.Binary(), nil
	case events.DataTypeNull:
		return nil, nil
	case events.DataTypeStringSet:
		return append([]string{}, av.StringSet()...), nil
	case events.DataTypeNumberSet:
		return append([]string{}, av.NumberSet()...), nil
	case events.DataTypeBinarySet:
		return av.BinarySet(), nil
	case events.DataTypeMap:
		nested, err := convertImage(av.Map())
		if err != nil {
			return nil, err
		}
		return map[string]any(nested), nil
	case events.DataTypeList:
		items := av.List()
		out := make([]any, len(items))
		for i, item := range items {
			value, err := convertAttribute(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = value
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported attribute type %v", av.DataType())
}
