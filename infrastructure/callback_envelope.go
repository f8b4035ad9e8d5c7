package infrastructure

import (
	"fmt"
	"time"

	"lotterypay/events"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// encodeCallback serializes a webhook as a protobuf Struct envelope
func encodeCallback(event events.CallbackReceivedEvent) ([]byte, error) {
	ts := timestamppb.New(event.ReceivedAt)

	envelope, err := structpb.NewStruct(map[string]any{
		"event_id":  event.EventID,
		"reference": event.Reference,
		"received_at": map[string]any{
			"seconds": float64(ts.GetSeconds()),
			"nanos":   float64(ts.GetNanos()),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build callback envelope: %w", err)
	}

	data, err := proto.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal callback envelope: %w", err)
	}
	return data, nil
}

// decodeCallback parses an envelope written by encodeCallback
func decodeCallback(data []byte) (events.CallbackReceivedEvent, error) {
	var envelope structpb.Struct
	if err := proto.Unmarshal(data, &envelope); err != nil {
		return events.CallbackReceivedEvent{}, fmt.Errorf("failed to unmarshal callback envelope: %w", err)
	}

	fields := envelope.GetFields()
	reference := fields["reference"].GetStringValue()
	if reference == "" {
		return events.CallbackReceivedEvent{}, fmt.Errorf("callback envelope has no reference")
	}

	event := events.CallbackReceivedEvent{
		EventID:   fields["event_id"].GetStringValue(),
		Reference: reference,
	}

	if received := fields["received_at"].GetStructValue(); received != nil {
		ts := &timestamppb.Timestamp{
			Seconds: int64(received.GetFields()["seconds"].GetNumberValue()),
			Nanos:   int32(received.GetFields()["nanos"].GetNumberValue()),
		}
		if err := ts.CheckValid(); err != nil {
			return events.CallbackReceivedEvent{}, fmt.Errorf("invalid callback timestamp: %w", err)
		}
		event.ReceivedAt = ts.AsTime()
	} else {
		event.ReceivedAt = time.Now().UTC()
	}

	return event, nil
}
