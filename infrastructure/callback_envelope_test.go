package infrastructure

import (
	"testing"
	"time"

	"lotterypay/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestCallbackEnvelope_PreservesFields(t *testing.T) {
	t.Parallel()

	receivedAt := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	in := events.CallbackReceivedEvent{
		EventID:    "9b2f1c1e-7d0a-4c44-8d8e-1f2a3b4c5d6e",
		Reference:  "tr_WDqYK6vllg",
		ReceivedAt: receivedAt,
	}

	data, err := encodeCallback(in)
	require.NoError(t, err)

	out, err := decodeCallback(data)
	require.NoError(t, err)
	assert.Equal(t, in.EventID, out.EventID)
	assert.Equal(t, in.Reference, out.Reference)
	assert.True(t, receivedAt.Equal(out.ReceivedAt))
}

func TestCallbackEnvelope_Rejects(t *testing.T) {
	t.Parallel()

	noReference, err := structpb.NewStruct(map[string]any{"event_id": "e1"})
	require.NoError(t, err)
	noReferenceData, err := proto.Marshal(noReference)
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{name: "garbage", data: []byte{0xff, 0xff, 0xff}, wantErr: "failed to unmarshal"},
		{name: "missing reference", data: noReferenceData, wantErr: "no reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := decodeCallback(tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
