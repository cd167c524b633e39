package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	e := New(ConversationsPurged, map[string]interface{}{"user_email": "a@example.com"})

	raw, err := Encode(e)
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, ConversationsPurged, got.EventType())
	assert.Equal(t, "a@example.com", got.Payload()["user_email"])
	assert.True(t, e.Timestamp().Equal(got.Timestamp()))
}

func TestDecodeRejectsUntypedEvents(t *testing.T) {
	_, err := Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
