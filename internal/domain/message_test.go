package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderWireFormat(t *testing.T) {
	userID := uuid.New()

	out, err := json.Marshal(UserSender(userID))
	require.NoError(t, err)
	assert.Equal(t, `"`+userID.String()+`"`, string(out))

	out, err = json.Marshal(Assistant)
	require.NoError(t, err)
	assert.Equal(t, `"ai-assistant"`, string(out))

	var s Sender
	require.NoError(t, json.Unmarshal([]byte(`"ai-assistant"`), &s))
	assert.True(t, s.IsAssistant())

	require.NoError(t, json.Unmarshal(out, &s))
	assert.True(t, s.IsAssistant())

	assert.Error(t, json.Unmarshal([]byte(`"not-a-uuid"`), &s))
}

func TestUnreadCount(t *testing.T) {
	userID := uuid.New()
	session := ChatSession{
		Messages: []Message{
			{Sender: UserSender(userID), Read: false},
			{Sender: Assistant, Read: false},
			{Sender: UserSender(userID), Read: true},
			{Sender: UserSender(userID), Read: false},
		},
	}
	// Assistant messages never count as unread.
	assert.Equal(t, 2, session.UnreadCount())
}
