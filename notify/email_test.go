package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSendGridSenderFromEnv_RequiresConfig(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "")
	t.Setenv("NOTIFY_FROM_EMAIL", "")
	t.Setenv("NOTIFY_TO_EMAIL", "")

	_, err := NewSendGridSenderFromEnv()
	assert.Error(t, err)

	t.Setenv("SENDGRID_API_KEY", "sg-key")
	_, err = NewSendGridSenderFromEnv()
	assert.Error(t, err, "from/to addresses are still missing")
}

func TestNewSendGridSenderFromEnv(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "sg-key")
	t.Setenv("NOTIFY_FROM_EMAIL", "priya@example.com")
	t.Setenv("NOTIFY_TO_EMAIL", "owner@example.com")
	t.Setenv("NOTIFY_FROM_NAME", "Priya")

	sender, err := NewSendGridSenderFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", sender.from.Address)
	assert.Equal(t, "Priya", sender.from.Name)
	assert.Equal(t, "owner@example.com", sender.to.Address)
}
