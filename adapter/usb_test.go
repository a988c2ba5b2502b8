package adapter

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-mitake/printer-agent/ticket"
)

func TestNewUSBInitialState(t *testing.T) {
	u := NewUSB(0x04b8, 0x0e28, logrus.New())

	assert.False(t, u.IsOpen())
	// Close before open is a no-op.
	assert.NoError(t, u.Close())

	b := ticket.NewBuilder()
	b.Text("x")
	assert.Error(t, u.Print(b.Ticket()))
}

func TestUSBOpenClose(t *testing.T) {
	u := NewUSB(0x04b8, 0x0e28, logrus.New())

	if err := u.Open(); err != nil {
		t.Skip("No USB printer found, skipping test")
	}
	defer u.Close()

	assert.True(t, u.IsOpen())

	// Open while connected is a no-op success.
	require.NoError(t, u.Open())

	require.NoError(t, u.Close())
	assert.False(t, u.IsOpen())
	require.NoError(t, u.Close())
}
