package adapter

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-mitake/printer-agent/ticket"
)

func TestNetworkEmptyHostFailsFast(t *testing.T) {
	n := NewNetwork("", 0)

	err := n.Open()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.False(t, n.IsOpen())
}

func TestNetworkDefaultPort(t *testing.T) {
	n := NewNetwork("192.168.1.100", 0)
	assert.Equal(t, DefaultPort, n.port)
}

func TestNetworkPrintsToListener(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var buf bytes.Buffer
		raw := make([]byte, 4096)
		conn.SetReadDeadline(time.Now().Add(time.Second))
		for {
			n, err := conn.Read(raw)
			buf.Write(raw[:n])
			if err != nil {
				break
			}
		}
		received <- buf.Bytes()
	}()

	addr := listener.Addr().(*net.TCPAddr)
	n := NewNetwork("127.0.0.1", addr.Port)

	require.NoError(t, n.Open())
	assert.True(t, n.IsOpen())
	// Reconnecting while open is a no-op.
	require.NoError(t, n.Open())

	b := ticket.NewBuilder()
	b.Text("ticket réseau")
	b.Cut()
	require.NoError(t, n.Print(b.Ticket()))
	require.NoError(t, n.Close())
	assert.False(t, n.IsOpen())

	select {
	case data := <-received:
		assert.Contains(t, string(data), "ticket réseau")
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not receive the ticket")
	}
}

func TestNetworkPrintWhenClosed(t *testing.T) {
	n := NewNetwork("127.0.0.1", 9100)

	b := ticket.NewBuilder()
	b.Text("x")
	assert.Error(t, n.Print(b.Ticket()))
}

func TestOSQueueNameMissingFailsFast(t *testing.T) {
	q := NewOSQueue("")

	err := q.Open()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.False(t, q.IsOpen())
}
