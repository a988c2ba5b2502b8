package adapter

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/restaurant-mitake/printer-agent/ticket"
)

// DefaultPort is the conventional raw ESC/POS TCP port.
const DefaultPort = 9100

const dialTimeout = 5 * time.Second

// Network drives a thermal printer listening on a raw TCP socket.
type Network struct {
	host string
	port int

	mu   sync.Mutex
	conn net.Conn
}

func NewNetwork(host string, port int) *Network {
	if port == 0 {
		port = DefaultPort
	}
	return &Network{host: host, port: port}
}

func (n *Network) Open() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn != nil {
		return nil
	}
	if n.host == "" {
		return fmt.Errorf("network printer address missing: %w", ErrConfig)
	}

	addr := net.JoinHostPort(n.host, fmt.Sprintf("%d", n.port))
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("connect network printer %s: %w", addr, err)
	}
	n.conn = conn
	return nil
}

func (n *Network) Print(t *ticket.Ticket) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		return errors.New("network printer not open")
	}
	if _, err := n.conn.Write(Encode(t)); err != nil {
		return fmt.Errorf("network write: %w", err)
	}
	return nil
}

func (n *Network) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}

func (n *Network) IsOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.conn != nil
}
