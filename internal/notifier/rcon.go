package notifier

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/vk/fxbuild/internal/ctxlog"
)

// DefaultRCONAddress is the host's default remote console endpoint.
const DefaultRCONAddress = "127.0.0.1:30120"

// rconPrefix starts every out-of-band remote console packet.
const rconPrefix = "\xff\xff\xff\xffrcon "

// RCON speaks the out-of-band UDP remote console protocol. The password is
// carried in every packet; there is no separate handshake.
type RCON struct {
	address  string
	password string
	dialer   net.Dialer

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// NewRCON creates a remote console client for address.
func NewRCON(address, password string) *RCON {
	if address == "" {
		address = DefaultRCONAddress
	}
	return &RCON{address: address, password: password}
}

// Packet encodes a remote console command.
func Packet(password, command string) []byte {
	return []byte(rconPrefix + password + " " + command + "\n")
}

// Connect dials the remote console endpoint.
func (r *RCON) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return r.dialLocked(ctx)
}

func (r *RCON) dialLocked(ctx context.Context) error {
	if r.conn != nil {
		return nil
	}
	conn, err := r.dialer.DialContext(ctx, "udp", r.address)
	if err != nil {
		return fmt.Errorf("failed to dial remote console %s: %w", r.address, err)
	}
	r.conn = conn
	ctxlog.FromContext(ctx).Info("🔌 Remote console connected.", "address", r.address)
	return nil
}

// Refresh asks the host to rescan its resources.
func (r *RCON) Refresh(ctx context.Context) error {
	return r.send(ctx, CommandRefresh)
}

// Ensure asks the host to (re)start resource.
func (r *RCON) Ensure(ctx context.Context, resource string) error {
	cmd, err := EnsureCommand(resource)
	if err != nil {
		return err
	}
	return r.send(ctx, cmd)
}

func (r *RCON) send(ctx context.Context, command string) error {
	logger := ctxlog.FromContext(ctx)
	packet := Packet(r.password, command)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	err := r.writeLocked(ctx, packet)
	if err == nil {
		logger.Debug("Remote command sent.", "command", command)
		return nil
	}

	logger.Warn("Remote command failed, reconnecting.", "command", command, "error", err)
	r.dropLocked()
	if err := r.writeLocked(ctx, packet); err != nil {
		r.dropLocked()
		return fmt.Errorf("failed to send %q: %w", command, err)
	}
	logger.Debug("Remote command sent after reconnect.", "command", command)
	return nil
}

func (r *RCON) writeLocked(ctx context.Context, packet []byte) error {
	if err := r.dialLocked(ctx); err != nil {
		return err
	}
	_, err := r.conn.Write(packet)
	return err
}

func (r *RCON) dropLocked() {
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}

// Close releases the connection. Further sends return ErrClosed.
func (r *RCON) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	return err
}
