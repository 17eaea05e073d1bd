package notifier

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/vk/fxbuild/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// CommandEvent is the socket.io event carrying a command string.
const CommandEvent = "command"

const defaultConnectTimeout = 10 * time.Second

// SocketIO relays commands through a socket.io development bridge running
// next to the host. The password travels in the handshake auth payload.
type SocketIO struct {
	url            string
	namespace      string
	password       string
	connectTimeout time.Duration

	mu     sync.Mutex
	client *socket.Socket
	closed bool
}

// NewSocketIO creates a bridge client. rawURL carries scheme, host and the
// socket.io path, e.g. http://127.0.0.1:30121/socket.io/.
func NewSocketIO(rawURL, namespace, password string) (*SocketIO, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("socket.io URL %q needs a scheme and host", rawURL)
	}
	if namespace == "" {
		namespace = "/"
	}
	return &SocketIO{
		url:            rawURL,
		namespace:      namespace,
		password:       password,
		connectTimeout: defaultConnectTimeout,
	}, nil
}

// Connect opens the socket and waits for the server to accept it.
func (s *SocketIO) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.connectLocked(ctx)
}

func (s *SocketIO) connectLocked(ctx context.Context) error {
	// State is read from the current client only; a dropped client's late
	// disconnect cannot affect it.
	if s.client != nil && s.client.Connected() {
		return nil
	}
	s.dropLocked()

	logger := ctxlog.FromContext(ctx).With("url", s.url, "namespace", s.namespace)
	parsedURL, err := url.Parse(s.url)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	// Reconnects happen on the next send, never in the background.
	opts.SetReconnection(false)
	opts.SetAuth(map[string]any{"password": s.password})

	manager := socket.NewManager(baseURL, opts)
	client := manager.Socket(s.namespace, opts)

	done := make(chan error, 1)
	client.On(types.EventName("connect"), func(...any) {
		select {
		case done <- nil:
		default:
		}
	})
	client.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connection refused by bridge")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case done <- err:
		default:
		}
	})
	client.On(types.EventName("disconnect"), func(...any) {
		logger.Warn("Bridge disconnected.", "sid", client.Id())
	})

	client.Connect()

	connectCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()
	select {
	case <-connectCtx.Done():
		client.Disconnect()
		return fmt.Errorf("timed out while waiting for bridge connection: %w", connectCtx.Err())
	case err := <-done:
		if err != nil {
			client.Disconnect()
			return fmt.Errorf("failed to connect to bridge: %w", err)
		}
	}

	s.client = client
	logger.Info("🔌 Bridge connected.", "sid", client.Id())
	return nil
}

// Refresh asks the host to rescan its resources.
func (s *SocketIO) Refresh(ctx context.Context) error {
	return s.send(ctx, CommandRefresh)
}

// Ensure asks the host to (re)start resource.
func (s *SocketIO) Ensure(ctx context.Context, resource string) error {
	cmd, err := EnsureCommand(resource)
	if err != nil {
		return err
	}
	return s.send(ctx, cmd)
}

func (s *SocketIO) send(ctx context.Context, command string) error {
	logger := ctxlog.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := s.connectLocked(ctx); err != nil {
		logger.Warn("Bridge unavailable, reconnecting.", "command", command, "error", err)
		if err := s.connectLocked(ctx); err != nil {
			return fmt.Errorf("failed to send %q: %w", command, err)
		}
	}

	if err := s.client.Emit(CommandEvent, command); err != nil {
		logger.Warn("Emit failed, reconnecting.", "command", command, "error", err)
		s.dropLocked()
		if err := s.connectLocked(ctx); err != nil {
			return fmt.Errorf("failed to send %q: %w", command, err)
		}
		if err := s.client.Emit(CommandEvent, command); err != nil {
			return fmt.Errorf("failed to send %q: %w", command, err)
		}
	}
	logger.Debug("Remote command sent.", "command", command)
	return nil
}

func (s *SocketIO) dropLocked() {
	if s.client != nil {
		s.client.Disconnect()
		s.client = nil
	}
}

// Close disconnects from the bridge.
func (s *SocketIO) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.dropLocked()
	return nil
}
