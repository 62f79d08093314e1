// Package loxone connects to a relay that forwards decoded miniserver value
// updates as JSON objects and accepts JSON commands in return.
package loxone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
	ws "github.com/anicoll/loxone-integration/pkg/sockets"
)

const maxStoredDataSize = 1 << 20

var (
	ErrNotConnected = errors.New("relay not connected")
	ErrDisconnected = errors.New("relay disconnected")
)

// EventHandler receives every decoded event in arrival order.
type EventHandler func(ctx context.Context, ev model.Event) error

type Service struct {
	url          string
	handler      EventHandler
	errChan      chan error
	logger       *zap.Logger
	pingInterval time.Duration
	insecure     bool
	dial         func(opts ...func(*ws.Conn)) ws.Connection

	mu         sync.Mutex
	conn       ws.Connection
	storedData []byte
	done       chan error
}

func WithLogger(l *zap.Logger) func(*Service) {
	return func(s *Service) {
		s.logger = l
	}
}

func WithPingInterval(d time.Duration) func(*Service) {
	return func(s *Service) {
		s.pingInterval = d
	}
}

func InsecureSkipVerify() func(*Service) {
	return func(s *Service) {
		s.insecure = true
	}
}

func New(url string, handler EventHandler, errChan chan error, opts ...func(*Service)) *Service {
	s := &Service{
		url:          url,
		handler:      handler,
		errChan:      errChan,
		logger:       zap.L(),
		pingInterval: 30 * time.Second,
		dial:         ws.New,
		done:         make(chan error, 1),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) sendIfErr(err error) {
	if err == nil {
		return
	}
	select {
	case s.errChan <- err:
	default:
		s.logger.Error("dropping relay error", zap.Error(err))
	}
}

// Connect dials the relay. Decoded events are passed to the handler with ctx.
func (s *Service) Connect(ctx context.Context) error {
	opts := []func(*ws.Conn){
		ws.OnMessage(func(data []byte, _ ws.Connection) { s.onMessage(ctx, data) }),
		ws.OnError(s.onError),
		ws.WithPingInterval(s.pingInterval),
		ws.WithPingMsg([]byte(`{}`)),
	}
	if s.insecure {
		opts = append(opts, ws.InsecureSkipVerify())
	}
	conn := s.dial(opts...)

	s.logger.Debug("connecting to relay", zap.String("url", s.url))
	if err := conn.Dial(ctx, s.url, ""); err != nil {
		s.logger.Error("failed to connect to relay", zap.String("url", s.url), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.storedData = nil
	s.mu.Unlock()
	s.logger.Info("connected to relay", zap.String("url", s.url))
	return nil
}

// Disconnected fires once the connection drops.
func (s *Service) Disconnected() <-chan error {
	return s.done
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Send writes each command as its own frame.
func (s *Service) Send(_ context.Context, cmds []model.OutboundCommand) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil || !conn.IsConnected() {
		return ErrNotConnected
	}

	for _, cmd := range cmds {
		body, err := json.Marshal(cmd)
		if err != nil {
			return err
		}
		if err := conn.Send(ws.Msg{Body: body}); err != nil {
			return fmt.Errorf("send %s to %s: %w", cmd.Value, cmd.UUID, err)
		}
		s.logger.Debug("sent command", zap.String("uuid", cmd.UUID.String()), zap.String("value", cmd.Value))
	}
	return nil
}

func (s *Service) onError(err error) {
	s.logger.Warn("relay connection error", zap.Error(err))
	select {
	case s.done <- fmt.Errorf("%w: %w", ErrDisconnected, err):
	default:
	}
}

// onMessage decodes a frame into an event. Frames that end mid-object are
// buffered until the rest arrives.
func (s *Service) onMessage(ctx context.Context, data []byte) {
	s.mu.Lock()
	if len(s.storedData) > 0 {
		if len(s.storedData)+len(data) > maxStoredDataSize {
			s.logger.Warn("discarding oversized partial frame", zap.Int("size", len(s.storedData)))
			s.storedData = nil
		} else {
			data = append(s.storedData, data...)
		}
	}
	ev, err := decode(data)
	if errors.Is(err, errIncomplete) {
		s.storedData = append([]byte(nil), data...)
		s.mu.Unlock()
		return
	}
	s.storedData = nil
	s.mu.Unlock()

	if err != nil {
		s.sendIfErr(fmt.Errorf("decode relay frame: %w", err))
		return
	}
	if len(ev) == 0 {
		return
	}
	if err := s.handler(ctx, ev); err != nil {
		s.logger.Warn("event not fully applied", zap.Error(err))
	}
}

var errIncomplete = errors.New("incomplete frame")

func decode(data []byte) (model.Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errIncomplete
		}
		return nil, err
	}
	ev := make(model.Event, len(raw))
	for k, v := range raw {
		ev[model.Identifier(k)] = v
	}
	return ev, nil
}
