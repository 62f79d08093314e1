// Package bridge owns the device model at runtime. A single goroutine applies
// inbound events and outbound requests one at a time, so one event is fully
// dispatched and published before the next is looked at.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/loxone-integration/internal/pkg/command"
	"github.com/anicoll/loxone-integration/internal/pkg/device"
	"github.com/anicoll/loxone-integration/internal/pkg/dispatch"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
	"github.com/anicoll/loxone-integration/internal/pkg/registry"
)

var (
	ErrUnknownDevice   = errors.New("unknown device")
	ErrAmbiguousDevice = errors.New("ambiguous device")
)

type publisher interface {
	Publish(ctx context.Context, snapshots []model.StateSnapshot) error
	RegisterDevice(light model.Light) error
}

type transport interface {
	Send(ctx context.Context, cmds []model.OutboundCommand) error
}

type call struct {
	fn   func() error
	done chan error
}

type Service struct {
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	publisher  publisher
	transport  transport
	calls      chan call
	pending    []model.StateSnapshot
	now        func() time.Time
	logger     *zap.Logger
}

func WithLogger(l *zap.Logger) func(*Service) {
	return func(s *Service) {
		s.logger = l
	}
}

func WithClock(now func() time.Time) func(*Service) {
	return func(s *Service) {
		s.now = now
	}
}

func New(r *registry.Registry, p publisher, t transport, opts ...func(*Service)) *Service {
	s := &Service{
		registry:  r,
		publisher: p,
		transport: t,
		calls:     make(chan call),
		now:       time.Now,
		logger:    zap.L(),
	}
	for _, o := range opts {
		o(s)
	}
	s.dispatcher = dispatch.New(r, dispatch.WithLogger(s.logger))
	s.dispatcher.Subscribe(s.collect)
	return s
}

// Run announces every registered device and then serves events and requests
// until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	for d := range s.registry.All() {
		if err := s.publisher.RegisterDevice(Light(d)); err != nil {
			s.logger.Error("failed to announce device", zap.String("device", d.Name()), zap.Error(err))
		}
	}
	s.logger.Info("bridge running", zap.Int("devices", s.registry.Len()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-s.calls:
			c.done <- c.fn()
		}
	}
}

func (s *Service) do(ctx context.Context, fn func() error) error {
	c := call{fn: fn, done: make(chan error, 1)}
	select {
	case s.calls <- c:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleEvent applies ev and publishes the lights it changed. The returned
// error joins any values that could not be decoded; the rest of the event is
// still applied.
func (s *Service) HandleEvent(ctx context.Context, ev model.Event) error {
	return s.do(ctx, func() error {
		err := s.dispatcher.Dispatch(ev)
		if err != nil {
			s.logger.Warn("event partially applied", zap.Error(err))
		}
		pending := s.pending
		s.pending = nil
		if len(pending) > 0 {
			if perr := s.publisher.Publish(ctx, pending); perr != nil {
				s.logger.Error("failed to publish state", zap.Error(perr))
			}
		}
		return err
	})
}

// Execute encodes req for the light addressed by key, its uuid or a name no
// other light shares, and hands the commands to the transport.
func (s *Service) Execute(ctx context.Context, key string, req command.Request) error {
	return s.do(ctx, func() error {
		d, err := s.resolve(key)
		if err != nil {
			return err
		}
		cmds, err := command.Encode(d, req)
		if err != nil {
			return err
		}
		s.logger.Info("executing command",
			zap.String("device", d.Name()),
			zap.Stringer("uuid", d.ID()),
			zap.String("action", string(req.Action)),
			zap.Int("commands", len(cmds)))
		return s.transport.Send(ctx, cmds)
	})
}

// Devices returns the current state of every light in registration order.
func (s *Service) Devices(ctx context.Context) ([]model.StateSnapshot, error) {
	var out []model.StateSnapshot
	err := s.do(ctx, func() error {
		out = make([]model.StateSnapshot, 0, s.registry.Len())
		for d := range s.registry.All() {
			out = append(out, s.snapshot(d))
		}
		return nil
	})
	return out, err
}

func (s *Service) Device(ctx context.Context, key string) (model.StateSnapshot, error) {
	var out model.StateSnapshot
	err := s.do(ctx, func() error {
		d, err := s.resolve(key)
		if err != nil {
			return err
		}
		out = s.snapshot(d)
		return nil
	})
	return out, err
}

func (s *Service) resolve(key string) (device.Device, error) {
	d, err := s.registry.Resolve(key)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, key)
	case errors.Is(err, registry.ErrAmbiguousName):
		return nil, fmt.Errorf("%w: %w", ErrAmbiguousDevice, err)
	}
	return d, err
}

func (s *Service) collect(c dispatch.StateChange) {
	snap := s.snapshot(c.Device)
	snap.Attributes = c.Attributes
	s.pending = append(s.pending, snap)
}

func (s *Service) snapshot(d device.Device) model.StateSnapshot {
	state := model.StateOff
	if d.IsOn() {
		state = model.StateOn
	}
	return model.StateSnapshot{
		Name:       d.Name(),
		UUID:       d.ID(),
		Kind:       d.Kind().String(),
		State:      state,
		Attributes: d.Attributes(),
		Timestamp:  s.now(),
	}
}

// Light describes d for discovery.
func Light(d device.Device) model.Light {
	l := model.Light{
		Name: d.Name(),
		UUID: d.ID(),
		Kind: d.Kind().String(),
		Room: d.Room(),
	}
	if sc, ok := d.(*device.SceneController); ok {
		l.Effects = sc.SceneNames()
	}
	return l
}
