// Package publisher fans light state snapshots out to named sinks, skipping
// snapshots that repeat the last published state of a light.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

var ErrAlreadyRegistered = errors.New("publisher already registered")

type Sink interface {
	Write(ctx context.Context, data []model.StateSnapshot) error
	RegisterDevice(light model.Light) error
}

type Publisher struct {
	mu     sync.RWMutex
	sinks  map[string]Sink
	states sync.Map
	logger *zap.Logger
}

func WithLogger(l *zap.Logger) func(*Publisher) {
	return func(p *Publisher) {
		p.logger = l
	}
}

func New(opts ...func(*Publisher)) *Publisher {
	p := &Publisher{
		sinks:  make(map[string]Sink),
		logger: zap.L(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Publisher) Register(name string, s Sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sinks[name]; ok {
		return ErrAlreadyRegistered
	}
	p.sinks[name] = s
	return nil
}

// Publish writes the snapshots that differ from what was last published to
// every sink. A failing sink is logged and does not stop the others.
func (p *Publisher) Publish(ctx context.Context, snapshots []model.StateSnapshot) error {
	data := make([]model.StateSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if !p.shouldUpdate(s) {
			continue
		}
		data = append(data, s)
	}
	if len(data) == 0 {
		return nil
	}

	for _, sink := range p.snapshotSinks() {
		if err := sink.Write(ctx, data); err != nil {
			p.logger.Error("failed to publish state", zap.Error(err), zap.String("publisher", sink.name))
			continue
		}
		p.logger.Debug("published state", zap.Int("count", len(data)), zap.String("publisher", sink.name))
	}
	return nil
}

func (p *Publisher) RegisterDevice(light model.Light) error {
	for _, sink := range p.snapshotSinks() {
		if err := sink.RegisterDevice(light); err != nil {
			p.logger.Error("failed to register device", zap.Error(err), zap.String("publisher", sink.name))
			continue
		}
		p.logger.Debug("registered device", zap.String("device", light.Name), zap.String("publisher", sink.name))
	}
	return nil
}

type namedSink struct {
	name string
	Sink
}

// snapshotSinks copies the sink set in name order.
func (p *Publisher) snapshotSinks() []namedSink {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]namedSink, 0, len(p.sinks))
	for _, name := range slices.Sorted(maps.Keys(p.sinks)) {
		out = append(out, namedSink{name: name, Sink: p.sinks[name]})
	}
	return out
}

func (p *Publisher) shouldUpdate(s model.StateSnapshot) bool {
	fingerprint, err := json.Marshal(struct {
		State      string         `json:"state"`
		Attributes map[string]any `json:"attributes"`
	}{s.State, s.Attributes})
	if err != nil {
		p.logger.Warn("unable to fingerprint state", zap.String("device", s.Name), zap.Error(err))
		return true
	}

	old, exists := p.states.Load(s.UUID)
	if exists && old.(string) == string(fingerprint) {
		return false
	}
	if !exists {
		p.logger.Info("configured light", zap.String("device", s.Name), zap.String("state", s.State))
	}
	p.states.Store(s.UUID, string(fingerprint))
	return true
}
