// Package dispatch fans inbound miniserver events out to the devices that
// track their identifiers and notifies subscribers of state changes.
package dispatch

import (
	"errors"
	"iter"

	"go.uber.org/zap"

	"github.com/anicoll/loxone-integration/internal/pkg/device"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

// StateChange is delivered once per device whose visible state changed.
type StateChange struct {
	Device     device.Device
	IsOn       bool
	Attributes map[string]any
}

// Subscriber receives state changes synchronously during Dispatch.
type Subscriber func(StateChange)

type deviceIndex interface {
	Tracking(id model.Identifier) (device.Device, bool)
	All() iter.Seq[device.Device]
}

type Dispatcher struct {
	registry    deviceIndex
	subscribers []Subscriber
	logger      *zap.Logger
}

func WithLogger(l *zap.Logger) func(*Dispatcher) {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

func New(r deviceIndex, opts ...func(*Dispatcher)) *Dispatcher {
	d := &Dispatcher{
		registry: r,
		logger:   zap.L(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Dispatcher) Subscribe(s Subscriber) {
	d.subscribers = append(d.subscribers, s)
}

// Dispatch applies ev to every device owning one of its identifiers, in
// registration order. A device that fails to decode a value does not stop
// the others; all failures are joined into the returned error.
func (d *Dispatcher) Dispatch(ev model.Event) error {
	targets := make(map[device.Device]struct{})
	for id := range ev {
		if dev, ok := d.registry.Tracking(id); ok {
			targets[dev] = struct{}{}
		}
	}
	if len(targets) == 0 {
		return nil
	}

	var errs []error
	for dev := range d.registry.All() {
		if _, ok := targets[dev]; !ok {
			continue
		}
		changed, err := apply(dev, ev)
		if err != nil {
			d.logger.Warn("failed to apply event", zap.String("device", dev.Name()), zap.Error(err))
			errs = append(errs, err)
		}
		if changed {
			d.notify(dev)
		}
	}
	return errors.Join(errs...)
}

func apply(dev device.Device, ev model.Event) (bool, error) {
	var (
		changed bool
		errs    []error
	)
	for _, t := range dev.Identifiers() {
		raw, ok := ev[t.ID]
		if !ok {
			continue
		}
		c, err := dev.ApplyEvent(t.Role, raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		changed = changed || c
	}
	return changed, errors.Join(errs...)
}

func (d *Dispatcher) notify(dev device.Device) {
	change := StateChange{
		Device:     dev,
		IsOn:       dev.IsOn(),
		Attributes: dev.Attributes(),
	}
	d.logger.Debug("device state changed", zap.String("device", dev.Name()), zap.Bool("on", change.IsOn))
	for _, s := range d.subscribers {
		s(change)
	}
}
