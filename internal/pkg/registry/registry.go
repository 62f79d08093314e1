// Package registry owns the device instances and indexes them by tracked
// identifier for dispatch.
//
// Conflicts are rejected: a device tracking an identifier that is already
// owned by another device, or tracking one identifier under two roles, is not
// registered, and Register returns a *RegistrationConflict. The first
// registration keeps ownership. Names are not unique.
package registry

import (
	"errors"
	"fmt"
	"iter"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/loxone-integration/internal/pkg/device"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

var (
	ErrRegistrationConflict = errors.New("registry: registration conflict")
	ErrNotFound             = errors.New("registry: device not found")
	ErrAmbiguousName        = errors.New("registry: name matches more than one device")
)

// RegistrationConflict names the identifier two devices both claim.
type RegistrationConflict struct {
	Key      string
	Existing string
	Rejected string
}

func (e *RegistrationConflict) Error() string {
	return fmt.Sprintf("registry: %q already owned by %q, rejected %q", e.Key, e.Existing, e.Rejected)
}

func (e *RegistrationConflict) Unwrap() error {
	return ErrRegistrationConflict
}

type Registry struct {
	devices []device.Device
	byName  map[string][]device.Device
	byID    map[model.Identifier]device.Device
	logger  *zap.Logger
}

func WithLogger(l *zap.Logger) func(*Registry) {
	return func(r *Registry) {
		r.logger = l
	}
}

func New(opts ...func(*Registry)) *Registry {
	r := &Registry{
		byName: make(map[string][]device.Device),
		byID:   make(map[model.Identifier]device.Device),
		logger: zap.L(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds d and indexes all of its tracked identifiers.
func (r *Registry) Register(d device.Device) error {
	if err := r.conflict(d); err != nil {
		r.logger.Warn("rejected device registration",
			zap.String("key", err.Key),
			zap.String("existing", err.Existing),
			zap.String("rejected", err.Rejected))
		return err
	}

	r.devices = append(r.devices, d)
	r.byName[d.Name()] = append(r.byName[d.Name()], d)
	for _, t := range d.Identifiers() {
		r.byID[t.ID] = d
	}
	r.logger.Debug("registered device",
		zap.String("name", d.Name()),
		zap.Stringer("kind", d.Kind()),
		zap.Int("identifiers", len(d.Identifiers())))
	return nil
}

func (r *Registry) conflict(d device.Device) *RegistrationConflict {
	seen := make(map[model.Identifier]struct{}, len(d.Identifiers()))
	for _, t := range d.Identifiers() {
		if existing, ok := r.byID[t.ID]; ok {
			return &RegistrationConflict{Key: t.ID.String(), Existing: existing.Name(), Rejected: d.Name()}
		}
		if _, dup := seen[t.ID]; dup {
			return &RegistrationConflict{Key: t.ID.String(), Existing: d.Name(), Rejected: d.Name()}
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// LookupByName returns every device called name, in registration order.
func (r *Registry) LookupByName(name string) []device.Device {
	return r.byName[name]
}

// Resolve finds the device addressed by key: its uuid first, then its name.
// A name shared by several devices is ambiguous and must be addressed by uuid.
func (r *Registry) Resolve(key string) (device.Device, error) {
	if d, ok := lo.Find(r.devices, func(d device.Device) bool {
		return d.ID().String() == key
	}); ok {
		return d, nil
	}
	switch named := r.byName[key]; len(named) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	case 1:
		return named[0], nil
	default:
		return nil, fmt.Errorf("%w: %q is used by %d lights", ErrAmbiguousName, key, len(named))
	}
}

// LookupByIdentifier finds the device tracking id, falling back to the
// device presenting id as its uuid or action identifier.
func (r *Registry) LookupByIdentifier(id model.Identifier) (device.Device, bool) {
	if d, ok := r.byID[id]; ok {
		return d, true
	}
	return lo.Find(r.devices, func(d device.Device) bool {
		return d.ID() == id || d.ActionID() == id
	})
}

// Tracking reports the device that tracks id for dispatch.
func (r *Registry) Tracking(id model.Identifier) (device.Device, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// All yields the registered devices in registration order. The sequence can
// be ranged over any number of times.
func (r *Registry) All() iter.Seq[device.Device] {
	return func(yield func(device.Device) bool) {
		for _, d := range r.devices {
			if !yield(d) {
				return
			}
		}
	}
}

func (r *Registry) Len() int {
	return len(r.devices)
}
