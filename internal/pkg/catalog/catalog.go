// Package catalog reads the miniserver structure file and builds the light
// devices it describes.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/loxone-integration/internal/pkg/device"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

var ErrMissingState = errors.New("catalog: control is missing a required state")

type deviceIndex interface {
	Register(d device.Device) error
}

type Builder struct {
	catalog *model.Catalog
	logger  *zap.Logger
}

func WithLogger(l *zap.Logger) func(*Builder) {
	return func(b *Builder) {
		b.logger = l
	}
}

func New(c *model.Catalog, opts ...func(*Builder)) *Builder {
	b := &Builder{
		catalog: c,
		logger:  zap.L(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Load reads a structure file from disk.
func Load(path string) (*model.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open structure file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*model.Catalog, error) {
	var c model.Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode structure file: %w", err)
	}
	return &c, nil
}

// Devices builds every light device in the catalogue. Light controllers come
// first, followed by dimmers (controller children before standalone ones),
// switches and colour pickers. Controls within a group are ordered by key so
// repeated loads register identically. Controls that lack a required state
// are skipped and reported in the returned error.
func (b *Builder) Devices() ([]device.Device, error) {
	var controllers, dimmers, topDimmers, switches, pickers []*model.DeviceDescriptor

	for _, ctrl := range sorted(b.catalog.Controls) {
		switch ctrl.Type {
		case model.ControlTypeLightControllerV2:
			controllers = append(controllers, ctrl)
			for _, sub := range sorted(ctrl.SubControls) {
				sub = inherit(sub, ctrl)
				switch sub.Type {
				case model.ControlTypeDimmer:
					dimmers = append(dimmers, sub)
				case model.ControlTypeSwitch:
					switches = append(switches, sub)
				case model.ControlTypeColorPickerV2:
					pickers = append(pickers, sub)
				}
			}
		case model.ControlTypeDimmer:
			topDimmers = append(topDimmers, ctrl)
		}
	}
	dimmers = append(dimmers, topDimmers...)

	var errs []error
	devices := make([]device.Device, 0, len(controllers)+len(dimmers)+len(switches)+len(pickers))
	for _, group := range [][]*model.DeviceDescriptor{controllers, dimmers, switches, pickers} {
		for _, desc := range group {
			d, err := b.build(desc)
			if err != nil {
				b.logger.Warn("skipping control", zap.String("name", desc.Name), zap.Error(err))
				errs = append(errs, err)
				continue
			}
			devices = append(devices, d)
		}
	}
	return devices, errors.Join(errs...)
}

// Populate builds the catalogue's devices and registers them. Devices that
// fail to build or conflict with an earlier registration are left out; the
// rest are still registered.
func (b *Builder) Populate(r deviceIndex) error {
	devices, err := b.Devices()
	errs := []error{err}
	for _, d := range devices {
		if err := r.Register(d); err != nil {
			errs = append(errs, err)
		}
	}
	b.logger.Info("catalogue loaded", zap.Int("devices", len(devices)))
	return errors.Join(errs...)
}

func (b *Builder) build(desc *model.DeviceDescriptor) (device.Device, error) {
	info := device.Info{
		Name:     desc.Name,
		Room:     b.catalog.RoomName(desc.Room),
		Category: b.catalog.CategoryName(desc.Cat),
	}

	switch desc.Type {
	case model.ControlTypeLightControllerV2:
		return device.NewSceneController(info, desc.UUIDAction, desc.States), nil
	case model.ControlTypeDimmer:
		pos, err := required(desc, model.RolePosition)
		if err != nil {
			return nil, err
		}
		return device.NewDimmer(info, desc.UUIDAction, pos), nil
	case model.ControlTypeSwitch:
		active, err := required(desc, model.RoleActive)
		if err != nil {
			return nil, err
		}
		return device.NewSwitch(info, active, desc.UUIDAction), nil
	case model.ControlTypeColorPickerV2:
		color, err := required(desc, model.RoleColor)
		if err != nil {
			return nil, err
		}
		return device.NewColorLight(info, desc.UUIDAction, color), nil
	default:
		return nil, fmt.Errorf("catalog: unsupported control type %q", desc.Type)
	}
}

func required(desc *model.DeviceDescriptor, role model.Role) (model.Identifier, error) {
	id := desc.State(role)
	if id == "" {
		return "", fmt.Errorf("%w: %s has no %s", ErrMissingState, desc.Name, role)
	}
	return id, nil
}

// inherit fills an empty room or category from the parent controller.
func inherit(sub, parent *model.DeviceDescriptor) *model.DeviceDescriptor {
	c := *sub
	if c.Room == "" {
		c.Room = parent.Room
	}
	if c.Cat == "" {
		c.Cat = parent.Cat
	}
	return &c
}

func sorted(m map[string]*model.DeviceDescriptor) []*model.DeviceDescriptor {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return lo.FilterMap(keys, func(k string, _ int) (*model.DeviceDescriptor, bool) {
		return m[k], m[k] != nil
	})
}
