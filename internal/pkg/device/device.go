package device

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

// Kind is the closed set of supported device variants.
type Kind string

const (
	KindSwitch          Kind = "switch"
	KindDimmer          Kind = "dimmer"
	KindColorLight      Kind = "colorpicker"
	KindSceneController Kind = "lightcontrollerv2"
)

func (k Kind) String() string {
	return string(k)
}

// Device is implemented by *Switch, *Dimmer, *ColorLight and *SceneController.
type Device interface {
	Name() string
	// ID is the identifier presented as the device's uuid.
	ID() model.Identifier
	// ActionID is the identifier commands are addressed to.
	ActionID() model.Identifier
	Kind() Kind
	Room() string
	Category() string
	// Identifiers lists the tracked identifiers in a fixed order.
	Identifiers() []Tracked
	IsOn() bool
	// ApplyEvent updates the state behind role. Unknown roles are ignored.
	ApplyEvent(role model.Role, raw any) (changed bool, err error)
	Attributes() map[string]any
}

// Tracked is an identifier a device listens to and the role it plays.
type Tracked struct {
	Role model.Role
	ID   model.Identifier
}

// Info is the static metadata shared by all kinds.
type Info struct {
	Name     string
	Room     string
	Category string
}

type base struct {
	info       Info
	id         model.Identifier
	actionID   model.Identifier
	deviceType string
	tracked    []Tracked
}

func newBase(info Info, id, actionID model.Identifier, deviceType string, tracked ...Tracked) base {
	return base{
		info:       info,
		id:         id,
		actionID:   actionID,
		deviceType: deviceType,
		tracked: slices.DeleteFunc(tracked, func(t Tracked) bool {
			return t.ID == ""
		}),
	}
}

func (b *base) Name() string               { return b.info.Name }
func (b *base) ID() model.Identifier       { return b.id }
func (b *base) ActionID() model.Identifier { return b.actionID }
func (b *base) Room() string               { return b.info.Room }
func (b *base) Category() string           { return b.info.Category }

func (b *base) Identifiers() []Tracked {
	return slices.Clone(b.tracked)
}

func (b *base) identifierFor(role model.Role) model.Identifier {
	for _, t := range b.tracked {
		if t.Role == role {
			return t.ID
		}
	}
	return ""
}

func (b *base) attributes() map[string]any {
	return map[string]any{
		model.AttrUUID:       b.id.String(),
		model.AttrRoom:       b.info.Room,
		model.AttrCategory:   b.info.Category,
		model.AttrDeviceType: b.deviceType,
		model.AttrPlatform:   model.Platform,
	}
}

// toFloat accepts the numeric forms the relay delivers.
func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported value type %T", raw)
	}
}

func toText(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("expected text, got %T", raw)
	}
	return s, nil
}
