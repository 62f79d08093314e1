package device

import (
	"github.com/anicoll/loxone-integration/internal/pkg/convert"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

type Dimmer struct {
	base
	position float64
}

func NewDimmer(info Info, actionID, positionID model.Identifier) *Dimmer {
	return &Dimmer{
		base: newBase(info, actionID, actionID, "dimmer",
			Tracked{Role: model.RolePosition, ID: positionID}),
	}
}

func (d *Dimmer) Kind() Kind { return KindDimmer }

func (d *Dimmer) IsOn() bool {
	return d.position > 0
}

// Position is the hub-native level, 0.0-100.0.
func (d *Dimmer) Position() float64 {
	return d.position
}

// Brightness is the 0-255 display level.
func (d *Dimmer) Brightness() int {
	return convert.ToDisplayLevel(d.position)
}

func (d *Dimmer) ApplyEvent(role model.Role, raw any) (bool, error) {
	if role != model.RolePosition {
		return false, nil
	}
	v, err := toFloat(raw)
	if err != nil {
		return false, newParseError(d.identifierFor(role), raw, err)
	}
	changed := v != d.position
	d.position = v
	return changed, nil
}

func (d *Dimmer) Attributes() map[string]any {
	attrs := d.attributes()
	attrs[model.AttrBrightness] = d.Brightness()
	return attrs
}
