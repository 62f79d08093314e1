package device

import "github.com/anicoll/loxone-integration/internal/pkg/model"

// OnThreshold is the value a switch reports when it is on.
const OnThreshold = 1.0

type Switch struct {
	base
	value float64
}

// NewSwitch tracks the switch's "active" state. Its uuid is the state
// identifier; commands go to actionID.
func NewSwitch(info Info, stateID, actionID model.Identifier) *Switch {
	return &Switch{
		base: newBase(info, stateID, actionID, "light",
			Tracked{Role: model.RoleActive, ID: stateID}),
	}
}

func (s *Switch) Kind() Kind { return KindSwitch }

func (s *Switch) IsOn() bool {
	return s.value == OnThreshold
}

func (s *Switch) ApplyEvent(role model.Role, raw any) (bool, error) {
	if role != model.RoleActive {
		return false, nil
	}
	v, err := toFloat(raw)
	if err != nil {
		return false, newParseError(s.identifierFor(role), raw, err)
	}
	changed := v != s.value
	s.value = v
	return changed, nil
}

func (s *Switch) Attributes() map[string]any {
	return s.attributes()
}
