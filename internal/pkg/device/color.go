package device

import (
	"fmt"
	"math"

	"github.com/anicoll/loxone-integration/internal/pkg/convert"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

// ColorLight is a ColorPickerV2 control. The miniserver reports either an
// hsv(...) or a temp(...) value on the colour identifier.
type ColorLight struct {
	base
	position     float64
	rgb          [3]uint8
	hubColorTemp float64
}

func NewColorLight(info Info, actionID, colorID model.Identifier) *ColorLight {
	r, g, b := convert.HSToRGB(0, 0)
	return &ColorLight{
		base: newBase(info, actionID, actionID, "colorpicker",
			Tracked{Role: model.RoleColor, ID: colorID}),
		rgb:          [3]uint8{r, g, b},
		hubColorTemp: convert.MaxHubColorTemp,
	}
}

func (c *ColorLight) Kind() Kind { return KindColorLight }

func (c *ColorLight) IsOn() bool {
	return c.position > 0
}

func (c *ColorLight) Position() float64 {
	return c.position
}

func (c *ColorLight) Brightness() int {
	return convert.ToDisplayLevel(c.position)
}

// HubColorTemp is the last reported colour temperature in Kelvin.
func (c *ColorLight) HubColorTemp() float64 {
	return c.hubColorTemp
}

// ColorTemp is the colour temperature in mireds.
func (c *ColorLight) ColorTemp() int {
	return int(math.Round(convert.ToDisplayColorTemp(c.hubColorTemp)))
}

func (c *ColorLight) RGB() [3]uint8 {
	return c.rgb
}

func (c *ColorLight) HSColor() [2]float64 {
	h, s := convert.RGBToHS(c.rgb[0], c.rgb[1], c.rgb[2])
	return [2]float64{h, s}
}

func (c *ColorLight) ApplyEvent(role model.Role, raw any) (bool, error) {
	if role != model.RoleColor {
		return false, nil
	}
	id := c.identifierFor(role)
	text, err := toText(raw)
	if err != nil {
		return false, newParseError(id, raw, err)
	}
	v, err := ParseColor(text)
	if err != nil {
		return false, newParseError(id, raw, err)
	}

	before := *c
	switch v.Tag {
	case model.PayloadHSV:
		r, g, b := convert.HSToRGB(v.Args[0], v.Args[1])
		c.rgb = [3]uint8{r, g, b}
		c.position = v.Args[2]
	case model.PayloadTemp:
		c.position = v.Args[0]
		c.hubColorTemp = v.Args[1]
	default:
		return false, newParseError(id, raw, fmt.Errorf("unknown colour tag %q", v.Tag))
	}
	return before.position != c.position || before.rgb != c.rgb || before.hubColorTemp != c.hubColorTemp, nil
}

func (c *ColorLight) Attributes() map[string]any {
	attrs := c.attributes()
	attrs[model.AttrUUID] = c.actionID.String()
	attrs[model.AttrBrightness] = c.Brightness()
	attrs[model.AttrHSColor] = c.HSColor()
	attrs[model.AttrColorTemp] = c.ColorTemp()
	attrs[model.AttrMinMireds] = int(convert.MinMireds)
	attrs[model.AttrMaxMireds] = int(convert.MaxMireds)
	return attrs
}
