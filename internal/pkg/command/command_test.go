package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/loxone-integration/internal/pkg/device"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

func payloads(cmds []model.OutboundCommand) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Value)
	}
	return out
}

func newScenes(t *testing.T) *device.SceneController {
	t.Helper()
	d := device.NewSceneController(device.Info{Name: "Living"}, "lc-action", map[model.Role]model.Identifier{
		model.RoleMoodList: "lc-moods",
	})
	_, err := d.ApplyEvent(model.RoleMoodList,
		`[{"name":"Reading","id":3,"static":False},{"name":"Dinner","id":4,"static":False}]`)
	require.NoError(t, err)
	return d
}

func TestEncodeSwitch(t *testing.T) {
	s := device.NewSwitch(device.Info{Name: "Desk"}, "desk-state", "desk-action")

	cmds, err := Encode(s, TurnOn())
	require.NoError(t, err)
	assert.Equal(t, []model.OutboundCommand{{UUID: "desk-action", Value: "on"}}, cmds)

	cmds, err = Encode(s, SetBrightness(10))
	require.NoError(t, err)
	assert.Equal(t, []string{"on"}, payloads(cmds))

	cmds, err = Encode(s, TurnOff())
	require.NoError(t, err)
	assert.Equal(t, []model.OutboundCommand{{UUID: "desk-action", Value: "off"}}, cmds)
}

func TestEncodeDimmer(t *testing.T) {
	d := device.NewDimmer(device.Info{Name: "Hall"}, "hall-a", "hall-p")

	tests := map[string]struct {
		req  Request
		want string
	}{
		"full":    {req: SetBrightness(255), want: "100"},
		"zero":    {req: SetBrightness(0), want: "0"},
		"partial": {req: SetBrightness(51), want: "20"},
		"on":      {req: TurnOn(), want: "on"},
		"off":     {req: TurnOff(), want: "off"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cmds, err := Encode(d, tt.req)
			require.NoError(t, err)
			require.Len(t, cmds, 1)
			assert.Equal(t, model.Identifier("hall-a"), cmds[0].UUID)
			assert.Equal(t, tt.want, cmds[0].Value)
		})
	}
}

func TestEncodeColorLight(t *testing.T) {
	c := device.NewColorLight(device.Info{Name: "Strip"}, "strip-a", "strip-c")
	_, err := c.ApplyEvent(model.RoleColor, "temp(40,3500)")
	require.NoError(t, err)

	tests := map[string]struct {
		req  Request
		want string
	}{
		"brightness": {req: SetBrightness(255), want: "temp(100,3500)"},
		"color temp": {req: SetColorTemp(500), want: "temp(40,2700)"},
		"hs red":     {req: SetHSColor(0, 100), want: "hsv(0,100,100)"},
		"hs blue":    {req: SetHSColor(240, 100), want: "hsv(240,100,100)"},
		"on":         {req: TurnOn(), want: "setBrightness/1"},
		"off":        {req: TurnOff(), want: "setBrightness/0"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cmds, err := Encode(c, tt.req)
			require.NoError(t, err)
			assert.Equal(t, []model.OutboundCommand{{UUID: "strip-a", Value: tt.want}}, cmds)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[string]struct {
		in   float64
		want string
	}{
		"zero":     {in: 0, want: "0"},
		"whole":    {in: 100, want: "100"},
		"fraction": {in: 37.5, want: "37.5"},
		"small":    {in: 0.1, want: "0.1"},
		"negative": {in: -2.25, want: "-2.25"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatNumber(tt.in))
		})
	}
}

func TestEncodeSceneController(t *testing.T) {
	d := newScenes(t)

	tests := map[string]struct {
		req  Request
		want []string
	}{
		"known scene":        {req: SetScene("Reading"), want: []string{"changeTo/3"}},
		"unknown scene":      {req: SetScene("Party"), want: []string{"plus"}},
		"no scene":           {req: TurnOn(), want: []string{"plus"}},
		"off":                {req: TurnOff(), want: []string{"off"}},
		"multi with unknown": {req: SetScene("Reading,Party"), want: []string{"off", "addMood/3"}},
		"multi spaced":       {req: SetScene("Reading, Dinner"), want: []string{"off", "addMood/3", "addMood/4"}},
		"multi all unknown":  {req: SetScene("A,B"), want: []string{"off"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cmds, err := Encode(d, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, payloads(cmds))
			for _, c := range cmds {
				assert.Equal(t, model.Identifier("lc-action"), c.UUID)
			}
		})
	}
}

func TestEncodeUnknownAction(t *testing.T) {
	d := device.NewDimmer(device.Info{Name: "Hall"}, "hall-a", "hall-p")
	_, err := Encode(d, Request{Action: "toggle"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

type otherDevice struct {
	device.Device
}

func (otherDevice) Kind() device.Kind          { return "other" }
func (otherDevice) ActionID() model.Identifier { return "x" }

func TestEncodeUnsupportedDevice(t *testing.T) {
	_, err := Encode(otherDevice{}, TurnOn())
	assert.ErrorIs(t, err, ErrUnsupportedDevice)
}
