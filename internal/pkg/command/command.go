// Package command encodes user requests into miniserver commands.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/anicoll/loxone-integration/internal/pkg/convert"
	"github.com/anicoll/loxone-integration/internal/pkg/device"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

var (
	ErrUnsupportedDevice = errors.New("command: unsupported device")
	ErrUnknownAction     = errors.New("command: unknown action")
)

type Action string

const (
	ActionTurnOn  Action = "turn_on"
	ActionTurnOff Action = "turn_off"
)

// Request is a turn on/off request with optional parameters. Brightness is
// on the 0-255 display scale and ColorTemp in mireds. Scene holds a scene
// name (or id), or a comma separated list of them.
type Request struct {
	Action     Action
	Brightness *int
	ColorTemp  *int
	HSColor    *[2]float64
	Scene      *string
}

func TurnOn() Request  { return Request{Action: ActionTurnOn} }
func TurnOff() Request { return Request{Action: ActionTurnOff} }

func SetBrightness(v int) Request {
	return Request{Action: ActionTurnOn, Brightness: &v}
}

func SetColorTemp(mireds int) Request {
	return Request{Action: ActionTurnOn, ColorTemp: &mireds}
}

func SetHSColor(h, s float64) Request {
	return Request{Action: ActionTurnOn, HSColor: &[2]float64{h, s}}
}

func SetScene(scene string) Request {
	return Request{Action: ActionTurnOn, Scene: &scene}
}

// Encode returns the commands that carry out req on dev, addressed to the
// device's action identifier.
func Encode(dev device.Device, req Request) ([]model.OutboundCommand, error) {
	var payloads []string
	switch req.Action {
	case ActionTurnOff:
		payloads = []string{offPayload(dev)}
	case ActionTurnOn:
		var err error
		if payloads, err = onPayloads(dev, req); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}

	return lo.Map(payloads, func(p string, _ int) model.OutboundCommand {
		return model.OutboundCommand{UUID: dev.ActionID(), Value: p}
	}), nil
}

func offPayload(dev device.Device) string {
	if dev.Kind() == device.KindColorLight {
		return model.PayloadSetBrightness + "0"
	}
	return model.PayloadOff
}

func onPayloads(dev device.Device, req Request) ([]string, error) {
	switch d := dev.(type) {
	case *device.Switch:
		return []string{model.PayloadOn}, nil
	case *device.Dimmer:
		if req.Brightness != nil {
			return []string{formatNumber(convert.ToHubLevel(*req.Brightness))}, nil
		}
		return []string{model.PayloadOn}, nil
	case *device.ColorLight:
		return []string{colorPayload(d, req)}, nil
	case *device.SceneController:
		return scenePayloads(d, req), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedDevice, dev)
	}
}

func colorPayload(d *device.ColorLight, req Request) string {
	switch {
	case req.Brightness != nil:
		return fmt.Sprintf("%s(%d,%d)", model.PayloadTemp,
			int(convert.ToHubLevel(*req.Brightness)), int(d.HubColorTemp()))
	case req.ColorTemp != nil:
		return fmt.Sprintf("%s(%s,%d)", model.PayloadTemp,
			formatNumber(d.Position()), int(convert.ToHubColorTemp(float64(*req.ColorTemp))))
	case req.HSColor != nil:
		r, g, b := convert.HSToRGB(req.HSColor[0], req.HSColor[1])
		h, s, v := convert.RGBToHSV(r, g, b)
		return fmt.Sprintf("%s(%s,%s,%s)", model.PayloadHSV, formatNumber(h), formatNumber(s), formatNumber(v))
	default:
		return model.PayloadSetBrightness + "1"
	}
}

// scenePayloads selects one scene with changeTo, or several by clearing the
// controller and adding each resolvable scene. Unknown single names fall back
// to stepping to the next scene.
func scenePayloads(d *device.SceneController, req Request) []string {
	if req.Scene == nil {
		return []string{model.PayloadPlus}
	}

	names := strings.Split(*req.Scene, ",")
	if len(names) == 1 {
		id, ok := d.ResolveSceneID(strings.TrimSpace(names[0]))
		if !ok {
			return []string{model.PayloadPlus}
		}
		return []string{model.PayloadChangeTo + id.String()}
	}

	ids := lo.FilterMap(names, func(name string, _ int) (model.SceneID, bool) {
		return d.ResolveSceneID(strings.TrimSpace(name))
	})
	payloads := []string{model.PayloadOff}
	for _, id := range ids {
		payloads = append(payloads, model.PayloadAddMood+id.String())
	}
	return payloads
}

// formatNumber writes f in its shortest decimal form with no trailing ".0":
// 100 is sent as "100", 37.5 as "37.5". The miniserver accepts either form.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
