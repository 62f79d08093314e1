package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/loxone-integration/internal/pkg/convert"
	"github.com/anicoll/loxone-integration/internal/pkg/device"
	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

// objectID derives topic and map keys from the light's uuid; names may be
// shared between rooms.
func objectID(uuid model.Identifier) string {
	return slug.Make(uuid.String())
}

func configTopic(prefix, id string) string {
	return fmt.Sprintf("%s/light/%s/config", prefix, id)
}

func lightTopic(id, suffix string) string {
	return fmt.Sprintf("%s/%s/%s", baseTopic, id, suffix)
}

// RegisterDevice publishes a retained discovery config for light.
func (s *service) RegisterDevice(light model.Light) error {
	id := objectID(light.UUID)
	payload, err := json.Marshal(registerMsg(id, light))
	if err != nil {
		return err
	}
	if err := wait(s.client.Publish(configTopic(s.prefix, id), 1, true, payload)); err != nil {
		return fmt.Errorf("publish discovery for %s: %w", light.Name, err)
	}

	s.mu.Lock()
	s.lights[id] = light
	s.effects[id] = strings.Join(light.Effects, ",")
	s.mu.Unlock()
	return nil
}

func (s *service) Write(ctx context.Context, data []model.StateSnapshot) error {
	for _, d := range data {
		if err := s.reRegister(d); err != nil {
			return err
		}
		if err := s.PublishState(d); err != nil {
			return err
		}
	}
	return nil
}

// reRegister refreshes the discovery config of a light controller whose
// scene list changed since it was announced.
func (s *service) reRegister(d model.StateSnapshot) error {
	effects, ok := d.Attributes[model.AttrEffectList].([]string)
	if !ok {
		return nil
	}
	id := objectID(d.UUID)

	s.mu.Lock()
	light, known := s.lights[id]
	changed := known && s.effects[id] != strings.Join(effects, ",")
	s.mu.Unlock()
	if !changed {
		return nil
	}

	light.Effects = effects
	s.logger.Info("scene list changed", zap.String("device", d.Name), zap.Strings("scenes", effects))
	return s.RegisterDevice(light)
}

func (s *service) PublishState(d model.StateSnapshot) error {
	id := objectID(d.UUID)

	state, err := json.Marshal(lightState(d))
	if err != nil {
		return err
	}
	if err := wait(s.client.Publish(lightTopic(id, "state"), 0, false, state)); err != nil {
		return fmt.Errorf("publish state for %s: %w", d.Name, err)
	}

	attrs, err := json.Marshal(d.Attributes)
	if err != nil {
		return err
	}
	if err := wait(s.client.Publish(lightTopic(id, "attributes"), 0, false, attrs)); err != nil {
		return fmt.Errorf("publish attributes for %s: %w", d.Name, err)
	}
	return nil
}

func lightState(d model.StateSnapshot) model.LightState {
	ls := model.LightState{State: model.StateOff}
	if d.IsOn() {
		ls.State = model.StateOn
	}

	switch d.Kind {
	case device.KindDimmer.String():
		ls.ColorMode = "brightness"
	case device.KindColorLight.String():
		ls.ColorMode = "hs"
		if hs, ok := d.Attributes[model.AttrHSColor].([2]float64); ok {
			ls.Color = &model.HSColor{H: hs[0], S: hs[1]}
		}
		if ct, ok := d.Attributes[model.AttrColorTemp].(int); ok {
			ls.ColorTemp = &ct
		}
	default:
		ls.ColorMode = "onoff"
	}
	if b, ok := d.Attributes[model.AttrBrightness].(int); ok {
		ls.Brightness = &b
	}
	if scene, ok := d.Attributes[model.AttrSelectedScene].(string); ok {
		ls.Effect = &scene
	}
	return ls
}

func registerMsg(id string, light model.Light) model.RegisterMessage {
	msg := model.RegisterMessage{
		Tilda:           fmt.Sprintf("%s/%s", baseTopic, id),
		Name:            light.Name,
		ID:              fmt.Sprintf("%s_%s", baseTopic, id),
		Schema:          "json",
		StateTopic:      "~/state",
		CommandTopic:    "~/set",
		AttributesTopic: "~/attributes",
		Device: model.RegisterDevice{
			Name:          light.Name,
			Identifiers:   []string{light.UUID.String()},
			Model:         light.Kind,
			Manufacturer:  manufacturer,
			SuggestedArea: light.Room,
		},
	}

	switch light.Kind {
	case device.KindDimmer.String():
		msg.Brightness = true
		msg.SupportedColorModes = []string{"brightness"}
	case device.KindColorLight.String():
		msg.Brightness = true
		msg.SupportedColorModes = []string{"hs", "color_temp"}
		msg.MinMireds = int(convert.MinMireds)
		msg.MaxMireds = int(convert.MaxMireds)
	case device.KindSceneController.String():
		msg.SupportedColorModes = []string{"onoff"}
		msg.Effect = true
		msg.EffectList = lo.Compact(light.Effects)
	default:
		msg.SupportedColorModes = []string{"onoff"}
	}
	return msg
}
