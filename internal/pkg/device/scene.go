package device

import (
	"fmt"
	"slices"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

// SceneController is a LightControllerV2. Its moods are the scenes.
type SceneController struct {
	base
	favoriteMoodsID model.Identifier
	state           string
	active          []model.SceneID
	additional      []model.SceneID
	scenes          []model.Scene
}

// NewSceneController tracks the controller's own uuid plus the mood states
// found in states.
func NewSceneController(info Info, actionID model.Identifier, states map[model.Role]model.Identifier) *SceneController {
	return &SceneController{
		base: newBase(info, actionID, actionID, "lightcontrollerv2",
			Tracked{Role: model.RoleAction, ID: actionID},
			Tracked{Role: model.RoleActiveMoods, ID: states[model.RoleActiveMoods]},
			Tracked{Role: model.RoleMoodList, ID: states[model.RoleMoodList]},
			Tracked{Role: model.RoleAdditionalMoods, ID: states[model.RoleAdditionalMoods]},
		),
		favoriteMoodsID: states[model.RoleFavoriteMoods],
	}
}

func (c *SceneController) Kind() Kind { return KindSceneController }

// IsOn is false only when the active moods are exactly the off mood.
func (c *SceneController) IsOn() bool {
	return !slices.Equal(c.active, []model.SceneID{model.OffSceneID})
}

func (c *SceneController) State() string {
	return c.state
}

func (c *SceneController) FavoriteMoodsID() model.Identifier {
	return c.favoriteMoodsID
}

func (c *SceneController) ActiveScenes() []model.SceneID {
	return slices.Clone(c.active)
}

func (c *SceneController) AdditionalScenes() []model.SceneID {
	return slices.Clone(c.additional)
}

func (c *SceneController) Scenes() []model.Scene {
	return slices.Clone(c.scenes)
}

// ResolveSceneID looks a scene name up in the current catalogue. When the
// name is unknown the input is returned unchanged with ok false.
func (c *SceneController) ResolveSceneID(nameOrID string) (model.SceneID, bool) {
	for _, s := range c.scenes {
		if s.Name == nameOrID {
			return s.ID, true
		}
	}
	return model.SceneID(nameOrID), false
}

// SceneName returns the name of id, or the id itself when it is not catalogued.
func (c *SceneController) SceneName(id model.SceneID) string {
	for _, s := range c.scenes {
		if s.ID == id {
			return s.Name
		}
	}
	return id.String()
}

// SelectedScene is the name of the active scene when exactly one is active.
func (c *SceneController) SelectedScene() (string, bool) {
	if len(c.active) != 1 {
		return "", false
	}
	return c.SceneName(c.active[0]), true
}

func (c *SceneController) SceneNames() []string {
	names := make([]string, 0, len(c.scenes))
	for _, s := range c.scenes {
		names = append(names, s.Name)
	}
	return names
}

func (c *SceneController) ApplyEvent(role model.Role, raw any) (bool, error) {
	id := c.identifierFor(role)
	switch role {
	case model.RoleAction:
		v := fmt.Sprint(raw)
		changed := v != c.state
		c.state = v
		return changed, nil
	case model.RoleActiveMoods:
		ids, err := c.parseIDs(id, raw)
		if err != nil {
			return false, err
		}
		changed := !slices.Equal(ids, c.active)
		c.active = ids
		return changed, nil
	case model.RoleAdditionalMoods:
		ids, err := c.parseIDs(id, raw)
		if err != nil {
			return false, err
		}
		changed := !slices.Equal(ids, c.additional)
		c.additional = ids
		return changed, nil
	case model.RoleMoodList:
		text, err := toText(raw)
		if err != nil {
			return false, newParseError(id, raw, err)
		}
		scenes, err := ParseScenes(text)
		if err != nil {
			return false, newParseError(id, raw, err)
		}
		changed := !slices.Equal(scenes, c.scenes)
		c.scenes = scenes
		return changed, nil
	}
	return false, nil
}

func (c *SceneController) parseIDs(id model.Identifier, raw any) ([]model.SceneID, error) {
	text, err := toText(raw)
	if err != nil {
		return nil, newParseError(id, raw, err)
	}
	ids, err := ParseSceneIDs(text)
	if err != nil {
		return nil, newParseError(id, raw, err)
	}
	return ids, nil
}

func (c *SceneController) Attributes() map[string]any {
	attrs := c.attributes()
	if name, ok := c.SelectedScene(); ok {
		attrs[model.AttrSelectedScene] = name
	} else {
		attrs[model.AttrSelectedScene] = nil
	}
	attrs[model.AttrEffectList] = c.SceneNames()
	return attrs
}
