package model

// Identifier names a single miniserver data point (a "uuid" in Loxone terms).
type Identifier string

func (i Identifier) String() string {
	return string(i)
}

// Role tags what an identifier means to the device that tracks it.
type Role string

func (r Role) String() string {
	return string(r)
}

const (
	RoleAction          Role = "action"
	RolePosition        Role = "position"
	RoleActive          Role = "active"
	RoleColor           Role = "color"
	RoleActiveMoods     Role = "activeMoods"
	RoleMoodList        Role = "moodList"
	RoleFavoriteMoods   Role = "favoriteMoods"
	RoleAdditionalMoods Role = "additionalMoods"
)

// ControlType is the miniserver control "type" field.
type ControlType string

const (
	ControlTypeLightControllerV2 ControlType = "LightControllerV2"
	ControlTypeDimmer            ControlType = "Dimmer"
	ControlTypeSwitch            ControlType = "Switch"
	ControlTypeColorPickerV2     ControlType = "ColorPickerV2"
)

// Payload tags sent to the miniserver.
const (
	PayloadOn            = "on"
	PayloadOff           = "off"
	PayloadPlus          = "plus"
	PayloadChangeTo      = "changeTo/"
	PayloadAddMood       = "addMood/"
	PayloadSetBrightness = "setBrightness/"
	PayloadHSV           = "hsv"
	PayloadTemp          = "temp"
)

const (
	// Platform is reported under the legacy "plattform" attribute key.
	Platform = "loxone"

	// OffSceneID is the mood the miniserver reports when a light controller is off.
	OffSceneID SceneID = "778"
)

// Attribute keys presented for every device.
const (
	AttrUUID          = "uuid"
	AttrRoom          = "room"
	AttrCategory      = "category"
	AttrDeviceType    = "device_typ"
	AttrPlatform      = "plattform"
	AttrBrightness    = "brightness"
	AttrHSColor       = "hs_color"
	AttrColorTemp     = "color_temp"
	AttrMinMireds     = "min_mireds"
	AttrMaxMireds     = "max_mireds"
	AttrSelectedScene = "selected_scene"
	AttrEffectList    = "effect_list"
)
