package model

type RegisterDevice struct {
	Name          string   `json:"name"`
	Identifiers   []string `json:"identifiers"`
	Model         string   `json:"model"`
	Manufacturer  string   `json:"manufacturer"`
	SuggestedArea string   `json:"suggested_area,omitempty"`
}

// RegisterMessage is a Home Assistant MQTT light discovery payload (json schema).
type RegisterMessage struct {
	Tilda               string         `json:"~"`
	Name                string         `json:"name"`
	ID                  string         `json:"unique_id"`
	Schema              string         `json:"schema"`
	StateTopic          string         `json:"state_topic"`
	CommandTopic        string         `json:"command_topic"`
	AttributesTopic     string         `json:"json_attributes_topic"`
	Brightness          bool           `json:"brightness"`
	SupportedColorModes []string       `json:"supported_color_modes,omitempty"`
	Effect              bool           `json:"effect,omitempty"`
	EffectList          []string       `json:"effect_list,omitempty"`
	MinMireds           int            `json:"min_mireds,omitempty"`
	MaxMireds           int            `json:"max_mireds,omitempty"`
	Device              RegisterDevice `json:"device"`
}

type HSColor struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
}

// LightState is the json schema state and command payload.
type LightState struct {
	State      string   `json:"state"`
	Brightness *int     `json:"brightness,omitempty"`
	ColorMode  string   `json:"color_mode,omitempty"`
	Color      *HSColor `json:"color,omitempty"`
	ColorTemp  *int     `json:"color_temp,omitempty"`
	Effect     *string  `json:"effect,omitempty"`
}

const (
	StateOn  = "ON"
	StateOff = "OFF"
)
