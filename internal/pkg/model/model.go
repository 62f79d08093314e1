package model

// Event is one batch of decoded miniserver values keyed by identifier.
// Values are strings or numbers.
type Event map[Identifier]any

// OutboundCommand is a single message for the miniserver.
type OutboundCommand struct {
	UUID  Identifier `json:"uuid"`
	Value string     `json:"value"`
}

// SceneID identifies a light controller mood. The miniserver uses
// integers, but ids are carried as text so they can be echoed verbatim.
type SceneID string

func (id SceneID) String() string {
	return string(id)
}

type Scene struct {
	ID   SceneID `json:"id"`
	Name string  `json:"name"`
}

// DeviceDescriptor is a control entry of the miniserver structure file.
type DeviceDescriptor struct {
	Name        string                       `json:"name"`
	UUIDAction  Identifier                   `json:"uuidAction"`
	States      map[Role]Identifier          `json:"states"`
	Room        string                       `json:"room"`
	Cat         string                       `json:"cat"`
	Type        ControlType                  `json:"type"`
	SubControls map[string]*DeviceDescriptor `json:"subControls"`
}

// State returns the identifier for role, or "" when the control has none.
func (d *DeviceDescriptor) State(role Role) Identifier {
	if d.States == nil {
		return ""
	}
	return d.States[role]
}

type NamedEntry struct {
	Name string `json:"name"`
}

// Catalog is the subset of the structure file this integration reads.
type Catalog struct {
	Controls map[string]*DeviceDescriptor `json:"controls"`
	Rooms    map[string]NamedEntry        `json:"rooms"`
	Cats     map[string]NamedEntry        `json:"cats"`
}

// RoomName resolves a room uuid, returning "" for unknown rooms.
func (c *Catalog) RoomName(uuid string) string {
	return c.Rooms[uuid].Name
}

// CategoryName resolves a category uuid, returning "" for unknown categories.
func (c *Catalog) CategoryName(uuid string) string {
	return c.Cats[uuid].Name
}
