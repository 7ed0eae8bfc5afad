package models

// UID identifies a world object. UIDs are assigned by the server or the
// replay file, never by the client.
type UID int64

// Well-known Type groups.
const (
	GroupTank  = "tank"
	GroupBlock = "block"
)

// Type is the static descriptor shared by every entity created under the
// same name. The core only looks at Group, the default dimensions and HP;
// Parts are passed through to the renderer.
type Type struct {
	Name   string   `json:"-"`
	Group  string   `json:"group"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	HP     *float64 `json:"hp,omitempty"`
	Parts  []Part   `json:"parts"`
}

// IsTank reports whether entities of this type are player-controlled tanks.
func (t *Type) IsTank() bool {
	return t != nil && t.Group == GroupTank
}

// Part is one sprite of a Type's visual model. Offsets and sizes are
// relative to the entity's width and height.
type Part struct {
	Img     string  `json:"img"`
	XOffset float64 `json:"xOffset"`
	YOffset float64 `json:"yOffset"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	BgColor bool    `json:"bgColor"`
}
