// Package scenario describes scenes as JSON documents and builds them.
package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cbodonnell/rigid2d/pkg/polygon"
	"github.com/cbodonnell/rigid2d/pkg/vector"
)

// Shape kinds
const (
	ShapeRectangle = "rect"
	ShapeOval      = "oval"
	ShapeRegular   = "regular"
	ShapeTriangle  = "triangle"
	ShapePoints    = "points"
)

// Interaction kinds
const (
	InteractionGravity     = "gravity"
	InteractionSpring      = "spring"
	InteractionDrag        = "drag"
	InteractionPhysics     = "physics"
	InteractionDestructive = "destructive"
	InteractionOneWay      = "oneway"
	InteractionConstant    = "constant"
)

// TagPrefix marks an interaction selector that matches every body carrying
// the tag, e.g. "#tile".
const TagPrefix = "#"

// DefaultOvalSides is used when an oval or regular shape omits Sides.
const DefaultOvalSides = 32

// Scenario is a serializable scene definition.
type Scenario struct {
	Name         string            `json:"name"`
	World        World             `json:"world"`
	Bodies       []BodySpec        `json:"bodies"`
	Interactions []InteractionSpec `json:"interactions,omitempty"`
}

// World is the rectangle the scene is expected to stay in. It sizes the
// broad phase and the viewers.
type World struct {
	Origin   vector.Vector `json:"origin"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	CellSize int           `json:"cellSize,omitempty"`
}

type BodySpec struct {
	Name          string        `json:"name,omitempty"`
	Shape         ShapeSpec     `json:"shape"`
	Mass          Mass          `json:"mass"`
	Color         polygon.Color `json:"color"`
	Position      vector.Vector `json:"position"`
	Velocity      vector.Vector `json:"velocity"`
	Rotation      float64       `json:"rotation,omitempty"`
	RotationSpeed float64       `json:"rotationSpeed,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
}

// ShapeSpec describes a convex shape centered on the body's position.
// Points are relative to the position and must be counter-clockwise.
type ShapeSpec struct {
	Kind    string          `json:"kind"`
	Width   float64         `json:"width,omitempty"`
	Height  float64         `json:"height,omitempty"`
	Radius  float64         `json:"radius,omitempty"`
	RadiusY float64         `json:"radiusY,omitempty"`
	Sides   int             `json:"sides,omitempty"`
	Points  []vector.Vector `json:"points,omitempty"`
}

// InteractionSpec wires a force creator between bodies. Bodies entries are
// body names or TagPrefix selectors. Pairwise kinds take exactly two
// entries and are created for every distinct pair they select.
type InteractionSpec struct {
	Kind     string        `json:"kind"`
	Bodies   []string      `json:"bodies"`
	Constant float64       `json:"constant,omitempty"`
	Vector   vector.Vector `json:"vector"`
	Speed    float64       `json:"speed,omitempty"`
}

// Tag is the info payload of every body built from a BodySpec.
type Tag struct {
	Name string
	Tags []string
}

func (t *Tag) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Mass is a body mass that encodes +Inf as the JSON string "inf".
type Mass float64

// Infinite is the mass of an immovable body.
var Infinite = Mass(math.Inf(1))

func (m Mass) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(m), 1) {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(m))
}

func (m *Mass) UnmarshalJSON(data []byte) error {
	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*m = Mass(number)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("failed to decode mass %s: must be a number or \"inf\"", string(data))
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "inf", "+inf", "infinity", "+infinity":
		*m = Infinite
		return nil
	}
	number, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("failed to parse mass %q: %v", text, err)
	}
	*m = Mass(number)
	return nil
}

// Decode reads one JSON scenario from r. Unknown fields are rejected.
func Decode(r io.Reader) (*Scenario, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	sc := &Scenario{}
	if err := decoder.Decode(sc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %v", err)
	}
	return sc, nil
}

func Encode(w io.Writer, sc *Scenario) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(sc); err != nil {
		return fmt.Errorf("failed to encode scenario: %v", err)
	}
	return nil
}

// Load reads a scenario file. An empty path returns the built-in demo.
func Load(path string) (*Scenario, error) {
	if path == "" {
		return Demo(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file: %v", err)
	}
	defer f.Close()

	sc, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if err := Validate(sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %v", path, err)
	}
	return sc, nil
}
