package ruleset

import (
	"fmt"
	"os"

	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
)

// MapFile is the optional starting map under a catalog root.
const MapFile = "map.yaml"

// MapHex is one hex of the starting map. Status defaults to unexplored.
type MapHex struct {
	Col     int               `yaml:"col"`
	Row     int               `yaml:"row"`
	Terrain kingdom.Terrain   `yaml:"terrain"`
	Status  kingdom.HexStatus `yaml:"status"`
	Hazard  bool              `yaml:"hazard"`
}

// StartingMap is the region every new kingdom is founded in.
type StartingMap struct {
	Name  string   `yaml:"name"`
	Hexes []MapHex `yaml:"hexes"`
}

// LoadMap parses the starting map file at path.
func LoadMap(path string) (*StartingMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var m StartingMap
	if err := decodeStrict(data, &m); err != nil {
		return nil, fmt.Errorf("parsing map file %s: %w", path, err)
	}
	return &m, nil
}

// NewHexes returns a fresh copy of the map as kingdom hexes.
//
// Postcondition: a nil map yields nil; no claimed hexes are returned.
func (m *StartingMap) NewHexes() []kingdom.Hex {
	if m == nil {
		return nil
	}
	out := make([]kingdom.Hex, 0, len(m.Hexes))
	for _, h := range m.Hexes {
		status := h.Status
		if status == "" {
			status = kingdom.Unexplored
		}
		out = append(out, kingdom.Hex{
			Coord:   kingdom.Coord{Col: h.Col, Row: h.Row},
			Terrain: h.Terrain,
			Status:  status,
			Hazard:  h.Hazard,
		})
	}
	return out
}

func (m *StartingMap) validate() []string {
	var errs []string
	seen := make(map[kingdom.Coord]bool, len(m.Hexes))
	for _, h := range m.Hexes {
		c := kingdom.Coord{Col: h.Col, Row: h.Row}
		if h.Col < 0 || h.Row < 0 {
			errs = append(errs, fmt.Sprintf("map hex %s: coordinates must be >= 0", c))
		}
		if seen[c] {
			errs = append(errs, fmt.Sprintf("map hex %s: duplicate", c))
		}
		seen[c] = true
		if !h.Terrain.Valid() {
			errs = append(errs, fmt.Sprintf("map hex %s: unknown terrain %q", c, h.Terrain))
		}
		switch h.Status {
		case "", kingdom.Unexplored, kingdom.Explored:
		default:
			errs = append(errs, fmt.Sprintf("map hex %s: status must be unexplored or explored, got %q", c, h.Status))
		}
	}
	return errs
}
