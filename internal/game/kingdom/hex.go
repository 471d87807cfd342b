package kingdom

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Terrain is a hex's dominant terrain.
type Terrain string

const (
	Plains    Terrain = "plains"
	Forest    Terrain = "forest"
	Hills     Terrain = "hills"
	Mountains Terrain = "mountains"
	Swamp     Terrain = "swamp"
	Lake      Terrain = "lake"
	Desert    Terrain = "desert"
)

// Terrains lists every terrain.
var Terrains = []Terrain{Plains, Forest, Hills, Mountains, Swamp, Lake, Desert}

// Valid reports whether t is a known terrain.
func (t Terrain) Valid() bool {
	return slices.Contains(Terrains, t)
}

// HexStatus tracks a hex through unexplored → explored → claimed.
type HexStatus string

const (
	Unexplored HexStatus = "unexplored"
	Explored   HexStatus = "explored"
	Claimed    HexStatus = "claimed"
)

// WorkSite is a production facility attached to a hex.
type WorkSite string

const (
	NoWorkSite WorkSite = ""
	Farm       WorkSite = "farm"
	LumberCamp WorkSite = "lumber_camp"
	Mine       WorkSite = "mine"
	Quarry     WorkSite = "quarry"
)

// Produces returns the commodity a work site yields each upkeep.
func (w WorkSite) Produces() (Commodity, bool) {
	switch w {
	case Farm:
		return Food, true
	case LumberCamp:
		return Lumber, true
	case Mine:
		return Ore, true
	case Quarry:
		return Stone, true
	}
	return "", false
}

// Coord addresses a hex by column and row in the offset ("brick") layout.
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// String formats c as "col,row".
func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.Col, c.Row)
}

// ParseCoord parses "col,row".
func ParseCoord(s string) (Coord, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coord{}, fmt.Errorf("hex coordinate %q: want \"col,row\"", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Coord{}, fmt.Errorf("hex coordinate %q: column: %w", s, err)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Coord{}, fmt.Errorf("hex coordinate %q: row: %w", s, err)
	}
	return Coord{Col: col, Row: row}, nil
}

// Neighbour deltas for the pointed-top brick layout. Even and odd columns are
// shifted half a hex relative to each other, so each parity has its own set.
var (
	evenColumnDeltas = [6]Coord{{0, -1}, {1, -1}, {1, 0}, {0, 1}, {-1, 0}, {-1, -1}}
	oddColumnDeltas  = [6]Coord{{0, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}}
)

// Neighbors returns the six coordinates adjacent to c.
func (c Coord) Neighbors() [6]Coord {
	deltas := evenColumnDeltas
	if c.Col%2 != 0 {
		deltas = oddColumnDeltas
	}
	var out [6]Coord
	for i, d := range deltas {
		out[i] = Coord{Col: c.Col + d.Col, Row: c.Row + d.Row}
	}
	return out
}

// Adjacent reports whether a and b share an edge.
func Adjacent(a, b Coord) bool {
	for _, n := range a.Neighbors() {
		if n == b {
			return true
		}
	}
	return false
}

// Hex is one map cell.
type Hex struct {
	Coord           Coord     `json:"coord"`
	Terrain         Terrain   `json:"terrain"`
	Status          HexStatus `json:"status"`
	WorkSite        WorkSite  `json:"work_site,omitempty"`
	BonusProduction bool      `json:"bonus_production,omitempty"`
	Road            bool      `json:"road,omitempty"`
	Fortified       bool      `json:"fortified,omitempty"`
	Hazard          bool      `json:"hazard,omitempty"`
	SettlementID    string    `json:"settlement_id,omitempty"`
}

// Hex returns a pointer to the hex at c, or nil when the map holds no such hex.
func (k *Kingdom) Hex(c Coord) *Hex {
	for i := range k.Hexes {
		if k.Hexes[i].Coord == c {
			return &k.Hexes[i]
		}
	}
	return nil
}

// ClaimedHexCount returns the number of claimed hexes.
func (k *Kingdom) ClaimedHexCount() int {
	n := 0
	for _, h := range k.Hexes {
		if h.Status == Claimed {
			n++
		}
	}
	return n
}

// BordersTerritory reports whether c is adjacent to at least one claimed hex.
func (k *Kingdom) BordersTerritory(c Coord) bool {
	for _, n := range c.Neighbors() {
		if h := k.Hex(n); h != nil && h.Status == Claimed {
			return true
		}
	}
	return false
}
