package kingdom

import "slices"

// Delta accumulates the changes a turn (or a single action) made.
type Delta struct {
	XP     int `json:"xp"`
	Fame   int `json:"fame"`
	Infamy int `json:"infamy"`
	Unrest int `json:"unrest"`
	RP     int `json:"rp"`

	Ruin        map[Ruin]int      `json:"ruin"`
	Commodities map[Commodity]int `json:"commodities"`

	HexesClaimed         []Coord  `json:"hexes_claimed"`
	HexesAbandoned       []Coord  `json:"hexes_abandoned"`
	StructuresBuilt      []string `json:"structures_built"`
	StructuresDemolished []string `json:"structures_demolished"`
}

// NewDelta returns an empty Delta with allocated maps.
func NewDelta() Delta {
	return Delta{
		Ruin:        make(map[Ruin]int),
		Commodities: make(map[Commodity]int),
	}
}

// Add returns the element-wise sum of d and o.
func (d Delta) Add(o Delta) Delta {
	out := NewDelta()
	out.XP = d.XP + o.XP
	out.Fame = d.Fame + o.Fame
	out.Infamy = d.Infamy + o.Infamy
	out.Unrest = d.Unrest + o.Unrest
	out.RP = d.RP + o.RP
	for _, src := range []map[Ruin]int{d.Ruin, o.Ruin} {
		for r, n := range src {
			out.Ruin[r] += n
		}
	}
	for _, src := range []map[Commodity]int{d.Commodities, o.Commodities} {
		for c, n := range src {
			out.Commodities[c] += n
		}
	}
	out.normalize()
	out.HexesClaimed = concat(d.HexesClaimed, o.HexesClaimed)
	out.HexesAbandoned = concat(d.HexesAbandoned, o.HexesAbandoned)
	out.StructuresBuilt = concat(d.StructuresBuilt, o.StructuresBuilt)
	out.StructuresDemolished = concat(d.StructuresDemolished, o.StructuresDemolished)
	return out
}

// IsZero reports whether d records no change at all.
func (d Delta) IsZero() bool {
	c := d.Normalized()
	return c.XP == 0 && c.Fame == 0 && c.Infamy == 0 && c.Unrest == 0 && c.RP == 0 &&
		len(c.Ruin) == 0 && len(c.Commodities) == 0 &&
		len(c.HexesClaimed) == 0 && len(c.HexesAbandoned) == 0 &&
		len(c.StructuresBuilt) == 0 && len(c.StructuresDemolished) == 0
}

// Normalized returns a canonical copy of d: zero map entries dropped, maps
// allocated, empty lists nil, and hex and structure lists sorted. Two deltas
// describing the same change are equal after normalization.
func (d Delta) Normalized() Delta {
	c := d.clone()
	if c.Ruin == nil {
		c.Ruin = make(map[Ruin]int)
	}
	if c.Commodities == nil {
		c.Commodities = make(map[Commodity]int)
	}
	c.normalize()
	c.HexesClaimed = sortedCoords(c.HexesClaimed)
	c.HexesAbandoned = sortedCoords(c.HexesAbandoned)
	c.StructuresBuilt = sortedStrings(c.StructuresBuilt)
	c.StructuresDemolished = sortedStrings(c.StructuresDemolished)
	return c
}

func sortedCoords(in []Coord) []Coord {
	if len(in) == 0 {
		return nil
	}
	slices.SortFunc(in, func(a, b Coord) int {
		if a.Col != b.Col {
			return a.Col - b.Col
		}
		return a.Row - b.Row
	})
	return in
}

func sortedStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	slices.Sort(in)
	return in
}

// normalize drops zero entries so that equal deltas compare equal.
func (d *Delta) normalize() {
	for r, n := range d.Ruin {
		if n == 0 {
			delete(d.Ruin, r)
		}
	}
	for c, n := range d.Commodities {
		if n == 0 {
			delete(d.Commodities, c)
		}
	}
}

func concat[T any](a, b []T) []T {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Diff computes the normalized Delta that turns before into after. Structure
// lists are multiset differences over all settlements.
func Diff(before, after *Kingdom) Delta {
	d := NewDelta()
	d.XP = after.XP - before.XP
	d.Fame = after.Fame - before.Fame
	d.Infamy = after.Infamy - before.Infamy
	d.Unrest = after.Unrest - before.Unrest
	d.RP = after.RP - before.RP
	for _, r := range Ruins {
		d.Ruin[r] = after.Ruins[r].Score - before.Ruins[r].Score
	}
	for _, c := range Commodities {
		d.Commodities[c] = after.Commodities[c].Amount - before.Commodities[c].Amount
	}
	d.normalize()

	for _, h := range after.Hexes {
		prev := before.Hex(h.Coord)
		wasClaimed := prev != nil && prev.Status == Claimed
		switch {
		case h.Status == Claimed && !wasClaimed:
			d.HexesClaimed = append(d.HexesClaimed, h.Coord)
		case h.Status != Claimed && wasClaimed:
			d.HexesAbandoned = append(d.HexesAbandoned, h.Coord)
		}
	}

	counts := make(map[string]int)
	for _, s := range before.Settlements {
		for _, p := range s.Structures {
			counts[p.StructureID]--
		}
	}
	for _, s := range after.Settlements {
		for _, p := range s.Structures {
			counts[p.StructureID]++
		}
	}
	for _, id := range sortedKeys(counts) {
		for n := counts[id]; n > 0; n-- {
			d.StructuresBuilt = append(d.StructuresBuilt, id)
		}
		for n := counts[id]; n < 0; n++ {
			d.StructuresDemolished = append(d.StructuresDemolished, id)
		}
	}
	return d.Normalized()
}
