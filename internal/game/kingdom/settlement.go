package kingdom

// LotsPerBlock is the number of building lots in one settlement block.
const LotsPerBlock = 4

// Tier is a settlement's size class, derived from the blocks it occupies.
type Tier string

const (
	Village    Tier = "village"
	Town       Tier = "town"
	City       Tier = "city"
	Metropolis Tier = "metropolis"
)

// Placement records a structure occupying Footprint contiguous lots starting at Lot.
type Placement struct {
	StructureID string `json:"structure_id"`
	Lot         int    `json:"lot"`
	Footprint   int    `json:"footprint"`
}

// Settlement is a town on a claimed hex. Structures are referenced by catalog
// identifier only.
type Settlement struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Capital       bool        `json:"capital"`
	Hex           Coord       `json:"hex"`
	WaterAdjacent bool        `json:"water_adjacent"`
	Structures    []Placement `json:"structures"`
}

// OccupiedLots returns the total lots used by placements.
func (s *Settlement) OccupiedLots() int {
	n := 0
	for _, p := range s.Structures {
		n += p.Footprint
	}
	return n
}

// Blocks returns how many blocks the settlement spans: at least one, and
// enough to hold the highest occupied lot.
func (s *Settlement) Blocks() int {
	highest := 0
	for _, p := range s.Structures {
		if end := p.Lot + p.Footprint; end > highest {
			highest = end
		}
	}
	blocks := (highest + LotsPerBlock - 1) / LotsPerBlock
	if blocks < 1 {
		blocks = 1
	}
	return blocks
}

// Tier derives the size class: one block is a village, up to four a town,
// up to nine a city, anything larger a metropolis.
func (s *Settlement) Tier() Tier {
	switch b := s.Blocks(); {
	case b <= 1:
		return Village
	case b <= 4:
		return Town
	case b <= 9:
		return City
	default:
		return Metropolis
	}
}

// HasStructure reports whether a placement of structureID exists.
func (s *Settlement) HasStructure(structureID string) bool {
	for _, p := range s.Structures {
		if p.StructureID == structureID {
			return true
		}
	}
	return false
}

// lotFree reports whether lot is unoccupied.
func (s *Settlement) lotFree(lot int) bool {
	for _, p := range s.Structures {
		if lot >= p.Lot && lot < p.Lot+p.Footprint {
			return false
		}
	}
	return true
}

// CanPlace reports whether footprint lots starting at lot are free and stay
// inside one block. Footprints of 1, 2 and 4 are the only legal sizes; a
// 2-lot footprint must start on an even lot, a 4-lot footprint fills a block.
func (s *Settlement) CanPlace(lot, footprint, maxBlocks int) bool {
	if lot < 0 || lot+footprint > maxBlocks*LotsPerBlock {
		return false
	}
	switch footprint {
	case 1:
	case 2:
		if lot%2 != 0 {
			return false
		}
	case 4:
		if lot%LotsPerBlock != 0 {
			return false
		}
	default:
		return false
	}
	for l := lot; l < lot+footprint; l++ {
		if !s.lotFree(l) {
			return false
		}
	}
	return true
}

// FirstFreeLot returns the lowest lot where footprint fits.
func (s *Settlement) FirstFreeLot(footprint, maxBlocks int) (int, bool) {
	for lot := 0; lot < maxBlocks*LotsPerBlock; lot++ {
		if s.CanPlace(lot, footprint, maxBlocks) {
			return lot, true
		}
	}
	return 0, false
}

// Remove deletes the placement of structureID with the highest lot and
// reports whether one was found.
func (s *Settlement) Remove(structureID string) bool {
	idx := -1
	for i, p := range s.Structures {
		if p.StructureID == structureID && (idx < 0 || p.Lot > s.Structures[idx].Lot) {
			idx = i
		}
	}
	if idx < 0 {
		return false
	}
	s.Structures = append(s.Structures[:idx], s.Structures[idx+1:]...)
	return true
}
