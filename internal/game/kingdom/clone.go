package kingdom

import (
	"maps"
	"slices"
	"sort"
)

// Clone returns a deep copy of k. No slice or map in the copy aliases k.
func (k *Kingdom) Clone() *Kingdom {
	if k == nil {
		return nil
	}
	c := *k
	c.Abilities = maps.Clone(k.Abilities)
	c.Skills = maps.Clone(k.Skills)
	c.Ruins = maps.Clone(k.Ruins)
	c.Commodities = maps.Clone(k.Commodities)
	c.Feats = maps.Clone(k.Feats)
	c.Milestones = maps.Clone(k.Milestones)
	c.Specials = maps.Clone(k.Specials)
	c.Hexes = slices.Clone(k.Hexes)
	c.Leaders = slices.Clone(k.Leaders)
	c.ContinuousEvents = slices.Clone(k.ContinuousEvents)

	c.Settlements = slices.Clone(k.Settlements)
	for i := range c.Settlements {
		c.Settlements[i].Structures = slices.Clone(k.Settlements[i].Structures)
	}

	c.Turn = k.Turn.clone()
	if k.History != nil {
		c.History = make([]HistoryEntry, len(k.History))
		for i, h := range k.History {
			c.History[i] = h.clone()
		}
	}
	return &c
}

func (t TurnState) clone() TurnState {
	c := t
	c.Completed = maps.Clone(t.Completed)
	c.ActivitiesUsed = maps.Clone(t.ActivitiesUsed)
	c.CivicSettlement = maps.Clone(t.CivicSettlement)
	c.Activities = cloneActivities(t.Activities)
	c.Events = cloneEvents(t.Events)
	c.Delta = t.Delta.clone()
	return c
}

func (h HistoryEntry) clone() HistoryEntry {
	c := h
	c.Delta = h.Delta.clone()
	c.Activities = cloneActivities(h.Activities)
	c.Events = cloneEvents(h.Events)
	return c
}

func (d Delta) clone() Delta {
	c := d
	c.Ruin = maps.Clone(d.Ruin)
	c.Commodities = maps.Clone(d.Commodities)
	c.HexesClaimed = slices.Clone(d.HexesClaimed)
	c.HexesAbandoned = slices.Clone(d.HexesAbandoned)
	c.StructuresBuilt = slices.Clone(d.StructuresBuilt)
	c.StructuresDemolished = slices.Clone(d.StructuresDemolished)
	return c
}

func cloneActivities(in []ActivityRecord) []ActivityRecord {
	if in == nil {
		return nil
	}
	out := make([]ActivityRecord, len(in))
	for i, r := range in {
		out[i] = r
		out[i].Log = slices.Clone(r.Log)
	}
	return out
}

func cloneEvents(in []EventRecord) []EventRecord {
	if in == nil {
		return nil
	}
	out := make([]EventRecord, len(in))
	for i, r := range in {
		out[i] = r
		out[i].Log = slices.Clone(r.Log)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
