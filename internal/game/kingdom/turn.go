package kingdom

// Phase is one step of the kingdom turn.
type Phase string

const (
	PhaseUpkeep   Phase = "upkeep"
	PhaseCommerce Phase = "commerce"
	PhaseActivity Phase = "activity"
	PhaseEvent    Phase = "event"
)

// Phases lists the turn phases in the order they must run.
var Phases = []Phase{PhaseUpkeep, PhaseCommerce, PhaseActivity, PhaseEvent}

// Category groups activities for the per-turn maxima.
type Category string

const (
	Leadership Category = "leadership"
	Region     Category = "region"
	Civic      Category = "civic"
)

// ActivityRecord is one resolved activity in the turn log.
type ActivityRecord struct {
	ActivityID string   `json:"activity_id"`
	Degree     string   `json:"degree"`
	Roll       int      `json:"roll,omitempty"`
	Total      int      `json:"total,omitempty"`
	DC         int      `json:"dc,omitempty"`
	Log        []string `json:"log"`
}

// EventRecord is one resolved kingdom event in the turn log.
type EventRecord struct {
	EventID string   `json:"event_id"`
	Degree  string   `json:"degree"`
	Log     []string `json:"log"`
}

// TurnState tracks progress through the current turn.
//
// Invariant: once Completed[p] is true it stays true until the turn advances.
type TurnState struct {
	Turn      int            `json:"turn"`
	Month     int            `json:"month"`
	Year      int            `json:"year"`
	Phase     Phase          `json:"phase"`
	Completed map[Phase]bool `json:"completed"`

	ActivitiesUsed  map[Category]int `json:"activities_used"`
	CivicSettlement map[string]int   `json:"civic_settlement"`

	Activities []ActivityRecord `json:"activities"`
	Events     []EventRecord    `json:"events"`
	Delta      Delta            `json:"delta"`
}

// NewTurnState returns a fresh turn positioned at the upkeep phase.
func NewTurnState(turn, month, year int) TurnState {
	return TurnState{
		Turn:            turn,
		Month:           month,
		Year:            year,
		Phase:           PhaseUpkeep,
		Completed:       make(map[Phase]bool, len(Phases)),
		ActivitiesUsed:  make(map[Category]int),
		CivicSettlement: make(map[string]int),
		Delta:           NewDelta(),
	}
}

// HistoryEntry is the frozen record of a completed turn.
type HistoryEntry struct {
	ID         string           `json:"id"`
	Turn       int              `json:"turn"`
	Month      string           `json:"month"`
	Year       int              `json:"year"`
	Delta      Delta            `json:"delta"`
	Activities []ActivityRecord `json:"activities"`
	Events     []EventRecord    `json:"events"`
}
