package ruleset

// Degree is the four-tier degree of success of a check.
//
// The zero value is CriticalFailure so that an unset degree never reads as a success.
type Degree int

const (
	CriticalFailure Degree = iota
	Failure
	Success
	CriticalSuccess
)

// String returns the lowerCamel label used in logs and records.
func (d Degree) String() string {
	switch d {
	case CriticalSuccess:
		return "criticalSuccess"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case CriticalFailure:
		return "criticalFailure"
	default:
		return "unknown"
	}
}

// Up returns the degree one step better, capped at CriticalSuccess.
func (d Degree) Up() Degree {
	if d >= CriticalSuccess {
		return CriticalSuccess
	}
	return d + 1
}

// Down returns the degree one step worse, floored at CriticalFailure.
func (d Degree) Down() Degree {
	if d <= CriticalFailure {
		return CriticalFailure
	}
	return d - 1
}

// IsSuccess reports whether d is Success or CriticalSuccess.
func (d Degree) IsSuccess() bool { return d >= Success }

// Degrees lists every degree from best to worst.
var Degrees = []Degree{CriticalSuccess, Success, Failure, CriticalFailure}

// Outcomes is a degree-keyed effect table.
type Outcomes struct {
	CriticalSuccess []EffectSpec `yaml:"critical_success"`
	Success         []EffectSpec `yaml:"success"`
	Failure         []EffectSpec `yaml:"failure"`
	CriticalFailure []EffectSpec `yaml:"critical_failure"`
}

// For returns the effect list for degree d.
func (o Outcomes) For(d Degree) []EffectSpec {
	switch d {
	case CriticalSuccess:
		return o.CriticalSuccess
	case Success:
		return o.Success
	case Failure:
		return o.Failure
	default:
		return o.CriticalFailure
	}
}
