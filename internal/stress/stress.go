// Package stress maps the operative's pulse onto gameplay effect bands.
package stress

// Pulse bounds for the session resource.
const (
	PulseMin = 50
	PulseMax = 180
	// PulseFloor is the value passive recovery decays toward.
	PulseFloor = 60
)

// Band identifies a physiological stress band.
type Band int

const (
	BandCalm Band = iota
	BandSteady
	BandAlert
	BandElevated
	BandCritical
)

func (b Band) String() string {
	switch b {
	case BandCalm:
		return "CALM"
	case BandSteady:
		return "STEADY"
	case BandAlert:
		return "ALERT"
	case BandElevated:
		return "ELEVATED"
	case BandCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Severity classifies how dangerous a band is for presentation purposes.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityDanger
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityDanger:
		return "DANGER"
	default:
		return "UNKNOWN"
	}
}

// Effects describes the gameplay impact of a pulse value.
type Effects struct {
	// Corruption is the narrative-garbling intensity in [0, 0.4].
	Corruption float64
	// RollPenalty is added to every check sourced from player stress.
	RollPenalty int
	Band        Band
	Severity    Severity
}

// EffectsFor derives the effects for a pulse value. Thresholds are
// evaluated top-down; the first match wins.
func EffectsFor(pulse int) Effects {
	switch {
	case pulse >= 140:
		return Effects{Corruption: 0.4, RollPenalty: -3, Band: BandCritical, Severity: SeverityDanger}
	case pulse >= 110:
		return Effects{Corruption: 0.2, RollPenalty: -2, Band: BandElevated, Severity: SeverityWarn}
	case pulse >= 90:
		return Effects{Corruption: 0.05, RollPenalty: -1, Band: BandAlert, Severity: SeverityWarn}
	case pulse >= 70:
		return Effects{Band: BandSteady, Severity: SeverityInfo}
	default:
		return Effects{RollPenalty: 1, Band: BandCalm, Severity: SeverityInfo}
	}
}
