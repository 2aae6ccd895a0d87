package challenge

// Surveillance cycle parameters: a repeating 24-tick cycle split into four
// equal phases. Only the blind-spot phase is safe to cross.
const (
	cycleTicks = 24
	phaseTicks = 6
	safePhase  = 2
)

var phaseLabels = [4]string{"PATROL NEAR", "APPROACHING", "BLIND SPOT", "DEPARTING"}

// surveillanceChallenge resolves a single timed crossing attempt.
type surveillanceChallenge struct {
	id    string
	tick  int
	moved bool
}

func newSurveillance(cfg Config) *surveillanceChallenge {
	return &surveillanceChallenge{id: cfg.ID}
}

func (s *surveillanceChallenge) ID() string { return s.id }

func (s *surveillanceChallenge) Kind() Kind { return KindSurveillance }

// Advance moves the patrol one tick along its cycle. Driven by the session
// scheduler; a no-op once the crossing was attempted.
func (s *surveillanceChallenge) Advance() {
	if s.moved {
		return
	}
	s.tick = (s.tick + 1) % cycleTicks
}

// Phase is the current patrol phase index in [0,3].
func (s *surveillanceChallenge) Phase() int {
	return s.tick / phaseTicks
}

func (s *surveillanceChallenge) Resolve(input Input) (Report, error) {
	if !input.Move {
		return Report{}, nil
	}
	return s.Move(), nil
}

// Move attempts the crossing at the current phase. Only one attempt is
// permitted per challenge instance.
func (s *surveillanceChallenge) Move() Report {
	if s.moved {
		return Report{}
	}
	s.moved = true

	if s.Phase() == safePhase {
		return Report{
			Actions: []ActionEvent{{Label: "SUCCESS", Consequence: Consequence{Heat: -5, Stress: 10}}},
			Outcome: OutcomePassed,
		}
	}
	return Report{
		Actions: []ActionEvent{{Label: "DETECTED", Consequence: Consequence{Heat: 40, Stress: 50}}},
		Outcome: OutcomeDetected,
	}
}

// SurveillanceView is the presentation snapshot of the patrol cycle.
type SurveillanceView struct {
	Phase  int    `json:"phase"`
	Label  string `json:"label"`
	Window bool   `json:"window"`
	Moved  bool   `json:"moved"`
}

func (s *surveillanceChallenge) View() View {
	phase := s.Phase()
	return View{
		ID:   s.id,
		Kind: KindSurveillance,
		Surveillance: &SurveillanceView{
			Phase:  phase,
			Label:  phaseLabels[phase],
			Window: phase == safePhase,
			Moved:  s.moved,
		},
	}
}
