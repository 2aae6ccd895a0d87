package challenge

import apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"

const puzzleDials = 3

// defaultCombination is used when a scenario omits one.
var defaultCombination = [puzzleDials]int{3, 7, 1}

// puzzleChallenge is a combination lock: three dials, each 0-9, checked
// against a target sequence. Wrong guesses cost heat but never lock out.
type puzzleChallenge struct {
	id        string
	target    [puzzleDials]int
	hint      string
	lastWrong bool
	done      bool
}

func newPuzzle(cfg Config) (*puzzleChallenge, error) {
	p := &puzzleChallenge{id: cfg.ID, hint: cfg.Hint, target: defaultCombination}
	if len(cfg.Combination) > 0 {
		if len(cfg.Combination) != puzzleDials {
			return nil, apperrors.WithMetadata(
				apperrors.CodeChallengeInvalidInput,
				"combination must have exactly three digits",
				map[string]string{"challenge_id": cfg.ID},
			)
		}
		for i, d := range cfg.Combination {
			p.target[i] = normalizeDial(d)
		}
	}
	return p, nil
}

func (p *puzzleChallenge) ID() string { return p.id }

func (p *puzzleChallenge) Kind() Kind { return KindPuzzle }

func (p *puzzleChallenge) Resolve(input Input) (Report, error) {
	if len(input.Dials) != puzzleDials {
		return Report{}, apperrors.WithMetadata(
			apperrors.CodeChallengeInvalidInput,
			"expected three dial positions",
			map[string]string{"challenge_id": p.id},
		)
	}
	var dials [puzzleDials]int
	for i, d := range input.Dials {
		dials[i] = normalizeDial(d)
	}
	return p.Try(dials), nil
}

// Try checks the dial positions against the target combination.
func (p *puzzleChallenge) Try(dials [puzzleDials]int) Report {
	if p.done {
		return Report{}
	}
	if dials == p.target {
		p.done = true
		p.lastWrong = false
		return Report{
			Actions: []ActionEvent{{Label: "UNLOCK", Consequence: Consequence{Heat: 0, Stress: -5}}},
			Outcome: OutcomeUnlocked,
		}
	}
	p.lastWrong = true
	return Report{
		Actions: []ActionEvent{{Label: "WRONG", Consequence: Consequence{Heat: 8, Stress: 12}}},
	}
}

func normalizeDial(d int) int {
	return ((d % 10) + 10) % 10
}

// PuzzleView is the presentation snapshot of the lock.
type PuzzleView struct {
	Dials int    `json:"dials"`
	Hint  string `json:"hint,omitempty"`
	State string `json:"state"`
}

func (p *puzzleChallenge) View() View {
	state := "LOCKED"
	switch {
	case p.done:
		state = "UNLOCKED"
	case p.lastWrong:
		state = "WRONG"
	}
	return View{
		ID:   p.id,
		Kind: KindPuzzle,
		Puzzle: &PuzzleView{
			Dials: puzzleDials,
			Hint:  p.hint,
			State: state,
		},
	}
}
