package challenge

import (
	"github.com/louisbranch/glass-shadow/internal/dice"
	apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"
)

// humanChallenge resolves a social encounter against a single NPC.
type humanChallenge struct {
	id       string
	npc      *NPC
	momentum int
	roll     RollFunc
	done     bool
}

func newHuman(cfg Config, env Env) (*humanChallenge, error) {
	if cfg.NPC == nil {
		return nil, apperrors.New(apperrors.CodeChallengeInvalidInput, "human challenge requires an npc profile")
	}
	return &humanChallenge{
		id:   cfg.ID,
		npc:  newNPC(*cfg.NPC),
		roll: env.roll(),
	}, nil
}

func (h *humanChallenge) ID() string { return h.id }

func (h *humanChallenge) Kind() Kind { return KindHuman }

func (h *humanChallenge) Resolve(input Input) (Report, error) {
	return h.Act(input.Action, input.Penalty)
}

// Act applies one social action. Momentum contributes half its value
// (floored) to the roll modifier; the difficulty scales with suspicion.
func (h *humanChallenge) Act(action NPCAction, penalty int) (Report, error) {
	if h.done {
		return Report{}, nil
	}
	modifier, ok := action.Modifier()
	if !ok {
		return Report{}, apperrors.WithMetadata(
			apperrors.CodeChallengeInvalidInput,
			"unknown social action",
			map[string]string{"Action": string(action)},
		)
	}

	result := h.roll(dice.CheckRequest{
		Modifier:   modifier + floorHalf(h.momentum),
		Difficulty: h.npc.DifficultyClass(),
		Penalty:    penalty,
	})

	consequence := Consequence{Heat: 5, Stress: 10}
	switch {
	case result.IsCritical:
		h.npc.Compliance += 35
		h.momentum += 3
		consequence = Consequence{Heat: 0, Stress: -5}
	case result.IsFumble:
		h.npc.Suspicion += 40
		h.momentum -= 3
		consequence = Consequence{Heat: 25, Stress: 30}
	case result.Success:
		switch action {
		case ActionRapport:
			h.npc.Compliance += 15
		case ActionPressure:
			h.npc.Composure -= 25
		case ActionDeceive:
			h.npc.Compliance += 20
		case ActionIntimidate:
			h.npc.Composure -= 35
			h.npc.Compliance += 20
			consequence.Heat = 15
		}
		h.momentum++
	default:
		h.npc.Suspicion += 15
		h.momentum--
		consequence = Consequence{Heat: 15, Stress: 15}
	}
	h.npc.clamp()

	report := Report{
		Actions: []ActionEvent{{Label: string(action), Consequence: consequence}},
	}
	if outcome, ended := h.npc.Termination(); ended {
		h.done = true
		report.Outcome = outcome
	}
	return report, nil
}

// HumanView is the presentation snapshot of a social encounter.
type HumanView struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Composure  int    `json:"composure"`
	Suspicion  int    `json:"suspicion"`
	Compliance int    `json:"compliance"`
	Momentum   int    `json:"momentum"`
	Tell       string `json:"tell"`
}

func (h *humanChallenge) View() View {
	return View{
		ID:   h.id,
		Kind: KindHuman,
		Human: &HumanView{
			Name:       h.npc.Name,
			Role:       h.npc.Role,
			Composure:  h.npc.Composure,
			Suspicion:  h.npc.Suspicion,
			Compliance: h.npc.Compliance,
			Momentum:   h.momentum,
			Tell:       h.npc.Tell(),
		},
	}
}

// floorHalf halves v rounding toward negative infinity. Integer division
// truncates toward zero, which would soften the penalty for negative
// momentum.
func floorHalf(v int) int {
	if v >= 0 {
		return v / 2
	}
	return (v - 1) / 2
}
