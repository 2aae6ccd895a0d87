package challenge

// NPCAction is a social approach taken against an NPC.
type NPCAction string

const (
	ActionRapport    NPCAction = "RAPPORT"
	ActionPressure   NPCAction = "PRESSURE"
	ActionDeceive    NPCAction = "DECEIVE"
	ActionIntimidate NPCAction = "INTIMIDATE"
)

// Modifier returns the roll modifier for the action and whether the action
// is recognized.
func (a NPCAction) Modifier() (int, bool) {
	switch a {
	case ActionRapport:
		return 2, true
	case ActionPressure:
		return -1, true
	case ActionDeceive:
		return 0, true
	case ActionIntimidate:
		return -2, true
	default:
		return 0, false
	}
}

// Default starting stats for NPCs whose profile leaves a stat unset.
const (
	defaultComposure  = 70
	defaultSuspicion  = 30
	defaultCompliance = 20
)

// NPCProfile is the scenario-authored starting state for an encounter NPC.
type NPCProfile struct {
	Name       string
	Role       string
	Composure  int
	Suspicion  int
	Compliance int
}

// NPC is the mutable social state for one encounter. It lives exactly as
// long as the human challenge resolving it.
type NPC struct {
	Name       string
	Role       string
	Composure  int
	Suspicion  int
	Compliance int
}

func newNPC(profile NPCProfile) *NPC {
	npc := &NPC{
		Name:       profile.Name,
		Role:       profile.Role,
		Composure:  profile.Composure,
		Suspicion:  profile.Suspicion,
		Compliance: profile.Compliance,
	}
	if npc.Composure == 0 {
		npc.Composure = defaultComposure
	}
	if npc.Suspicion == 0 {
		npc.Suspicion = defaultSuspicion
	}
	if npc.Compliance == 0 {
		npc.Compliance = defaultCompliance
	}
	return npc
}

// DifficultyClass is the check difficulty for the next social action.
func (n *NPC) DifficultyClass() int {
	return 10 + n.Suspicion/10
}

// Termination checks the encounter end conditions in priority order:
// compliance, then broken composure, then blown suspicion. The first match
// wins.
func (n *NPC) Termination() (Outcome, bool) {
	switch {
	case n.Compliance >= 80:
		return OutcomeCompliance, true
	case n.Composure <= 10:
		return OutcomeBroken, true
	case n.Suspicion >= 90:
		return OutcomeBlown, true
	default:
		return "", false
	}
}

// Tell is the readable behavioral cue the operative picks up.
func (n *NPC) Tell() string {
	switch {
	case n.Composure < 30:
		return "Shaking. Won't meet your eyes."
	case n.Suspicion > 60:
		return "Hand near radio."
	case n.Compliance > 50:
		return "Opening up."
	default:
		return "Guarded."
	}
}

func (n *NPC) clamp() {
	n.Composure = clampStat(n.Composure)
	n.Suspicion = clampStat(n.Suspicion)
	n.Compliance = clampStat(n.Compliance)
}
