package mission

import "github.com/louisbranch/glass-shadow/internal/challenge"

// Dossier is the mission briefing shown before insertion.
type Dossier struct {
	Codename  string `json:"codename"`
	Briefing  string `json:"briefing"`
	Objective string `json:"objective"`
	Personnel string `json:"personnel"`
	Hazards   string `json:"hazards"`
	Notes     string `json:"notes"`
}

// Scenario is a complete mission definition: the briefing, the room graph,
// and the handler narration lines keyed by event.
type Scenario struct {
	Dossier   Dossier
	Rooms     []RoomDef
	Start     string
	Narrative map[string]string
}

// Narrative keys with fixed meanings. Room ids are also valid keys; their
// line plays when the operative enters the room.
const (
	NarrativeWait      = "wait"
	NarrativeLook      = "look"
	NarrativeClear     = "challenge_clear"
	NarrativeSetback   = "challenge_setback"
	NarrativeObjective = "objective"
)

// Text returns the handler line for a narrative key, falling back to a
// neutral filler when the scenario has no line for it.
func (s *Scenario) Text(key string) string {
	if line, ok := s.Narrative[key]; ok {
		return line
	}
	return "Analyzing..."
}

// Graph builds a fresh mutable graph from the scenario's room definitions.
func (s *Scenario) Graph() (*Graph, error) {
	return NewGraph(s.Rooms, s.Start)
}

// GlassShadow is the built-in scenario: an infiltration of Meridian
// Capital's secure wing.
func GlassShadow() *Scenario {
	return &Scenario{
		Dossier: Dossier{
			Codename:  "OPERATION: GLASS SHADOW",
			Briefing:  "Meridian Capital holds evidence of market manipulation. Air-gapped servers in their secure wing.",
			Objective: "Retrieve transaction records. Secondary: identify SEC contact. Leave no trace.",
			Personnel: "Marcus Webb, Security Chief. Diana Chen, Night Manager. Unknown guard count.",
			Hazards:   "Biometric locks. Pressure sensors. Webb checks at 2300 and 0100.",
			Notes:     "Grey, Webb's no amateur. Chen might be an asset. I'll be in your ear.",
		},
		Start: "entry",
		Rooms: []RoomDef{
			{
				ID: "entry", Name: "ENTRY", X: 40, Y: 80,
				Visibility: VisibilityKnown, Cleared: true,
				Narrative: "Service corridor. Your way in.",
				Intel:     []string{"Keycard needed"},
				Exits:     []string{"server_a"},
			},
			{
				ID: "server_a", Name: "SERVER A", X: 100, Y: 40,
				Visibility: VisibilityKnown,
				Narrative:  "Servers humming. Technician at terminal.",
				Intel:      []string{"One tech", "Terminal access"},
				Exits:      []string{"entry", "server_b", "corridor"},
				ExitVisibility: map[string]Visibility{
					"corridor": VisibilitySuspected,
				},
				Challenges: []challenge.Config{
					{
						ID:   "tech",
						Kind: challenge.KindHuman,
						NPC: &challenge.NPCProfile{
							Name: "ALAN PRICE", Role: "TECH",
							Composure: 65, Suspicion: 20, Compliance: 15,
						},
					},
					{ID: "term", Kind: challenge.KindTerminal, Requires: "tech"},
				},
			},
			{
				ID: "server_b", Name: "SERVER B", X: 180, Y: 40,
				Visibility: VisibilityKnown,
				Narrative:  "Primary data center.",
				Intel:      []string{"Hidden safe"},
				Exits:      []string{"server_a", "corridor"},
				ExitVisibility: map[string]Visibility{
					"corridor": VisibilitySuspected,
				},
				Challenges: []challenge.Config{
					{
						ID:   "srch",
						Kind: challenge.KindSearch,
						Spots: []challenge.SearchSpot{
							{ID: "rack", Name: "RACK", Difficulty: 8},
							{ID: "desk", Name: "DESK", HasItem: true, Difficulty: 6,
								Item: challenge.Item{Name: "NOTES", Type: challenge.ItemTypeIntel}},
						},
					},
				},
			},
			{
				ID: "corridor", Name: "CORRIDOR", X: 240, Y: 70,
				Visibility: VisibilitySuspected,
				Narrative:  "Patrol route. Polished floors.",
				Intel:      []string{"12-min cycles"},
				Exits:      []string{"server_a", "server_b", "vault_ante"},
				ExitVisibility: map[string]Visibility{
					"vault_ante": VisibilitySuspected,
				},
				Challenges: []challenge.Config{
					{ID: "surv", Kind: challenge.KindSurveillance},
				},
			},
			{
				ID: "vault_ante", Name: "ANTECHAMBER", X: 180, Y: 100,
				Visibility: VisibilityHidden,
				Narrative:  "Vault door dominates. Guard watches.",
				Intel:      []string{"3-digit combo"},
				Exits:      []string{"corridor", "vault"},
				ExitVisibility: map[string]Visibility{
					"vault": VisibilityHidden,
				},
				Challenges: []challenge.Config{
					{
						ID:   "guard",
						Kind: challenge.KindHuman,
						NPC: &challenge.NPCProfile{
							Name: "VICTOR", Role: "SECURITY",
							Composure: 80, Suspicion: 40, Compliance: 5,
						},
					},
					{
						ID: "lock", Kind: challenge.KindPuzzle, Requires: "guard",
						Combination: []int{3, 7, 1}, Hint: "Badge reversed",
					},
				},
			},
			{
				ID: "vault", Name: "VAULT", X: 180, Y: 140,
				Visibility: VisibilityHidden,
				Narrative:  "Deposit boxes. The target is here.",
				Intel:      []string{"Target in box"},
				Exits:      []string{"vault_ante"},
				Challenges: []challenge.Config{
					{
						ID:   "final",
						Kind: challenge.KindSearch,
						Spots: []challenge.SearchSpot{
							{ID: "b1", Name: "BOX 1147", Difficulty: 8},
							{ID: "b2", Name: "BOX 1148", HasItem: true, Difficulty: 10,
								Item: challenge.Item{Name: "TARGET DOCS", Type: challenge.ItemTypeObjective}},
						},
					},
				},
			},
		},
		Narrative: map[string]string{
			"entry":            "You're in. Server A ahead. One signature.",
			"server_a":         "Alan Price. Debt, hates his boss. Persuadable.",
			"server_b":         "Primary servers. Search carefully.",
			"corridor":         "Patrol route. 8-second window.",
			"vault_ante":       "Victor. Ex-military. Won't scare easy.",
			"vault":            "Find the docs. We're done.",
			NarrativeWait:      "Taking a breather? Smart.",
			NarrativeLook:      "Nothing new. Stay sharp.",
			NarrativeClear:     "Clean. Keep moving.",
			NarrativeSetback:   "Damn. Adapt.",
			NarrativeObjective: "Package acquired. Get out clean.",
		},
	}
}
