package session

import (
	"time"

	"github.com/louisbranch/glass-shadow/internal/challenge"
	"github.com/louisbranch/glass-shadow/internal/mission"
	"github.com/louisbranch/glass-shadow/internal/stress"
)

// Heat and cover exposure labels shown on the status strip.
const (
	HeatLabelGhost   = "GHOST"
	HeatLabelNoticed = "NOTICED"
	HeatLabelHunted  = "HUNTED"

	CoverLabelSolid = "SOLID"
	CoverLabelThin  = "THIN"
	CoverLabelBlown = "BLOWN"
)

// HeatLabel classifies a heat value.
func HeatLabel(heat int) string {
	switch {
	case heat > 70:
		return HeatLabelHunted
	case heat > 40:
		return HeatLabelNoticed
	default:
		return HeatLabelGhost
	}
}

// CoverLabel classifies a cover value.
func CoverLabel(cover int) string {
	switch {
	case cover > 70:
		return CoverLabelSolid
	case cover > 40:
		return CoverLabelThin
	default:
		return CoverLabelBlown
	}
}

// ChallengeSummary is the map-level view of one challenge slot.
type ChallengeSummary struct {
	ID     string         `json:"id"`
	Kind   challenge.Kind `json:"kind"`
	Status string         `json:"status"`
}

// RoomView is one discovered room as shown on the operative's map. Hidden
// rooms never appear in snapshots.
type RoomView struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	X          int                `json:"x"`
	Y          int                `json:"y"`
	Visibility mission.Visibility `json:"visibility"`
	Cleared    bool               `json:"cleared"`
	Narrative  string             `json:"narrative,omitempty"`
	Intel      []string           `json:"intel,omitempty"`
	Exits      []string           `json:"exits,omitempty"`
	Challenges []ChallengeSummary `json:"challenges,omitempty"`
	Current    bool               `json:"current,omitempty"`
}

// Debrief is the end-of-run report.
type Debrief struct {
	Cover      int           `json:"cover"`
	CoverLabel string        `json:"cover_label"`
	Heat       int           `json:"heat"`
	HeatLabel  string        `json:"heat_label"`
	Items      int           `json:"items"`
	Objectives []string      `json:"objectives"`
	Duration   time.Duration `json:"duration"`
}

// Snapshot is the full client-facing session state.
type Snapshot struct {
	Phase         Phase            `json:"phase"`
	Resources     Resources        `json:"resources"`
	HeatLabel     string           `json:"heat_label"`
	CoverLabel    string           `json:"cover_label"`
	StressBand    string           `json:"stress_band"`
	StressPenalty int              `json:"stress_penalty"`
	Dossier       *mission.Dossier `json:"dossier,omitempty"`
	Room          *RoomView        `json:"room,omitempty"`
	Rooms         []RoomView       `json:"rooms,omitempty"`
	Challenge     *challenge.View  `json:"challenge,omitempty"`
	Narrative     string           `json:"narrative,omitempty"`
	Inventory     []challenge.Item `json:"inventory,omitempty"`
	Intel         []string         `json:"intel,omitempty"`
	Objectives    []string         `json:"objectives,omitempty"`
	Debrief       *Debrief         `json:"debrief,omitempty"`
}

// Snapshot renders the current session state for the client.
func (c *Controller) Snapshot() Snapshot {
	effects := stress.EffectsFor(c.resources.Stress)
	snap := Snapshot{
		Phase:         c.phase,
		Resources:     c.resources,
		HeatLabel:     HeatLabel(c.resources.Heat),
		CoverLabel:    CoverLabel(c.resources.Cover),
		StressBand:    effects.Band.String(),
		StressPenalty: effects.RollPenalty,
		Narrative:     c.narrative,
		Inventory:     append([]challenge.Item(nil), c.inventory...),
		Intel:         append([]string(nil), c.intel...),
		Objectives:    append([]string(nil), c.objectives...),
	}

	if c.phase == PhaseBriefing {
		dossier := c.scenario.Dossier
		snap.Dossier = &dossier
		return snap
	}

	for _, room := range c.graph.Rooms() {
		if room.Visibility == mission.VisibilityHidden {
			continue
		}
		view := roomView(room)
		view.Current = room.ID == c.current
		if view.Current {
			current := view
			snap.Room = &current
		}
		snap.Rooms = append(snap.Rooms, view)
	}
	if c.focus != "" {
		if instance, ok := c.live[c.focus]; ok {
			view := instance.View()
			snap.Challenge = &view
		}
	}
	if c.phase == PhaseDebrief {
		snap.Debrief = c.debrief()
	}
	return snap
}

func (c *Controller) debrief() *Debrief {
	report := &Debrief{
		Cover:      c.resources.Cover,
		CoverLabel: CoverLabel(c.resources.Cover),
		Heat:       c.resources.Heat,
		HeatLabel:  HeatLabel(c.resources.Heat),
		Items:      len(c.inventory),
		Objectives: append([]string(nil), c.objectives...),
	}
	if !c.startedAt.IsZero() && !c.completedAt.IsZero() {
		report.Duration = c.completedAt.Sub(c.startedAt)
	}
	return report
}

func roomView(room *mission.Room) RoomView {
	view := RoomView{
		ID:         room.ID,
		Name:       room.Name,
		X:          room.X,
		Y:          room.Y,
		Visibility: room.Visibility,
		Cleared:    room.Cleared,
		Intel:      append([]string(nil), room.Intel...),
		Exits:      append([]string(nil), room.Exits...),
	}
	// Suspected rooms show as outlines only.
	if room.Visibility == mission.VisibilityKnown {
		view.Narrative = room.Narrative
		for _, cs := range room.Challenges {
			view.Challenges = append(view.Challenges, ChallengeSummary{
				ID:     cs.Def.ID,
				Kind:   cs.Def.Kind,
				Status: cs.Status.String(),
			})
		}
	}
	return view
}
