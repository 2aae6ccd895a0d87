// Package mission models the spatial progression of an operation: a graph
// of rooms connected by exits, each room gating zero or more challenges.
// The graph tracks discovery (what the operative knows exists) separately
// from access (where the operative can actually move).
package mission

import (
	"github.com/louisbranch/glass-shadow/internal/challenge"
	apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"
)

// Visibility is the discovery state of a room on the operative's map.
type Visibility string

const (
	// VisibilityHidden rooms do not appear on the map at all.
	VisibilityHidden Visibility = "hidden"
	// VisibilitySuspected rooms appear as unconfirmed outlines.
	VisibilitySuspected Visibility = "suspected"
	// VisibilityKnown rooms are confirmed and enterable.
	VisibilityKnown Visibility = "known"
)

// Reveal upgrades visibility one step. Known stays known.
func (v Visibility) Reveal() Visibility {
	switch v {
	case VisibilityHidden:
		return VisibilitySuspected
	default:
		return VisibilityKnown
	}
}

// ChallengeState pairs a challenge definition with its room lifecycle
// status. The live challenge instance is owned by the session; the graph
// only tracks locked/active/complete.
type ChallengeState struct {
	Def    challenge.Config
	Status challenge.Status
}

// Room is one node in the mission graph.
type Room struct {
	ID         string
	Name       string
	X, Y       int
	Visibility Visibility
	Cleared    bool
	Narrative  string
	Intel      []string
	Exits      []string
	// ExitVisibility overrides the visibility a neighboring room is revealed
	// at when this room is cleared. Exits absent from the map reveal to
	// known.
	ExitVisibility map[string]Visibility
	Challenges     []*ChallengeState
}

// challengeState finds a challenge entry by id.
func (r *Room) challengeState(id string) (*ChallengeState, bool) {
	for _, cs := range r.Challenges {
		if cs.Def.ID == id {
			return cs, true
		}
	}
	return nil, false
}

// Graph is the mutable mission map for one session.
type Graph struct {
	rooms []*Room
	index map[string]*Room
	start string
}

// RoomDef is the scenario-authored definition of one room.
type RoomDef struct {
	ID             string
	Name           string
	X, Y           int
	Visibility     Visibility
	Cleared        bool
	Narrative      string
	Intel          []string
	Exits          []string
	ExitVisibility map[string]Visibility
	Challenges     []challenge.Config
	// ChallengeStatus overrides the initial status per challenge id.
	// Challenges with a Requires reference default to locked; everything
	// else starts active.
}

// NewGraph validates the room definitions and builds a fresh graph.
func NewGraph(defs []RoomDef, start string) (*Graph, error) {
	if start == "" {
		return nil, apperrors.New(apperrors.CodeMissionEmptyStart, "mission start room is required")
	}
	g := &Graph{index: make(map[string]*Room, len(defs)), start: start}

	for _, def := range defs {
		if _, exists := g.index[def.ID]; exists {
			return nil, apperrors.WithMetadata(apperrors.CodeMissionDuplicateRoom,
				"duplicate room id", map[string]string{"RoomID": def.ID})
		}
		room := &Room{
			ID:             def.ID,
			Name:           def.Name,
			X:              def.X,
			Y:              def.Y,
			Visibility:     def.Visibility,
			Cleared:        def.Cleared,
			Narrative:      def.Narrative,
			Intel:          append([]string(nil), def.Intel...),
			Exits:          append([]string(nil), def.Exits...),
			ExitVisibility: def.ExitVisibility,
		}
		if room.Visibility == "" {
			room.Visibility = VisibilityHidden
		}
		for _, cfg := range def.Challenges {
			status := challenge.StatusActive
			if cfg.Requires != "" {
				status = challenge.StatusLocked
			}
			room.Challenges = append(room.Challenges, &ChallengeState{Def: cfg, Status: status})
		}
		g.rooms = append(g.rooms, room)
		g.index[def.ID] = room
	}

	if _, ok := g.index[start]; !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeMissionRoomNotFound,
			"start room not defined", map[string]string{"RoomID": start})
	}
	for _, room := range g.rooms {
		for _, exit := range room.Exits {
			if _, ok := g.index[exit]; !ok {
				return nil, apperrors.WithMetadata(apperrors.CodeMissionUnknownExit,
					"exit references undefined room",
					map[string]string{"RoomID": room.ID, "Exit": exit})
			}
		}
		for _, cs := range room.Challenges {
			if !cs.Def.Kind.Valid() {
				return nil, apperrors.WithMetadata(apperrors.CodeChallengeInvalidKind,
					"room declares unknown challenge kind",
					map[string]string{"RoomID": room.ID, "ChallengeID": cs.Def.ID})
			}
			if cs.Def.Requires == "" {
				continue
			}
			if _, ok := room.challengeState(cs.Def.Requires); !ok {
				return nil, apperrors.WithMetadata(apperrors.CodeMissionUnknownRequire,
					"challenge requires an id not present in its room",
					map[string]string{"RoomID": room.ID, "ChallengeID": cs.Def.ID, "Requires": cs.Def.Requires})
			}
		}
	}
	return g, nil
}

// Start is the id of the entry room.
func (g *Graph) Start() string {
	return g.start
}

// Room looks up a room by id.
func (g *Graph) Room(id string) (*Room, bool) {
	room, ok := g.index[id]
	return room, ok
}

// Rooms returns the rooms in definition order.
func (g *Graph) Rooms() []*Room {
	return g.rooms
}

// AttemptMove checks whether the operative can move from one room to a
// target and performs the move bookkeeping. Illegal moves (unknown target,
// hidden target, no connecting exit) report false without mutating
// anything; moving into a suspected room confirms it as known.
func (g *Graph) AttemptMove(from, to string) bool {
	source, ok := g.index[from]
	if !ok {
		return false
	}
	target, ok := g.index[to]
	if !ok || target.Visibility == VisibilityHidden {
		return false
	}
	connected := false
	for _, exit := range source.Exits {
		if exit == to {
			connected = true
			break
		}
	}
	if !connected {
		return false
	}
	if target.Visibility == VisibilitySuspected {
		target.Visibility = VisibilityKnown
	}
	return true
}

// ResolveChallenge marks a challenge complete, unlocks any challenge that
// required it, and clears the room once every challenge is complete.
// Clearing a room reveals its exits: each exit upgrades to its declared
// override visibility at minimum, one step up from hidden otherwise.
func (g *Graph) ResolveChallenge(roomID, challengeID string) error {
	room, ok := g.index[roomID]
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeMissionRoomNotFound,
			"room not found", map[string]string{"RoomID": roomID})
	}
	cs, ok := room.challengeState(challengeID)
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeMissionChallengeNotFound,
			"challenge not found in room",
			map[string]string{"RoomID": roomID, "ChallengeID": challengeID})
	}
	cs.Status = challenge.StatusComplete

	for _, other := range room.Challenges {
		if other.Def.Requires == challengeID && other.Status == challenge.StatusLocked {
			other.Status = challenge.StatusActive
		}
	}

	for _, other := range room.Challenges {
		if other.Status != challenge.StatusComplete {
			return nil
		}
	}
	room.Cleared = true
	g.revealExits(room)
	return nil
}

func (g *Graph) revealExits(room *Room) {
	for _, exit := range room.Exits {
		target, ok := g.index[exit]
		if !ok {
			continue
		}
		revealed := VisibilityKnown
		if declared, ok := room.ExitVisibility[exit]; ok && declared == VisibilityHidden {
			revealed = VisibilitySuspected
		}
		if rank(revealed) > rank(target.Visibility) {
			target.Visibility = revealed
		}
	}
}

func rank(v Visibility) int {
	switch v {
	case VisibilityKnown:
		return 2
	case VisibilitySuspected:
		return 1
	default:
		return 0
	}
}

// Available returns the challenge states an operative in the room can
// currently attempt.
func (r *Room) Available() []*ChallengeState {
	var out []*ChallengeState
	for _, cs := range r.Challenges {
		if cs.Status == challenge.StatusActive {
			out = append(out, cs)
		}
	}
	return out
}
