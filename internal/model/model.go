package model

import "math"

// TeamID identifies which side a player is on.
type TeamID string

const (
	TeamA TeamID = "A"
	TeamB TeamID = "B"
)

// Vec2 is a 2D pitch-space position in meters.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pitch holds the pitch dimensions, set once from tactic metadata.
type Pitch struct {
	Length float64
	Width  float64
}

// TeamMeta is static identity for one team.
type TeamMeta struct {
	Name  string
	Color string // hex color string
}

// PlayerMeta is static identity for one player.
type PlayerMeta struct {
	ID    string
	Team  TeamID
	Label string // jersey number string
	Role  string // e.g. GK, CB, ST
}

// TacticMeta is the metadata block of a tactic file.
type TacticMeta struct {
	TacticID     string
	Title        string
	Pitch        Pitch
	Teams        map[TeamID]TeamMeta
	Players      map[string]PlayerMeta // player id -> meta
	LastModified int64                 // unix ms, 0 if absent
}

// ---- Raw input frames ----

// RawBall is the ball state as authored; coordinates may be absent.
type RawBall struct {
	X       *float64
	Y       *float64
	OwnerID string
}

// RawFrame is a coach-authored keyframe.
//
// Contract: order in the frame list defines frame_idx; frame IDs are opaque
// strings, NOT timestamps. PlayerPos may omit players present in other frames.
type RawFrame struct {
	ID        string
	PlayerPos map[string]Vec2
	// PlayerOrder preserves the authored key order of PlayerPos when the
	// loader could recover it; the frame-0 order defines the output order of
	// the player set P.
	PlayerOrder []string
	Ball        RawBall
	Note        string
}

// Frame is a canonical frame: exactly the frame-0 player set, ball position
// always resolved.
type Frame struct {
	FrameIdx    int
	Players     map[string]Vec2
	BallPos     Vec2
	BallOwnerID string
	Note        string
}

// ---- Per-frame graph ----

// EdgeType labels a graph edge.
type EdgeType string

const (
	EdgeTeamNear EdgeType = "TEAM_NEAR"
	EdgeOppNear  EdgeType = "OPP_NEAR"
	EdgeBallLink EdgeType = "BALL_LINK"
)

// GraphNode is one player in a frame graph.
type GraphNode struct {
	PlayerID string
	Team     TeamID
	Role     string
	Pos      Vec2
	Vel      Vec2
}

// GraphEdge is a typed, directed edge carrying feature values.
type GraphEdge struct {
	Src      string
	Dst      string
	Type     EdgeType
	Features map[string]float64
}

// FrameGraph is the per-frame relational snapshot. Built fresh per frame; no
// cross-frame references.
type FrameGraph struct {
	FrameIdx int
	Nodes    map[string]GraphNode
	Edges    []GraphEdge
	BallPos  Vec2
	TRel     float64
}

// PlayerSummary holds per-player features derived from a frame graph.
type PlayerSummary struct {
	PressureN float64
	MinOppD   float64 // +Inf if no opponent in range
	SupportN  float64
	MinTeamD  float64 // +Inf if no teammate in range
	BallD     float64
}

// ---- Candidates and recommendations ----

// FocusType categorizes what a focus target points at.
type FocusType string

const (
	FocusBall   FocusType = "BALL"
	FocusPlayer FocusType = "PLAYER"
	FocusZone   FocusType = "ZONE"
	FocusGoal   FocusType = "GOAL"
)

// anchorTolerance is the coordinate slack used when comparing focus targets
// for smoothing continuity.
const anchorTolerance = 1e-3

// FocusTarget is the object or location a player should be cued to look at.
type FocusTarget struct {
	Type           FocusType
	Anchor         Vec2
	TargetPlayerID string // set for PLAYER targets
	Tag            string // short label for debugging/UI
}

// SameFocus reports whether two targets point at the same thing: same type,
// same target player, anchor within tolerance. Used by temporal smoothing.
func (t FocusTarget) SameFocus(o FocusTarget) bool {
	if t.Type != o.Type {
		return false
	}
	if t.TargetPlayerID != o.TargetPlayerID {
		return false
	}
	return math.Abs(t.Anchor.X-o.Anchor.X) <= anchorTolerance &&
		math.Abs(t.Anchor.Y-o.Anchor.Y) <= anchorTolerance
}

// CandidateEvent is one interpretable, unscored focus proposal.
type CandidateEvent struct {
	Name     string
	Focus    FocusTarget
	Features map[string]float64
	Meta     map[string]string
}

// ScoredEvent is a candidate with its score and the ordered rationale trail
// explaining the score's composition. Smoothing produces new ScoredEvent
// values rather than mutating existing ones.
type ScoredEvent struct {
	Name    string
	Score   float64
	Focus   FocusTarget
	Reasons []string
	Meta    map[string]string
}

// PlayerFocusRecommendation is the final output unit: one per (player, frame).
type PlayerFocusRecommendation struct {
	PlayerID     string
	FrameIdx     int
	TRel         float64
	Primary      FocusTarget
	PrimaryScore float64
	Rationale    []string
	TopK         []ScoredEvent
}

// ---- Storage summaries ----

// TacticSummary is a lightweight record for list/show commands.
type TacticSummary struct {
	Hash        string
	TacticID    string
	Title       string
	PitchLength float64
	PitchWidth  float64
	NumPlayers  int
	NumFrames   int
	LoadedAt    string
	HasRun      bool
}
