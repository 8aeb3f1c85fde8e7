package engine

import (
	"math"
	"sort"

	"github.com/tacticast/viewpoint/internal/model"
)

// Candidate vocabulary. Each generator emits at most one candidate per player
// per frame and is independently toggleable through the config.
const (
	CandidateBallNearby  = "BALL_NEARBY"
	CandidateOppPressure = "OPP_PRESSURE"
	CandidateTeamSupport = "TEAM_SUPPORT"
	CandidateOpenSpace   = "OPEN_SPACE"
	CandidateGoal        = "GOAL"
)

// GenerateCandidates proposes interpretable focus candidates for one player at
// one frame. Returns an empty list for a player not present in the graph.
//
// Candidates are meant to be few, soccer-reasonable, and stable enough for
// deterministic ranking.
func GenerateCandidates(
	graph model.FrameGraph,
	pitch model.Pitch,
	playerID string,
	playerTeam map[string]model.TeamID,
	summaries map[string]model.PlayerSummary,
	cfg Config,
) []model.CandidateEvent {
	node, ok := graph.Nodes[playerID]
	if !ok {
		return nil
	}
	pos := node.Pos

	var out []model.CandidateEvent

	// 1) Ball focus.
	if cfg.EnableBallFocus {
		out = append(out, model.CandidateEvent{
			Name: CandidateBallNearby,
			Focus: model.FocusTarget{
				Type:   model.FocusBall,
				Anchor: graph.BallPos,
				Tag:    "ball",
			},
			Features: map[string]float64{"ball_d": summaries[playerID].BallD},
			Meta:     map[string]string{},
		})
	}

	// 2) Nearest opponent pressure, omitted when no opponents exist.
	if cfg.EnableMarkingThreats {
		if oppID, oppD, found := nearestOpponent(graph, playerID, playerTeam); found {
			out = append(out, model.CandidateEvent{
				Name: CandidateOppPressure,
				Focus: model.FocusTarget{
					Type:           model.FocusPlayer,
					Anchor:         graph.Nodes[oppID].Pos,
					TargetPlayerID: oppID,
					Tag:            "press",
				},
				Features: map[string]float64{
					"opp_d":      oppD,
					"pressure_n": summaries[playerID].PressureN,
				},
				Meta: map[string]string{"opponent_id": oppID},
			})
		}
	}

	// 3) Best support teammate, omitted when no teammates exist.
	if cfg.EnablePassTargets {
		if mateID, mateScore, found := bestSupportTeammate(graph, playerID, playerTeam, cfg); found {
			out = append(out, model.CandidateEvent{
				Name: CandidateTeamSupport,
				Focus: model.FocusTarget{
					Type:           model.FocusPlayer,
					Anchor:         graph.Nodes[mateID].Pos,
					TargetPlayerID: mateID,
					Tag:            "support",
				},
				Features: map[string]float64{
					"mate_score": mateScore,
					"support_n":  summaries[playerID].SupportN,
				},
				Meta: map[string]string{"teammate_id": mateID},
			})
		}
	}

	// 4) Open forward space, omitted when every sampled point is cramped.
	if cfg.EnableSpaceTargets {
		if anchor, value, found := bestOpenSpaceAnchor(graph, pitch, playerID, playerTeam, cfg); found {
			out = append(out, model.CandidateEvent{
				Name: CandidateOpenSpace,
				Focus: model.FocusTarget{
					Type:   model.FocusZone,
					Anchor: anchor,
					Tag:    "space",
				},
				Features: map[string]float64{"space_value": value},
				Meta:     map[string]string{},
			})
		}
	}

	// 5) Goal focus; always emitted when enabled.
	if cfg.EnableGoalFocus {
		goal := attackingGoalCenter(pitch, cfg.AttackDirection)
		out = append(out, model.CandidateEvent{
			Name: CandidateGoal,
			Focus: model.FocusTarget{
				Type:   model.FocusGoal,
				Anchor: goal,
				Tag:    "goal",
			},
			Features: map[string]float64{"goal_d": dist(pos, goal)},
			Meta:     map[string]string{},
		})
	}

	return out
}

// nearestOpponent finds the closest opposing player. Ties keep the first
// minimum in sorted id order, which can differ from the authored lineup order
// when two opponents are at the exact same distance.
func nearestOpponent(graph model.FrameGraph, playerID string, playerTeam map[string]model.TeamID) (string, float64, bool) {
	team := teamOf(playerTeam, playerID)
	pos := graph.Nodes[playerID].Pos

	bestID := ""
	bestD := math.Inf(1)

	for _, otherID := range sortedNodeIDs(graph) {
		if otherID == playerID || teamOf(playerTeam, otherID) == team {
			continue
		}
		if d := dist(pos, graph.Nodes[otherID].Pos); d < bestD {
			bestD = d
			bestID = otherID
		}
	}

	return bestID, bestD, bestID != ""
}

// bestSupportTeammate picks the teammate maximizing
// 2*ahead + 1*cone - 0.15*distance, where ahead and cone reward forward
// positioning along the attack direction. Exact-score ties keep the first
// maximum in sorted id order, not authored lineup order.
func bestSupportTeammate(graph model.FrameGraph, playerID string, playerTeam map[string]model.TeamID, cfg Config) (string, float64, bool) {
	team := teamOf(playerTeam, playerID)
	pos := graph.Nodes[playerID].Pos

	bestID := ""
	bestScore := math.Inf(-1)

	for _, otherID := range sortedNodeIDs(graph) {
		if otherID == playerID || teamOf(playerTeam, otherID) != team {
			continue
		}
		mate := graph.Nodes[otherID].Pos
		d := dist(pos, mate)

		ahead := 0.0
		if isAhead(mate, pos, cfg.AttackDirection) {
			ahead = 1.0
		}
		cone := 0.0
		if inForwardCone(pos, mate, cfg.AttackDirection, cfg.SupportConeCos) {
			cone = 1.0
		}

		score := 2.0*ahead + 1.0*cone - 0.15*d
		if score > bestScore {
			bestScore = score
			bestID = otherID
		}
	}

	return bestID, bestScore, bestID != ""
}

// bestOpenSpaceAnchor samples a forward grid and picks the point maximizing
// 1.5*clearance + 8*forwardProgress - 0.25*distanceFromPlayer, rejecting any
// point whose nearest-opponent clearance is below cfg.MinSpaceClearance.
//
// The grid iteration uses an epsilon-guarded inclusive upper bound so the last
// row/column is not dropped to floating-point drift.
func bestOpenSpaceAnchor(graph model.FrameGraph, pitch model.Pitch, playerID string, playerTeam map[string]model.TeamID, cfg Config) (model.Vec2, float64, bool) {
	pos := graph.Nodes[playerID].Pos
	team := teamOf(playerTeam, playerID)

	// Forward sampling window, clipped to pitch bounds.
	var x0, x1 float64
	if cfg.AttackDirection > 0 {
		x0, x1 = pos.X, math.Min(pitch.Length, pos.X+cfg.SpaceWindowForward)
	} else {
		x0, x1 = math.Max(0, pos.X-cfg.SpaceWindowForward), pos.X
	}
	y0 := math.Max(0, pos.Y-cfg.SpaceWindowHalfWidth)
	y1 := math.Min(pitch.Width, pos.Y+cfg.SpaceWindowHalfWidth)

	var bestAnchor model.Vec2
	bestValue := math.Inf(-1)
	found := false

	opponents := make([]model.Vec2, 0, len(graph.Nodes))
	for _, oid := range sortedNodeIDs(graph) {
		if oid != playerID && teamOf(playerTeam, oid) != team {
			opponents = append(opponents, graph.Nodes[oid].Pos)
		}
	}

	const eps = 1e-6
	for x := x0; x <= x1+eps; x += cfg.SpaceGridDX {
		for y := y0; y <= y1+eps; y += cfg.SpaceGridDY {
			anchor := model.Vec2{X: x, Y: y}

			minOpp := math.Inf(1)
			for _, op := range opponents {
				if d := dist(anchor, op); d < minOpp {
					minOpp = d
				}
			}
			if minOpp < cfg.MinSpaceClearance {
				continue
			}

			forwardProgress := anchor.X / pitch.Length
			if cfg.AttackDirection <= 0 {
				forwardProgress = 1.0 - anchor.X/pitch.Length
			}

			value := 1.5*minOpp + 8.0*forwardProgress - 0.25*dist(anchor, pos)
			if value > bestValue {
				bestValue = value
				bestAnchor = anchor
				found = true
			}
		}
	}

	return bestAnchor, bestValue, found
}

func sortedNodeIDs(graph model.FrameGraph) []string {
	out := make([]string, 0, len(graph.Nodes))
	for pid := range graph.Nodes {
		out = append(out, pid)
	}
	sort.Strings(out)
	return out
}
