package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tacticast/viewpoint/internal/model"
)

// ScoreCandidates deterministically scores candidates for a player at one
// frame and returns them ranked descending by score. Ties keep generation
// order (stable sort) as an explicit determinism guarantee.
//
// Every scoring term appends a human-readable reason string; the trail is
// preserved verbatim through smoothing for auditing.
func ScoreCandidates(
	graph model.FrameGraph,
	playerID string,
	candidates []model.CandidateEvent,
	summaries map[string]model.PlayerSummary,
	cfg Config,
	role string,
) []model.ScoredEvent {
	node, ok := graph.Nodes[playerID]
	if !ok {
		return nil
	}
	pos := node.Pos

	scored := make([]model.ScoredEvent, 0, len(candidates))
	for _, c := range candidates {
		s, reasons := scoreOne(graph, playerID, pos, c, summaries, cfg, role)
		if cfg.ClampScores {
			s = math.Max(cfg.ScoreMin, math.Min(cfg.ScoreMax, s))
		}
		scored = append(scored, model.ScoredEvent{
			Name:    c.Name,
			Score:   s,
			Focus:   c.Focus,
			Reasons: reasons,
			Meta:    c.Meta,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func scoreOne(
	graph model.FrameGraph,
	playerID string,
	pos model.Vec2,
	c model.CandidateEvent,
	summaries map[string]model.PlayerSummary,
	cfg Config,
	role string,
) (float64, []string) {
	s := 0.0
	var reasons []string

	sum := summaries[playerID]
	ballD := sum.BallD

	if prior := rolePrior(role, c.Name); prior != 0 {
		s += cfg.WRolePrior * prior
		reasons = append(reasons, fmt.Sprintf("role_prior(%s)=%+.2f", role, prior))
	}

	switch c.Name {
	case CandidateBallNearby:
		// Nearer ball scores higher: WBallDistance is negative by default.
		s += cfg.WBallDistance * ballD
		reasons = append(reasons, fmt.Sprintf("ball_d=%.2f", ballD))

		// Motion cue: ball in the player's forward hemisphere is a rough
		// proxy for ball-path relevance without ownership.
		if inForwardCone(pos, graph.BallPos, cfg.AttackDirection, 0.0) {
			s += cfg.WBallMotion * 0.6
			reasons = append(reasons, "ball_in_forward_half")
		}

	case CandidateOppPressure:
		oppD := featureOr(c, "opp_d", sum.MinOppD)
		if !math.IsInf(oppD, 1) {
			s += cfg.WOpponentPressure * (1.0 / math.Max(oppD, 0.5))
			reasons = append(reasons, fmt.Sprintf("opp_d=%.2f", oppD))
		}
		s += cfg.WOpponentPressure * 0.2 * sum.PressureN
		reasons = append(reasons, fmt.Sprintf("pressure_n=%.0f", sum.PressureN))

	case CandidateTeamSupport:
		mateScore := featureOr(c, "mate_score", 0)
		s += cfg.WTeammateSupport * mateScore
		reasons = append(reasons, fmt.Sprintf("mate_score=%.2f", mateScore))
		s += cfg.WTeammateSupport * 0.1 * sum.SupportN
		reasons = append(reasons, fmt.Sprintf("support_n=%.0f", sum.SupportN))

		// Pass likelihood proxy: support matters more when the ball is near,
		// scaling linearly to zero at 18m.
		if ballD < 18.0 {
			s += cfg.WPassLikelihood * (1.0 - ballD/18.0)
			reasons = append(reasons, "ball_close_boost_for_pass")
		}

	case CandidateOpenSpace:
		spaceValue := featureOr(c, "space_value", 0)
		s += cfg.WSpaceValue * spaceValue
		reasons = append(reasons, fmt.Sprintf("space_value=%.2f", spaceValue))

		if isAhead(c.Focus.Anchor, pos, cfg.AttackDirection) {
			s += cfg.WSpaceValue * 0.5
			reasons = append(reasons, "space_ahead_bonus")
		}

	case CandidateGoal:
		goalD := featureOr(c, "goal_d", dist(pos, c.Focus.Anchor))
		s += cfg.WGoalProximity * (1.0 / math.Max(goalD, 1.0))
		reasons = append(reasons, fmt.Sprintf("goal_d=%.2f", goalD))

		// Ball nearby is a proxy for being in the attacking phase.
		if ballD < 25.0 {
			s += cfg.WGoalProximity * 0.4
			reasons = append(reasons, "ball_close_goal_bonus")
		}

	default:
		reasons = append(reasons, "unknown_candidate")
	}

	return s, reasons
}

func featureOr(c model.CandidateEvent, key string, fallback float64) float64 {
	if v, ok := c.Features[key]; ok {
		return v
	}
	return fallback
}

// rolePrior is a small, interpretable prior table:
//   - GK/CB/LB/RB: more sensitive to opponent pressure
//   - ST/LW/RW: more sensitive to goal and open space
//   - CM/CDM: more sensitive to teammate support
//
// Unmapped (role, candidate) pairs return 0.
func rolePrior(role, candidateName string) float64 {
	r := strings.ToUpper(strings.TrimSpace(role))

	switch candidateName {
	case CandidateOppPressure:
		switch r {
		case "GK", "CB", "LB", "RB":
			return 0.8
		case "ST", "LW", "RW":
			return 0.2
		}
	case CandidateTeamSupport:
		switch r {
		case "CM", "CDM":
			return 0.7
		}
	case CandidateOpenSpace:
		switch r {
		case "ST", "LW", "RW", "CM":
			return 0.5
		}
	case CandidateGoal:
		switch r {
		case "ST", "LW", "RW":
			return 0.8
		}
	}
	return 0
}
