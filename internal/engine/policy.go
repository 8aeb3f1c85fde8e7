package engine

import (
	"fmt"

	"github.com/tacticast/viewpoint/internal/model"
)

// Recommend is the public entry point: canonicalize raw frames, resolve team
// and role per player from the tactic metadata (players absent from the
// metadata default to team A with an empty role), and run the baseline policy.
//
// Output keys are exactly the frame-0 player set; each player's list length
// equals the frame count, in frame order.
func Recommend(meta model.TacticMeta, rawFrames []model.RawFrame, cfg Config) (map[string][]model.PlayerFocusRecommendation, error) {
	frames, playerIDs, err := Canonicalize(rawFrames)
	if err != nil {
		return nil, fmt.Errorf("canonicalize frames: %w", err)
	}

	playerTeam := make(map[string]model.TeamID, len(playerIDs))
	playerRole := make(map[string]string, len(playerIDs))
	for _, pid := range playerIDs {
		if pmeta, ok := meta.Players[pid]; ok {
			playerTeam[pid] = pmeta.Team
			playerRole[pid] = pmeta.Role
		} else {
			playerTeam[pid] = model.TeamA
			playerRole[pid] = ""
		}
	}

	return runPolicy(frames, playerIDs, meta.Pitch, playerTeam, playerRole, cfg)
}

// runPolicy sequences the pipeline across all players and frames and
// assembles the final recommendation objects.
func runPolicy(
	frames []model.Frame,
	playerIDs []string,
	pitch model.Pitch,
	playerTeam map[string]model.TeamID,
	playerRole map[string]string,
	cfg Config,
) (map[string][]model.PlayerFocusRecommendation, error) {
	dt, tRel, err := InferPseudoTime(frames, cfg)
	if err != nil {
		return nil, fmt.Errorf("infer pseudo-time: %w", err)
	}
	velByFrame, err := ComputeVelocities(frames, dt)
	if err != nil {
		return nil, fmt.Errorf("compute velocities: %w", err)
	}

	graphs := BuildFrameGraphs(frames, tRel, velByFrame, playerTeam, playerRole, cfg)

	// Score every (player, frame) pair.
	scoredPerPlayer := make(map[string]map[int][]model.ScoredEvent, len(playerIDs))
	for _, pid := range playerIDs {
		scoredPerPlayer[pid] = make(map[int][]model.ScoredEvent, len(frames))
	}

	for _, g := range graphs {
		summaries := Summarize(g)
		for _, pid := range playerIDs {
			cands := GenerateCandidates(g, pitch, pid, playerTeam, summaries, cfg)
			scoredPerPlayer[pid][g.FrameIdx] = ScoreCandidates(g, pid, cands, summaries, cfg, playerRole[pid])
		}
	}

	// Smoothing is sequential per player across frames, independent across
	// players.
	for _, pid := range playerIDs {
		scoredPerPlayer[pid] = SmoothTemporal(scoredPerPlayer[pid], cfg)
	}

	topK := cfg.TopK
	if topK < 1 {
		topK = 1
	}

	out := make(map[string][]model.PlayerFocusRecommendation, len(playerIDs))
	for _, pid := range playerIDs {
		recs := make([]model.PlayerFocusRecommendation, 0, len(frames))
		for i := range frames {
			ranked := scoredPerPlayer[pid][i]

			rec := model.PlayerFocusRecommendation{
				PlayerID: pid,
				FrameIdx: i,
				TRel:     tRel[i],
			}

			if len(ranked) == 0 {
				// Deterministic fallback: look at the ball.
				rec.Primary = model.FocusTarget{
					Type:   model.FocusBall,
					Anchor: frames[i].BallPos,
					Tag:    "ball",
				}
				rec.PrimaryScore = 0.0
				rec.Rationale = []string{"fallback_ball"}
			} else {
				primary := ranked[0]
				rec.Primary = primary.Focus
				rec.PrimaryScore = primary.Score
				rec.Rationale = append([]string(nil), primary.Reasons...)
				if len(ranked) > topK {
					rec.TopK = append([]model.ScoredEvent(nil), ranked[:topK]...)
				} else {
					rec.TopK = append([]model.ScoredEvent(nil), ranked...)
				}
			}

			recs = append(recs, rec)
		}
		out[pid] = recs
	}

	return out, nil
}
