// Package prefs derives training signals from recorded VR sessions: a scalar
// reward per (player, frame) and preference pairs between focus candidates,
// both backed by gaze dwell and explicit user actions.
package prefs

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/tacticast/viewpoint/internal/vrlog"
)

// Options are the derivation tunables.
type Options struct {
	// SampleDtMs is the assumed spacing of telemetry samples; dwell is
	// sample count times this.
	SampleDtMs float64
	// DwellWindowMs normalizes dwell into [0,1].
	DwellWindowMs float64
	// DwellRewardScale scales the dwell bonus on the chosen candidate.
	DwellRewardScale float64
	ManualSelectReward float64
	HintPenalty        float64
	ReplayPenalty      float64
	// DwellPrefThreshold is the minimum normalized dwell before preference
	// pairs are emitted.
	DwellPrefThreshold float64
}

// DefaultOptions returns the baseline derivation tunables.
func DefaultOptions() Options {
	return Options{
		SampleDtMs:         50,
		DwellWindowMs:      1500,
		DwellRewardScale:   1.0,
		ManualSelectReward: 2.0,
		HintPenalty:        1.0,
		ReplayPenalty:      0.5,
		DwellPrefThreshold: 0.35,
	}
}

// DerivedReward is one rewards.jsonl row: the scalar reward assigned to the
// candidate the engine chose at one frame, with its additive components.
type DerivedReward struct {
	SessionID         string             `json:"session_id"`
	TacticID          string             `json:"tactic_id"`
	PlayerID          string             `json:"player_id"`
	FrameIdx          int                `json:"frame_idx"`
	ChosenCandidateID string             `json:"chosen_candidate_id"`
	Reward            float64            `json:"reward"`
	Components        map[string]float64 `json:"components"`
}

// PreferencePair is one prefs.jsonl row: evidence that the user preferred one
// candidate over another at a frame.
type PreferencePair struct {
	SessionID            string         `json:"session_id"`
	TacticID             string         `json:"tactic_id"`
	PlayerID             string         `json:"player_id"`
	FrameIdx             int            `json:"frame_idx"`
	PreferredCandidateID string         `json:"preferred_candidate_id"`
	OtherCandidateID     string         `json:"other_candidate_id"`
	Weight               float64        `json:"weight"`
	Evidence             map[string]any `json:"evidence"`
}

// Derive computes rewards and preference pairs from a loaded session.
//
// With candidate sets present, each (player, frame) record yields one reward
// built from manual-select agreement, dwell on the chosen target, and hint or
// replay confusion penalties, plus preference pairs wherever evidence favors a
// candidate other than the chosen one. Without candidate sets there is no
// action space, so only frame-level engagement rewards are emitted.
func Derive(s *vrlog.Session, opts Options) ([]DerivedReward, []PreferencePair) {
	dwellByFrame := dwellByFrame(s.Telemetry, opts.SampleDtMs)

	eventsByFrame := make(map[int][]vrlog.EventRecord)
	for _, e := range s.Events {
		eventsByFrame[e.FrameIdx] = append(eventsByFrame[e.FrameIdx], e)
	}

	var rewards []DerivedReward
	var prefs []PreferencePair

	if s.Candidates == nil {
		frames := make([]int, 0, len(dwellByFrame))
		for fi := range dwellByFrame {
			frames = append(frames, fi)
		}
		sort.Ints(frames)
		for _, fi := range frames {
			engagedMs := 0.0
			for hit, ms := range dwellByFrame[fi] {
				if hit != "none" {
					engagedMs += ms
				}
			}
			rewards = append(rewards, DerivedReward{
				SessionID:         s.Meta.SessionID,
				TacticID:          s.Meta.TacticID,
				PlayerID:          s.Meta.PlayerID,
				FrameIdx:          fi,
				ChosenCandidateID: "__none__",
				Reward:            engagedMs / maxf(opts.DwellWindowMs, 1),
				Components:        map[string]float64{"engaged_ms": engagedMs},
			})
		}
		return rewards, prefs
	}

	recs := playerRecords(s.Candidates, s.Meta.PlayerID)
	for _, rec := range recs {
		frameEvents := eventsByFrame[rec.FrameIdx]
		dwell := dwellByFrame[rec.FrameIdx]

		comp := map[string]float64{}
		total := 0.0

		if manual, ok := matchManualSelect(rec, frameEvents); ok {
			if manual == rec.ChosenCandidateID {
				total += opts.ManualSelectReward
				comp["manual_select_match"] = opts.ManualSelectReward
			} else {
				penalty := opts.ManualSelectReward * 0.5
				total -= penalty
				comp["manual_select_mismatch"] = -penalty
				prefs = append(prefs, PreferencePair{
					SessionID:            s.Meta.SessionID,
					TacticID:             s.Meta.TacticID,
					PlayerID:             rec.PlayerID,
					FrameIdx:             rec.FrameIdx,
					PreferredCandidateID: manual,
					OtherCandidateID:     rec.ChosenCandidateID,
					Weight:               2.0,
					Evidence:             map[string]any{"type": vrlog.EventManualTargetSelect},
				})
			}
		}

		bonus, dwellPrefs := dwellBonusAndPrefs(s.Meta, rec, dwell, opts)
		if bonus != 0 {
			total += bonus
			comp["dwell_bonus"] = bonus
		}
		prefs = append(prefs, dwellPrefs...)

		if hasEvent(frameEvents, vrlog.EventFocusHintRequest) {
			total -= opts.HintPenalty
			comp["hint_penalty"] = -opts.HintPenalty
		}
		if hasEvent(frameEvents, vrlog.EventReplaySegment) {
			total -= opts.ReplayPenalty
			comp["replay_penalty"] = -opts.ReplayPenalty
		}

		rewards = append(rewards, DerivedReward{
			SessionID:         s.Meta.SessionID,
			TacticID:          s.Meta.TacticID,
			PlayerID:          rec.PlayerID,
			FrameIdx:          rec.FrameIdx,
			ChosenCandidateID: rec.ChosenCandidateID,
			Reward:            total,
			Components:        comp,
		})
	}

	return rewards, prefs
}

// WriteOutputs writes rewards.jsonl and prefs.jsonl into outDir.
func WriteOutputs(outDir string, rewards []DerivedReward, prefs []PreferencePair) error {
	if err := vrlog.WriteJSONLFile(filepath.Join(outDir, "rewards.jsonl"), rewards); err != nil {
		return fmt.Errorf("writing rewards: %w", err)
	}
	if err := vrlog.WriteJSONLFile(filepath.Join(outDir, "prefs.jsonl"), prefs); err != nil {
		return fmt.Errorf("writing prefs: %w", err)
	}
	return nil
}

// dwellByFrame approximates dwell time in ms on each hit id per frame by
// counting samples. Irregular sample spacing makes this an approximation.
func dwellByFrame(telemetry []vrlog.TelemetrySample, sampleDtMs float64) map[int]map[string]float64 {
	out := make(map[int]map[string]float64)
	for _, s := range telemetry {
		hit := "none"
		if s.HitID != nil {
			hit = *s.HitID
		}
		m := out[s.FrameIdx]
		if m == nil {
			m = make(map[string]float64)
			out[s.FrameIdx] = m
		}
		m[hit] += sampleDtMs
	}
	return out
}

func playerRecords(candidates map[vrlog.CandidateKey]vrlog.CandidateSetRecord, playerID string) []vrlog.CandidateSetRecord {
	recs := make([]vrlog.CandidateSetRecord, 0, len(candidates))
	for k, rec := range candidates {
		if k.PlayerID == playerID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].FrameIdx < recs[j].FrameIdx })
	return recs
}

// matchManualSelect maps the last manual_target_select of a frame onto a
// candidate id.
func matchManualSelect(rec vrlog.CandidateSetRecord, frameEvents []vrlog.EventRecord) (string, bool) {
	var sel *vrlog.EventRecord
	for i := range frameEvents {
		if frameEvents[i].Type == vrlog.EventManualTargetSelect {
			sel = &frameEvents[i]
		}
	}
	if sel == nil {
		return "", false
	}

	ttype, _ := sel.Payload["target_type"].(string)
	switch ttype {
	case "ball":
		for _, c := range rec.Candidates {
			if c.TargetType == "ball" {
				return c.CandidateID, true
			}
		}
	case "player":
		tid, _ := sel.Payload["target_id"].(string)
		if tid == "" {
			return "", false
		}
		for _, c := range rec.Candidates {
			if c.TargetPlayerID != nil && *c.TargetPlayerID == tid {
				return c.CandidateID, true
			}
		}
	}
	return "", false
}

// dwellBonusAndPrefs converts dwell on candidate targets into a bonus for the
// chosen candidate and preference pairs favoring the best attended candidate.
// Zone and goal candidates have no hit id and score zero attention.
func dwellBonusAndPrefs(meta vrlog.SessionMeta, rec vrlog.CandidateSetRecord, dwell map[string]float64, opts Options) (float64, []PreferencePair) {
	if len(rec.Candidates) == 0 {
		return 0, nil
	}

	norm := make(map[string]float64, len(rec.Candidates))
	for _, c := range rec.Candidates {
		a := 0.0
		switch c.TargetType {
		case "ball":
			a = dwell["ball"]
		case "player":
			if c.TargetPlayerID != nil {
				a = dwell[*c.TargetPlayerID]
			}
		}
		norm[c.CandidateID] = minf(1.0, a/maxf(1.0, opts.DwellWindowMs))
	}

	bonus := opts.DwellRewardScale * norm[rec.ChosenCandidateID]

	bestCid, bestVal := "", -1.0
	for _, c := range rec.Candidates {
		if v := norm[c.CandidateID]; v > bestVal {
			bestCid, bestVal = c.CandidateID, v
		}
	}

	var prefs []PreferencePair
	if bestVal >= opts.DwellPrefThreshold {
		if bestCid != rec.ChosenCandidateID {
			prefs = append(prefs, PreferencePair{
				SessionID:            meta.SessionID,
				TacticID:             meta.TacticID,
				PlayerID:             meta.PlayerID,
				FrameIdx:             rec.FrameIdx,
				PreferredCandidateID: bestCid,
				OtherCandidateID:     rec.ChosenCandidateID,
				Weight:               1.0 + bestVal,
				Evidence:             map[string]any{"type": "dwell", "best_val": bestVal},
			})
		}
		for _, c := range rec.Candidates {
			if c.CandidateID == bestCid {
				continue
			}
			margin := bestVal - norm[c.CandidateID]
			if margin >= opts.DwellPrefThreshold {
				prefs = append(prefs, PreferencePair{
					SessionID:            meta.SessionID,
					TacticID:             meta.TacticID,
					PlayerID:             meta.PlayerID,
					FrameIdx:             rec.FrameIdx,
					PreferredCandidateID: bestCid,
					OtherCandidateID:     c.CandidateID,
					Weight:               0.7 + margin,
					Evidence:             map[string]any{"type": "dwell_margin", "margin": margin},
				})
			}
		}
	}

	return bonus, prefs
}

func hasEvent(events []vrlog.EventRecord, typ string) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
