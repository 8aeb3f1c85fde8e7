package vrlog

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOptions controls synthetic session generation.
type GenerateOptions struct {
	TacticID   string
	TacticHash string
	ConfigHash string
	PlayerID   string
	UserID     string
	Seed       int64
	SampleHz   int
	// StartMs anchors session timestamps; 0 means wall clock now.
	StartMs int64
	// FrameMs is the simulated playback duration per frame.
	FrameMs int64
}

// GenerateSession synthesizes a plausible VR session for a set of candidate
// records: per frame, gaze dwell is biased toward the chosen candidate's
// target, with a manual select on the first frame and occasional replay and
// hint events. The gaze trajectory is fully determined by Seed; only the
// session id is random.
func GenerateSession(opts GenerateOptions, sets []CandidateSetRecord) (SessionMeta, []TelemetrySample, []EventRecord) {
	rng := rand.New(rand.NewSource(opts.Seed))

	if opts.SampleHz <= 0 {
		opts.SampleHz = 20
	}
	if opts.FrameMs <= 0 {
		opts.FrameMs = 1000
	}
	if opts.UserID == "" {
		opts.UserID = "user_demo_hash"
	}
	startMs := opts.StartMs
	if startMs == 0 {
		startMs = time.Now().UnixMilli()
	}
	endMs := startMs + int64(len(sets))*opts.FrameMs

	meta := SessionMeta{
		SessionID:       "demo_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		UserID:          opts.UserID,
		TacticID:        opts.TacticID,
		PlayerID:        opts.PlayerID,
		StartMs:         startMs,
		EndMs:           endMs,
		Device:          Device{HMD: "DemoHMD", FPS: 90, RefreshHz: 90},
		LocomotionMode:  "fixed",
		ComfortSettings: map[string]any{"snap_turn": true},
		Algorithm: AlgorithmInfo{
			AlgorithmVersion: "viewpoint_v2_baseline",
			ConfigHash:       opts.ConfigHash,
			TacticHash:       opts.TacticHash,
			Seed:             opts.Seed,
		},
	}

	var telemetry []TelemetrySample
	var events []EventRecord

	dtMs := int64(1000 / opts.SampleHz)
	t := startMs

	for i, rec := range sets {
		plan := hitPlan(rec)

		frameStart := t
		for si := 0; si < opts.SampleHz; si++ {
			hitID := plan[rng.Intn(len(plan))]
			hitType := "none"
			var hitPtr *string
			switch {
			case hitID == "ball":
				hitType = "ball"
				hitPtr = strPtr("ball")
			case hitID != "none":
				hitType = "player"
				hitPtr = strPtr(hitID)
			}

			yaw := 0.2 * math.Sin(0.1*float64(si))
			pitch := 0.05 * math.Cos(0.08*float64(si))
			telemetry = append(telemetry, TelemetrySample{
				TMs:           t,
				FrameIdx:      rec.FrameIdx,
				PlaybackState: "playing",
				PlaybackSpeed: 1.0,
				HeadPosXYZ:    []float64{0, 1.6, 0},
				HeadRotQuat:   quatFromYawPitch(yaw, pitch),
				GazeOriginXYZ: []float64{0, 1.6, 0},
				GazeDirXYZ: gazeUnit(
					rng.Float64()*0.1-0.05,
					rng.Float64()*0.1-0.05,
					1.0,
				),
				HitType: hitType,
				HitID:   hitPtr,
			})
			t += dtMs
		}

		switch i {
		case 0:
			if e, ok := manualSelectEvent(rec, frameStart+dtMs*3); ok {
				events = append(events, e)
			}
		case 1:
			events = append(events, EventRecord{
				TMs:      frameStart + dtMs*5,
				FrameIdx: rec.FrameIdx,
				Type:     EventReplaySegment,
				Payload:  map[string]any{"from_frame": rec.FrameIdx, "to_frame": rec.FrameIdx + 1, "count": 1},
			})
		case 2:
			events = append(events, EventRecord{
				TMs:      frameStart + dtMs*7,
				FrameIdx: rec.FrameIdx,
				Type:     EventFocusHintRequest,
				Payload:  map[string]any{"reason": "confused"},
			})
		}
	}

	return meta, telemetry, events
}

// hitPlan builds the per-frame hit-id distribution: heavy on the chosen
// candidate's target, light on one rival candidate, plus misses.
func hitPlan(rec CandidateSetRecord) []string {
	chosen := "none"
	rival := "none"
	for _, c := range rec.Candidates {
		id := hitIDFor(c)
		if id == "none" {
			continue
		}
		if c.CandidateID == rec.ChosenCandidateID {
			chosen = id
		} else if rival == "none" {
			rival = id
		}
	}

	plan := make([]string, 0, 24)
	for i := 0; i < 18; i++ {
		plan = append(plan, chosen)
	}
	for i := 0; i < 2; i++ {
		plan = append(plan, rival)
	}
	for i := 0; i < 4; i++ {
		plan = append(plan, "none")
	}
	return plan
}

// hitIDFor maps a candidate to the hit id a gaze ray on its target reports.
// Zones and goals are not hit-tested by the client.
func hitIDFor(c Candidate) string {
	switch c.TargetType {
	case "ball":
		return "ball"
	case "player":
		if c.TargetPlayerID != nil {
			return *c.TargetPlayerID
		}
	}
	return "none"
}

// manualSelectEvent fabricates a user selection of the chosen candidate.
func manualSelectEvent(rec CandidateSetRecord, tMs int64) (EventRecord, bool) {
	for _, c := range rec.Candidates {
		if c.CandidateID != rec.ChosenCandidateID {
			continue
		}
		payload := map[string]any{
			"target_type": c.TargetType,
			"anchor_xy":   []float64{c.AnchorXY[0], c.AnchorXY[1]},
		}
		switch c.TargetType {
		case "ball":
			payload["target_id"] = "ball"
		case "player":
			if c.TargetPlayerID == nil {
				return EventRecord{}, false
			}
			payload["target_id"] = *c.TargetPlayerID
		default:
			return EventRecord{}, false
		}
		return EventRecord{
			TMs:      tMs,
			FrameIdx: rec.FrameIdx,
			Type:     EventManualTargetSelect,
			Payload:  payload,
		}, true
	}
	return EventRecord{}, false
}

func quatFromYawPitch(yaw, pitch float64) []float64 {
	cy, sy := math.Cos(yaw*0.5), math.Sin(yaw*0.5)
	cp, sp := math.Cos(pitch*0.5), math.Sin(pitch*0.5)
	return []float64{sp * cy, sy * cp, -sy * sp, cy * cp}
}

func gazeUnit(x, y, z float64) []float64 {
	n := math.Sqrt(x*x + y*y + z*z)
	if n < 1e-9 {
		return []float64{0, 0, 1}
	}
	return []float64{x / n, y / n, z / n}
}

func strPtr(s string) *string { return &s }
