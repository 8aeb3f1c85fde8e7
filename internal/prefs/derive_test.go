package prefs

import (
	"math"
	"testing"

	"github.com/tacticast/viewpoint/internal/vrlog"
)

func sessionMeta() vrlog.SessionMeta {
	return vrlog.SessionMeta{SessionID: "sess_1", TacticID: "tac_1", PlayerID: "A-7"}
}

func playerCandidate(id, target string) vrlog.Candidate {
	t := target
	return vrlog.Candidate{
		CandidateID:    id,
		TargetType:     "player",
		TargetPlayerID: &t,
		AnchorXY:       [2]float64{50, 30},
		BaselineScore:  1,
	}
}

func ballCandidate(id string) vrlog.Candidate {
	return vrlog.Candidate{
		CandidateID:   id,
		TargetType:    "ball",
		AnchorXY:      [2]float64{52, 34},
		BaselineScore: 0.5,
	}
}

// frameSession builds a one-frame session for player A-7 with c0 as the chosen
// candidate.
func frameSession(events []vrlog.EventRecord, telemetry []vrlog.TelemetrySample, cands ...vrlog.Candidate) *vrlog.Session {
	return &vrlog.Session{
		Meta:      sessionMeta(),
		Telemetry: telemetry,
		Events:    events,
		Candidates: map[vrlog.CandidateKey]vrlog.CandidateSetRecord{
			{PlayerID: "A-7", FrameIdx: 0}: {
				FrameIdx:          0,
				PlayerID:          "A-7",
				Candidates:        cands,
				ChosenCandidateID: "c0",
			},
		},
	}
}

// gazeSamples returns n telemetry samples at frame fi hitting hitID. An empty
// hitID means the gaze ray hit nothing.
func gazeSamples(fi, n int, hitID string) []vrlog.TelemetrySample {
	out := make([]vrlog.TelemetrySample, 0, n)
	for i := 0; i < n; i++ {
		s := vrlog.TelemetrySample{TMs: int64(fi*1000 + i*50), FrameIdx: fi}
		if hitID != "" {
			h := hitID
			s.HitID = &h
			s.HitType = "player"
		}
		out = append(out, s)
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDeriveManualSelectMatch(t *testing.T) {
	events := []vrlog.EventRecord{{
		TMs: 100, FrameIdx: 0, Type: vrlog.EventManualTargetSelect,
		Payload: map[string]any{"target_type": "player", "target_id": "B-6"},
	}}
	s := frameSession(events, nil, playerCandidate("c0", "B-6"), ballCandidate("c1"))

	rewards, prefs := Derive(s, DefaultOptions())
	if len(rewards) != 1 {
		t.Fatalf("got %d rewards, want 1", len(rewards))
	}
	r := rewards[0]
	if r.ChosenCandidateID != "c0" || r.Reward != 2.0 {
		t.Errorf("reward = %+v, want chosen c0 with 2.0", r)
	}
	if r.Components["manual_select_match"] != 2.0 {
		t.Errorf("components = %v", r.Components)
	}
	if len(prefs) != 0 {
		t.Errorf("unexpected preference pairs: %+v", prefs)
	}
}

func TestDeriveManualSelectMismatch(t *testing.T) {
	events := []vrlog.EventRecord{{
		TMs: 100, FrameIdx: 0, Type: vrlog.EventManualTargetSelect,
		Payload: map[string]any{"target_type": "ball"},
	}}
	s := frameSession(events, nil, playerCandidate("c0", "B-6"), ballCandidate("c1"))

	rewards, prefs := Derive(s, DefaultOptions())
	if rewards[0].Reward != -1.0 || rewards[0].Components["manual_select_mismatch"] != -1.0 {
		t.Errorf("reward = %+v, want -1.0 mismatch", rewards[0])
	}
	if len(prefs) != 1 {
		t.Fatalf("got %d preference pairs, want 1", len(prefs))
	}
	p := prefs[0]
	if p.PreferredCandidateID != "c1" || p.OtherCandidateID != "c0" || p.Weight != 2.0 {
		t.Errorf("pair = %+v", p)
	}
	if p.Evidence["type"] != vrlog.EventManualTargetSelect {
		t.Errorf("evidence = %v", p.Evidence)
	}
}

func TestDeriveLastManualSelectWins(t *testing.T) {
	events := []vrlog.EventRecord{
		{TMs: 100, FrameIdx: 0, Type: vrlog.EventManualTargetSelect,
			Payload: map[string]any{"target_type": "ball"}},
		{TMs: 400, FrameIdx: 0, Type: vrlog.EventManualTargetSelect,
			Payload: map[string]any{"target_type": "player", "target_id": "B-6"}},
	}
	s := frameSession(events, nil, playerCandidate("c0", "B-6"), ballCandidate("c1"))

	rewards, _ := Derive(s, DefaultOptions())
	if rewards[0].Reward != 2.0 {
		t.Errorf("reward = %v, want 2.0 from the later select", rewards[0].Reward)
	}
}

func TestDeriveDwellBonusAndPrefs(t *testing.T) {
	// 300ms on the chosen B-6, 900ms on the rival B-9.
	telemetry := append(gazeSamples(0, 6, "B-6"), gazeSamples(0, 18, "B-9")...)
	s := frameSession(nil, telemetry, playerCandidate("c0", "B-6"), playerCandidate("c1", "B-9"))

	rewards, prefs := Derive(s, DefaultOptions())
	if !near(rewards[0].Reward, 0.2) {
		t.Errorf("reward = %v, want 0.2 dwell bonus", rewards[0].Reward)
	}
	if !near(rewards[0].Components["dwell_bonus"], 0.2) {
		t.Errorf("components = %v", rewards[0].Components)
	}

	if len(prefs) != 2 {
		t.Fatalf("got %d preference pairs, want 2: %+v", len(prefs), prefs)
	}
	best := prefs[0]
	if best.PreferredCandidateID != "c1" || best.OtherCandidateID != "c0" || !near(best.Weight, 1.6) {
		t.Errorf("best-over-chosen pair = %+v", best)
	}
	if best.Evidence["type"] != "dwell" {
		t.Errorf("evidence = %v", best.Evidence)
	}
	margin := prefs[1]
	if margin.PreferredCandidateID != "c1" || margin.OtherCandidateID != "c0" || !near(margin.Weight, 1.1) {
		t.Errorf("margin pair = %+v", margin)
	}
	if margin.Evidence["type"] != "dwell_margin" {
		t.Errorf("evidence = %v", margin.Evidence)
	}
}

func TestDeriveDwellBelowThresholdEmitsNoPairs(t *testing.T) {
	// 300ms on the rival: normalized 0.2, under the 0.35 threshold.
	telemetry := gazeSamples(0, 6, "B-9")
	s := frameSession(nil, telemetry, playerCandidate("c0", "B-6"), playerCandidate("c1", "B-9"))

	_, prefs := Derive(s, DefaultOptions())
	if len(prefs) != 0 {
		t.Errorf("got pairs below threshold: %+v", prefs)
	}
}

func TestDeriveHintAndReplayPenalties(t *testing.T) {
	events := []vrlog.EventRecord{
		{TMs: 100, FrameIdx: 0, Type: vrlog.EventFocusHintRequest, Payload: map[string]any{}},
		{TMs: 200, FrameIdx: 0, Type: vrlog.EventReplaySegment, Payload: map[string]any{"from_ms": 0}},
	}
	s := frameSession(events, nil, playerCandidate("c0", "B-6"))

	rewards, _ := Derive(s, DefaultOptions())
	r := rewards[0]
	if !near(r.Reward, -1.5) {
		t.Errorf("reward = %v, want -1.5", r.Reward)
	}
	if r.Components["hint_penalty"] != -1.0 || r.Components["replay_penalty"] != -0.5 {
		t.Errorf("components = %v", r.Components)
	}
}

func TestDeriveIgnoresOtherPlayersCandidateSets(t *testing.T) {
	s := frameSession(nil, nil, playerCandidate("c0", "B-6"))
	s.Candidates[vrlog.CandidateKey{PlayerID: "A-2", FrameIdx: 0}] = vrlog.CandidateSetRecord{
		FrameIdx: 0, PlayerID: "A-2",
		Candidates:        []vrlog.Candidate{playerCandidate("c0", "B-1")},
		ChosenCandidateID: "c0",
	}

	rewards, _ := Derive(s, DefaultOptions())
	if len(rewards) != 1 || rewards[0].PlayerID != "A-7" {
		t.Errorf("rewards = %+v, want only A-7", rewards)
	}
}

func TestDeriveWeakOnlyMode(t *testing.T) {
	telemetry := append(gazeSamples(0, 10, "B-6"), gazeSamples(0, 5, "")...)
	telemetry = append(telemetry, gazeSamples(1, 4, "")...)
	s := &vrlog.Session{Meta: sessionMeta(), Telemetry: telemetry}

	rewards, prefs := Derive(s, DefaultOptions())
	if len(prefs) != 0 {
		t.Errorf("weak-only mode produced pairs: %+v", prefs)
	}
	if len(rewards) != 2 {
		t.Fatalf("got %d rewards, want 2", len(rewards))
	}
	if rewards[0].FrameIdx != 0 || rewards[1].FrameIdx != 1 {
		t.Errorf("frames out of order: %+v", rewards)
	}
	for _, r := range rewards {
		if r.ChosenCandidateID != "__none__" {
			t.Errorf("chosen = %q, want __none__", r.ChosenCandidateID)
		}
	}
	if !near(rewards[0].Reward, 500.0/1500.0) || !near(rewards[0].Components["engaged_ms"], 500) {
		t.Errorf("frame 0 reward = %+v", rewards[0])
	}
	if rewards[1].Reward != 0 {
		t.Errorf("frame 1 reward = %v, want 0", rewards[1].Reward)
	}
}
