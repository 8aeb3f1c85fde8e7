package engine

import (
	"math"
	"testing"

	"github.com/tacticast/viewpoint/internal/model"
)

var (
	focusX = model.FocusTarget{Type: model.FocusPlayer, Anchor: model.Vec2{X: 10, Y: 10}, TargetPlayerID: "B-1"}
	focusY = model.FocusTarget{Type: model.FocusPlayer, Anchor: model.Vec2{X: 20, Y: 20}, TargetPlayerID: "A-2"}
)

func scoredEvent(name string, score float64, focus model.FocusTarget) model.ScoredEvent {
	return model.ScoredEvent{Name: name, Score: score, Focus: focus, Reasons: []string{"base"}}
}

func TestSmoothTemporalFirstFramePassesThrough(t *testing.T) {
	in := map[int][]model.ScoredEvent{
		0: {scoredEvent("X", 2.0, focusX), scoredEvent("Y", 1.0, focusY)},
	}
	out := SmoothTemporal(in, DefaultConfig())

	if out[0][0].Score != 2.0 || out[0][0].Name != "X" {
		t.Errorf("frame 0 top = %+v, want unchanged X@2.0", out[0][0])
	}
	if len(out[0][0].Reasons) != 1 {
		t.Errorf("frame 0 reasons = %v, want no smoothing tags", out[0][0].Reasons)
	}
}

func TestSmoothTemporalHysteresisKeepsPrimary(t *testing.T) {
	cfg := DefaultConfig() // persistence +0.8, switch -1.5
	in := map[int][]model.ScoredEvent{
		0: {scoredEvent("X", 2.0, focusX)},
		// Y outscores X raw, but not by enough to beat the hysteresis gap.
		1: {scoredEvent("Y", 2.0, focusY), scoredEvent("X", 1.0, focusX)},
	}
	out := SmoothTemporal(in, cfg)

	top := out[1][0]
	if top.Name != "X" {
		t.Fatalf("frame 1 primary = %s, want persisted X", top.Name)
	}
	if math.Abs(top.Score-1.8) > 1e-9 {
		t.Errorf("persisted score = %v, want 1.0+0.8", top.Score)
	}
	if top.Reasons[len(top.Reasons)-1] != "persist_bonus" {
		t.Errorf("reasons = %v, want persist_bonus appended", top.Reasons)
	}
	if other := out[1][1]; other.Reasons[len(other.Reasons)-1] != "switch_penalty" || math.Abs(other.Score-0.5) > 1e-9 {
		t.Errorf("challenger = %+v, want 2.0-1.5 with switch_penalty tag", other)
	}
}

func TestSmoothTemporalZeroBonusTagsSwitchPenalty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PersistenceBonus = 0

	in := map[int][]model.ScoredEvent{
		0: {scoredEvent("X", 2.0, focusX)},
		1: {scoredEvent("X", 2.0, focusX)},
	}
	out := SmoothTemporal(in, cfg)

	top := out[1][0]
	if top.Score != 2.0 {
		t.Errorf("persisted score = %v, want unchanged 2.0", top.Score)
	}
	if top.Reasons[len(top.Reasons)-1] != "switch_penalty" {
		t.Errorf("reasons = %v, want switch_penalty for a non-positive adjustment", top.Reasons)
	}
}

func TestSmoothTemporalBonusAppliesAfterClamping(t *testing.T) {
	cfg := DefaultConfig() // ClampScores true, ceiling +10

	// Scoring clamps to the ceiling; the persistence bonus is added on top,
	// so the adjusted score may exceed ScoreMax.
	in := map[int][]model.ScoredEvent{
		0: {scoredEvent("X", cfg.ScoreMax, focusX)},
		1: {scoredEvent("X", cfg.ScoreMax, focusX)},
	}
	out := SmoothTemporal(in, cfg)

	if top := out[1][0]; math.Abs(top.Score-(cfg.ScoreMax+cfg.PersistenceBonus)) > 1e-9 {
		t.Errorf("adjusted score = %v, want %v above the clamp ceiling", top.Score, cfg.ScoreMax+cfg.PersistenceBonus)
	}
}

func TestSmoothTemporalSwitchesWhenGapIsLarge(t *testing.T) {
	cfg := DefaultConfig()
	in := map[int][]model.ScoredEvent{
		0: {scoredEvent("X", 2.0, focusX)},
		1: {scoredEvent("Y", 5.0, focusY), scoredEvent("X", 1.0, focusX)},
	}
	out := SmoothTemporal(in, cfg)

	if top := out[1][0]; top.Name != "Y" || math.Abs(top.Score-3.5) > 1e-9 {
		t.Errorf("frame 1 primary = %+v, want Y@3.5 overtaking", top)
	}
}

func TestSmoothTemporalLargePenaltyPinsPrimary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SwitchPenalty = 1000

	in := map[int][]model.ScoredEvent{
		0: {scoredEvent("X", 0.1, focusX)},
		1: {scoredEvent("Y", 9.0, focusY), scoredEvent("X", 0.1, focusX)},
		2: {scoredEvent("Y", 9.0, focusY), scoredEvent("X", 0.1, focusX)},
	}
	out := SmoothTemporal(in, cfg)

	for _, i := range []int{1, 2} {
		if out[i][0].Name != "X" {
			t.Errorf("frame %d primary = %s, want X pinned by penalty", i, out[i][0].Name)
		}
	}
}

func TestSmoothTemporalDoesNotMutateInput(t *testing.T) {
	frame1 := []model.ScoredEvent{scoredEvent("Y", 2.0, focusY)}
	in := map[int][]model.ScoredEvent{
		0: {scoredEvent("X", 1.0, focusX)},
		1: frame1,
	}
	SmoothTemporal(in, DefaultConfig())

	if frame1[0].Score != 2.0 {
		t.Errorf("input score mutated to %v", frame1[0].Score)
	}
	if len(frame1[0].Reasons) != 1 {
		t.Errorf("input reasons mutated: %v", frame1[0].Reasons)
	}
}

func TestSmoothTemporalEmptyFrameResetsNothing(t *testing.T) {
	in := map[int][]model.ScoredEvent{
		0: {scoredEvent("X", 2.0, focusX)},
		1: {},
		2: {scoredEvent("X", 1.0, focusX)},
	}
	out := SmoothTemporal(in, DefaultConfig())

	if out[1] != nil {
		t.Errorf("empty frame = %v, want nil", out[1])
	}
	// Carried primary survives the gap.
	if top := out[2][0]; top.Reasons[len(top.Reasons)-1] != "persist_bonus" {
		t.Errorf("frame 2 reasons = %v, want persist_bonus across gap", top.Reasons)
	}
}
