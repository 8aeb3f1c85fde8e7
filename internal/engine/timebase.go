package engine

import (
	"fmt"

	"github.com/tacticast/viewpoint/internal/model"
)

// InferPseudoTime synthesizes a time axis for ordered keyframes.
//
// Frame order defines sequence only, never real timestamps, so dt is inferred
// from the maximum player displacement between consecutive frames normalized
// by a nominal max speed:
//
//	dt[0] = 0, tRel[0] = 0
//	dt[i] = max(cfg.MinDT, dmax_i / cfg.MaxPlayerSpeed)
//	tRel[i] = tRel[i-1] + dt[i]
//
// The MinDT floor keeps dt non-zero even for identical consecutive frames.
func InferPseudoTime(frames []model.Frame, cfg Config) (dt, tRel []float64, err error) {
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("no frames provided")
	}

	n := len(frames)
	dt = make([]float64, n)
	tRel = make([]float64, n)

	maxSpeed := cfg.MaxPlayerSpeed
	if maxSpeed < 1e-6 {
		maxSpeed = 1e-6
	}

	for i := 1; i < n; i++ {
		prev := frames[i-1]
		cur := frames[i]

		dmax := 0.0
		for pid, pos := range cur.Players {
			if d := dist(pos, prev.Players[pid]); d > dmax {
				dmax = d
			}
		}

		di := dmax / maxSpeed
		if di < cfg.MinDT {
			di = cfg.MinDT
		}
		dt[i] = di
		tRel[i] = tRel[i-1] + di
	}

	return dt, tRel, nil
}

// ComputeVelocities derives per-frame per-player velocities by finite
// differences. Frame 0 gets the zero vector for every player; later frames
// divide displacement by dt[i] guarded against zero.
func ComputeVelocities(frames []model.Frame, dt []float64) (map[int]map[string]model.Vec2, error) {
	if len(frames) != len(dt) {
		return nil, fmt.Errorf("frames and dt must have same length (%d vs %d)", len(frames), len(dt))
	}

	byFrame := make(map[int]map[string]model.Vec2, len(frames))

	v0 := make(map[string]model.Vec2, len(frames[0].Players))
	for pid := range frames[0].Players {
		v0[pid] = model.Vec2{}
	}
	byFrame[0] = v0

	for i := 1; i < len(frames); i++ {
		prev := frames[i-1]
		cur := frames[i]
		denom := dt[i]
		if denom < 1e-6 {
			denom = 1e-6
		}

		vi := make(map[string]model.Vec2, len(cur.Players))
		for pid, pos := range cur.Players {
			p0 := prev.Players[pid]
			vi[pid] = model.Vec2{X: (pos.X - p0.X) / denom, Y: (pos.Y - p0.Y) / denom}
		}
		byFrame[i] = vi
	}

	return byFrame, nil
}
