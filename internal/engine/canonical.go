package engine

import (
	"fmt"
	"sort"

	"github.com/tacticast/viewpoint/internal/model"
)

// Canonicalize normalizes raw keyframes into canonical frames.
//
// Enforced invariants:
//   - The player set P is defined ONLY by players present in frame 0, in the
//     authored order when the loader preserved it (see rawPlayerOrder).
//   - Every canonical frame contains exactly the players in P; ids absent
//     from P are dropped even when present in their own raw frame.
//   - Missing positions are forward-filled from the last known position.
//   - The ball position is forward-filled when a frame omits it.
//
// Returns the canonical frames and the ordered player set P. Fails with a
// validation error naming the player/frame when a position can never be
// resolved.
func Canonicalize(rawFrames []model.RawFrame) ([]model.Frame, []string, error) {
	if len(rawFrames) == 0 {
		return nil, nil, fmt.Errorf("no frames provided")
	}

	validIDs := rawPlayerOrder(rawFrames[0])

	lastPos := make(map[string]model.Vec2)
	var lastBall *model.Vec2
	var lastOwner string

	frames := make([]model.Frame, 0, len(rawFrames))
	for idx, rf := range rawFrames {
		players := make(map[string]model.Vec2, len(validIDs))

		for _, pid := range validIDs {
			if pos, ok := rf.PlayerPos[pid]; ok {
				players[pid] = pos
				lastPos[pid] = pos
				continue
			}
			fill, ok := lastPos[pid]
			if !ok {
				return nil, nil, fmt.Errorf("player %s missing at frame %d and no previous position to fill", pid, idx)
			}
			players[pid] = fill
		}

		if rf.Ball.X != nil && rf.Ball.Y != nil {
			lastBall = &model.Vec2{X: *rf.Ball.X, Y: *rf.Ball.Y}
			lastOwner = rf.Ball.OwnerID
		} else if lastBall == nil {
			return nil, nil, fmt.Errorf("ball position missing at frame %d and cannot be inferred", idx)
		}

		frames = append(frames, model.Frame{
			FrameIdx:    idx,
			Players:     players,
			BallPos:     *lastBall,
			BallOwnerID: lastOwner,
			Note:        rf.Note,
		})
	}

	return frames, validIDs, nil
}

// rawPlayerOrder returns frame 0's player ids in their authored order when the
// loader recorded one, falling back to sorted map keys for deterministic
// output.
func rawPlayerOrder(f model.RawFrame) []string {
	if len(f.PlayerOrder) > 0 {
		out := make([]string, 0, len(f.PlayerOrder))
		for _, pid := range f.PlayerOrder {
			if _, ok := f.PlayerPos[pid]; ok {
				out = append(out, pid)
			}
		}
		if len(out) == len(f.PlayerPos) {
			return out
		}
	}
	out := make([]string, 0, len(f.PlayerPos))
	for pid := range f.PlayerPos {
		out = append(out, pid)
	}
	sort.Strings(out)
	return out
}
