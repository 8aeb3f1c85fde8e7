package engine

import (
	"math"

	"github.com/tacticast/viewpoint/internal/model"
)

// dist returns the Euclidean distance between two points.
func dist(a, b model.Vec2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func sub(a, b model.Vec2) model.Vec2 {
	return model.Vec2{X: a.X - b.X, Y: a.Y - b.Y}
}

func dot(a, b model.Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// unit normalizes v, returning the zero vector for near-zero input.
func unit(v model.Vec2) model.Vec2 {
	n := math.Sqrt(v.X*v.X + v.Y*v.Y)
	if n < 1e-6 {
		return model.Vec2{}
	}
	return model.Vec2{X: v.X / n, Y: v.Y / n}
}

// attackingGoalCenter returns the opponent goal center: x = pitch length when
// attacking +x, else 0; y = half the pitch width.
func attackingGoalCenter(pitch model.Pitch, attackDirection int) model.Vec2 {
	x := 0.0
	if attackDirection > 0 {
		x = pitch.Length
	}
	return model.Vec2{X: x, Y: pitch.Width * 0.5}
}

// isAhead reports whether a is strictly further along the attack direction
// than b.
func isAhead(a, b model.Vec2, attackDirection int) bool {
	return (a.X-b.X)*float64(attackDirection) > 0
}

// inForwardCone reports whether target lies roughly in front of origin with
// respect to the attack direction. cosThreshold 1.0 means exactly forward,
// 0.0 means anywhere in the forward hemisphere.
func inForwardCone(origin, target model.Vec2, attackDirection int, cosThreshold float64) bool {
	forward := model.Vec2{X: float64(attackDirection)}
	vHat := unit(sub(target, origin))
	return dot(vHat, forward) >= cosThreshold
}
