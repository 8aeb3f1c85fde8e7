package engine

import (
	"sort"

	"github.com/tacticast/viewpoint/internal/model"
)

// SmoothTemporal applies hysteresis to one player's scored events across the
// whole frame sequence, in frame order.
//
// Frame 0 passes through unchanged and its top entry becomes the carried
// primary. For every later frame, each candidate gains PersistenceBonus when
// its focus matches the carried primary's focus and loses SwitchPenalty
// otherwise, with a matching rationale tag appended; the frame is then
// re-ranked and its new top entry becomes the carried primary.
//
// The result is hysteresis that damps single-frame score noise, at the cost of
// a one-frame lag before a genuinely better candidate overtakes a persisted
// one. New ScoredEvent values are produced; inputs are never mutated, so
// earlier frames' explanations stay reproducible.
func SmoothTemporal(scoredByFrame map[int][]model.ScoredEvent, cfg Config) map[int][]model.ScoredEvent {
	if len(scoredByFrame) == 0 {
		return scoredByFrame
	}

	idxs := make([]int, 0, len(scoredByFrame))
	for i := range scoredByFrame {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)

	out := make(map[int][]model.ScoredEvent, len(scoredByFrame))
	var prevPrimary *model.ScoredEvent

	for _, i := range idxs {
		events := scoredByFrame[i]
		if len(events) == 0 {
			out[i] = nil
			continue
		}

		if prevPrimary == nil {
			passthrough := append([]model.ScoredEvent(nil), events...)
			out[i] = passthrough
			prevPrimary = &passthrough[0]
			continue
		}

		adjusted := make([]model.ScoredEvent, 0, len(events))
		for _, ev := range events {
			delta := -cfg.SwitchPenalty
			if ev.Focus.SameFocus(prevPrimary.Focus) {
				delta = cfg.PersistenceBonus
			}
			// The tag follows the sign of the adjustment, not the focus
			// match: a zero persistence bonus reads as switch_penalty.
			tag := "switch_penalty"
			if delta > 0 {
				tag = "persist_bonus"
			}

			reasons := make([]string, 0, len(ev.Reasons)+1)
			reasons = append(reasons, ev.Reasons...)
			reasons = append(reasons, tag)

			adjusted = append(adjusted, model.ScoredEvent{
				Name:    ev.Name,
				Score:   ev.Score + delta,
				Focus:   ev.Focus,
				Reasons: reasons,
				Meta:    ev.Meta,
			})
		}

		sort.SliceStable(adjusted, func(a, b int) bool {
			return adjusted[a].Score > adjusted[b].Score
		})
		out[i] = adjusted
		prevPrimary = &adjusted[0]
	}

	return out
}
