package tactic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tacticast/viewpoint/internal/model"
)

// ParseMeta decodes the tactic metadata block: pitch dimensions, team table
// and player table.
func ParseMeta(raw json.RawMessage) (model.TacticMeta, error) {
	var doc struct {
		TacticID string `json:"tactic_id"`
		Title    string `json:"title"`
		Pitch    struct {
			Length float64 `json:"length"`
			Width  float64 `json:"width"`
		} `json:"pitch"`
		Teams map[string]struct {
			Name  string `json:"name"`
			Color string `json:"color"`
		} `json:"teams"`
		Players []struct {
			ID    string `json:"id"`
			Team  string `json:"team"`
			Label string `json:"label"`
			Role  string `json:"role"`
		} `json:"players"`
		LastModified int64 `json:"last_modified"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.TacticMeta{}, fmt.Errorf("parse tactic meta: %w", err)
	}
	if doc.Pitch.Length <= 0 || doc.Pitch.Width <= 0 {
		return model.TacticMeta{}, fmt.Errorf("tactic meta has invalid pitch dimensions %.1fx%.1f", doc.Pitch.Length, doc.Pitch.Width)
	}

	meta := model.TacticMeta{
		TacticID:     doc.TacticID,
		Title:        doc.Title,
		Pitch:        model.Pitch{Length: doc.Pitch.Length, Width: doc.Pitch.Width},
		Teams:        make(map[model.TeamID]model.TeamMeta, len(doc.Teams)),
		Players:      make(map[string]model.PlayerMeta, len(doc.Players)),
		LastModified: doc.LastModified,
	}
	for tid, tm := range doc.Teams {
		meta.Teams[model.TeamID(tid)] = model.TeamMeta{Name: tm.Name, Color: tm.Color}
	}
	for _, p := range doc.Players {
		meta.Players[p.ID] = model.PlayerMeta{
			ID:    p.ID,
			Team:  model.TeamID(p.Team),
			Label: p.Label,
			Role:  p.Role,
		}
	}
	return meta, nil
}

// ParseRawFrames decodes the frames list. Player positions are authored as
// two-element [x, y] arrays; malformed pairs are skipped rather than failing
// the load (author tools occasionally leave partial entries behind). The
// authored key order of player_pos is preserved so the frame-0 player set
// keeps its authoring order downstream.
func ParseRawFrames(raw json.RawMessage) ([]model.RawFrame, error) {
	var docs []struct {
		ID        string                     `json:"id"`
		PlayerPos map[string]json.RawMessage `json:"player_pos"`
		Ball      struct {
			X       *float64 `json:"x"`
			Y       *float64 `json:"y"`
			OwnerID string   `json:"owner_id"`
		} `json:"ball"`
		Note string `json:"note"`
	}

	// First pass for the ordered keys: re-decode the list shallowly so each
	// frame's player_pos object is available as raw bytes.
	var shallow []struct {
		PlayerPos json.RawMessage `json:"player_pos"`
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("parse frames: %w", err)
	}
	if err := json.Unmarshal(raw, &shallow); err != nil {
		return nil, fmt.Errorf("parse frames: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no frames parsed from tactic data")
	}

	out := make([]model.RawFrame, 0, len(docs))
	for i, d := range docs {
		rf := model.RawFrame{
			ID:        d.ID,
			PlayerPos: make(map[string]model.Vec2, len(d.PlayerPos)),
			Ball: model.RawBall{
				X:       d.Ball.X,
				Y:       d.Ball.Y,
				OwnerID: d.Ball.OwnerID,
			},
			Note: d.Note,
		}

		order, err := objectKeyOrder(shallow[i].PlayerPos)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		for _, pid := range order {
			var pair []float64
			if err := json.Unmarshal(d.PlayerPos[pid], &pair); err != nil || len(pair) != 2 {
				continue // malformed coordinate pair
			}
			rf.PlayerPos[pid] = model.Vec2{X: pair[0], Y: pair[1]}
			rf.PlayerOrder = append(rf.PlayerOrder, pid)
		}

		out = append(out, rf)
	}
	return out, nil
}

// objectKeyOrder returns the keys of a JSON object in document order.
func objectKeyOrder(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("scan player_pos: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("player_pos is not an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("scan player_pos: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("player_pos has a non-string key")
		}
		keys = append(keys, key)

		// Skip the value.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("scan player_pos: %w", err)
		}
	}
	return keys, nil
}
