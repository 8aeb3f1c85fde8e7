package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/tacticast/viewpoint/internal/model"
)

// TacticExists returns true if a tactic with the given hash is already stored.
func (db *DB) TacticExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM tactics WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertTactic inserts a tactic record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertTactic(s model.TacticSummary, source []byte) error {
	loadedAt := s.LoadedAt
	if loadedAt == "" {
		loadedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO tactics(hash, tactic_id, title, pitch_length, pitch_width, num_players, num_frames, loaded_at, source_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Hash, s.TacticID, s.Title, s.PitchLength, s.PitchWidth,
		s.NumPlayers, s.NumFrames, loadedAt, source,
	)
	return err
}

// ListTactics returns all stored tactic summaries ordered by load time desc.
func (db *DB) ListTactics() ([]model.TacticSummary, error) {
	rows, err := db.conn.Query(`
		SELECT t.hash, t.tactic_id, t.title, t.pitch_length, t.pitch_width,
		       t.num_players, t.num_frames, t.loaded_at,
		       EXISTS (SELECT 1 FROM recommendations r WHERE r.tactic_hash = t.hash)
		FROM tactics t ORDER BY t.loaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TacticSummary
	for rows.Next() {
		var s model.TacticSummary
		var hasRunInt int
		if err := rows.Scan(&s.Hash, &s.TacticID, &s.Title, &s.PitchLength, &s.PitchWidth,
			&s.NumPlayers, &s.NumFrames, &s.LoadedAt, &hasRunInt); err != nil {
			return nil, err
		}
		s.HasRun = hasRunInt != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetTacticByPrefix finds the first tactic whose hash starts with the given
// prefix. Returns nil when no tactic matches.
func (db *DB) GetTacticByPrefix(prefix string) (*model.TacticSummary, error) {
	var s model.TacticSummary
	var hasRunInt int
	err := db.conn.QueryRow(`
		SELECT t.hash, t.tactic_id, t.title, t.pitch_length, t.pitch_width,
		       t.num_players, t.num_frames, t.loaded_at,
		       EXISTS (SELECT 1 FROM recommendations r WHERE r.tactic_hash = t.hash)
		FROM tactics t WHERE t.hash LIKE ? || '%' LIMIT 1`, prefix).Scan(
		&s.Hash, &s.TacticID, &s.Title, &s.PitchLength, &s.PitchWidth,
		&s.NumPlayers, &s.NumFrames, &s.LoadedAt, &hasRunInt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.HasRun = hasRunInt != 0
	return &s, nil
}

// GetTacticSource returns the stored source JSON for a tactic hash.
func (db *DB) GetTacticSource(hash string) ([]byte, error) {
	var source []byte
	err := db.conn.QueryRow("SELECT source_json FROM tactics WHERE hash = ?", hash).Scan(&source)
	if err != nil {
		return nil, err
	}
	return source, nil
}

// DropTactic deletes a tactic and, via cascade, its recommendations and
// candidates.
func (db *DB) DropTactic(hash string) error {
	_, err := db.conn.Exec("DELETE FROM tactics WHERE hash = ?", hash)
	return err
}

// InsertRecommendations bulk-inserts a complete run for a tactic in one
// transaction, replacing any previous run for the same hash.
func (db *DB) InsertRecommendations(tacticHash string, recs map[string][]model.PlayerFocusRecommendation) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM recommendations WHERE tactic_hash = ?", tacticHash); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM candidates WHERE tactic_hash = ?", tacticHash); err != nil {
		return err
	}

	recStmt, err := tx.Prepare(`
		INSERT INTO recommendations(
			tactic_hash, player_id, frame_idx, t_rel,
			target_type, anchor_x, anchor_y, target_player_id, tag,
			score, rationale
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer recStmt.Close()

	candStmt, err := tx.Prepare(`
		INSERT INTO candidates(
			tactic_hash, player_id, frame_idx, rank,
			name, target_type, anchor_x, anchor_y, target_player_id, score
		) VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer candStmt.Close()

	for _, pid := range sortedKeys(recs) {
		for _, r := range recs[pid] {
			rationale, err := json.Marshal(r.Rationale)
			if err != nil {
				return fmt.Errorf("marshal rationale for %s frame %d: %w", pid, r.FrameIdx, err)
			}
			if _, err := recStmt.Exec(
				tacticHash, r.PlayerID, r.FrameIdx, r.TRel,
				string(r.Primary.Type), r.Primary.Anchor.X, r.Primary.Anchor.Y,
				r.Primary.TargetPlayerID, r.Primary.Tag,
				r.PrimaryScore, string(rationale),
			); err != nil {
				return fmt.Errorf("insert recommendation for %s frame %d: %w", pid, r.FrameIdx, err)
			}

			for rank, ev := range r.TopK {
				if _, err := candStmt.Exec(
					tacticHash, r.PlayerID, r.FrameIdx, rank,
					ev.Name, string(ev.Focus.Type), ev.Focus.Anchor.X, ev.Focus.Anchor.Y,
					ev.Focus.TargetPlayerID, ev.Score,
				); err != nil {
					return fmt.Errorf("insert candidate for %s frame %d rank %d: %w", pid, r.FrameIdx, rank, err)
				}
			}
		}
	}
	return tx.Commit()
}

// GetRecommendations returns the stored run for a tactic, keyed by player id
// with frames in order.
func (db *DB) GetRecommendations(tacticHash string) (map[string][]model.PlayerFocusRecommendation, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, frame_idx, t_rel, target_type, anchor_x, anchor_y,
		       target_player_id, tag, score, rationale
		FROM recommendations WHERE tactic_hash = ?
		ORDER BY player_id, frame_idx`, tacticHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]model.PlayerFocusRecommendation)
	for rows.Next() {
		var r model.PlayerFocusRecommendation
		var targetType, rationale string
		if err := rows.Scan(&r.PlayerID, &r.FrameIdx, &r.TRel, &targetType,
			&r.Primary.Anchor.X, &r.Primary.Anchor.Y,
			&r.Primary.TargetPlayerID, &r.Primary.Tag,
			&r.PrimaryScore, &rationale); err != nil {
			return nil, err
		}
		r.Primary.Type = model.FocusType(targetType)
		if err := json.Unmarshal([]byte(rationale), &r.Rationale); err != nil {
			return nil, fmt.Errorf("decode rationale for %s frame %d: %w", r.PlayerID, r.FrameIdx, err)
		}
		out[r.PlayerID] = append(out[r.PlayerID], r)
	}
	return out, rows.Err()
}

// CandidateRow is one stored top-k entry, used by export.
type CandidateRow struct {
	PlayerID       string
	FrameIdx       int
	Rank           int
	Name           string
	TargetType     model.FocusType
	Anchor         model.Vec2
	TargetPlayerID string
	Score          float64
}

// GetCandidates returns the stored top-k candidate rows for a tactic ordered
// by player, frame and rank.
func (db *DB) GetCandidates(tacticHash string) ([]CandidateRow, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, frame_idx, rank, name, target_type,
		       anchor_x, anchor_y, target_player_id, score
		FROM candidates WHERE tactic_hash = ?
		ORDER BY player_id, frame_idx, rank`, tacticHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CandidateRow
	for rows.Next() {
		var c CandidateRow
		var targetType string
		if err := rows.Scan(&c.PlayerID, &c.FrameIdx, &c.Rank, &c.Name, &targetType,
			&c.Anchor.X, &c.Anchor.Y, &c.TargetPlayerID, &c.Score); err != nil {
			return nil, err
		}
		c.TargetType = model.FocusType(targetType)
		out = append(out, c)
	}
	return out, rows.Err()
}

func sortedKeys(m map[string][]model.PlayerFocusRecommendation) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
