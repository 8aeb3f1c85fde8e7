// Package vrlog defines the on-disk VR session log schema and helpers to
// read, write, and synthesize session directories. A session directory holds
// session_meta.json, telemetry.jsonl, events.jsonl, and optionally
// candidates.jsonl.
package vrlog

// Device describes the headset that produced a session.
type Device struct {
	HMD       string  `json:"hmd"`
	FPS       float64 `json:"fps"`
	RefreshHz float64 `json:"refresh_hz"`
}

// AlgorithmInfo records which engine build and configuration produced the
// candidate sets shown during the session.
type AlgorithmInfo struct {
	AlgorithmVersion string `json:"algorithm_version"`
	ConfigHash       string `json:"config_hash"`
	TacticHash       string `json:"tactic_hash"`
	Seed             int64  `json:"seed"`
}

// SessionMeta is the session_meta.json document.
type SessionMeta struct {
	SessionID       string         `json:"session_id"`
	UserID          string         `json:"user_id"`
	TacticID        string         `json:"tactic_id"`
	PlayerID        string         `json:"player_id"`
	StartMs         int64          `json:"start_ms"`
	EndMs           int64          `json:"end_ms"`
	Device          Device         `json:"device"`
	LocomotionMode  string         `json:"locomotion_mode"`
	ComfortSettings map[string]any `json:"comfort_settings"`
	Algorithm       AlgorithmInfo  `json:"algorithm"`
}

// TelemetrySample is one row of telemetry.jsonl: a gaze/head sample taken at
// a fixed rate during playback. Hit fields report what the gaze ray struck.
type TelemetrySample struct {
	TMs           int64     `json:"t_ms"`
	FrameIdx      int       `json:"frame_idx"`
	PlaybackState string    `json:"playback_state"`
	PlaybackSpeed float64   `json:"playback_speed"`
	FrameProgress *float64  `json:"frame_progress"`
	HeadPosXYZ    []float64 `json:"head_pos_xyz"`
	HeadRotQuat   []float64 `json:"head_rot_quat"`
	GazeOriginXYZ []float64 `json:"gaze_origin_xyz"`
	GazeDirXYZ    []float64 `json:"gaze_dir_xyz"`
	HitType       string    `json:"hit_type"`
	HitID         *string   `json:"hit_id"`
	HitPointXYZ   []float64 `json:"hit_point_xyz"`
	FOVPlayerIDs  []string  `json:"fov_player_ids"`
}

// EventRecord is one row of events.jsonl: an explicit user action such as
// manual_target_select, replay_segment, or focus_hint_request.
type EventRecord struct {
	TMs      int64          `json:"t_ms"`
	FrameIdx int            `json:"frame_idx"`
	Type     string         `json:"type"`
	Payload  map[string]any `json:"payload"`
}

// Event types emitted by the VR client.
const (
	EventManualTargetSelect = "manual_target_select"
	EventReplaySegment      = "replay_segment"
	EventFocusHintRequest   = "focus_hint_request"
)

// Candidate is one entry of a frame's candidate set as exported to the VR
// client. Target types are lowercase on the wire.
type Candidate struct {
	CandidateID    string         `json:"candidate_id"`
	TargetType     string         `json:"target_type"`
	TargetPlayerID *string        `json:"target_player_id"`
	AnchorXY       [2]float64     `json:"anchor_xy"`
	BaselineScore  float64        `json:"baseline_score"`
	Features       map[string]any `json:"features"`
}

// CandidateSetRecord is one row of candidates.jsonl: the candidate set shown
// for one (player, frame) plus which candidate the engine chose.
type CandidateSetRecord struct {
	FrameIdx          int         `json:"frame_idx"`
	PlayerID          string      `json:"player_id"`
	Candidates        []Candidate `json:"candidates"`
	ChosenCandidateID string      `json:"chosen_candidate_id"`
}
