package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Config holds every tunable of the recommendation engine. All fields have
// documented defaults (see DefaultConfig); every pipeline stage takes the
// config explicitly rather than reading ambient state, so two runs with equal
// config and input produce bit-identical output.
type Config struct {
	// TopK is how many ranked alternatives to retain per (player, frame).
	// Clamped to at least 1 at use sites.
	TopK int `mapstructure:"top_k"`

	// AttackDirection is +1 for attacking +x, -1 for attacking -x.
	AttackDirection int `mapstructure:"attack_direction"`

	// MaxPlayerSpeed (m/s) normalizes displacement into pseudo-time.
	MaxPlayerSpeed float64 `mapstructure:"max_player_speed"`

	// MinDT is the minimum time delta between frames, avoiding zero dt for
	// identical consecutive keyframes.
	MinDT float64 `mapstructure:"min_dt"`

	// Proximity radii for graph edges.
	TeammateRadius float64 `mapstructure:"teammate_radius"`
	OpponentRadius float64 `mapstructure:"opponent_radius"`

	// Candidate generator toggles.
	EnableBallFocus      bool `mapstructure:"enable_ball_focus"`
	EnablePassTargets    bool `mapstructure:"enable_pass_targets"`
	EnableMarkingThreats bool `mapstructure:"enable_marking_threats"`
	EnableSpaceTargets   bool `mapstructure:"enable_space_targets"`
	EnableGoalFocus      bool `mapstructure:"enable_goal_focus"`

	// Open-space grid sampling.
	SpaceGridDX       float64 `mapstructure:"space_grid_dx"`
	SpaceGridDY       float64 `mapstructure:"space_grid_dy"`
	MinSpaceClearance float64 `mapstructure:"min_space_clearance"`

	// SpaceWindowForward / SpaceWindowHalfWidth bound the forward sampling
	// window (meters ahead of the player / to either side). These encode
	// unverified soccer judgment; defaults match the baseline.
	SpaceWindowForward   float64 `mapstructure:"space_window_forward"`
	SpaceWindowHalfWidth float64 `mapstructure:"space_window_half_width"`

	// SupportConeCos is the cosine threshold for the forward cone used when
	// selecting a support teammate.
	SupportConeCos float64 `mapstructure:"support_cone_cos"`

	// Scoring weights. Negative weights express "closer is better".
	WBallDistance     float64 `mapstructure:"w_ball_distance"`
	WBallMotion       float64 `mapstructure:"w_ball_motion"`
	WPassLikelihood   float64 `mapstructure:"w_pass_likelihood"`
	WOpponentPressure float64 `mapstructure:"w_opponent_pressure"`
	WTeammateSupport  float64 `mapstructure:"w_teammate_support"`
	WSpaceValue       float64 `mapstructure:"w_space_value"`
	WGoalProximity    float64 `mapstructure:"w_goal_proximity"`
	WRolePrior        float64 `mapstructure:"w_role_prior"`

	// Temporal smoothing hysteresis.
	SwitchPenalty    float64 `mapstructure:"switch_penalty"`
	PersistenceBonus float64 `mapstructure:"persistence_bonus"`

	// Score clamping.
	ClampScores bool    `mapstructure:"clamp_scores"`
	ScoreMin    float64 `mapstructure:"score_min"`
	ScoreMax    float64 `mapstructure:"score_max"`
}

// Hash returns a short fingerprint of the configuration. It is recorded
// alongside generated outputs so a session can be traced back to the exact
// tunables that produced it.
func (c Config) Hash() string {
	b, _ := json.Marshal(c)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])[:12]
}

// DefaultConfig returns the baseline configuration. These are the reference
// values; the heuristic constants (radii, cone threshold, window size, role
// priors) are judgment calls, not proven-optimal parameters.
func DefaultConfig() Config {
	return Config{
		TopK:            1,
		AttackDirection: +1,

		MaxPlayerSpeed: 8.0,
		MinDT:          0.2,

		TeammateRadius: 12.0,
		OpponentRadius: 10.0,

		EnableBallFocus:      true,
		EnablePassTargets:    true,
		EnableMarkingThreats: true,
		EnableSpaceTargets:   true,
		EnableGoalFocus:      true,

		SpaceGridDX:          6.0,
		SpaceGridDY:          6.0,
		MinSpaceClearance:    4.0,
		SpaceWindowForward:   24.0,
		SpaceWindowHalfWidth: 18.0,
		SupportConeCos:       0.3,

		WBallDistance:     -1.0,
		WBallMotion:       1.5,
		WPassLikelihood:   3.0,
		WOpponentPressure: 2.0,
		WTeammateSupport:  0.8,
		WSpaceValue:       1.2,
		WGoalProximity:    2.5,
		WRolePrior:        1.0,

		SwitchPenalty:    1.5,
		PersistenceBonus: 0.8,

		ClampScores: true,
		ScoreMin:    -10.0,
		ScoreMax:    10.0,
	}
}
