package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tacticast/viewpoint/internal/engine"
)

var (
	dbPath  string
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "viewpoint",
	Short: "Soccer tactic focus recommendation tool",
	Long:  "Compute deterministic per-player VR focus recommendations from coach-authored tactic JSON.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaultDB := filepath.Join(mustUserHome(), ".viewpoint", "viewpoint.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "engine config file (yaml, json, or toml)")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(genlogsCmd)
	rootCmd.AddCommand(deriveCmd)
}

// initConfig layers engine tunables: defaults, then an optional config file,
// then VIEWPOINT_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".viewpoint")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("VIEWPOINT")
	viper.AutomaticEnv()

	def := engine.DefaultConfig()
	viper.SetDefault("top_k", def.TopK)
	viper.SetDefault("attack_direction", def.AttackDirection)
	viper.SetDefault("max_player_speed", def.MaxPlayerSpeed)
	viper.SetDefault("min_dt", def.MinDT)
	viper.SetDefault("teammate_radius", def.TeammateRadius)
	viper.SetDefault("opponent_radius", def.OpponentRadius)
	viper.SetDefault("enable_ball_focus", def.EnableBallFocus)
	viper.SetDefault("enable_pass_targets", def.EnablePassTargets)
	viper.SetDefault("enable_marking_threats", def.EnableMarkingThreats)
	viper.SetDefault("enable_space_targets", def.EnableSpaceTargets)
	viper.SetDefault("enable_goal_focus", def.EnableGoalFocus)
	viper.SetDefault("space_grid_dx", def.SpaceGridDX)
	viper.SetDefault("space_grid_dy", def.SpaceGridDY)
	viper.SetDefault("min_space_clearance", def.MinSpaceClearance)
	viper.SetDefault("space_window_forward", def.SpaceWindowForward)
	viper.SetDefault("space_window_half_width", def.SpaceWindowHalfWidth)
	viper.SetDefault("support_cone_cos", def.SupportConeCos)
	viper.SetDefault("w_ball_distance", def.WBallDistance)
	viper.SetDefault("w_ball_motion", def.WBallMotion)
	viper.SetDefault("w_pass_likelihood", def.WPassLikelihood)
	viper.SetDefault("w_opponent_pressure", def.WOpponentPressure)
	viper.SetDefault("w_teammate_support", def.WTeammateSupport)
	viper.SetDefault("w_space_value", def.WSpaceValue)
	viper.SetDefault("w_goal_proximity", def.WGoalProximity)
	viper.SetDefault("w_role_prior", def.WRolePrior)
	viper.SetDefault("switch_penalty", def.SwitchPenalty)
	viper.SetDefault("persistence_bonus", def.PersistenceBonus)
	viper.SetDefault("clamp_scores", def.ClampScores)
	viper.SetDefault("score_min", def.ScoreMin)
	viper.SetDefault("score_max", def.ScoreMax)
}

// loadEngineConfig resolves the layered configuration into an engine.Config.
func loadEngineConfig() (engine.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return engine.Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := engine.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return engine.Config{}, fmt.Errorf("unmarshal engine config: %w", err)
	}
	return cfg, nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
