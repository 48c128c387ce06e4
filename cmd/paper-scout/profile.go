// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-scout/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the interest profile",
	Long: `Profile manages the single user profile that drives scoring: interests,
skill level, preferred sources, and the daily reading goal. The profile
is created with defaults on first use.`,
}

// --- show subcommand ---

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		profile, err := s.GetProfile(context.Background())
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(profile)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	},
}

// --- set subcommand ---

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	Long: `Set updates the given profile fields and leaves the rest unchanged.
Interests and sources replace the existing lists.`,
	RunE: runProfileSet,
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := context.Background()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	profile, err := s.GetProfile(ctx)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("interests") {
		interests, _ := cmd.Flags().GetStringSlice("interests")
		profile.Interests = interests
	}
	if cmd.Flags().Changed("skill") {
		skill, _ := cmd.Flags().GetString("skill")
		profile.SkillLevel = types.SkillLevel(skill)
	}
	if cmd.Flags().Changed("sources") {
		sources, _ := cmd.Flags().GetStringSlice("sources")
		profile.PreferredSources = profile.PreferredSources[:0]
		for _, src := range sources {
			profile.PreferredSources = append(profile.PreferredSources, types.Source(src))
		}
	}
	if cmd.Flags().Changed("goal") {
		goal, _ := cmd.Flags().GetInt("goal")
		profile.DailyReadingGoal = goal
	}

	if err := s.SaveProfile(ctx, profile); err != nil {
		return err
	}
	fmt.Println("Profile updated.")
	return nil
}

// --- reset subcommand ---

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the profile to its defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if _, err := s.ResetProfile(context.Background()); err != nil {
			return err
		}
		fmt.Println("Profile reset to defaults.")
		return nil
	},
}

func init() {
	profileSetCmd.Flags().StringSlice("interests", nil, "replace interests (comma-separated)")
	profileSetCmd.Flags().String("skill", "", "skill level: beginner, intermediate, advanced")
	profileSetCmd.Flags().StringSlice("sources", nil, "replace preferred sources (comma-separated)")
	profileSetCmd.Flags().Int("goal", 0, "daily reading goal")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileResetCmd)

	rootCmd.AddCommand(profileCmd)
}
