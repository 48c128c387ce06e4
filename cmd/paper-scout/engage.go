// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <article-id>",
	Short: "Mark a paper as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("article id %q: must be a number", args[0])
		}

		cfg := loadConfig()
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		unread, _ := cmd.Flags().GetBool("undo")
		if err := s.SetRead(context.Background(), id, !unread); err != nil {
			return err
		}
		if unread {
			fmt.Printf("Article #%d marked unread.\n", id)
		} else {
			fmt.Printf("Article #%d marked read.\n", id)
		}
		return nil
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <article-id> <stars>",
	Short: "Rate a paper from 1 to 5 stars",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("article id %q: must be a number", args[0])
		}
		stars, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating %q: must be a number", args[1])
		}

		cfg := loadConfig()
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.SetRating(context.Background(), id, stars); err != nil {
			return err
		}
		fmt.Printf("Article #%d rated %d star(s).\n", id, stars)
		return nil
	},
}

func init() {
	readCmd.Flags().Bool("undo", false, "mark the paper unread instead")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(rateCmd)
}
