package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"chorebot-api/internal/chore"
	"chorebot-api/internal/digest"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chorectl",
		Short:         "Household chores operator tool",
		Long:          `Runs schema migrations, seeds the default chores, sends digests on demand and prints statistics against the configured store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newDigestCmd())
	root.AddCommand(newStatsCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			versions, err := app.SchemaVersions()
			if err != nil {
				return err
			}
			for _, v := range versions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: version %d\n", v.module, v.version)
			}
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the default chores to an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context(), withSeeding())
			if err != nil {
				return err
			}
			defer app.Close()

			added, err := app.Tasks.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}
			if added == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "store already has tasks, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d default tasks\n", added)
			return nil
		},
	}
}

func newDigestCmd() *cobra.Command {
	var dryRun bool

	digestCmd := &cobra.Command{
		Use:   "digest",
		Short: "Send a digest to the admins now",
	}
	digestCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print the digest instead of sending it")

	run := func(kind string) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if dryRun {
				text, err := app.previewDigest(cmd.Context(), kind)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}

			svc, err := app.Digest()
			if err != nil {
				return err
			}
			var report digest.Report
			if kind == kindDaily {
				report, err = svc.SendDaily(cmd.Context())
			} else {
				report, err = svc.SendWeekly(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, report)
		}
	}

	digestCmd.AddCommand(&cobra.Command{
		Use:   kindDaily,
		Short: "Send the overdue and due-soon digest",
		Args:  cobra.NoArgs,
		RunE:  run(kindDaily),
	})
	digestCmd.AddCommand(&cobra.Command{
		Use:   kindWeekly,
		Short: "Send the weekly summary",
		Args:  cobra.NoArgs,
		RunE:  run(kindWeekly),
	})
	return digestCmd
}

type statsReport struct {
	Progress   chore.Progress     `json:"progress"`
	History    chore.HistoryStats `json:"history"`
	Statistics chore.Statistics   `json:"statistics"`
}

func newStatsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print completion statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.New("--days must be greater than 0")
			}
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			var report statsReport
			if report.Progress, err = app.Tasks.Progress(cmd.Context()); err != nil {
				return err
			}
			if report.History, err = app.Tasks.HistoryStats(cmd.Context()); err != nil {
				return err
			}
			if report.Statistics, err = app.Tasks.Statistics(cmd.Context(), days); err != nil {
				return err
			}
			return printJSON(cmd, report)
		},
	}
	cmd.Flags().IntVar(&days, "days", digest.AchievementWindowDays, "lookback window in days")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
