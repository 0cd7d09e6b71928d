package main

import (
	"encoding/json"
	"fmt"
	"time"

	"reservehub/internal/seed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(true)
			if err != nil {
				return err
			}
			defer env.close()
			env.log.Info("schema up to date")
			return nil
		},
	}
}

// remindCmd runs one reminder pass, for hosts that schedule the binary rather than the endpoint.
func remindCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run one reminder pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(false)
			if err != nil {
				return err
			}
			defer env.close()
			app, err := env.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			summary := app.Reminders.ProcessAll(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(summary); err != nil {
					return err
				}
			} else {
				for _, d := range summary.Domains {
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s due=%d sent=%d skipped=%d failed=%d %s\n",
						d.Kind, d.Due, d.Sent, d.Skipped, d.Failed, d.Error)
				}
			}
			if !summary.OK {
				return fmt.Errorf("reminder run %s failed", summary.RunID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run summary as JSON")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Load demo users, events, trainings, equipment and policies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			env, err := openEnv(true)
			if err != nil {
				return err
			}
			defer env.close()
			res, err := seed.Apply(cmd.Context(), env.db, fixtures, time.Now().UTC(), env.log)
			if err != nil {
				return err
			}
			env.log.Info("fixtures applied",
				zap.Int("users", res.Users), zap.Int("events", res.Events), zap.Int("trainings", res.Trainings),
				zap.Int("equipment", res.Equipment), zap.Int("policies", res.Policies))
			return nil
		},
	}
}
