package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/sahilchouksey/smart-campus-api/config"
	"github.com/sahilchouksey/smart-campus-api/database"
	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/cron"
	"github.com/sahilchouksey/smart-campus-api/utils/auth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and run housekeeping jobs",
	}
	cmd.AddCommand(newJobsListCmd(), newJobsRunCmd())
	return cmd
}

func openStore() (*database.GORMStore, *config.EnviornmentVariable, error) {
	if err := config.LoadENV(); err != nil {
		return nil, nil, err
	}
	env, err := config.Get()
	if err != nil {
		return nil, nil, err
	}
	store, err := database.StartGORM(env, zap.NewNop())
	if err != nil {
		return nil, nil, err
	}
	if err := store.Init(); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, env, nil
}

func newJobsListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent job runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var runs []model.CronJobLog
			err = store.GetDB().WithContext(cmd.Context()).
				Order("started_at DESC").
				Limit(limit).
				Find(&runs).Error
			if err != nil {
				return fmt.Errorf("fetch job runs: %w", err)
			}
			return printRuns(cmd, runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

func printRuns(cmd *cobra.Command, runs []model.CronJobLog) error {
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No job runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tSTATUS\tSTARTED\tDURATION\tMESSAGE")
	for _, r := range runs {
		msg := r.Message
		if r.Status == model.CronJobFailed {
			msg = r.ErrorMsg
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%dms\t%s\n",
			r.ID, r.JobName, r.Status, r.StartedAt.Format(time.DateTime), r.Duration, msg)
	}
	return tw.Flush()
}

func newJobsRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <job>",
		Short: "Run a database housekeeping job now",
		Long: `Run one of the database housekeeping jobs immediately:

  cleanup_expired_tokens  remove expired entries from the token blacklist
  cleanup_old_job_logs    delete job runs past the retention window`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, env, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			jobLog := cron.NewGORMJobLog(store.GetDB())
			manager := cron.NewCronManager(jobLog, zap.NewNop(),
				cron.TokenCleanupJob(auth.NewBlacklistService(store.GetDB())),
				cron.JobLogRetentionJob(jobLog, time.Duration(env.CRON_LOG_RETENTION_DAYS)*24*time.Hour),
			)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			if err := manager.RunNow(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s finished\n", args[0])
			return nil
		},
	}
}
