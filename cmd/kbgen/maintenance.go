package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/goatkit/kbgen/internal/database"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	var withHostTables bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the queue table and its indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			if withHostTables {
				if err := database.CreateHostTables(cmd.Context(), db); err != nil {
					return err
				}
			}
			log.Info().Str("driver", cfg.Database.Driver).Bool("host_tables", withHostTables).Msg("schema migrated")
			return nil
		},
	}
	cmd.Flags().BoolVar(&withHostTables, "with-host-tables", false, "also create stand-in host platform tables (sqlite only)")
	return cmd
}

func newCleanupCmd(configPath *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete unconverted queue entries past the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if days <= 0 {
				settings, err := a.settings.Load(cmd.Context(), "")
				if err != nil {
					return err
				}
				days = settings.RetentionDays
			}

			n, err := a.queue.Cleanup(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d queue entries older than %d days\n", n, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "retention in days (default: the configured retention_days)")
	return cmd
}

func newEnqueueCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <ticket-id>",
		Short: "Run the ticket-closed handling for one ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || ticketID <= 0 {
				return errors.New("ticket id must be a positive integer")
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			settings, err := a.settings.Load(cmd.Context(), "")
			if err != nil {
				return err
			}
			result, err := a.queue.EnqueueOnTicketClose(cmd.Context(), ticketID, settings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ticket #%d: %s\n", ticketID, result)
			return nil
		},
	}
}
