package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sessioncommands "jornada/contexts/strategy-journey/session-service/application/commands"
	"jornada/internal/app/bootstrap"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops, err := bootstrap.BuildOps()
			if err != nil {
				return err
			}
			defer ops.Close()

			applied, err := ops.Postgres.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", version)
			}
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load pillars and actions from a YAML catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalogFile(file)
			if err != nil {
				return err
			}
			ops, err := bootstrap.BuildOps()
			if err != nil {
				return err
			}
			defer ops.Close()

			result, err := ops.Catalog.Seeder.SeedCatalog(cmd.Context(), catalog)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d pillars and %d actions\n", result.Pillars, result.Actions)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newCodesCmd() *cobra.Command {
	codes := &cobra.Command{
		Use:   "codes",
		Short: "Manage meeting room codes",
	}

	var open sessioncommands.OpenMeetingCommand
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a meeting and activate its room code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops, err := bootstrap.BuildOps()
			if err != nil {
				return err
			}
			defer ops.Close()

			code, err := ops.Sessions.Meetings.OpenMeeting(cmd.Context(), open)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "meeting %s is open with code %s\n", code.MeetingID, code.Code)
			return nil
		},
	}
	create.Flags().StringVar(&open.MeetingID, "meeting", "", "meeting id")
	create.Flags().StringVar(&open.Code, "code", "", "room code participants type to join")
	create.Flags().StringVar(&open.Title, "title", "", "meeting title shown on the dashboard")
	_ = create.MarkFlagRequired("meeting")
	_ = create.MarkFlagRequired("code")

	codes.AddCommand(create)
	return codes
}

func newDemoCmd() *cobra.Command {
	var (
		file    string
		meeting sessioncommands.OpenMeetingCommand
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Serve the API from memory with a seeded catalog and one meeting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalogFile(file)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.BuildInMemoryAPI(ctx, bootstrap.InMemorySeed{
				Catalog:  catalog,
				Meetings: []sessioncommands.OpenMeetingCommand{meeting},
			})
			if err != nil {
				return err
			}
			defer app.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "demo meeting %s open with code %s\n", meeting.MeetingID, meeting.Code)
			return app.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	cmd.Flags().StringVar(&meeting.MeetingID, "meeting", "demo", "meeting id")
	cmd.Flags().StringVar(&meeting.Code, "code", "DEMO2026", "room code")
	cmd.Flags().StringVar(&meeting.Title, "title", "Demo meeting", "meeting title")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
