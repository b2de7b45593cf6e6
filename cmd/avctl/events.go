package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"avelements/internal/events"
	kafkastore "avelements/internal/events/store/kafka"
	pgstore "avelements/internal/events/store/postgres"
)

func newEventsCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect recorded verification events",
	}
	cmd.AddCommand(
		newEventsListCommand(root),
		newEventsPruneCommand(root),
		newEventsTailCommand(root),
	)
	return cmd
}

func openEventStore(ctx context.Context, url string) (*pgstore.Store, func(), error) {
	if url == "" {
		return nil, nil, errors.New("AV_DATABASE_URL is not set")
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	return pgstore.New(db), func() { _ = db.Close() }, nil
}

func newEventsListCommand(root *rootOptions) *cobra.Command {
	var names []string
	cmd := &cobra.Command{
		Use:   "list FORM_ID",
		Short: "List the events recorded for a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load(cmd)
			if err != nil {
				return err
			}
			store, closeDB, err := openEventStore(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer closeDB()

			list, err := store.ListByForm(cmd.Context(), args[0], names...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringSliceVar(&names, "name", nil, "only events with this name (repeatable)")
	return cmd
}

func newEventsPruneCommand(root *rootOptions) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete events older than the retention window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := root.load(cmd)
			if err != nil {
				return err
			}
			if olderThan <= 0 {
				olderThan = cfg.Database.Retention
			}
			store, closeDB, err := openEventStore(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer closeDB()

			cutoff := time.Now().Add(-olderThan)
			n, err := store.DeleteBefore(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			log.Info("pruned events", "deleted", n, "cutoff", cutoff)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d events older than %s\n", n, cutoff.Format(time.RFC3339))
			return err
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "retention window, defaults to AV_EVENT_RETENTION")
	return cmd
}

func newEventsTailCommand(root *rootOptions) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream events from the Kafka topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := root.load(cmd)
			if err != nil {
				return err
			}
			if len(cfg.Kafka.Brokers) == 0 {
				return errors.New("AV_KAFKA_BROKERS is not set")
			}
			reader, err := kafkastore.NewReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, group, log)
			if err != nil {
				return err
			}
			defer reader.Close()

			err = reader.Run(cmd.Context(), func(e events.Event) error {
				return printJSON(cmd.OutOrStdout(), e)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&group, "group", "avctl", "consumer group")
	return cmd
}
