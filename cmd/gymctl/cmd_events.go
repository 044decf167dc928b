package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gymadmin/internal/amqp"
	"gymadmin/internal/events"
	"gymadmin/internal/kafka"
)

var tailGroup string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect published activity events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print activity events as they arrive",
	Long: `Consume the activity event stream of the configured EVENTS_BACKEND and
print one JSON line per event until interrupted.

With amqp the configured queue is consumed, so events are removed from it.
With kafka a consumer group (--group) is used.`,
	Args: cobra.NoArgs,
	RunE: runEventsTail,
}

func init() {
	eventsTailCmd.Flags().StringVar(&tailGroup, "group", "gymctl-tail", "kafka consumer group")
	eventsCmd.AddCommand(eventsTailCmd)
}

func runEventsTail(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	enc := json.NewEncoder(cmd.OutOrStdout())
	printEvent := func(_ context.Context, msg *events.ActivityMessage) error {
		return enc.Encode(msg)
	}

	var err error
	switch cfg.EventsBackend {
	case "amqp":
		client, cerr := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if cerr != nil {
			return fmt.Errorf("connect to AMQP: %w", cerr)
		}
		defer client.Close()
		err = client.Consume(ctx, printEvent)
	case "kafka":
		reader := kafka.NewReader(cfg.KafkaBrokers, cfg.KafkaTopic, tailGroup)
		defer reader.Close()
		err = kafka.Consume(ctx, reader, printEvent)
	default:
		return fmt.Errorf("events backend %q cannot be tailed; set EVENTS_BACKEND to amqp or kafka", cfg.EventsBackend)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
