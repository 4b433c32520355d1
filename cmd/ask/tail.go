package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"juris-rag-be/pkg/events"
	pktNats "juris-rag-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newTailCommand() *cobra.Command {
	var (
		natsURL string
		durable string
	)
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream pipeline events from NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := pktNats.NewSubscriber(natsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			color.Cyan("Listening on %s>", pktNats.SubjectPrefix)
			err = sub.Subscribe(ctx, pktNats.SubjectPrefix+">", durable, func(ctx context.Context, event events.Event) error {
				printEvent(event)
				return nil
			})
			if err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats", "nats://localhost:4222", "NATS server URL")
	cmd.Flags().StringVar(&durable, "durable", "", "Durable consumer name; empty streams only new events")
	return cmd
}

func printEvent(event events.Event) {
	ts := event.Timestamp().Format("15:04:05")
	switch event.EventType() {
	case events.TypeLowQualityFlagged:
		color.Red("%s %s %v", ts, event.EventType(), event.Payload())
	case events.TypeFeedbackRecorded:
		color.Yellow("%s %s %v", ts, event.EventType(), event.Payload())
	default:
		color.Green("%s %s %v", ts, event.EventType(), event.Payload())
	}
}
