package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketforge/internal/events"
	"github.com/alfredjeanlab/ticketforge/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Print generation events as they are published",
	GroupID: "inspect",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("nats")
		if url == "" {
			url = cfg.NATSURL
		}
		if url == "" {
			return errors.New("no NATS URL: set TICKETFORGE_NATS_URL or --nats")
		}
		topic, _ := cmd.Flags().GetString("topic")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sub, err := events.NewNATSSubscriber(url,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("nats disconnected", "err", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				logger.Info("nats reconnected")
			}),
		)
		if err != nil {
			return err
		}
		defer sub.Close()

		return watchEvents(ctx, sub, topic, os.Stdout)
	},
}

func init() {
	watchCmd.Flags().String("nats", "", "NATS URL (default $TICKETFORGE_NATS_URL)")
	watchCmd.Flags().String("topic", events.TopicAll, "subject to subscribe to")
}

// watchEvents prints every message on topic until ctx is done.
func watchEvents(ctx context.Context, sub events.Subscriber, topic string, w io.Writer) error {
	ch, cancel, err := sub.Subscribe(topic)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if jsonOutput {
				fmt.Fprintln(w, string(msg.Data))
				continue
			}
			fmt.Fprintf(w, "%s %s\n", ui.RenderAccent(msg.Topic), describeEvent(msg))
		}
	}
}

// describeEvent renders a one-line summary of an event payload.
func describeEvent(msg events.Message) string {
	switch msg.Topic {
	case events.TopicTicketCreated:
		var e struct {
			Ticket struct {
				ID      string `json:"id"`
				Type    string `json:"type"`
				Summary string `json:"summary"`
			} `json:"ticket"`
		}
		if json.Unmarshal(msg.Data, &e) == nil {
			return fmt.Sprintf("%s %s %s", e.Ticket.ID, e.Ticket.Type, truncate(e.Ticket.Summary, 60))
		}
	case events.TopicTicketBlocked:
		var e events.TicketBlocked
		if json.Unmarshal(msg.Data, &e) == nil {
			return fmt.Sprintf("%s: %s", e.TicketID, e.Reason)
		}
	case events.TopicLinkAdded:
		var e events.LinkAdded
		if json.Unmarshal(msg.Data, &e) == nil {
			return fmt.Sprintf("%s %s %s", e.Source, e.Type, e.Target)
		}
	case events.TopicSprintAssigned:
		var e events.SprintAssigned
		if json.Unmarshal(msg.Data, &e) == nil {
			return fmt.Sprintf("%s -> %s (%d/%d)", e.TicketID, e.SprintID, e.Completed, e.Committed)
		}
	case events.TopicRunCompleted:
		var e events.RunCompleted
		if json.Unmarshal(msg.Data, &e) == nil {
			return fmt.Sprintf("run %s: %d tickets, %d sprints, %d edges", e.RunID, e.Tickets, e.Sprints, e.Edges)
		}
	}
	return ui.RenderMuted(truncate(string(msg.Data), 100))
}
