package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

func TestNoopPublisher_Publish(t *testing.T) {
	pub := &NoopPublisher{}
	err := pub.Publish(context.Background(), TopicTicketCreated, TicketCreated{})
	if err != nil {
		t.Fatalf("NoopPublisher.Publish returned unexpected error: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("NoopPublisher.Close returned unexpected error: %v", err)
	}
}

func TestPublishersImplementPublisher(t *testing.T) {
	var _ Publisher = (*NoopPublisher)(nil)
	var _ Publisher = (*NATSPublisher)(nil)
	var _ Publisher = (*Recorder)(nil)
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	ctx := context.Background()
	_ = rec.Publish(ctx, TopicTicketCreated, TicketCreated{RunID: "r"})
	_ = rec.Publish(ctx, TopicLinkAdded, LinkAdded{Source: "A", Target: "B", Type: model.RelBlocks})
	_ = rec.Publish(ctx, TopicTicketCreated, TicketCreated{RunID: "r"})

	if got := rec.Count(TopicTicketCreated); got != 2 {
		t.Errorf("Count(created) = %d, want 2", got)
	}
	events := rec.Events()
	if len(events) != 3 || events[1].Topic != TopicLinkAdded {
		t.Fatalf("Events = %+v", events)
	}
	if link, ok := events[1].Event.(LinkAdded); !ok || link.Type != model.RelBlocks {
		t.Errorf("events[1] = %+v", events[1].Event)
	}
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	// Subscribe to capture published messages.
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(TopicTicketCreated, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	event := TicketCreated{
		RunID: "RUN-1",
		Ticket: &model.Ticket{
			ID: "INNO-1", Type: model.TypeTask, Summary: "Add caching layer",
			Status: model.StatusToDo, Details: &model.TaskDetails{TechnicalNotes: "use LRU"},
		},
	}
	if err := pub.Publish(context.Background(), TopicTicketCreated, event); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		var got TicketCreated
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Ticket.ID != "INNO-1" {
			t.Errorf("got ticket ID=%q, want %q", got.Ticket.ID, "INNO-1")
		}
		if task := got.Ticket.Task(); task == nil || task.TechnicalNotes != "use LRU" {
			t.Errorf("details not carried: %+v", got.Ticket.Details)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestNATSPublisher_PublishMultipleTopics(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 4)
	sub, err := nc.ChanSubscribe(TopicAll, ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck
	nc.Flush()

	for _, tc := range []struct {
		topic string
		event any
	}{
		{TopicSprintCreated, SprintCreated{Sprint: &model.Sprint{ID: "SPR-1"}}},
		{TopicSprintAssigned, SprintAssigned{SprintID: "SPR-1", TicketID: "INNO-2", StoryPoints: 5}},
		{TopicTicketBlocked, TicketBlocked{TicketID: "INNO-2", Reason: "Resource constraints"}},
		{TopicRunCompleted, RunCompleted{RunID: "RUN-1", Tickets: 12}},
	} {
		if err := pub.Publish(context.Background(), tc.topic, tc.event); err != nil {
			t.Fatalf("Publish(%s): %v", tc.topic, err)
		}
	}
	pub.conn.Flush()

	for i := 0; i < 4; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestNATSPublisher_Close(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	// Publishing after close should fail.
	err = pub.Publish(context.Background(), TopicTicketCreated, TicketCreated{})
	if err == nil {
		t.Error("expected error publishing after close")
	}
}

func TestNATSPublisher_CanceledContext(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Publish(ctx, TopicRunCompleted, RunCompleted{RunID: "RUN-1"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Publish err = %v, want context.Canceled", err)
	}
}

func TestNATSPublisher_CloseTwice(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
