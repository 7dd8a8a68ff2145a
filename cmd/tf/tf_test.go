package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/ticketforge/internal/config"
	"github.com/alfredjeanlab/ticketforge/internal/events"
	"github.com/alfredjeanlab/ticketforge/internal/export"
	"github.com/alfredjeanlab/ticketforge/internal/model"
	"github.com/alfredjeanlab/ticketforge/internal/ui"
)

func init() {
	ui.ForceNoColor()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return &config.Config{
		OutputDir:       filepath.Join(t.TempDir(), "out"),
		Seed:            7,
		SeedSet:         true,
		Sprints:         2,
		ContentProvider: config.ProviderTemplate,
		ContentTimeout:  time.Second,
		ContentRetries:  1,
	}
}

func TestRunGenerate(t *testing.T) {
	c := testConfig(t)
	res, err := runGenerate(context.Background(), c)
	if err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	if res.Seed != 7 || res.Saved || res.S3 != "" {
		t.Errorf("result = %+v", res)
	}

	profile := config.DefaultProfile()
	if got, want := len(res.Dataset.Sprints), 2*len(profile.Teams); got != want {
		t.Errorf("sprints = %d, want %d", got, want)
	}

	back, err := export.Load(c.OutputDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.RunID != res.Dataset.RunID || len(back.Tickets) != len(res.Dataset.Tickets) {
		t.Errorf("reloaded run=%s tickets=%d, want run=%s tickets=%d",
			back.RunID, len(back.Tickets), res.Dataset.RunID, len(res.Dataset.Tickets))
	}

	var buf bytes.Buffer
	printSummary(&buf, res)
	out := buf.String()
	for _, want := range []string{"Run:         " + res.Dataset.RunID, "Seed:        7", "SPRINT", "Sprint 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRunGenerate_BadProfile(t *testing.T) {
	c := testConfig(t)
	c.ProfilePath = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := runGenerate(context.Background(), c); err == nil {
		t.Fatal("expected error for missing profile")
	}
}

func TestApplyGenerateFlags(t *testing.T) {
	c := testConfig(t)
	c.DatabaseURL = "postgres://localhost/tf"
	cmd := &cobra.Command{Use: "generate"}
	addGenerateFlags(cmd)
	if err := cmd.Flags().Parse([]string{"--seed", "99", "--sprints", "4", "--out", "x", "--no-db"}); err != nil {
		t.Fatal(err)
	}
	if err := applyGenerateFlags(cmd, c); err != nil {
		t.Fatal(err)
	}
	if c.Seed != 99 || !c.SeedSet || c.Sprints != 4 || c.OutputDir != "x" || c.DatabaseURL != "" {
		t.Errorf("config = %+v", c)
	}
}

func TestReadCommands(t *testing.T) {
	c := testConfig(t)
	res, err := runGenerate(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	mem := res.Memory

	var blocked bytes.Buffer
	printBlockedTable(&blocked, mem.BlockedTickets(""))
	if !strings.Contains(blocked.String(), "REASON") {
		t.Errorf("blocked table:\n%s", blocked.String())
	}

	tickets := mem.Tickets(model.TicketFilter{})
	if len(tickets) == 0 {
		t.Fatal("no tickets generated")
	}
	first := tickets[0]
	var buf bytes.Buffer
	printTicket(&buf, first)
	if !strings.Contains(buf.String(), "ID:          "+first.ID) {
		t.Errorf("ticket output:\n%s", buf.String())
	}

	sprint := mem.Sprints()[0]
	buf.Reset()
	printSprintDependencies(&buf, sprint.ID, mem.SprintDependencies(sprint.ID))
	if !strings.Contains(buf.String(), "DEPENDS ON") || !strings.Contains(buf.String(), "REQUIRED FOR") {
		t.Errorf("deps output:\n%s", buf.String())
	}
}

// fakeSubscriber delivers a fixed set of messages and then closes.
type fakeSubscriber struct {
	msgs []events.Message
}

func (f *fakeSubscriber) Subscribe(string) (<-chan events.Message, func(), error) {
	ch := make(chan events.Message, len(f.msgs))
	for _, m := range f.msgs {
		ch <- m
	}
	close(ch)
	return ch, func() {}, nil
}

func (f *fakeSubscriber) Close() error { return nil }

func TestWatchEvents(t *testing.T) {
	sub := &fakeSubscriber{msgs: []events.Message{
		{Topic: events.TopicTicketBlocked, Data: []byte(`{"ticket_id":"INNO-4","reason":"Resource constraints"}`)},
		{Topic: events.TopicLinkAdded, Data: []byte(`{"source":"INNO-1","target":"INNO-2","type":"blocks"}`)},
		{Topic: "ticketforge.other", Data: []byte(`{"x":1}`)},
	}}
	var buf bytes.Buffer
	if err := watchEvents(context.Background(), sub, events.TopicAll, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"ticketforge.ticket.blocked INNO-4: Resource constraints",
		"ticketforge.link.added INNO-1 blocks INNO-2",
		`ticketforge.other {"x":1}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
