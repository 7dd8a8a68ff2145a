package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/ticketforge/internal/model"
	"github.com/alfredjeanlab/ticketforge/internal/ui"
)

const timeFormat = "2006-01-02 15:04"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(w io.Writer, res *generateResult) {
	ds := res.Dataset
	st := res.Memory.Stats()

	fmt.Fprintf(w, "Run:         %s\n", ui.RenderAccent(ds.RunID))
	fmt.Fprintf(w, "Seed:        %d\n", res.Seed)
	fmt.Fprintf(w, "Output:      %s\n", res.Out)
	if res.S3 != "" {
		fmt.Fprintf(w, "S3:          %s\n", res.S3)
	}
	if res.Saved {
		fmt.Fprintf(w, "Postgres:    saved\n")
	}
	fmt.Fprintf(w, "Tickets:     %d (%d blocked, %d relationships)\n", st.Total, st.BlockedCount, st.Edges/2)
	fmt.Fprintf(w, "Fix version: %d\n\n", len(ds.FixVersions))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tCOUNT")
	for _, t := range model.TicketTypes {
		fmt.Fprintf(tw, "%s\t%d\n", t, st.ByType[t])
	}
	tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SPRINT\tTEAM\tSTATUS\tTICKETS\tCOMPLETED/COMMITTED\tVELOCITY")
	for _, s := range res.Memory.Sprints() {
		velocity := "-"
		if s.Velocity != nil {
			velocity = fmt.Sprintf("%.2f", *s.Velocity)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d/%d\t%s\n",
			s.Name, s.TeamID, ui.RenderSprintStatus(s.Status), len(s.Tickets),
			s.StoryPointsCompleted, s.StoryPointsCommitted, velocity)
	}
	tw.Flush()
}

func printTicket(w io.Writer, t *model.Ticket) {
	fmt.Fprintf(w, "ID:          %s\n", ui.RenderAccent(t.ID))
	fmt.Fprintf(w, "Summary:     %s\n", t.Summary)
	fmt.Fprintf(w, "Type:        %s\n", t.Type)
	fmt.Fprintf(w, "Status:      %s\n", ui.RenderStatus(t.Status))
	fmt.Fprintf(w, "Priority:    %s\n", t.Priority)
	fmt.Fprintf(w, "Reporter:    %s\n", t.ReporterID)
	if t.AssigneeID != "" {
		fmt.Fprintf(w, "Assignee:    %s\n", t.AssigneeID)
	}
	fmt.Fprintf(w, "Components:  %s\n", joinComponents(t.Components))
	if t.StoryPoints != nil {
		fmt.Fprintf(w, "Points:      %d\n", *t.StoryPoints)
	}
	if t.SprintID != "" {
		fmt.Fprintf(w, "Sprint:      %s\n", t.SprintID)
	}
	if t.EpicLink != "" {
		fmt.Fprintf(w, "Epic:        %s\n", t.EpicLink)
	}
	if t.ParentID != "" {
		fmt.Fprintf(w, "Parent:      %s\n", t.ParentID)
	}
	if len(t.Labels) > 0 {
		fmt.Fprintf(w, "Labels:      %s\n", strings.Join(t.Labels, ", "))
	}
	if len(t.FixVersions) > 0 {
		fmt.Fprintf(w, "Fix:         %s\n", strings.Join(t.FixVersions, ", "))
	}
	if t.Blocking != nil {
		fmt.Fprintf(w, "Blocked:     %s (since %s)\n", t.Blocking.Reason, t.Blocking.Since.Format(timeFormat))
	}
	fmt.Fprintf(w, "Created At:  %s\n", t.CreatedAt.Format(timeFormat))
	fmt.Fprintf(w, "Updated At:  %s\n", t.UpdatedAt.Format(timeFormat))
	if t.ResolvedAt != nil {
		fmt.Fprintf(w, "Resolved At: %s\n", t.ResolvedAt.Format(timeFormat))
	}
	if t.Description != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(t.Description))
	}
}

func printRelationships(w io.Writer, rels *model.Relationships) {
	if len(rels.Outgoing) == 0 && len(rels.Incoming) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RELATION\tTICKET\tNOTE")
	for _, group := range []map[model.RelationType][]model.RelatedTicket{rels.Outgoing, rels.Incoming} {
		for _, rel := range sortedRelations(group) {
			for _, r := range group[rel] {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", rel, r.ID, r.Note)
			}
		}
	}
	tw.Flush()
}

func printBlockedTable(w io.Writer, tickets []*model.Ticket) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSPRINT\tSINCE\tREASON\tSUMMARY")
	for _, t := range tickets {
		since := "-"
		if at := t.BlockedSince(); at != nil {
			since = at.Format(timeFormat)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Type, t.SprintID, since, t.BlockingReason(), truncate(t.Summary, 50))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d blocked\n", len(tickets))
}

func printSprintDependencies(w io.Writer, sprintID string, deps model.SprintDependencies) {
	fmt.Fprintf(w, "Sprint %s\n\n", ui.RenderAccent(sprintID))
	printPairs(w, "BLOCKS", deps.Blocking)
	fmt.Fprintln(w)
	printPairs(w, "DEPENDS ON", deps.Dependencies)
	fmt.Fprintln(w)
	printPairs(w, "REQUIRED FOR", deps.RequiredFor)
}

func printPairs(w io.Writer, verb string, pairs []model.Pair) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "FROM\t%s\n", verb)
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s\t%s\n", p.From, p.To)
	}
	if len(pairs) == 0 {
		fmt.Fprintln(tw, ui.RenderMuted("(none)"))
	}
	tw.Flush()
}

func printTicketDependencies(w io.Writer, id string, deps model.Dependencies) {
	fmt.Fprintf(w, "Ticket %s\n", ui.RenderAccent(id))
	fmt.Fprintf(w, "Depends on:   %s\n", joinOrNone(deps.DependsOn))
	fmt.Fprintf(w, "Required for: %s\n", joinOrNone(deps.RequiredFor))
	fmt.Fprintf(w, "Blocked by:   %s\n", joinOrNone(deps.BlockedBy))
	fmt.Fprintf(w, "Blocks:       %s\n", joinOrNone(deps.Blocks))
}

func sortedRelations(m map[model.RelationType][]model.RelatedTicket) []model.RelationType {
	out := make([]model.RelationType, 0, len(m))
	for rel := range m {
		out = append(out, rel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func joinComponents(cs []model.Component) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
