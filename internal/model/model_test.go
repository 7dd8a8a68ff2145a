package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTicketType_IsValid(t *testing.T) {
	for _, tc := range []struct {
		typ  TicketType
		want bool
	}{
		{TypeEpic, true},
		{TypeStory, true},
		{TypeTask, true},
		{TypeSubtask, true},
		{TypeBug, true},
		{TicketType("Initiative"), false},
		{TicketType(""), false},
	} {
		if got := tc.typ.IsValid(); got != tc.want {
			t.Errorf("TicketType(%q).IsValid() = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestTicketType_Estimated(t *testing.T) {
	for _, tc := range []struct {
		typ  TicketType
		want bool
	}{
		{TypeEpic, false},
		{TypeStory, true},
		{TypeTask, true},
		{TypeSubtask, true},
		{TypeBug, false},
	} {
		if got := tc.typ.Estimated(); got != tc.want {
			t.Errorf("TicketType(%q).Estimated() = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestDefaultPriority(t *testing.T) {
	for _, tc := range []struct {
		typ  TicketType
		want Priority
	}{
		{TypeEpic, PriorityHigh},
		{TypeBug, PriorityHigh},
		{TypeStory, PriorityMedium},
		{TypeTask, PriorityMedium},
		{TypeSubtask, PriorityMedium},
	} {
		if got := DefaultPriority(tc.typ); got != tc.want {
			t.Errorf("DefaultPriority(%q) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}

func TestStatus_IsValid(t *testing.T) {
	for _, tc := range []struct {
		status Status
		want   bool
	}{
		{StatusToDo, true},
		{StatusInProgress, true},
		{StatusInReview, true},
		{StatusBlocked, true},
		{StatusDone, true},
		{Status("open"), false},
		{Status(""), false},
	} {
		if got := tc.status.IsValid(); got != tc.want {
			t.Errorf("Status(%q).IsValid() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestRelationType_InverseIsSymmetric(t *testing.T) {
	if len(RelationTypes) != 10 {
		t.Fatalf("expected 10 relation types, got %d", len(RelationTypes))
	}
	for _, rel := range RelationTypes {
		inv, ok := rel.Inverse()
		if !ok {
			t.Fatalf("%q has no inverse", rel)
		}
		if inv == rel {
			t.Errorf("%q is its own inverse", rel)
		}
		back, ok := inv.Inverse()
		if !ok || back != rel {
			t.Errorf("Inverse(Inverse(%q)) = %q, want %q", rel, back, rel)
		}
		if rel.IsForward() == inv.IsForward() {
			t.Errorf("%q and %q must have opposite voice", rel, inv)
		}
	}
	if _, ok := RelationType("relates_to").Inverse(); ok {
		t.Error("relates_to should not be in the inverse table")
	}
}

func TestRelationType_Pairs(t *testing.T) {
	for _, tc := range []struct {
		forward RelationType
		inverse RelationType
	}{
		{RelBlocks, RelBlockedBy},
		{RelDependsOn, RelRequiredFor},
		{RelClones, RelClonedBy},
		{RelDuplicates, RelDuplicatedBy},
		{RelImplements, RelImplementedBy},
	} {
		if got, _ := tc.forward.Inverse(); got != tc.inverse {
			t.Errorf("%q.Inverse() = %q, want %q", tc.forward, got, tc.inverse)
		}
	}
}

func TestSprint_DurationAndVelocity(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	s := &Sprint{StartDate: start, EndDate: start.AddDate(0, 0, 14), StoryPointsCompleted: 28}
	if got := s.DurationDays(); got != 14 {
		t.Fatalf("DurationDays() = %d, want 14", got)
	}
	s.UpdateVelocity()
	if s.Velocity == nil || *s.Velocity != 2 {
		t.Fatalf("Velocity = %v, want 2", s.Velocity)
	}
	if !s.Contains(start.AddDate(0, 0, 3)) {
		t.Error("Contains(start+3d) = false, want true")
	}
	if s.Contains(start.AddDate(0, 0, 15)) {
		t.Error("Contains(start+15d) = true, want false")
	}
}

func TestTicketJSON_PreservesVariantAndBlocking(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	points := 3
	in := &Ticket{
		ID: "INNO-7", Type: TypeBug, Summary: "Bug: Backend Issue", Description: "d",
		Status: StatusBlocked, Priority: PriorityHigh, ReporterID: "m1",
		Components: []Component{ComponentBackend}, StoryPoints: &points,
		CreatedAt: now, UpdatedAt: now,
		Links:    Links{RelBlocks: {"INNO-8"}},
		Blocking: &Blocking{Reason: "Pending security review", Since: now.AddDate(0, 0, -2)},
		Details: &BugDetails{
			Severity:         PriorityHigh,
			StepsToReproduce: []string{"a", "b"},
			ExpectedBehavior: "works",
			ActualBehavior:   "fails",
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"blocking_reason":"Pending security review"`, `"blocked_since"`, `"details":{`, `"severity":"High"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("marshaled ticket missing %s: %s", key, data)
		}
	}

	var out Ticket
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	bug := out.Bug()
	if bug == nil {
		t.Fatalf("Bug() = nil, details = %T", out.Details)
	}
	if len(bug.StepsToReproduce) != 2 || bug.ActualBehavior != "fails" {
		t.Errorf("bug details = %+v", bug)
	}
	if out.BlockingReason() != "Pending security review" || out.BlockedSince() == nil {
		t.Errorf("blocking = %+v", out.Blocking)
	}
	if !out.Links.Has(RelBlocks, "INNO-8") {
		t.Errorf("links = %v", out.Links)
	}
}

func TestTicketJSON_RejectsHalfBlocked(t *testing.T) {
	data := `{"id":"INNO-1","type":"Task","blocking_reason":"Resource constraints"}`
	var tk Ticket
	if err := json.Unmarshal([]byte(data), &tk); err == nil {
		t.Fatal("expected error for blocking_reason without blocked_since")
	}
}

func TestTicketFilter_Matches(t *testing.T) {
	tk := &Ticket{
		Type: TypeTask, Status: StatusInProgress, SprintID: "SPR-1",
		Components: []Component{ComponentBackend}, AssigneeID: "m1", ParentID: "INNO-2",
	}
	for _, tc := range []struct {
		name   string
		filter TicketFilter
		want   bool
	}{
		{"Empty", TicketFilter{}, true},
		{"Type", TicketFilter{Type: []TicketType{TypeStory, TypeTask}}, true},
		{"WrongType", TicketFilter{Type: []TicketType{TypeBug}}, false},
		{"Status", TicketFilter{Status: []Status{StatusBlocked}}, false},
		{"Component", TicketFilter{Component: ComponentBackend}, true},
		{"OtherComponent", TicketFilter{Component: ComponentFrontend}, false},
		{"Sprint", TicketFilter{SprintID: "SPR-1", Assignee: "m1", ParentID: "INNO-2"}, true},
		{"OtherSprint", TicketFilter{SprintID: "SPR-2"}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Matches(tk); got != tc.want {
				t.Errorf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}
