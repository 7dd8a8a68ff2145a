package content

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

var (
	templateEfforts = []int{1, 2, 3, 5, 8}

	templateCriteria = []string{
		"All inputs are validated before processing",
		"Error responses include actionable messages",
		"Response times stay within the agreed SLA",
		"Changes are covered by automated tests",
		"Audit events are recorded for every state change",
		"Feature is behind a toggle until rollout completes",
		"Documentation is updated for the new behavior",
	}

	templateNotes = map[model.Component][]string{
		model.ComponentFrontend: {
			"Reuse the shared form components and keep bundle size flat.",
			"Render progressively and lazy-load heavy panels.",
		},
		model.ComponentBackend: {
			"Expose the change behind a versioned API endpoint with idempotent writes.",
			"Process work asynchronously through the job queue and emit metrics per stage.",
		},
		model.ComponentDatabase: {
			"Ship the schema change as a backwards-compatible migration with an index review.",
			"Partition by tenant and verify query plans against production-sized data.",
		},
		model.ComponentInfrastructure: {
			"Manage the resources in Terraform and roll out region by region.",
			"Add alerts on saturation and error budget burn before enabling traffic.",
		},
		model.ComponentSecurity: {
			"Threat-model the change and route secrets through the vault integration.",
		},
		model.ComponentTesting: {
			"Extend the end-to-end suite and keep the run under ten minutes.",
		},
	}

	templateSteps = [][]string{
		{"Log in as a standard user", "Open the workflow designer", "Save a workflow with more than 50 steps"},
		{"Upload a multi-page scanned document", "Wait for OCR processing to finish", "Open the extracted fields view"},
		{"Submit an approval request", "Approve it from a second account", "Refresh the request list"},
	}

	templateSymptoms = []struct{ actual, expected, workaround string }{
		{"The request fails with a 500 error", "The request completes and the result is shown", "Retry the request after a few seconds"},
		{"The page stays blank after loading", "The page renders the saved content", ""},
		{"Totals in the report are off by one record", "Report totals match the underlying records", "Export the raw records and sum them manually"},
	}
)

// Template is a deterministic Provider that assembles markdown from fixed
// phrase pools. The same seed yields the same text for the same calls.
// It is safe for concurrent use.
type Template struct {
	Extractor

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTemplate returns a Template seeded with seed.
func NewTemplate(seed uint64) *Template {
	return &Template{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (t *Template) GenerateDescription(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", req.Title)

	b.WriteString("## Background\n")
	fmt.Fprintf(&b, "This %s covers %s work", strings.ToLower(req.Type.String()), req.Component)
	if req.Initiative != "" {
		fmt.Fprintf(&b, " for the %s initiative", req.Initiative)
	}
	b.WriteString(".")
	if req.Parent != "" {
		fmt.Fprintf(&b, " It contributes to %q.", req.Parent)
	}
	b.WriteString("\n\n")

	if req.Type == model.TypeBug {
		steps := templateSteps[t.rng.IntN(len(templateSteps))]
		b.WriteString("## " + SectionStepsToReproduce + "\n")
		for i, s := range steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		sym := templateSymptoms[t.rng.IntN(len(templateSymptoms))]
		fmt.Fprintf(&b, "\n## %s\n%s\n\n## %s\n%s\n", SectionExpectedBehavior, sym.expected, SectionActualBehavior, sym.actual)
		if sym.workaround != "" {
			fmt.Fprintf(&b, "\n## %s\n%s\n", SectionWorkaround, sym.workaround)
		}
		return b.String(), nil
	}

	fmt.Fprintf(&b, "## %s\n%d story points\n\n", SectionEffort, templateEfforts[t.rng.IntN(len(templateEfforts))])

	if notes := templateNotes[req.Component]; len(notes) > 0 && req.Type != model.TypeEpic {
		fmt.Fprintf(&b, "## %s\n%s\n\n", SectionTechnicalNotes, notes[t.rng.IntN(len(notes))])
	}

	if req.Type == model.TypeStory || req.Type == model.TypeTask {
		b.WriteString("## " + SectionAcceptanceCriteria + "\n")
		perm := t.rng.Perm(len(templateCriteria))
		for _, i := range perm[:3] {
			fmt.Fprintf(&b, "- %s\n", templateCriteria[i])
		}
	}
	return b.String(), nil
}

func (t *Template) GenerateSummary(ctx context.Context, text string, _ model.TicketType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s := Summarize(text)
	if s == "" {
		return "", fmt.Errorf("summary: %w", ErrNoField)
	}
	return s, nil
}
