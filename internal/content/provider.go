// Package content produces the free text attached to generated tickets
// and pulls structured fields back out of it.
//
// A Provider is the only place text generation happens. Two are
// available: Template, a deterministic offline generator, and OpenAI,
// which calls any OpenAI-compatible chat completions endpoint. Both
// extract structured fields locally from markdown sections, so a
// description from either can be parsed the same way.
package content

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// ErrNoField is returned by the extractors when text carries no usable
// value for the requested field.
var ErrNoField = errors.New("field not found")

// Section headings the extractors look for.
const (
	SectionEffort             = "Estimated Effort"
	SectionTechnicalNotes     = "Technical Notes"
	SectionAcceptanceCriteria = "Acceptance Criteria"
	SectionStepsToReproduce   = "Steps to Reproduce"
	SectionExpectedBehavior   = "Expected Behavior"
	SectionActualBehavior     = "Actual Behavior"
	SectionWorkaround         = "Workaround"
)

// Request describes the ticket a description is written for.
type Request struct {
	Title      string
	Type       model.TicketType
	Component  model.Component
	Initiative string
	Parent     string // summary of the parent ticket, if any
}

// Provider generates ticket text and extracts structured fields from it.
// Every call may fail; callers decide on fallbacks.
type Provider interface {
	GenerateDescription(ctx context.Context, req Request) (string, error)
	GenerateSummary(ctx context.Context, text string, t model.TicketType) (string, error)
	ExtractEstimatedEffort(ctx context.Context, text string) (int, error)
	ExtractTechnicalNotes(ctx context.Context, text string) (string, error)
	ExtractAcceptanceCriteria(ctx context.Context, text string) ([]string, error)
	ExtractReproductionSteps(ctx context.Context, text string) ([]string, error)
}

// Extractor implements the extraction half of Provider with the local
// markdown parsers. Providers embed it.
type Extractor struct{}

func (Extractor) ExtractEstimatedEffort(_ context.Context, text string) (int, error) {
	return ParseEffort(text)
}

func (Extractor) ExtractTechnicalNotes(_ context.Context, text string) (string, error) {
	return ParseSection(text, SectionTechnicalNotes)
}

func (Extractor) ExtractAcceptanceCriteria(_ context.Context, text string) ([]string, error) {
	return ParseList(text, SectionAcceptanceCriteria)
}

func (Extractor) ExtractReproductionSteps(_ context.Context, text string) ([]string, error) {
	return ParseList(text, SectionStepsToReproduce)
}
