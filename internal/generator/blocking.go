package generator

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/alfredjeanlab/ticketforge/internal/clock"
	"github.com/alfredjeanlab/ticketforge/internal/events"
	"github.com/alfredjeanlab/ticketforge/internal/model"
)

// BlockingReasons is the default pool of causes a ticket is blocked by.
var BlockingReasons = []string{
	"Waiting for external API documentation",
	"Pending security review",
	"Infrastructure upgrade required",
	"Dependent service not yet available",
	"Awaiting client feedback",
	"Technical debt needs to be addressed first",
	"Resource constraints",
}

// Blocker moves tickets into the Blocked state. It never unblocks.
type Blocker struct {
	Probability float64
	Reasons     []string

	rng     *rand.Rand
	clock   clock.Clock
	emitter *emitter
}

// MaybeBlock blocks t with probability Probability. The reason and the
// since timestamp, one to five days back, are set together. It reports
// whether t was blocked by this call; tickets already blocked are left
// alone.
func (b *Blocker) MaybeBlock(ctx context.Context, t *model.Ticket) bool {
	if t.Blocking != nil || !chance(b.rng, b.Probability) {
		return false
	}
	reasons := b.Reasons
	if len(reasons) == 0 {
		reasons = BlockingReasons
	}
	since := b.clock.Now().Add(-time.Duration(between(b.rng, 1, 5)) * 24 * time.Hour)

	t.Status = model.StatusBlocked
	t.Blocking = &model.Blocking{Reason: choice(b.rng, reasons), Since: since}
	t.ResolvedAt = nil
	if t.UpdatedAt.Before(since) {
		t.UpdatedAt = since
	}

	b.emitter.emit(ctx, events.TopicTicketBlocked, events.TicketBlocked{
		RunID:    b.emitter.runID,
		TicketID: t.ID,
		Reason:   t.Blocking.Reason,
		Since:    since,
	})
	return true
}
