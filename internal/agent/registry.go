package agent

import (
	"github.com/Rober-t/apxr/internal/types"
	"github.com/rs/zerolog/log"
)

// Mailboxes routes execution reports to each registered agent's inbox. It
// satisfies book.Notifier. Registration happens once at population setup,
// before any order is submitted to the engine, so lookups need no locking
// afterwards.
type Mailboxes struct {
	boxes map[types.TraderRef]chan types.ExecutionReport
}

func NewMailboxes() *Mailboxes {
	return &Mailboxes{boxes: make(map[types.TraderRef]chan types.ExecutionReport)}
}

// Register wires ref's mailbox into the registry.
func (m *Mailboxes) Register(ref types.TraderRef, mailbox chan types.ExecutionReport) {
	m.boxes[ref] = mailbox
}

// Notify delivers report to ref's mailbox, non-blocking. A full mailbox
// (an agent that has stopped draining, e.g. after a fault) drops the
// report and logs, per the engine's "counterparty callback failure must
// not abort matching" contract.
func (m *Mailboxes) Notify(ref types.TraderRef, report types.ExecutionReport) {
	box, ok := m.boxes[ref]
	if !ok {
		return
	}
	select {
	case box <- report:
	default:
		log.Warn().Str("trader", ref.Strategy.String()).Int("index", ref.Index).Msg("agent mailbox full, execution report dropped")
	}
}
