package board

import "context"

// EventType identifies a quest transition announced to the outside world.
type EventType string

const (
	EventClaimed  EventType = "claimed"
	EventApproved EventType = "approved"
	EventDenied   EventType = "denied"
	EventReset    EventType = "reset"
)

// Event is the abstract "quest transitioned" fact. Quest is empty for a
// whole-board reset. Proof is the opaque evidence reference supplied with a
// claim; Token accompanies Claimed events so the delivery side can build a
// moderation surface without a lookup table.
type Event struct {
	Type         EventType
	Quest        string
	ClaimerID    string
	ClaimerName  string
	ResolverID   string
	ResolverName string
	Proof        string
	Token        Token
}

// Notifier is the seam to the external delivery mechanism. Implementations
// must not block on the board's lock; the board always dispatches after the
// transition has been persisted and the lock released.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ev Event)

func (f NotifierFunc) Notify(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// MultiNotifier fans each event out to every notifier, in order.
func MultiNotifier(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, ev Event) {
		for _, n := range notifiers {
			n.Notify(ctx, ev)
		}
	})
}
