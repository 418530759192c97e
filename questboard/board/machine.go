package board

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
)

// ErrUnknownQuest is returned by Reset for a name outside the configured set.
var ErrUnknownQuest = fmt.Errorf("unknown quest")

// RejectReason explains why a claim was not accepted. No state is mutated on
// a rejection.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectUnknownQuest
	RejectAlreadyClaimed
	RejectMissingProof
)

func (r RejectReason) String() string {
	switch r {
	case RejectUnknownQuest:
		return "unknown_quest"
	case RejectAlreadyClaimed:
		return "already_claimed"
	case RejectMissingProof:
		return "missing_proof"
	default:
		return "none"
	}
}

// ClaimResult reports the outcome of a claim attempt. On acceptance Quest is
// the new pending state and Token correlates the claim for moderation. On an
// AlreadyClaimed rejection Quest is the state that blocked the claim.
type ClaimResult struct {
	Accepted bool
	Reason   RejectReason
	Quest    Quest
	Token    Token
}

// Board owns the claim lifecycle of a fixed quest set. Every transition runs
// a load-decide-save cycle under one mutex; notifications are dispatched only
// after the lock is released so a slow delivery cannot stall claims.
type Board struct {
	mu       sync.Mutex
	store    Store
	names    []string
	notifier Notifier
}

func New(store Store, names []string) *Board {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return &Board{store: store, names: sorted}
}

// SetNotifier installs the transition notifier. The delivery side usually
// needs the board for fresh snapshots, so it is wired after construction.
func (b *Board) SetNotifier(n Notifier) {
	b.notifier = n
}

// Names returns the configured quest names in sorted order.
func (b *Board) Names() []string {
	names := make([]string, len(b.names))
	copy(names, b.names)
	return names
}

func (b *Board) configured(name string) bool {
	i := sort.SearchStrings(b.names, name)
	return i < len(b.names) && b.names[i] == name
}

// Snapshot returns a consistent copy of the board state. The copy is private
// to the caller and safe to render or inspect without further locking.
func (b *Board) Snapshot(ctx context.Context) (map[string]Quest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	quests, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return maps.Clone(quests), nil
}

// Validate checks the persisted state against the configured name set.
// Persisted quests with no configured slot would be silently invisible on
// the board, so a mismatch is fatal at startup rather than papered over.
func (b *Board) Validate(ctx context.Context) error {
	quests, err := b.Snapshot(ctx)
	if err != nil {
		return err
	}
	var orphans []string
	for name := range quests {
		if !b.configured(name) {
			orphans = append(orphans, name)
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		return fmt.Errorf("persisted quests have no configured region: %v", orphans)
	}
	return nil
}

// Claim moves an unclaimed quest to pending for the given claimer. Proof is
// an opaque evidence reference; only its presence is checked here, its
// validity is the moderator's call.
func (b *Board) Claim(ctx context.Context, name, claimerID, claimerName, proof string) (ClaimResult, error) {
	if !b.configured(name) {
		return ClaimResult{Reason: RejectUnknownQuest}, nil
	}
	if proof == "" {
		return ClaimResult{Reason: RejectMissingProof}, nil
	}

	res, err := b.claim(ctx, name, claimerID, claimerName)
	if err != nil || !res.Accepted {
		return res, err
	}

	b.notify(ctx, Event{
		Type:        EventClaimed,
		Quest:       name,
		ClaimerID:   claimerID,
		ClaimerName: claimerName,
		Proof:       proof,
		Token:       res.Token,
	})
	return res, nil
}

func (b *Board) claim(ctx context.Context, name, claimerID, claimerName string) (ClaimResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	quests, err := b.store.Load(ctx)
	if err != nil {
		return ClaimResult{}, err
	}
	current := quests[name]
	if current.Status != StatusUnclaimed {
		return ClaimResult{Reason: RejectAlreadyClaimed, Quest: current}, nil
	}

	next := Quest{Status: StatusPending, ClaimerID: claimerID, ClaimerName: claimerName}
	quests[name] = next
	if err := b.store.Save(ctx, quests); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{Accepted: true, Quest: next, Token: NewToken(name, claimerID)}, nil
}

// Reset forces a single quest back to unclaimed. Idempotent; resetting an
// already unclaimed quest changes nothing and announces nothing.
func (b *Board) Reset(ctx context.Context, name string) error {
	if !b.configured(name) {
		return fmt.Errorf("%w: %s", ErrUnknownQuest, name)
	}
	changed, err := b.reset(ctx, name)
	if err != nil {
		return err
	}
	if changed {
		b.notify(ctx, Event{Type: EventReset, Quest: name})
	}
	return nil
}

// ResetAll forces every configured quest back to unclaimed.
func (b *Board) ResetAll(ctx context.Context) error {
	changed, err := b.reset(ctx, "")
	if err != nil {
		return err
	}
	if changed {
		b.notify(ctx, Event{Type: EventReset})
	}
	return nil
}

func (b *Board) reset(ctx context.Context, name string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	quests, err := b.store.Load(ctx)
	if err != nil {
		return false, err
	}

	changed := false
	for _, n := range b.names {
		if name != "" && n != name {
			continue
		}
		if quests[n] != unclaimedQuest() {
			quests[n] = unclaimedQuest()
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	if err := b.store.Save(ctx, quests); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Board) notify(ctx context.Context, ev Event) {
	if b.notifier != nil {
		b.notifier.Notify(ctx, ev)
	}
}
