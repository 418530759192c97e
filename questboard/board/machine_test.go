package board

import (
	"context"
	"maps"
	"reflect"
	"sync"
	"testing"
)

type memStore struct {
	mu     sync.Mutex
	quests map[string]Quest
	saves  int
}

func newMemStore(names ...string) *memStore {
	return &memStore{quests: defaultQuests(names)}
}

func (s *memStore) Load(_ context.Context) (map[string]Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.quests), nil
}

func (s *memStore) Save(_ context.Context, quests map[string]Quest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quests = maps.Clone(quests)
	s.saves++
	return nil
}

func (s *memStore) get(name string) Quest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quests[name]
}

func (s *memStore) put(name string, q Quest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quests[name] = q
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func newTestBoard(names ...string) (*Board, *memStore, *recorder) {
	store := newMemStore(names...)
	rec := &recorder{}
	b := New(store, names)
	b.SetNotifier(rec)
	return b, store, rec
}

// checkInvariant asserts that claimer identity is present exactly when the
// status carries it.
func checkInvariant(t *testing.T, quests map[string]Quest) {
	t.Helper()
	for name, q := range quests {
		claimed := q.Status.Claimed()
		if claimed && (q.ClaimerID == "" || q.ClaimerName == "") {
			t.Errorf("quest %s: status %s without claimer identity", name, q.Status)
		}
		if !claimed && (q.ClaimerID != "" || q.ClaimerName != "") {
			t.Errorf("quest %s: status %s with claimer identity %q/%q", name, q.Status, q.ClaimerID, q.ClaimerName)
		}
	}
}

func TestBoard_Claim(t *testing.T) {
	tests := []struct {
		name         string
		quest        string
		proof        string
		existing     *Quest
		wantAccepted bool
		wantReason   RejectReason
	}{
		{
			name:         "Success",
			quest:        "sweet1",
			proof:        "https://example.com/proof.png",
			wantAccepted: true,
		},
		{
			name:       "UnknownQuest",
			quest:      "nosuch",
			proof:      "https://example.com/proof.png",
			wantReason: RejectUnknownQuest,
		},
		{
			name:       "MissingProof",
			quest:      "sweet1",
			wantReason: RejectMissingProof,
		},
		{
			name:       "AlreadyPending",
			quest:      "sweet1",
			proof:      "https://example.com/proof.png",
			existing:   &Quest{Status: StatusPending, ClaimerID: "7", ClaimerName: "other"},
			wantReason: RejectAlreadyClaimed,
		},
		{
			name:       "AlreadyCompleted",
			quest:      "sweet1",
			proof:      "https://example.com/proof.png",
			existing:   &Quest{Status: StatusCompleted, ClaimerID: "7", ClaimerName: "other"},
			wantReason: RejectAlreadyClaimed,
		},
		{
			name:       "LegacyCompletion",
			quest:      "sweet1",
			proof:      "https://example.com/proof.png",
			existing:   &Quest{Status: StatusCompletedLegacy},
			wantReason: RejectAlreadyClaimed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, store, _ := newTestBoard("sweet1", "wanted")
			if tt.existing != nil {
				store.put(tt.quest, *tt.existing)
			}

			res, err := b.Claim(context.Background(), tt.quest, "42", "claimer", tt.proof)
			if err != nil {
				t.Fatalf("Claim() error = %v", err)
			}
			if res.Accepted != tt.wantAccepted {
				t.Errorf("Claim() accepted = %v, want %v", res.Accepted, tt.wantAccepted)
			}
			if !tt.wantAccepted && res.Reason != tt.wantReason {
				t.Errorf("Claim() reason = %v, want %v", res.Reason, tt.wantReason)
			}
			checkInvariant(t, store.quests)
		})
	}
}

func TestBoard_ClaimRecordsClaimer(t *testing.T) {
	b, store, rec := newTestBoard("sweet1", "wanted")

	res, err := b.Claim(context.Background(), "sweet1", "42", "hunter", "https://example.com/p.png")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if !res.Accepted {
		t.Fatalf("Claim() rejected: %v", res.Reason)
	}

	want := Quest{Status: StatusPending, ClaimerID: "42", ClaimerName: "hunter"}
	if got := store.get("sweet1"); got != want {
		t.Errorf("stored quest = %+v, want %+v", got, want)
	}
	if res.Token.Quest != "sweet1" || res.Token.ClaimerID != "42" {
		t.Errorf("token = %+v, want quest sweet1 claimer 42", res.Token)
	}
	if res.Token.IssuedAt == 0 {
		t.Error("token has no issue time")
	}

	events := rec.all()
	if len(events) != 1 || events[0].Type != EventClaimed {
		t.Fatalf("events = %+v, want one Claimed", events)
	}
	if events[0].Quest != "sweet1" || events[0].ClaimerID != "42" || events[0].Proof == "" {
		t.Errorf("Claimed event = %+v", events[0])
	}
}

func TestBoard_ClaimRejectionMutatesNothing(t *testing.T) {
	b, store, rec := newTestBoard("sweet1")

	if _, err := b.Claim(context.Background(), "sweet1", "42", "hunter", ""); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if store.saves != 0 {
		t.Errorf("store saved %d times on rejection, want 0", store.saves)
	}
	if got := store.get("sweet1"); got != unclaimedQuest() {
		t.Errorf("quest mutated on rejection: %+v", got)
	}
	if events := rec.all(); len(events) != 0 {
		t.Errorf("events on rejection: %+v", events)
	}
}

func TestBoard_ConcurrentClaims(t *testing.T) {
	b, store, _ := newTestBoard("sweet1")

	const claimers = 16
	results := make(chan ClaimResult, claimers)
	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := b.Claim(context.Background(), "sweet1",
				string(rune('a'+i)), "claimer", "https://example.com/p.png")
			if err != nil {
				t.Errorf("Claim() error = %v", err)
				return
			}
			results <- res
		}(i)
	}
	wg.Wait()
	close(results)

	accepted, rejected := 0, 0
	for res := range results {
		if res.Accepted {
			accepted++
		} else if res.Reason == RejectAlreadyClaimed {
			rejected++
		} else {
			t.Errorf("unexpected rejection reason %v", res.Reason)
		}
	}
	if accepted != 1 || rejected != claimers-1 {
		t.Errorf("accepted = %d, rejected = %d, want 1 and %d", accepted, rejected, claimers-1)
	}
	checkInvariant(t, store.quests)
}

func TestBoard_Reset(t *testing.T) {
	b, store, rec := newTestBoard("sweet1", "wanted")
	store.put("sweet1", Quest{Status: StatusPending, ClaimerID: "42", ClaimerName: "hunter"})

	if err := b.Reset(context.Background(), "sweet1"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if got := store.get("sweet1"); got != unclaimedQuest() {
		t.Errorf("quest after reset = %+v", got)
	}
	if events := rec.all(); len(events) != 1 || events[0].Type != EventReset || events[0].Quest != "sweet1" {
		t.Errorf("events = %+v, want one Reset for sweet1", events)
	}

	// Resetting an already unclaimed quest changes and announces nothing.
	if err := b.Reset(context.Background(), "sweet1"); err != nil {
		t.Fatalf("second Reset() error = %v", err)
	}
	if events := rec.all(); len(events) != 1 {
		t.Errorf("idempotent reset emitted extra events: %+v", events)
	}

	if err := b.Reset(context.Background(), "nosuch"); err == nil {
		t.Error("Reset(nosuch) did not fail")
	}
}

func TestBoard_ResetAll(t *testing.T) {
	b, store, rec := newTestBoard("sweet1", "wanted", "mines")
	store.put("sweet1", Quest{Status: StatusPending, ClaimerID: "42", ClaimerName: "hunter"})
	store.put("wanted", Quest{Status: StatusCompleted, ClaimerID: "7", ClaimerName: "other"})

	if err := b.ResetAll(context.Background()); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	if !reflect.DeepEqual(store.quests, defaultQuests([]string{"sweet1", "wanted", "mines"})) {
		t.Errorf("board after ResetAll = %+v", store.quests)
	}
	events := rec.all()
	if len(events) != 1 || events[0].Type != EventReset || events[0].Quest != "" {
		t.Errorf("events = %+v, want one whole-board Reset", events)
	}

	if err := b.ResetAll(context.Background()); err != nil {
		t.Fatalf("second ResetAll() error = %v", err)
	}
	if events := rec.all(); len(events) != 1 {
		t.Errorf("idempotent ResetAll emitted extra events: %+v", events)
	}
}

func TestBoard_SnapshotIsIsolated(t *testing.T) {
	b, store, _ := newTestBoard("sweet1")

	snapshot, err := b.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	snapshot["sweet1"] = Quest{Status: StatusCompleted, ClaimerID: "42", ClaimerName: "hunter"}

	if got := store.get("sweet1"); got != unclaimedQuest() {
		t.Errorf("mutating a snapshot leaked into the store: %+v", got)
	}
}

func TestBoard_Validate(t *testing.T) {
	b, store, _ := newTestBoard("sweet1")
	if err := b.Validate(context.Background()); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	store.put("ghost", Quest{Status: StatusCompletedLegacy})
	if err := b.Validate(context.Background()); err == nil {
		t.Error("Validate() accepted a persisted quest with no configured region")
	}
}
