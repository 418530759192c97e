package board

import "sort"

// Status is the lifecycle state of a quest slot on the board.
type Status string

const (
	StatusUnclaimed       Status = "unclaimed"
	StatusPending         Status = "pending"
	StatusCompleted       Status = "completed"
	StatusCompletedLegacy Status = "completed_legacy"
)

// Claimed reports whether the status carries claimer identity.
func (s Status) Claimed() bool {
	return s == StatusPending || s == StatusCompleted
}

// Quest is the persisted state of a single board slot. ClaimerID and
// ClaimerName are empty exactly when the quest is unclaimed or a legacy
// completion.
type Quest struct {
	Status      Status `json:"status" bson:"status"`
	ClaimerID   string `json:"claimer_id,omitempty" bson:"claimer_id,omitempty"`
	ClaimerName string `json:"claimer_name,omitempty" bson:"claimer_name,omitempty"`
}

func unclaimedQuest() Quest {
	return Quest{Status: StatusUnclaimed}
}

// normalize repairs a quest entry loaded from an older or hand-edited
// store: an absent status means unclaimed, claimer fields are dropped when
// the status cannot carry them, and a claimed status with no claimer
// identity falls back to unclaimed.
func (q Quest) normalize() Quest {
	if q.Status == "" {
		q.Status = StatusUnclaimed
	}
	if q.Status.Claimed() && q.ClaimerID == "" {
		return unclaimedQuest()
	}
	if !q.Status.Claimed() {
		q.ClaimerID = ""
		q.ClaimerName = ""
	}
	return q
}

// defaultQuests builds the all-unclaimed mapping over the configured name set.
func defaultQuests(names []string) map[string]Quest {
	quests := make(map[string]Quest, len(names))
	for _, name := range names {
		quests[name] = unclaimedQuest()
	}
	return quests
}

func sortedNames(quests map[string]Quest) []string {
	names := make([]string, 0, len(quests))
	for name := range quests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
