package board

import "context"

// Decision is the moderator's verdict on a pending claim.
type Decision int

const (
	DecisionApprove Decision = iota
	DecisionDeny
)

func (d Decision) String() string {
	if d == DecisionApprove {
		return "approve"
	}
	return "deny"
}

// IgnoreReason explains why a resolution was not applied. A stale resolution
// is an expected race (duplicate delivery, or a decision landing after a
// reset), not a fault.
type IgnoreReason int

const (
	IgnoreNone IgnoreReason = iota
	IgnoreBadToken
	IgnoreNotAuthorized
	IgnoreStale
)

func (r IgnoreReason) String() string {
	switch r {
	case IgnoreBadToken:
		return "bad_token"
	case IgnoreNotAuthorized:
		return "not_authorized"
	case IgnoreStale:
		return "stale"
	default:
		return "none"
	}
}

// ResolveResult reports the outcome of a moderation decision. On application
// Quest is the post-transition state and Token the decoded correlation.
type ResolveResult struct {
	Applied bool
	Reason  IgnoreReason
	Quest   Quest
	Token   Token
}

// Resolve applies a moderation decision to the claim the token correlates
// with. Applying the same token twice is a no-op the second time: once the
// quest is no longer pending, or is pending for a different claimer, the
// decision is reported as Ignored. How the authorization bit was computed is
// the caller's business; Resolve only honors it.
func (b *Board) Resolve(ctx context.Context, encoded string, decision Decision, resolverID, resolverName string, authorized bool) (ResolveResult, error) {
	token, err := DecodeToken(encoded)
	if err != nil {
		return ResolveResult{Reason: IgnoreBadToken}, nil
	}
	if !authorized {
		return ResolveResult{Reason: IgnoreNotAuthorized, Token: token}, nil
	}
	if !b.configured(token.Quest) {
		return ResolveResult{Reason: IgnoreStale, Token: token}, nil
	}

	res, claimerName, err := b.resolve(ctx, token, decision)
	if err != nil || !res.Applied {
		return res, err
	}

	ev := Event{
		Quest:        token.Quest,
		ClaimerID:    token.ClaimerID,
		ClaimerName:  claimerName,
		ResolverID:   resolverID,
		ResolverName: resolverName,
	}
	if decision == DecisionApprove {
		ev.Type = EventApproved
	} else {
		ev.Type = EventDenied
	}
	b.notify(ctx, ev)
	return res, nil
}

func (b *Board) resolve(ctx context.Context, token Token, decision Decision) (ResolveResult, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	quests, err := b.store.Load(ctx)
	if err != nil {
		return ResolveResult{}, "", err
	}
	current := quests[token.Quest]
	if current.Status != StatusPending || current.ClaimerID != token.ClaimerID {
		return ResolveResult{Reason: IgnoreStale, Quest: current, Token: token}, "", nil
	}

	var next Quest
	if decision == DecisionApprove {
		next = Quest{Status: StatusCompleted, ClaimerID: current.ClaimerID, ClaimerName: current.ClaimerName}
	} else {
		next = unclaimedQuest()
	}
	quests[token.Quest] = next
	if err := b.store.Save(ctx, quests); err != nil {
		return ResolveResult{}, "", err
	}
	return ResolveResult{Applied: true, Quest: next, Token: token}, current.ClaimerName, nil
}
