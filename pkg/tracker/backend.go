package tracker

import "context"

// Backend is the set of collaborator operations the tracker depends on.
// Implementations should return *Error so failures can be classified
// without looking at messages.
type Backend interface {
	UnassignedCount(ctx context.Context, userID string) (int, error)
	CheckStatus(ctx context.Context, userID string) (*StatusReport, error)
	RequestGeneration(ctx context.Context, userID string) (*Outcome, error)
	MarkViewed(ctx context.Context, resultID string) error
	CheckEligibility(ctx context.Context, userID string) (*Eligibility, error)
}
