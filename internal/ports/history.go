package ports

import (
	"context"

	"handcricket/internal/domain"
)

// HistoryPort defines the interface for archiving finished matches.
type HistoryPort interface {
	// SaveMatch stores the final record of a completed match.
	// mode is "single" or "team"; potm may be nil when no award was computed.
	SaveMatch(ctx context.Context, matchID, mode string, result domain.MatchResult, potm *domain.PlayerOfMatch) error
}
