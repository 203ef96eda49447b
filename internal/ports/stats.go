package ports

import "context"

// PlayerMatchStats is one player's contribution in one finished match.
type PlayerMatchStats struct {
	Username     string
	Format       string
	Runs         int
	BallsFaced   int
	Fours        int
	Sixes        int
	Out          bool
	BallsBowled  int
	RunsConceded int
	Wickets      int
	Won          bool
}

// StatsPort defines the interface for accumulating per-player career stats.
type StatsPort interface {
	// RecordStats folds one match's figures into each player's totals.
	RecordStats(ctx context.Context, stats []PlayerMatchStats) error
}
