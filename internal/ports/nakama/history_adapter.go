package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"handcricket/internal/domain"
	"handcricket/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	collectionMatchHistory = "match_history"
	collectionPlayerStats  = "player_stats"
)

// StorageHistoryAdapter implements ports.HistoryPort on Nakama's storage engine.
type StorageHistoryAdapter struct {
	nk runtime.NakamaModule
}

// NewStorageHistoryAdapter creates a new history adapter.
func NewStorageHistoryAdapter(nk runtime.NakamaModule) *StorageHistoryAdapter {
	return &StorageHistoryAdapter{nk: nk}
}

type matchHistoryRecord struct {
	MatchID       string                `json:"match_id"`
	Mode          string                `json:"mode"`
	Result        domain.MatchResult    `json:"result"`
	PlayerOfMatch *domain.PlayerOfMatch `json:"player_of_match,omitempty"`
}

// SaveMatch stores the final record of a completed match as a
// server-owned storage object keyed by match id.
func (a *StorageHistoryAdapter) SaveMatch(ctx context.Context, matchID, mode string, result domain.MatchResult, potm *domain.PlayerOfMatch) error {
	value, err := json.Marshal(&matchHistoryRecord{
		MatchID:       matchID,
		Mode:          mode,
		Result:        result,
		PlayerOfMatch: potm,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      collectionMatchHistory,
		Key:             matchID,
		Value:           string(value),
		PermissionRead:  2,
		PermissionWrite: 0,
	}})
	if err != nil {
		return fmt.Errorf("failed to write match record: %w", err)
	}
	return nil
}

var _ ports.HistoryPort = (*StorageHistoryAdapter)(nil)

// StorageStatsAdapter implements ports.StatsPort on Nakama's storage engine.
type StorageStatsAdapter struct {
	nk runtime.NakamaModule
}

// NewStorageStatsAdapter creates a new stats adapter.
func NewStorageStatsAdapter(nk runtime.NakamaModule) *StorageStatsAdapter {
	return &StorageStatsAdapter{nk: nk}
}

type careerStats struct {
	Matches      int `json:"matches"`
	Wins         int `json:"wins"`
	Runs         int `json:"runs"`
	BallsFaced   int `json:"balls_faced"`
	Fours        int `json:"fours"`
	Sixes        int `json:"sixes"`
	Dismissals   int `json:"dismissals"`
	BallsBowled  int `json:"balls_bowled"`
	RunsConceded int `json:"runs_conceded"`
	Wickets      int `json:"wickets"`
}

// RecordStats folds one match's figures into each player's career totals,
// read-modify-write per player.
func (a *StorageStatsAdapter) RecordStats(ctx context.Context, stats []ports.PlayerMatchStats) error {
	for _, s := range stats {
		key := fmt.Sprintf("%s:%s", s.Username, s.Format)

		career := careerStats{}
		objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{{
			Collection: collectionPlayerStats,
			Key:        key,
		}})
		if err != nil {
			return fmt.Errorf("failed to read stats for %s: %w", s.Username, err)
		}
		if len(objects) > 0 {
			if err := json.Unmarshal([]byte(objects[0].Value), &career); err != nil {
				return fmt.Errorf("failed to unmarshal stats for %s: %w", s.Username, err)
			}
		}

		career.Matches++
		if s.Won {
			career.Wins++
		}
		career.Runs += s.Runs
		career.BallsFaced += s.BallsFaced
		career.Fours += s.Fours
		career.Sixes += s.Sixes
		if s.Out {
			career.Dismissals++
		}
		career.BallsBowled += s.BallsBowled
		career.RunsConceded += s.RunsConceded
		career.Wickets += s.Wickets

		value, err := json.Marshal(&career)
		if err != nil {
			return fmt.Errorf("failed to marshal stats for %s: %w", s.Username, err)
		}
		_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
			Collection:      collectionPlayerStats,
			Key:             key,
			Value:           string(value),
			PermissionRead:  2,
			PermissionWrite: 0,
		}})
		if err != nil {
			return fmt.Errorf("failed to write stats for %s: %w", s.Username, err)
		}
	}
	return nil
}

var _ ports.StatsPort = (*StorageStatsAdapter)(nil)
