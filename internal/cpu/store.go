package cpu

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_ball_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id TEXT NOT NULL,
	ball_number INTEGER NOT NULL,
	innings INTEGER NOT NULL,
	batter TEXT NOT NULL,
	bowler TEXT NOT NULL,
	bat_move INTEGER NOT NULL,
	bowl_move INTEGER NOT NULL,
	runs_scored INTEGER NOT NULL,
	is_out INTEGER NOT NULL,
	match_format TEXT NOT NULL,
	game_phase TEXT NOT NULL,
	score_pressure TEXT NOT NULL,
	batting_wickets INTEGER NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_ball_log_match ON match_ball_log(match_id);

CREATE TABLE IF NOT EXISTS cpu_global_pattern (
	match_format TEXT NOT NULL,
	game_phase TEXT NOT NULL,
	role TEXT NOT NULL,
	score_situation TEXT NOT NULL,
	wickets_lost INTEGER NOT NULL,
	freq0 REAL NOT NULL, freq1 REAL NOT NULL, freq2 REAL NOT NULL,
	freq3 REAL NOT NULL, freq4 REAL NOT NULL, freq5 REAL NOT NULL,
	freq6 REAL NOT NULL,
	total_samples INTEGER NOT NULL,
	PRIMARY KEY (match_format, game_phase, role, score_situation, wickets_lost)
);

CREATE TABLE IF NOT EXISTS cpu_user_profile (
	username TEXT NOT NULL,
	match_format TEXT NOT NULL,
	bat_freq0 REAL NOT NULL DEFAULT 0, bat_freq1 REAL NOT NULL DEFAULT 0,
	bat_freq2 REAL NOT NULL DEFAULT 0, bat_freq3 REAL NOT NULL DEFAULT 0,
	bat_freq4 REAL NOT NULL DEFAULT 0, bat_freq5 REAL NOT NULL DEFAULT 0,
	bat_freq6 REAL NOT NULL DEFAULT 0,
	bowl_freq0 REAL NOT NULL DEFAULT 0, bowl_freq1 REAL NOT NULL DEFAULT 0,
	bowl_freq2 REAL NOT NULL DEFAULT 0, bowl_freq3 REAL NOT NULL DEFAULT 0,
	bowl_freq4 REAL NOT NULL DEFAULT 0, bowl_freq5 REAL NOT NULL DEFAULT 0,
	bowl_freq6 REAL NOT NULL DEFAULT 0,
	total_balls_faced INTEGER NOT NULL DEFAULT 0,
	total_balls_bowled INTEGER NOT NULL DEFAULT 0,
	batting_aggression REAL NOT NULL DEFAULT 0,
	bowling_variation REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (username, match_format)
);

CREATE TABLE IF NOT EXISTS cpu_situational_pattern (
	username TEXT NOT NULL,
	match_format TEXT NOT NULL,
	game_phase TEXT NOT NULL,
	role TEXT NOT NULL,
	score_pressure TEXT NOT NULL,
	recent_event TEXT NOT NULL,
	freq0 REAL NOT NULL, freq1 REAL NOT NULL, freq2 REAL NOT NULL,
	freq3 REAL NOT NULL, freq4 REAL NOT NULL, freq5 REAL NOT NULL,
	freq6 REAL NOT NULL,
	sample_count INTEGER NOT NULL,
	PRIMARY KEY (username, match_format, game_phase, role, score_pressure, recent_event)
);

CREATE TABLE IF NOT EXISTS cpu_sequence_pattern (
	username TEXT NOT NULL,
	match_format TEXT NOT NULL,
	role TEXT NOT NULL,
	previous_move INTEGER NOT NULL,
	previous_result TEXT NOT NULL,
	freq0 REAL NOT NULL, freq1 REAL NOT NULL, freq2 REAL NOT NULL,
	freq3 REAL NOT NULL, freq4 REAL NOT NULL, freq5 REAL NOT NULL,
	freq6 REAL NOT NULL,
	sample_count INTEGER NOT NULL,
	PRIMARY KEY (username, match_format, role, previous_move, previous_result)
);

CREATE TABLE IF NOT EXISTS cpu_learning_progress (
	username TEXT PRIMARY KEY,
	total_balls_tracked INTEGER NOT NULL,
	learning_phase TEXT NOT NULL,
	confidence_score REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS cpu_learning_queue (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ball_log_id INTEGER NOT NULL,
	processed INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	processed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_queue_unprocessed ON cpu_learning_queue(processed, id);
`

// Store is the sqlite-backed pattern store shared by the strategy engine and
// the learning processor. Safe for concurrent use via database/sql pooling.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the learning database and bootstraps the schema.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open learning db: %w", err)
	}
	// The learning pipeline writes from one goroutine; a single connection
	// keeps sqlite happy with the in-memory DSN as well.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init learning schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// BallRecord is one logged delivery with its learning context.
type BallRecord struct {
	ID             int64
	MatchID        string
	BallNumber     int
	Innings        int
	Batter         string
	Bowler         string
	BatMove        int
	BowlMove       int
	Runs           int
	IsOut          bool
	Format         string
	GamePhase      string
	ScorePressure  string
	BattingWickets int
}

// LogBall appends the delivery to the ball log and enqueues it for the
// learning processor, atomically.
func (s *Store) LogBall(rec *BallRecord) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("log ball: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO match_ball_log
		(match_id, ball_number, innings, batter, bowler, bat_move, bowl_move,
		 runs_scored, is_out, match_format, game_phase, score_pressure, batting_wickets)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.MatchID, rec.BallNumber, rec.Innings, rec.Batter, rec.Bowler,
		rec.BatMove, rec.BowlMove, rec.Runs, boolToInt(rec.IsOut),
		rec.Format, rec.GamePhase, rec.ScorePressure, rec.BattingWickets)
	if err != nil {
		return 0, fmt.Errorf("insert ball log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ball log id: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO cpu_learning_queue (ball_log_id) VALUES (?)`, id); err != nil {
		return 0, fmt.Errorf("enqueue ball: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("log ball commit: %w", err)
	}
	rec.ID = id
	return id, nil
}

// QueueItem pairs a pending queue row with its logged ball.
type QueueItem struct {
	QueueID int64
	Ball    BallRecord
}

// NextBatch returns up to limit unprocessed queue items in queue order.
func (s *Store) NextBatch(limit int) ([]QueueItem, error) {
	rows, err := s.db.Query(`SELECT q.id, b.id, b.match_id, b.ball_number, b.innings,
			b.batter, b.bowler, b.bat_move, b.bowl_move, b.runs_scored, b.is_out,
			b.match_format, b.game_phase, b.score_pressure, b.batting_wickets
		FROM cpu_learning_queue q
		JOIN match_ball_log b ON b.id = q.ball_log_id
		WHERE q.processed = 0
		ORDER BY q.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("queue batch: %w", err)
	}
	defer rows.Close()

	var items []QueueItem
	for rows.Next() {
		var it QueueItem
		var isOut int
		if err := rows.Scan(&it.QueueID, &it.Ball.ID, &it.Ball.MatchID, &it.Ball.BallNumber,
			&it.Ball.Innings, &it.Ball.Batter, &it.Ball.Bowler, &it.Ball.BatMove,
			&it.Ball.BowlMove, &it.Ball.Runs, &isOut, &it.Ball.Format,
			&it.Ball.GamePhase, &it.Ball.ScorePressure, &it.Ball.BattingWickets); err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		it.Ball.IsOut = isOut != 0
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkProcessed flags a queue item done. Called even after a processing
// failure so one bad record never stalls the queue.
func (s *Store) MarkProcessed(queueID int64) error {
	_, err := s.db.Exec(`UPDATE cpu_learning_queue
		SET processed = 1, processed_at = CURRENT_TIMESTAMP WHERE id = ?`, queueID)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// GlobalKey identifies one global pattern bucket.
type GlobalKey struct {
	Format         string
	GamePhase      string
	Role           string
	ScoreSituation string
	WicketsLost    int
}

// GlobalPattern loads a global bucket; samples is 0 when the bucket is new.
func (s *Store) GlobalPattern(k GlobalKey) (Distribution, int, error) {
	var d Distribution
	var samples int
	err := s.db.QueryRow(`SELECT freq0, freq1, freq2, freq3, freq4, freq5, freq6, total_samples
		FROM cpu_global_pattern
		WHERE match_format = ? AND game_phase = ? AND role = ? AND score_situation = ? AND wickets_lost = ?`,
		k.Format, k.GamePhase, k.Role, k.ScoreSituation, k.WicketsLost).
		Scan(&d[0], &d[1], &d[2], &d[3], &d[4], &d[5], &d[6], &samples)
	if err == sql.ErrNoRows {
		return Distribution{}, 0, nil
	}
	if err != nil {
		return Distribution{}, 0, fmt.Errorf("load global pattern: %w", err)
	}
	return d, samples, nil
}

// SaveGlobalPattern upserts a global bucket.
func (s *Store) SaveGlobalPattern(k GlobalKey, d Distribution, samples int) error {
	_, err := s.db.Exec(`INSERT INTO cpu_global_pattern
		(match_format, game_phase, role, score_situation, wickets_lost,
		 freq0, freq1, freq2, freq3, freq4, freq5, freq6, total_samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_format, game_phase, role, score_situation, wickets_lost)
		DO UPDATE SET freq0=excluded.freq0, freq1=excluded.freq1, freq2=excluded.freq2,
			freq3=excluded.freq3, freq4=excluded.freq4, freq5=excluded.freq5,
			freq6=excluded.freq6, total_samples=excluded.total_samples`,
		k.Format, k.GamePhase, k.Role, k.ScoreSituation, k.WicketsLost,
		d[0], d[1], d[2], d[3], d[4], d[5], d[6], samples)
	if err != nil {
		return fmt.Errorf("save global pattern: %w", err)
	}
	return nil
}

// Profile is one user's per-format tendency record.
type Profile struct {
	Username          string
	Format            string
	BatFreq           Distribution
	BowlFreq          Distribution
	BallsFaced        int
	BallsBowled       int
	BattingAggression float64
	BowlingVariation  float64
}

// UserProfile loads a profile, or nil when the user is unseen in this format.
func (s *Store) UserProfile(username, format string) (*Profile, error) {
	p := &Profile{Username: username, Format: format}
	err := s.db.QueryRow(`SELECT
			bat_freq0, bat_freq1, bat_freq2, bat_freq3, bat_freq4, bat_freq5, bat_freq6,
			bowl_freq0, bowl_freq1, bowl_freq2, bowl_freq3, bowl_freq4, bowl_freq5, bowl_freq6,
			total_balls_faced, total_balls_bowled, batting_aggression, bowling_variation
		FROM cpu_user_profile WHERE username = ? AND match_format = ?`, username, format).
		Scan(&p.BatFreq[0], &p.BatFreq[1], &p.BatFreq[2], &p.BatFreq[3], &p.BatFreq[4], &p.BatFreq[5], &p.BatFreq[6],
			&p.BowlFreq[0], &p.BowlFreq[1], &p.BowlFreq[2], &p.BowlFreq[3], &p.BowlFreq[4], &p.BowlFreq[5], &p.BowlFreq[6],
			&p.BallsFaced, &p.BallsBowled, &p.BattingAggression, &p.BowlingVariation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user profile: %w", err)
	}
	return p, nil
}

// SaveUserProfile upserts the full profile row.
func (s *Store) SaveUserProfile(p *Profile) error {
	_, err := s.db.Exec(`INSERT INTO cpu_user_profile
		(username, match_format,
		 bat_freq0, bat_freq1, bat_freq2, bat_freq3, bat_freq4, bat_freq5, bat_freq6,
		 bowl_freq0, bowl_freq1, bowl_freq2, bowl_freq3, bowl_freq4, bowl_freq5, bowl_freq6,
		 total_balls_faced, total_balls_bowled, batting_aggression, bowling_variation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username, match_format) DO UPDATE SET
			bat_freq0=excluded.bat_freq0, bat_freq1=excluded.bat_freq1,
			bat_freq2=excluded.bat_freq2, bat_freq3=excluded.bat_freq3,
			bat_freq4=excluded.bat_freq4, bat_freq5=excluded.bat_freq5,
			bat_freq6=excluded.bat_freq6,
			bowl_freq0=excluded.bowl_freq0, bowl_freq1=excluded.bowl_freq1,
			bowl_freq2=excluded.bowl_freq2, bowl_freq3=excluded.bowl_freq3,
			bowl_freq4=excluded.bowl_freq4, bowl_freq5=excluded.bowl_freq5,
			bowl_freq6=excluded.bowl_freq6,
			total_balls_faced=excluded.total_balls_faced,
			total_balls_bowled=excluded.total_balls_bowled,
			batting_aggression=excluded.batting_aggression,
			bowling_variation=excluded.bowling_variation`,
		p.Username, p.Format,
		p.BatFreq[0], p.BatFreq[1], p.BatFreq[2], p.BatFreq[3], p.BatFreq[4], p.BatFreq[5], p.BatFreq[6],
		p.BowlFreq[0], p.BowlFreq[1], p.BowlFreq[2], p.BowlFreq[3], p.BowlFreq[4], p.BowlFreq[5], p.BowlFreq[6],
		p.BallsFaced, p.BallsBowled, p.BattingAggression, p.BowlingVariation)
	if err != nil {
		return fmt.Errorf("save user profile: %w", err)
	}
	return nil
}

// SituationalKey identifies one user x context pattern bucket.
type SituationalKey struct {
	Username      string
	Format        string
	GamePhase     string
	Role          string
	ScorePressure string
	RecentEvent   string
}

func (s *Store) SituationalPattern(k SituationalKey) (Distribution, int, error) {
	var d Distribution
	var samples int
	err := s.db.QueryRow(`SELECT freq0, freq1, freq2, freq3, freq4, freq5, freq6, sample_count
		FROM cpu_situational_pattern
		WHERE username = ? AND match_format = ? AND game_phase = ? AND role = ?
			AND score_pressure = ? AND recent_event = ?`,
		k.Username, k.Format, k.GamePhase, k.Role, k.ScorePressure, k.RecentEvent).
		Scan(&d[0], &d[1], &d[2], &d[3], &d[4], &d[5], &d[6], &samples)
	if err == sql.ErrNoRows {
		return Distribution{}, 0, nil
	}
	if err != nil {
		return Distribution{}, 0, fmt.Errorf("load situational pattern: %w", err)
	}
	return d, samples, nil
}

func (s *Store) SaveSituationalPattern(k SituationalKey, d Distribution, samples int) error {
	_, err := s.db.Exec(`INSERT INTO cpu_situational_pattern
		(username, match_format, game_phase, role, score_pressure, recent_event,
		 freq0, freq1, freq2, freq3, freq4, freq5, freq6, sample_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username, match_format, game_phase, role, score_pressure, recent_event)
		DO UPDATE SET freq0=excluded.freq0, freq1=excluded.freq1, freq2=excluded.freq2,
			freq3=excluded.freq3, freq4=excluded.freq4, freq5=excluded.freq5,
			freq6=excluded.freq6, sample_count=excluded.sample_count`,
		k.Username, k.Format, k.GamePhase, k.Role, k.ScorePressure, k.RecentEvent,
		d[0], d[1], d[2], d[3], d[4], d[5], d[6], samples)
	if err != nil {
		return fmt.Errorf("save situational pattern: %w", err)
	}
	return nil
}

// SequenceKey identifies a next-move bucket after a given move+result.
type SequenceKey struct {
	Username   string
	Format     string
	Role       string
	PrevMove   int
	PrevResult string
}

func (s *Store) SequencePattern(k SequenceKey) (Distribution, int, error) {
	var d Distribution
	var samples int
	err := s.db.QueryRow(`SELECT freq0, freq1, freq2, freq3, freq4, freq5, freq6, sample_count
		FROM cpu_sequence_pattern
		WHERE username = ? AND match_format = ? AND role = ? AND previous_move = ? AND previous_result = ?`,
		k.Username, k.Format, k.Role, k.PrevMove, k.PrevResult).
		Scan(&d[0], &d[1], &d[2], &d[3], &d[4], &d[5], &d[6], &samples)
	if err == sql.ErrNoRows {
		return Distribution{}, 0, nil
	}
	if err != nil {
		return Distribution{}, 0, fmt.Errorf("load sequence pattern: %w", err)
	}
	return d, samples, nil
}

func (s *Store) SaveSequencePattern(k SequenceKey, d Distribution, samples int) error {
	_, err := s.db.Exec(`INSERT INTO cpu_sequence_pattern
		(username, match_format, role, previous_move, previous_result,
		 freq0, freq1, freq2, freq3, freq4, freq5, freq6, sample_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username, match_format, role, previous_move, previous_result)
		DO UPDATE SET freq0=excluded.freq0, freq1=excluded.freq1, freq2=excluded.freq2,
			freq3=excluded.freq3, freq4=excluded.freq4, freq5=excluded.freq5,
			freq6=excluded.freq6, sample_count=excluded.sample_count`,
		k.Username, k.Format, k.Role, k.PrevMove, k.PrevResult,
		d[0], d[1], d[2], d[3], d[4], d[5], d[6], samples)
	if err != nil {
		return fmt.Errorf("save sequence pattern: %w", err)
	}
	return nil
}

// Progress returns the user's tracked ball count; 0 for unseen users.
func (s *Store) Progress(username string) (int, error) {
	var balls int
	err := s.db.QueryRow(`SELECT total_balls_tracked FROM cpu_learning_progress WHERE username = ?`,
		username).Scan(&balls)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load learning progress: %w", err)
	}
	return balls, nil
}

// SaveProgress upserts the user's progress row.
func (s *Store) SaveProgress(username string, balls int, phase string, confidence float64) error {
	_, err := s.db.Exec(`INSERT INTO cpu_learning_progress
		(username, total_balls_tracked, learning_phase, confidence_score)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			total_balls_tracked=excluded.total_balls_tracked,
			learning_phase=excluded.learning_phase,
			confidence_score=excluded.confidence_score`,
		username, balls, phase, confidence)
	if err != nil {
		return fmt.Errorf("save learning progress: %w", err)
	}
	return nil
}

// PrevBallFor returns the player's most recent earlier ball in this match in
// the given role, or nil.
func (s *Store) PrevBallFor(matchID, player, role string, beforeID int64) (*BallRecord, error) {
	column := "batter"
	if role == RoleBowling {
		column = "bowler"
	}
	row := s.db.QueryRow(`SELECT id, match_id, ball_number, innings, batter, bowler,
			bat_move, bowl_move, runs_scored, is_out, match_format, game_phase,
			score_pressure, batting_wickets
		FROM match_ball_log
		WHERE match_id = ? AND `+column+` = ? AND id < ?
		ORDER BY id DESC LIMIT 1`, matchID, player, beforeID)
	rec, err := scanBall(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load previous ball: %w", err)
	}
	return rec, nil
}

// RecentBallsFor returns up to limit of the batter's earlier balls in this
// match, most recent first.
func (s *Store) RecentBallsFor(matchID, batter string, beforeID int64, limit int) ([]BallRecord, error) {
	rows, err := s.db.Query(`SELECT id, match_id, ball_number, innings, batter, bowler,
			bat_move, bowl_move, runs_scored, is_out, match_format, game_phase,
			score_pressure, batting_wickets
		FROM match_ball_log
		WHERE match_id = ? AND batter = ? AND id < ?
		ORDER BY id DESC LIMIT ?`, matchID, batter, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent balls: %w", err)
	}
	defer rows.Close()

	var recs []BallRecord
	for rows.Next() {
		rec, err := scanBall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recent ball: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBall(row rowScanner) (*BallRecord, error) {
	var rec BallRecord
	var isOut int
	err := row.Scan(&rec.ID, &rec.MatchID, &rec.BallNumber, &rec.Innings,
		&rec.Batter, &rec.Bowler, &rec.BatMove, &rec.BowlMove, &rec.Runs,
		&isOut, &rec.Format, &rec.GamePhase, &rec.ScorePressure, &rec.BattingWickets)
	if err != nil {
		return nil, err
	}
	rec.IsOut = isOut != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
