package domain

import "fmt"

// BattingCard accumulates one player's batting figures for a single innings.
type BattingCard struct {
	Name      string `json:"name"`
	Runs      int    `json:"runs"`
	Balls     int    `json:"balls"`
	Fours     int    `json:"fours"`
	Sixes     int    `json:"sixes"`
	Dismissal string `json:"dismissal"`
	IsOut     bool   `json:"is_out"`
}

// NewBattingCard returns a fresh card marked "not out".
func NewBattingCard(name string) *BattingCard {
	return &BattingCard{Name: name, Dismissal: "not out"}
}

// StrikeRate is runs per 100 balls faced.
func (c *BattingCard) StrikeRate() float64 {
	if c.Balls == 0 {
		return 0
	}
	return float64(c.Runs) / float64(c.Balls) * 100
}

// BowlingCard accumulates one player's bowling figures for a single innings.
type BowlingCard struct {
	Name           string `json:"name"`
	OversCompleted int    `json:"-"`
	BallsInOver    int    `json:"-"`
	RunsConceded   int    `json:"runs"`
	Wickets        int    `json:"wickets"`
}

func NewBowlingCard(name string) *BowlingCard {
	return &BowlingCard{Name: name}
}

// TotalBalls is the number of legal deliveries bowled.
func (c *BowlingCard) TotalBalls() int {
	return c.OversCompleted*6 + c.BallsInOver
}

// OversDisplay renders overs in cricket notation, e.g. "2" or "2.3".
func (c *BowlingCard) OversDisplay() string {
	if c.BallsInOver == 0 {
		return fmt.Sprintf("%d", c.OversCompleted)
	}
	return fmt.Sprintf("%d.%d", c.OversCompleted, c.BallsInOver)
}

// Economy is runs conceded per over.
func (c *BowlingCard) Economy() float64 {
	overs := float64(c.OversCompleted) + float64(c.BallsInOver)/6
	if overs == 0 {
		return 0
	}
	return float64(c.RunsConceded) / overs
}

// BattingLine is the scorecard row shown to clients.
type BattingLine struct {
	Name      string  `json:"name"`
	Runs      int     `json:"runs"`
	Balls     int     `json:"balls"`
	Fours     int     `json:"fours"`
	Sixes     int     `json:"sixes"`
	SR        float64 `json:"sr"`
	Dismissal string  `json:"dismissal"`
	IsOut     bool    `json:"is_out"`
}

// BowlingLine is the scorecard row shown to clients.
type BowlingLine struct {
	Name    string  `json:"name"`
	Overs   string  `json:"overs"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Econ    float64 `json:"econ"`
}

func (c *BattingCard) Line() BattingLine {
	return BattingLine{
		Name:      c.Name,
		Runs:      c.Runs,
		Balls:     c.Balls,
		Fours:     c.Fours,
		Sixes:     c.Sixes,
		SR:        round1(c.StrikeRate()),
		Dismissal: c.Dismissal,
		IsOut:     c.IsOut,
	}
}

func (c *BowlingCard) Line() BowlingLine {
	return BowlingLine{
		Name:    c.Name,
		Overs:   c.OversDisplay(),
		Runs:    c.RunsConceded,
		Wickets: c.Wickets,
		Econ:    round1(c.Economy()),
	}
}

func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
