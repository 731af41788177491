// Package rewards derives account totals, level and rank from check-in rewards.
package rewards

import "github.com/shopspring/decimal"

const ExperiencePerLevel = 100

type Rank string

const (
	RankBronze   Rank = "bronze"
	RankSilver   Rank = "silver"
	RankGold     Rank = "gold"
	RankPlatinum Rank = "platinum"
)

const (
	silverLoyalty   = 1000
	goldLoyalty     = 5000
	platinumLoyalty = 10000
)

type Account struct {
	Experience int64
	Loyalty    int64
	Coins      int64
	Gems       int64
	Level      int
	Rank       Rank
}

// Reward is the per-visit grant of a store. All fields are non-negative.
type Reward struct {
	Experience int64 `json:"experience"`
	Loyalty    int64 `json:"loyalty"`
	Coins      int64 `json:"coins"`
	Gems       int64 `json:"gems"`
}

func (r Reward) Valid() bool {
	return r.Experience >= 0 && r.Loyalty >= 0 && r.Coins >= 0 && r.Gems >= 0
}

func (r Reward) Add(other Reward) Reward {
	return Reward{
		Experience: r.Experience + other.Experience,
		Loyalty:    r.Loyalty + other.Loyalty,
		Coins:      r.Coins + other.Coins,
		Gems:       r.Gems + other.Gems,
	}
}

func LevelFor(experience int64) int {
	if experience < 0 {
		return 1
	}
	return int(experience/ExperiencePerLevel) + 1
}

func RankFor(loyalty int64) Rank {
	switch {
	case loyalty >= platinumLoyalty:
		return RankPlatinum
	case loyalty >= goldLoyalty:
		return RankGold
	case loyalty >= silverLoyalty:
		return RankSilver
	default:
		return RankBronze
	}
}

// New returns a zeroed account with its derived fields set.
func New() Account {
	return Derive(Account{})
}

// Derive recomputes Level and Rank from the cumulative totals. Every write
// path goes through it.
func Derive(a Account) Account {
	a.Level = LevelFor(a.Experience)
	a.Rank = RankFor(a.Loyalty)
	return a
}

// Apply adds reward to current and reports whether the level went up.
func Apply(current Account, reward Reward) (Account, bool) {
	updated := Derive(Account{
		Experience: current.Experience + reward.Experience,
		Loyalty:    current.Loyalty + reward.Loyalty,
		Coins:      current.Coins + reward.Coins,
		Gems:       current.Gems + reward.Gems,
	})
	return updated, updated.Level > current.Level
}

// Progress is the fraction of the current level already earned, as a
// two-place decimal string ("0.00" to "0.99").
func Progress(experience int64) string {
	if experience < 0 {
		experience = 0
	}
	within := decimal.NewFromInt(experience % ExperiencePerLevel)
	return within.Div(decimal.NewFromInt(ExperiencePerLevel)).StringFixed(2)
}

func (r Rank) Valid() bool {
	switch r {
	case RankBronze, RankSilver, RankGold, RankPlatinum:
		return true
	}
	return false
}
