package domain

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// VerifiedLevel is the level a profile reaches once KYC is approved.
	VerifiedLevel = 2

	oneDay = 24 * time.Hour
)

var hundred = decimal.NewFromInt(100)

// MediumLimit is what's left to trade today with a given medium.
type MediumLimit struct {
	InRemaining decimal.Decimal
}

// LevelLimit is the daily limit granted by a verification level.
type LevelLimit struct {
	InDaily decimal.Decimal
}

// Level is the verification level of a profile.
type Level struct {
	Name   string
	Limits map[Medium]LevelLimit
}

// Number returns the level name parsed as a number.
func (l Level) Number() (float64, bool) {
	n, err := strconv.ParseFloat(l.Name, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Profile is the user profile held by an exchange partner.
type Profile struct {
	CurrentLimits   map[Medium]MediumLimit
	Level           Level
	CanTradeAfter   *time.Time
	DefaultCurrency string
	BuyLimit        decimal.Decimal
}

// HasLevel returns whether the profile level is numerically equal to n.
func (p Profile) HasLevel(n float64) bool {
	lvl, ok := p.Level.Number()
	return ok && lvl == n
}

func (p Profile) IsVerified() bool {
	return p.HasLevel(VerifiedLevel)
}

// DaysUntilTrading returns the number of days left before the user is allowed
// to trade. It's 1 when the date is unknown.
func (p Profile) DaysUntilTrading(now time.Time) int {
	if p.CanTradeAfter == nil {
		return 1
	}
	left := p.CanTradeAfter.Sub(now)
	return int(math.Ceil(float64(left) / float64(oneDay)))
}

// Limits are the max and currently available amounts for a medium, formatted
// with exactly two decimal places.
type Limits struct {
	Max       string
	Available string
}

// CalculateMax returns the buy limits for medium at the given rate. The max is
// the daily limit of the user level, rounded to the nearest hundred; the
// available amount is what's left today, capped by the max and never negative.
func (p Profile) CalculateMax(rate decimal.Decimal, medium Medium) (Limits, error) {
	if !rate.IsPositive() {
		return Limits{}, ErrInvalidRate
	}
	current, ok := p.CurrentLimits[medium]
	if !ok {
		return Limits{}, ErrUnknownMedium
	}
	levelLimit, ok := p.Level.Limits[medium]
	if !ok {
		return Limits{}, ErrUnknownMedium
	}

	max := rate.Mul(levelLimit.InDaily).Div(hundred).Round(0).Mul(hundred)
	available := rate.Mul(current.InRemaining).Round(2)

	if available.GreaterThan(max) {
		available = max
	}
	if available.IsNegative() {
		available = decimal.Zero
	}

	return Limits{
		Max:       max.StringFixed(2),
		Available: available.StringFixed(2),
	}, nil
}
