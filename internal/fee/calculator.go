// Package fee computes the flat service fee charged on an order total.
// The tier table is injected so alternate tariffs can be tested without
// recompilation.
package fee

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAmount is returned for non-positive or non-numeric amounts.
var ErrInvalidAmount = errors.New("invalid amount")

// Tier charges Fee for amounts in the inclusive range [From, To].
type Tier struct {
	From float64
	To   float64
	Fee  float64
}

// DefaultTiers is the production tariff, covering 1 to 999,999 KES.
var DefaultTiers = []Tier{
	{From: 1, To: 100, Fee: 0},
	{From: 101, To: 1_000, Fee: 5},
	{From: 1_001, To: 1_500, Fee: 7},
	{From: 1_501, To: 2_500, Fee: 9},
	{From: 2_501, To: 3_500, Fee: 11},
	{From: 3_501, To: 5_000, Fee: 14},
	{From: 5_001, To: 7_500, Fee: 17},
	{From: 7_501, To: 10_000, Fee: 20},
	{From: 10_001, To: 15_000, Fee: 25},
	{From: 15_001, To: 20_000, Fee: 30},
	{From: 20_001, To: 35_000, Fee: 40},
	{From: 35_001, To: 50_000, Fee: 55},
	{From: 50_001, To: 250_000, Fee: 75},
	{From: 250_001, To: 500_000, Fee: 90},
	{From: 500_001, To: 999_999, Fee: 105},
}

// Calculator maps a monetary amount to a flat service fee from an ascending
// tier table. Pure and deterministic; the ledger's save path calls it
// synchronously.
type Calculator struct {
	tiers []Tier
}

// NewCalculator validates the tier table and returns a calculator over it.
func NewCalculator(tiers []Tier) (*Calculator, error) {
	if len(tiers) == 0 {
		return nil, errors.New("empty tier table")
	}
	for i, t := range tiers {
		if t.From > t.To {
			return nil, fmt.Errorf("tier %d: from %.0f > to %.0f", i, t.From, t.To)
		}
		if i > 0 && t.From <= tiers[i-1].To {
			return nil, fmt.Errorf("tier %d: overlaps previous tier", i)
		}
	}
	return &Calculator{tiers: tiers}, nil
}

// Default returns a calculator over the production tariff.
func Default() *Calculator {
	c, err := NewCalculator(DefaultTiers)
	if err != nil {
		panic(err)
	}
	return c
}

// Fee returns the flat fee for amount. Amounts above the last tier are
// charged the highest tier's fee; the tariff has no catch-all row and
// charging zero there would leak the fee entirely. A fractional amount
// between two tier bounds pays the fee of the tier above it.
func (c *Calculator) Fee(amount float64) (float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	for _, t := range c.tiers {
		if amount <= t.To {
			return t.Fee, nil
		}
	}
	return c.tiers[len(c.tiers)-1].Fee, nil
}
