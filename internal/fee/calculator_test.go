package fee

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_Fee(t *testing.T) {
	calc := Default()

	tests := []struct {
		name    string
		amount  float64
		wantFee float64
	}{
		{name: "first_tier_lower_bound", amount: 1, wantFee: 0},
		{name: "first_tier_upper_bound", amount: 100, wantFee: 0},
		{name: "second_tier", amount: 500, wantFee: 5},
		{name: "third_tier", amount: 1200, wantFee: 7},
		{name: "tier_boundary_exact", amount: 1500, wantFee: 7},
		{name: "next_tier_after_boundary", amount: 1501, wantFee: 9},
		{name: "fractional_between_tiers", amount: 100.5, wantFee: 5},
		{name: "large_amount", amount: 120_000, wantFee: 75},
		{name: "last_tier_upper_bound", amount: 999_999, wantFee: 105},
		{name: "above_last_tier", amount: 2_500_000, wantFee: 105},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Fee(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, got)
		})
	}
}

func TestCalculator_FeeInvalidAmount(t *testing.T) {
	calc := Default()

	tests := []struct {
		name   string
		amount float64
	}{
		{name: "zero", amount: 0},
		{name: "negative", amount: -10},
		{name: "nan", amount: math.NaN()},
		{name: "positive_infinity", amount: math.Inf(1)},
		{name: "negative_infinity", amount: math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Fee(tt.amount)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestNewCalculator(t *testing.T) {
	tests := []struct {
		name    string
		tiers   []Tier
		wantErr bool
	}{
		{
			name:  "valid_table",
			tiers: []Tier{{From: 1, To: 100, Fee: 1}, {From: 101, To: 200, Fee: 2}},
		},
		{
			name:    "empty_table",
			tiers:   nil,
			wantErr: true,
		},
		{
			name:    "inverted_bounds",
			tiers:   []Tier{{From: 100, To: 1, Fee: 1}},
			wantErr: true,
		},
		{
			name:    "overlapping_tiers",
			tiers:   []Tier{{From: 1, To: 100, Fee: 1}, {From: 50, To: 200, Fee: 2}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCalculator(tt.tiers)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
