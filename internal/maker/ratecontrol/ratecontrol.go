package ratecontrol

import (
	"errors"
	"fmt"
	"time"
)

// DefaultStep is the cooldown between two consecutive rate doublings.
const DefaultStep = 60 * time.Second

var ErrInvalidRateParams = errors.New("invalid rate parameters")

// RateController tracks how many quotes the producer emits per tick. The rate starts
// at min and doubles once per step until it saturates at max. It never decreases.
type RateController struct {
	maxRate      int
	currentRate  int
	step         time.Duration
	lastIncrease time.Time
}

// New returns a controller at minRate whose first increase is due one step after start.
func New(minRate, maxRate int, start time.Time) (*RateController, error) {
	return NewWithStep(minRate, maxRate, DefaultStep, start)
}

// NewWithStep is New with a custom cooldown between doublings.
func NewWithStep(minRate, maxRate int, step time.Duration, start time.Time) (*RateController, error) {
	if minRate <= 0 || maxRate <= 0 || minRate > maxRate {
		return nil, fmt.Errorf("%w: min=%d max=%d", ErrInvalidRateParams, minRate, maxRate)
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: step=%s", ErrInvalidRateParams, step)
	}

	return &RateController{
		maxRate:      maxRate,
		currentRate:  minRate,
		step:         step,
		lastIncrease: start,
	}, nil
}

// Adjust doubles the rate (capped at max) when at least one step has elapsed since the
// last increase, and reports whether the rate changed. lastIncrease only moves on an
// actual increase, so once saturated Adjust is a no-op.
func (r *RateController) Adjust(now time.Time) bool {
	if r.currentRate >= r.maxRate {
		return false
	}
	if now.Sub(r.lastIncrease) < r.step {
		return false
	}

	if r.currentRate > r.maxRate/2 {
		r.currentRate = r.maxRate
	} else {
		r.currentRate *= 2
	}
	r.lastIncrease = now
	return true
}

// Rate returns the number of quotes to emit on the current tick.
func (r *RateController) Rate() int {
	return r.currentRate
}

// MaxRate returns the saturation rate.
func (r *RateController) MaxRate() int {
	return r.maxRate
}
