// Package tracker answers date questions about habits: whether a habit is due on a day,
// whether it was completed, what comes next, and how a range of days or a week looks.
//
// An Evaluator is pinned to a single instant and zone when it is built. Every query on it
// sees the same "today", so a render pass or a request never straddles midnight.
// Evaluators are read-only over the habits they are given.
package tracker

import (
	"time"

	"github.com/julianstephens/habitreel/internal/utils"
)

type Evaluator struct {
	loc *time.Location
	now time.Time
}

// New reads the clock once and returns an Evaluator pinned to that instant.
func New(loc *time.Location, clock utils.Clock) *Evaluator {
	if clock == nil {
		clock = utils.RealClock{}
	}
	return NewAt(loc, clock.Now())
}

// NewAt returns an Evaluator pinned to now. A nil location means UTC.
func NewAt(loc *time.Location, now time.Time) *Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	return &Evaluator{loc: loc, now: now.In(loc)}
}

func (e *Evaluator) Location() *time.Location { return e.loc }

// Now is the instant the Evaluator was pinned to, in the user's zone.
func (e *Evaluator) Now() time.Time { return e.now }

// Today is local midnight of the pinned instant.
func (e *Evaluator) Today() time.Time {
	return utils.StartOfLocalDay(e.now, e.loc)
}

// TodayString is the ISO calendar day of the pinned instant.
func (e *Evaluator) TodayString() string {
	return utils.FormatDay(e.now, e.loc)
}

func (e *Evaluator) dayKey(t time.Time) string {
	return utils.FormatDay(t, e.loc)
}
