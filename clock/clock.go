// Package clock provides the node's wall-clock collaborator: it turns
// real time into the tick counts the consensus core's OnTick expects.
package clock

import (
	"time"

	"github.com/ssflabs/gean/types"
)

// SlotClock converts wall-clock time into protocol ticks relative to a
// genesis instant. The time source is injectable so tests can drive it
// deterministically, mirroring the teacher's clock package.
type SlotClock struct {
	genesisTime time.Time
	tickLength  time.Duration
	timeFunc    func() time.Time
}

// New returns a SlotClock anchored at genesisTime, where one protocol
// tick equals tickLength of wall time.
func New(genesisTime time.Time, tickLength time.Duration) *SlotClock {
	return &SlotClock{genesisTime: genesisTime, tickLength: tickLength, timeFunc: time.Now}
}

// NewWithTimeFunc is like New but lets the caller substitute the time
// source, for deterministic tests.
func NewWithTimeFunc(genesisTime time.Time, tickLength time.Duration, timeFunc func() time.Time) *SlotClock {
	return &SlotClock{genesisTime: genesisTime, tickLength: tickLength, timeFunc: timeFunc}
}

// IsBeforeGenesis reports whether the current time precedes genesis.
func (c *SlotClock) IsBeforeGenesis() bool {
	return c.timeFunc().Before(c.genesisTime)
}

// CurrentTick returns the number of whole tickLength intervals elapsed
// since genesis. It returns 0 if called before genesis.
func (c *SlotClock) CurrentTick() types.Slot {
	now := c.timeFunc()
	if now.Before(c.genesisTime) {
		return 0
	}
	elapsed := now.Sub(c.genesisTime)
	return types.Slot(elapsed / c.tickLength)
}

// TickStartTime returns the wall-clock instant at which tick begins.
func (c *SlotClock) TickStartTime(tick types.Slot) time.Time {
	return c.genesisTime.Add(time.Duration(tick) * c.tickLength)
}

// GenesisTime returns the configured genesis instant.
func (c *SlotClock) GenesisTime() time.Time { return c.genesisTime }
