package searchindex

import (
	"math"
	"time"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// DefaultHalfLife is the frecency decay constant used to rank recent,
// frequently-used results above older ones.
const DefaultHalfLife = 72 * time.Hour

// recallBump is the constant frecency increment applied by MarkUsed "now".
const recallBump = 1.0

// Recall returns the current decayed frecency value: the stored score decays
// as exp(-ln2 * elapsed / half_life) since LastAccessed.
func Recall(stats domain.FrecencyStats, now time.Time) float64 {
	if stats.HalfLife <= 0 {
		return stats.Frecency
	}
	elapsed := now.Sub(stats.LastAccessed)
	if elapsed < 0 {
		elapsed = 0
	}
	decay := math.Exp(-math.Ln2 * elapsed.Seconds() / stats.HalfLife.Seconds())
	return stats.Frecency * decay
}

// MarkUsed records a use at `now`: it first decays the existing score to
// `now`, then adds the constant bump, strictly increasing frecency.
func MarkUsed(stats domain.FrecencyStats, now time.Time) domain.FrecencyStats {
	if stats.HalfLife <= 0 {
		stats.HalfLife = DefaultHalfLife
	}
	decayed := Recall(stats, now)
	stats.Frecency = decayed + recallBump
	stats.LastAccessed = now
	stats.NumAccesses++
	stats.ReferenceTime = now
	return stats
}
