package searchindex

import (
	"math"
	"testing"
	"time"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRecall_DecaysByHalfLife(t *testing.T) {
	now := time.Now()
	stats := domain.FrecencyStats{
		HalfLife:     time.Hour,
		LastAccessed: now,
		Frecency:     10,
	}
	halfLater := Recall(stats, now.Add(time.Hour))
	assert.InDelta(t, 5.0, halfLater, 0.001)

	full := Recall(stats, now)
	assert.Equal(t, 10.0, full)
}

func TestRecall_NegativeElapsedClampsToZero(t *testing.T) {
	now := time.Now()
	stats := domain.FrecencyStats{HalfLife: time.Hour, LastAccessed: now, Frecency: 10}
	got := Recall(stats, now.Add(-time.Minute))
	assert.Equal(t, 10.0, got)
}

func TestMarkUsed_AddsConstantBumpAfterDecay(t *testing.T) {
	now := time.Now()
	stats := domain.FrecencyStats{HalfLife: time.Hour, LastAccessed: now, Frecency: 10}
	next := MarkUsed(stats, now.Add(time.Hour))
	want := 5.0 + 1.0
	assert.True(t, math.Abs(next.Frecency-want) < 0.001)
	assert.Equal(t, 1, next.NumAccesses)
}

func TestMarkUsed_DefaultsHalfLifeWhenUnset(t *testing.T) {
	now := time.Now()
	next := MarkUsed(domain.FrecencyStats{}, now)
	assert.Equal(t, DefaultHalfLife, next.HalfLife)
}
