package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageFromPoints(t *testing.T) {
	tests := []struct {
		points int
		want   Stage
	}{
		{points: -10, want: Seed},
		{points: 0, want: Seed},
		{points: 99, want: Seed},
		{points: 100, want: Sprout},
		{points: 299, want: Sprout},
		{points: 300, want: Seedling},
		{points: 599, want: Seedling},
		{points: 600, want: YoungPlant},
		{points: 999, want: YoungPlant},
		{points: 1000, want: MaturePlant},
		{points: 1499, want: MaturePlant},
		{points: 1500, want: BloomingTree},
		{points: 100000, want: BloomingTree},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StageFromPoints(tt.points), "points=%d", tt.points)
	}
}

func TestStageFromPoints_Monotonic(t *testing.T) {
	prev := StageFromPoints(0)
	for p := 1; p <= 2000; p++ {
		cur := StageFromPoints(p)
		require.GreaterOrEqual(t, cur, prev, "stage decreased at %d", p)
		require.Equal(t, p >= 1500, cur == BloomingTree, "points=%d", p)
		prev = cur
	}
}

func TestPointsToNextStage(t *testing.T) {
	for p := 0; p <= 2000; p++ {
		profile := Profile{TotalPoints: p}
		got := profile.PointsToNextStage()

		if profile.Stage() == BloomingTree {
			require.Zero(t, got, "points=%d", p)
			continue
		}

		next, ok := profile.Stage().Next()
		require.True(t, ok)
		require.Equal(t, next.Threshold()-p, got, "points=%d", p)
		require.GreaterOrEqual(t, got, 0)
	}
}

func TestNextStageThreshold_SaturatesAtBloomingTree(t *testing.T) {
	assert.Equal(t, 100, NextStageThreshold(0))
	assert.Equal(t, 1500, NextStageThreshold(1200))
	assert.Equal(t, 1500, NextStageThreshold(1500))
	assert.Equal(t, 1500, NextStageThreshold(9000))
}

func TestStage_Next(t *testing.T) {
	next, ok := Seed.Next()
	assert.True(t, ok)
	assert.Equal(t, Sprout, next)

	_, ok = BloomingTree.Next()
	assert.False(t, ok)

	_, ok = Stage(42).Next()
	assert.False(t, ok)
}

func TestStage_Presentation(t *testing.T) {
	for _, s := range Stages() {
		assert.NotEqual(t, "Unknown", s.DisplayName())
		assert.NotEmpty(t, s.ImageName())
		assert.NotEmpty(t, s.Motivation())
	}

	assert.Equal(t, "Money Aware", Sprout.DisplayName())
	assert.Equal(t, "plant_blooming.png", BloomingTree.ImageName())
	assert.Equal(t, "YoungPlant", YoungPlant.String())

	invalid := Stage(-1)
	assert.Equal(t, "Unknown", invalid.String())
	assert.Equal(t, "plant_seed.png", invalid.ImageName())
}

func TestProgressToNextStage(t *testing.T) {
	assert.InDelta(t, 0.0, Profile{TotalPoints: 0}.ProgressToNextStage(), 1e-9)
	assert.InDelta(t, 0.5, Profile{TotalPoints: 50}.ProgressToNextStage(), 1e-9)
	assert.InDelta(t, 0.5, Profile{TotalPoints: 200}.ProgressToNextStage(), 1e-9)
	assert.InDelta(t, 1.0, Profile{TotalPoints: 1500}.ProgressToNextStage(), 1e-9)
}

func TestWellnessScore(t *testing.T) {
	p := Profile{
		TotalExpensesLogged:    3,
		ChatInteractions:       2,
		FinancialLessonsRead:   1,
		SavingsGoalsSet:        1,
		WeeklyReviewsCompleted: 1,
		SavingsGoalsAchieved:   10,
	}
	assert.Equal(t, 16, p.WellnessScore())

	p.TotalExpensesLogged = 500
	assert.Equal(t, 100, p.WellnessScore())
}

func TestRecentlyLeveledUp(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.False(t, Profile{}.RecentlyLeveledUp(now))
	assert.True(t, Profile{LastPlantCelebration: now.Add(-23 * time.Hour)}.RecentlyLeveledUp(now))
	assert.False(t, Profile{LastPlantCelebration: now.Add(-25 * time.Hour)}.RecentlyLeveledUp(now))
}

func TestNewStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	st := NewStatus(Profile{TotalPoints: 350, LastPlantCelebration: now.Add(-time.Hour)}, now)

	assert.Equal(t, Seedling, st.Stage)
	assert.True(t, st.HasNextStage)
	assert.Equal(t, YoungPlant, st.NextStage)
	assert.Equal(t, 250, st.PointsToNextStage)
	assert.True(t, st.RecentlyLeveledUp)

	top := NewStatus(Profile{TotalPoints: 2000}, now)
	assert.False(t, top.HasNextStage)
	assert.Zero(t, top.PointsToNextStage)
}
