// Package model содержит доменные сущности движка прогрессии «растения».
package model

import "time"

// Profile представляет накопленный прогресс единственного локального пользователя.
type Profile struct {
	TotalPoints              int
	CurrentStreak            int
	LastActiveDate           time.Time
	LastExpenseDate          time.Time
	TotalExpensesLogged      int
	DaysWithBudgetCompliance int
	FinancialLessonsRead     int
	SavingsGoalsSet          int
	SavingsGoalsAchieved     int
	ChatInteractions         int
	WeeklyReviewsCompleted   int
	LastPlantCelebration     time.Time
}

// celebrationWindow определяет, сколько времени после повышения стадии оно считается недавним.
const celebrationWindow = 24 * time.Hour

// maxWellnessScore ограничивает индекс финансового благополучия.
const maxWellnessScore = 100

// Stage возвращает стадию роста, соответствующую накопленным баллам.
func (p Profile) Stage() Stage {
	return StageFromPoints(p.TotalPoints)
}

// PointsToNextStage возвращает количество баллов до следующей стадии или 0 на последней стадии.
func (p Profile) PointsToNextStage() int {
	if p.Stage() == BloomingTree {
		return 0
	}
	return max(0, NextStageThreshold(p.TotalPoints)-p.TotalPoints)
}

// ProgressToNextStage возвращает долю пройденного пути от порога текущей стадии до следующей.
func (p Profile) ProgressToNextStage() float64 {
	stage := p.Stage()
	if stage == BloomingTree {
		return 1.0
	}

	floor := stage.Threshold()
	span := NextStageThreshold(p.TotalPoints) - floor
	if span <= 0 {
		return 0
	}

	progress := float64(p.TotalPoints-floor) / float64(span)
	return min(1.0, max(0.0, progress))
}

// RecentlyLeveledUp сообщает, было ли празднование новой стадии за последние сутки.
func (p Profile) RecentlyLeveledUp(now time.Time) bool {
	if p.LastPlantCelebration.IsZero() {
		return false
	}
	return now.Sub(p.LastPlantCelebration) < celebrationWindow
}

// WellnessScore вычисляет индекс благополучия по разнообразию действий пользователя.
func (p Profile) WellnessScore() int {
	activities := p.TotalExpensesLogged +
		p.ChatInteractions +
		p.FinancialLessonsRead +
		p.SavingsGoalsSet +
		p.WeeklyReviewsCompleted

	return min(maxWellnessScore, activities*2)
}

// Status содержит профиль вместе со всеми производными значениями для отображения.
type Status struct {
	Profile             Profile
	Stage               Stage
	NextStage           Stage
	HasNextStage        bool
	PointsToNextStage   int
	ProgressToNextStage float64
	WellnessScore       int
	RecentlyLeveledUp   bool
}

// NewStatus строит снимок состояния профиля на момент now.
func NewStatus(p Profile, now time.Time) Status {
	stage := p.Stage()
	next, ok := stage.Next()

	return Status{
		Profile:             p,
		Stage:               stage,
		NextStage:           next,
		HasNextStage:        ok,
		PointsToNextStage:   p.PointsToNextStage(),
		ProgressToNextStage: p.ProgressToNextStage(),
		WellnessScore:       p.WellnessScore(),
		RecentlyLeveledUp:   p.RecentlyLeveledUp(now),
	}
}
