package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/moneywise/internal/model"
)

// Ключи полей профиля в хранилище. Каждое поле занимает отдельный ключ.
const (
	keyTotalPoints          = "gamification_total_points"
	keyCurrentStreak        = "gamification_current_streak"
	keyLastActiveDate       = "gamification_last_active_date"
	keyLastExpenseDate      = "gamification_last_expense_date"
	keyTotalExpenses        = "gamification_total_expenses"
	keyBudgetComplianceDays = "gamification_budget_compliance_days"
	keyFinancialLessons     = "gamification_financial_lessons"
	keySavingsGoalsSet      = "gamification_savings_goals_set"
	keySavingsGoalsAchieved = "gamification_savings_goals_achieved"
	keyChatInteractions     = "gamification_chat_interactions"
	keyWeeklyReviews        = "gamification_weekly_reviews"
	keyLastCelebration      = "gamification_last_celebration"

	keySchemaVersion = "gamification_schema_version"
	keyLastStage     = "gamification_last_stage"
)

// schemaVersion — версия раскладки профиля по ключам, записываемая при каждом сохранении.
const schemaVersion = 1

// legacyTimestampLayout соответствует отметкам времени без смещения пояса,
// которые интерпретируются в часовом поясе движка.
const legacyTimestampLayout = "2006-01-02T15:04:05.9999999"

var allKeys = []string{
	keyTotalPoints,
	keyCurrentStreak,
	keyLastActiveDate,
	keyLastExpenseDate,
	keyTotalExpenses,
	keyBudgetComplianceDays,
	keyFinancialLessons,
	keySavingsGoalsSet,
	keySavingsGoalsAchieved,
	keyChatInteractions,
	keyWeeklyReviews,
	keyLastCelebration,
	keySchemaVersion,
	keyLastStage,
}

func (s *Service) loadProfile(ctx context.Context) model.Profile {
	if v := s.store.GetInt(ctx, keySchemaVersion, 0); v > schemaVersion {
		s.logger.Warn("profile written by newer schema", zap.Int("version", v), zap.Int("supported", schemaVersion))
	}

	return model.Profile{
		TotalPoints:              s.getCount(ctx, keyTotalPoints),
		CurrentStreak:            s.getCount(ctx, keyCurrentStreak),
		LastActiveDate:           s.getTimestamp(ctx, keyLastActiveDate),
		LastExpenseDate:          s.getTimestamp(ctx, keyLastExpenseDate),
		TotalExpensesLogged:      s.getCount(ctx, keyTotalExpenses),
		DaysWithBudgetCompliance: s.getCount(ctx, keyBudgetComplianceDays),
		FinancialLessonsRead:     s.getCount(ctx, keyFinancialLessons),
		SavingsGoalsSet:          s.getCount(ctx, keySavingsGoalsSet),
		SavingsGoalsAchieved:     s.getCount(ctx, keySavingsGoalsAchieved),
		ChatInteractions:         s.getCount(ctx, keyChatInteractions),
		WeeklyReviewsCompleted:   s.getCount(ctx, keyWeeklyReviews),
		LastPlantCelebration:     s.getTimestamp(ctx, keyLastCelebration),
	}
}

// saveProfile записывает все поля профиля одной пакетной операцией хранилища.
func (s *Service) saveProfile(ctx context.Context, p model.Profile, extra map[string]string) {
	values := encodeProfile(p)
	for k, v := range extra {
		values[k] = v
	}
	s.store.SetValues(ctx, values)
}

func encodeProfile(p model.Profile) map[string]string {
	return map[string]string{
		keyTotalPoints:          formatInt(p.TotalPoints),
		keyCurrentStreak:        formatInt(p.CurrentStreak),
		keyLastActiveDate:       formatTimestamp(p.LastActiveDate),
		keyLastExpenseDate:      formatTimestamp(p.LastExpenseDate),
		keyTotalExpenses:        formatInt(p.TotalExpensesLogged),
		keyBudgetComplianceDays: formatInt(p.DaysWithBudgetCompliance),
		keyFinancialLessons:     formatInt(p.FinancialLessonsRead),
		keySavingsGoalsSet:      formatInt(p.SavingsGoalsSet),
		keySavingsGoalsAchieved: formatInt(p.SavingsGoalsAchieved),
		keyChatInteractions:     formatInt(p.ChatInteractions),
		keyWeeklyReviews:        formatInt(p.WeeklyReviewsCompleted),
		keyLastCelebration:      formatTimestamp(p.LastPlantCelebration),
		keySchemaVersion:        formatInt(schemaVersion),
	}
}

// getCount читает неотрицательный счётчик; отрицательные значения считаются повреждёнными.
func (s *Service) getCount(ctx context.Context, key string) int {
	v := s.store.GetInt(ctx, key, 0)
	if v < 0 {
		s.logger.Warn("negative counter ignored", zap.String("key", key), zap.Int("value", v))
		return 0
	}
	return v
}

func (s *Service) getTimestamp(ctx context.Context, key string) time.Time {
	raw := s.store.GetString(ctx, key, "")
	if raw == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(legacyTimestampLayout, raw, s.loc); err == nil {
		return t
	}

	s.logger.Warn("invalid timestamp preference", zap.String("key", key), zap.String("value", raw))
	return time.Time{}
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
