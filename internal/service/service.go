// Package service реализует движок прогрессии: таблицу баллов, серии активных дней,
// вычисление стадии роста и обнаружение перехода на новую стадию.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/moneywise/internal/model"
)

// ErrUnknownAction возвращается при попытке записать неподдерживаемое действие.
var ErrUnknownAction = errors.New("unknown action")

// Store описывает контракт типизированного хранилища, используемый движком.
type Store interface {
	GetInt(ctx context.Context, key string, def int) int
	GetString(ctx context.Context, key, def string) string
	SetValues(ctx context.Context, values map[string]string)
	Remove(ctx context.Context, keys ...string)
}

// LevelUpMode определяет способ вычисления предыдущей стадии при проверке повышения.
type LevelUpMode string

const (
	// LevelUpApproximate оценивает предыдущую стадию по сумме баллов минус levelUpLookback.
	LevelUpApproximate LevelUpMode = "approximate"
	// LevelUpTracked сравнивает с последней отпразднованной стадией, сохранённой в хранилище.
	LevelUpTracked LevelUpMode = "tracked"
)

// levelUpLookback задаёт, на сколько баллов назад оценивается предыдущая стадия.
const levelUpLookback = 50

// ParseLevelUpMode разбирает строковое значение режима.
func ParseLevelUpMode(s string) (LevelUpMode, error) {
	switch LevelUpMode(s) {
	case "", LevelUpApproximate:
		return LevelUpApproximate, nil
	case LevelUpTracked:
		return LevelUpTracked, nil
	default:
		return "", fmt.Errorf("unsupported level-up mode %q", s)
	}
}

// Service содержит бизнес-логику движка прогрессии.
//
// Каждая записывающая операция выполняет цикл «загрузить — вычислить — сохранить».
// Все изменения профиля сериализуются внутренним мьютексом.
type Service struct {
	mu          sync.Mutex
	store       Store
	logger      *zap.Logger
	now         func() time.Time
	loc         *time.Location
	levelUpMode LevelUpMode
}

// Option настраивает Service.
type Option func(*Service)

// WithClock задаёт источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation задаёт часовой пояс, в котором сравниваются календарные даты.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLevelUpMode задаёт режим обнаружения повышения стадии.
func WithLevelUpMode(mode LevelUpMode) Option {
	return func(s *Service) {
		s.levelUpMode = mode
	}
}

// NewService создаёт движок прогрессии поверх указанного хранилища.
func NewService(store Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		store:       store,
		logger:      logger,
		now:         time.Now,
		loc:         time.Local,
		levelUpMode: LevelUpApproximate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile возвращает текущий профиль. Не изменяет состояние и не завершается ошибкой.
func (s *Service) Profile(ctx context.Context) model.Profile {
	return s.loadProfile(ctx)
}

// Status возвращает профиль вместе с производными значениями на текущий момент.
func (s *Service) Status(ctx context.Context) model.Status {
	return model.NewStatus(s.loadProfile(ctx), s.clock())
}

// Record записывает действие указанного вида.
func (s *Service) Record(ctx context.Context, action model.Action) (bool, error) {
	apply, ok := s.mutation(action)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return s.record(ctx, action, apply), nil
}

// LogExpense начисляет баллы за учтённый расход и обновляет серию активных дней.
func (s *Service) LogExpense(ctx context.Context) bool {
	return s.mustRecord(ctx, model.ActionExpenseLogged)
}

// LogChatInteraction начисляет баллы за вопрос финансовому помощнику.
func (s *Service) LogChatInteraction(ctx context.Context) bool {
	return s.mustRecord(ctx, model.ActionChatInteraction)
}

// LogFinancialLearning начисляет баллы за прочитанный финансовый урок.
func (s *Service) LogFinancialLearning(ctx context.Context) bool {
	return s.mustRecord(ctx, model.ActionFinancialLesson)
}

// SetSavingsGoal начисляет баллы за постановку цели накопления.
func (s *Service) SetSavingsGoal(ctx context.Context) bool {
	return s.mustRecord(ctx, model.ActionSavingsGoalSet)
}

// AchieveSavingsGoal начисляет баллы за достигнутую цель накопления.
func (s *Service) AchieveSavingsGoal(ctx context.Context) bool {
	return s.mustRecord(ctx, model.ActionSavingsGoalAchieved)
}

// CompleteWeeklyReview начисляет баллы за еженедельный обзор финансов.
func (s *Service) CompleteWeeklyReview(ctx context.Context) bool {
	return s.mustRecord(ctx, model.ActionWeeklyReview)
}

// SetBudget начисляет баллы за установленный бюджет.
func (s *Service) SetBudget(ctx context.Context) bool {
	return s.mustRecord(ctx, model.ActionBudgetSet)
}

// MeetBudget начисляет баллы за день, прожитый в рамках бюджета.
func (s *Service) MeetBudget(ctx context.Context) bool {
	return s.mustRecord(ctx, model.ActionBudgetMet)
}

// AddPoints начисляет произвольное количество баллов и возвращает новую сумму.
// Сумма не опускается ниже нуля. reason используется только для лога.
func (s *Service) AddPoints(ctx context.Context, amount int, reason string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.loadProfile(ctx)
	p.TotalPoints = max(0, p.TotalPoints+amount)
	s.saveProfile(ctx, p, nil)

	s.logger.Info("points added",
		zap.Int("amount", amount),
		zap.String("reason", reason),
		zap.Int("total_points", p.TotalPoints),
	)
	return p.TotalPoints
}

// CheckDailyStreak обновляет серию активных дней и сообщает, изменилась ли она.
// Повторный вызов в тот же календарный день ничего не меняет.
func (s *Service) CheckDailyStreak(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.loadProfile(ctx)
	updated := s.applyStreak(&p, s.clock())
	s.saveProfile(ctx, p, nil)

	if updated {
		s.logger.Info("daily streak updated", zap.Int("current_streak", p.CurrentStreak))
	}
	return updated
}

// CheckForLevelUp сравнивает текущую стадию с предыдущей и при повышении
// запоминает момент празднования.
func (s *Service) CheckForLevelUp(ctx context.Context) (bool, model.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.loadProfile(ctx)
	current := p.Stage()
	previous := s.previousStage(ctx, p)

	if current <= previous {
		return false, current
	}

	p.LastPlantCelebration = s.clock()

	var extra map[string]string
	if s.levelUpMode == LevelUpTracked {
		extra = map[string]string{keyLastStage: formatInt(int(current))}
	}
	s.saveProfile(ctx, p, extra)

	s.logger.Info("plant leveled up",
		zap.Stringer("from", previous),
		zap.Stringer("to", current),
		zap.Int("total_points", p.TotalPoints),
	)
	return true, current
}

// ResetProfile безвозвратно удаляет все сохранённые поля профиля.
func (s *Service) ResetProfile(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Remove(ctx, allKeys...)
	s.logger.Info("progression profile reset")
}

func (s *Service) mustRecord(ctx context.Context, action model.Action) bool {
	ok, err := s.Record(ctx, action)
	if err != nil {
		s.logger.Error("record action error", zap.String("action", string(action)), zap.Error(err))
		return false
	}
	return ok
}

func (s *Service) record(ctx context.Context, action model.Action, apply func(p *model.Profile, now time.Time)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.loadProfile(ctx)
	apply(&p, s.clock())
	s.saveProfile(ctx, p, nil)

	s.logger.Debug("action recorded",
		zap.String("action", string(action)),
		zap.Int("total_points", p.TotalPoints),
	)
	return true
}

func (s *Service) mutation(action model.Action) (func(p *model.Profile, now time.Time), bool) {
	switch action {
	case model.ActionExpenseLogged:
		return s.applyExpense, true
	case model.ActionChatInteraction:
		return func(p *model.Profile, _ time.Time) {
			p.TotalPoints += model.ChatQuestionAskedPoints
			p.ChatInteractions++
		}, true
	case model.ActionFinancialLesson:
		return func(p *model.Profile, _ time.Time) {
			p.TotalPoints += model.FinancialLessonReadPoints
			p.FinancialLessonsRead++
		}, true
	case model.ActionSavingsGoalSet:
		return func(p *model.Profile, _ time.Time) {
			p.TotalPoints += model.SavingsGoalSetPoints
			p.SavingsGoalsSet++
		}, true
	case model.ActionSavingsGoalAchieved:
		return func(p *model.Profile, _ time.Time) {
			p.TotalPoints += model.SavingsGoalAchievedPoints
			p.SavingsGoalsAchieved++
		}, true
	case model.ActionWeeklyReview:
		return func(p *model.Profile, _ time.Time) {
			p.TotalPoints += model.WeeklyReviewCompletedPoints
			p.WeeklyReviewsCompleted++
		}, true
	case model.ActionBudgetSet:
		return func(p *model.Profile, _ time.Time) {
			p.TotalPoints += model.BudgetSetPoints
		}, true
	case model.ActionBudgetMet:
		return func(p *model.Profile, _ time.Time) {
			p.TotalPoints += model.BudgetMetPoints
			p.DaysWithBudgetCompliance++
		}, true
	default:
		return nil, false
	}
}

func (s *Service) applyExpense(p *model.Profile, now time.Time) {
	points := model.ExpenseLoggedPoints
	if !s.sameDay(p.LastExpenseDate, now) {
		points += model.FirstExpenseOfDayPoints
	}

	p.TotalPoints += points
	p.TotalExpensesLogged++
	p.LastExpenseDate = now

	s.applyStreak(p, now)
}

// applyStreak выполняет переход серии по дате последней активности.
func (s *Service) applyStreak(p *model.Profile, now time.Time) bool {
	today := s.day(now)
	last := s.day(p.LastActiveDate)

	var updated bool
	switch {
	case last.Equal(today.AddDate(0, 0, -1)):
		p.CurrentStreak++
		p.TotalPoints += model.DailyStreakPoints
		if p.CurrentStreak%model.WeeklyStreakLength == 0 {
			p.TotalPoints += model.WeeklyStreakBonusPoints
		}
		updated = true
	case last.Equal(today):
		// Сегодняшняя активность уже учтена.
	default:
		p.CurrentStreak = 1
		updated = true
	}

	p.LastActiveDate = now
	return updated
}

func (s *Service) previousStage(ctx context.Context, p model.Profile) model.Stage {
	if s.levelUpMode == LevelUpTracked {
		stored := model.Stage(s.store.GetInt(ctx, keyLastStage, int(model.Seed)))
		if !stored.Valid() {
			return model.Seed
		}
		return stored
	}
	return model.StageFromPoints(max(0, p.TotalPoints-levelUpLookback))
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc).Round(0)
}

// day отбрасывает время суток, оставляя календарную дату в часовом поясе движка.
func (s *Service) day(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *Service) sameDay(a, b time.Time) bool {
	return s.day(a).Equal(s.day(b))
}
