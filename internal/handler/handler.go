// Package handler содержит HTTP-обработчики API движка прогрессии.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/moneywise/internal/middleware"
	"github.com/mmeshcher/moneywise/internal/model"
	"github.com/mmeshcher/moneywise/internal/service"
	"github.com/mmeshcher/moneywise/internal/validation"
)

// Service определяет контракт движка прогрессии, используемый HTTP-обработчиками.
type Service interface {
	Profile(ctx context.Context) model.Profile
	Status(ctx context.Context) model.Status
	Record(ctx context.Context, action model.Action) (bool, error)
	AddPoints(ctx context.Context, amount int, reason string) int
	CheckDailyStreak(ctx context.Context) bool
	CheckForLevelUp(ctx context.Context) (bool, model.Stage)
	ResetProfile(ctx context.Context)
}

// Handler реализует HTTP-обработчики API движка прогрессии.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	if auth == nil {
		auth = middleware.NewAuthMiddleware("")
	}
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type profileResponse struct {
	TotalPoints              int     `json:"total_points"`
	CurrentStreak            int     `json:"current_streak"`
	LastActiveDate           string  `json:"last_active_date,omitempty"`
	LastExpenseDate          string  `json:"last_expense_date,omitempty"`
	TotalExpensesLogged      int     `json:"total_expenses_logged"`
	DaysWithBudgetCompliance int     `json:"days_with_budget_compliance"`
	FinancialLessonsRead     int     `json:"financial_lessons_read"`
	SavingsGoalsSet          int     `json:"savings_goals_set"`
	SavingsGoalsAchieved     int     `json:"savings_goals_achieved"`
	ChatInteractions         int     `json:"chat_interactions"`
	WeeklyReviewsCompleted   int     `json:"weekly_reviews_completed"`
	LastPlantCelebration     string  `json:"last_plant_celebration,omitempty"`
	Stage                    string  `json:"stage"`
	StageDisplayName         string  `json:"stage_display_name"`
	StageImage               string  `json:"stage_image"`
	Motivation               string  `json:"motivation"`
	NextStage                string  `json:"next_stage,omitempty"`
	PointsToNextStage        int     `json:"points_to_next_stage"`
	ProgressToNextStage      float64 `json:"progress_to_next_stage"`
	WellnessScore            int     `json:"wellness_score"`
	RecentlyLeveledUp        bool    `json:"recently_leveled_up"`
}

func newProfileResponse(st model.Status) profileResponse {
	p := st.Profile
	resp := profileResponse{
		TotalPoints:              p.TotalPoints,
		CurrentStreak:            p.CurrentStreak,
		LastActiveDate:           formatDate(p.LastActiveDate),
		LastExpenseDate:          formatDate(p.LastExpenseDate),
		TotalExpensesLogged:      p.TotalExpensesLogged,
		DaysWithBudgetCompliance: p.DaysWithBudgetCompliance,
		FinancialLessonsRead:     p.FinancialLessonsRead,
		SavingsGoalsSet:          p.SavingsGoalsSet,
		SavingsGoalsAchieved:     p.SavingsGoalsAchieved,
		ChatInteractions:         p.ChatInteractions,
		WeeklyReviewsCompleted:   p.WeeklyReviewsCompleted,
		LastPlantCelebration:     formatDate(p.LastPlantCelebration),
		Stage:                    st.Stage.String(),
		StageDisplayName:         st.Stage.DisplayName(),
		StageImage:               st.Stage.ImageName(),
		Motivation:               st.Stage.Motivation(),
		PointsToNextStage:        st.PointsToNextStage,
		ProgressToNextStage:      st.ProgressToNextStage,
		WellnessScore:            st.WellnessScore,
		RecentlyLeveledUp:        st.RecentlyLeveledUp,
	}
	if st.HasNextStage {
		resp.NextStage = st.NextStage.String()
	}
	return resp
}

// formatDate возвращает пустую строку для минимальной даты, означающей «никогда».
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// GetProfile возвращает профиль и производные значения.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, newProfileResponse(h.service.Status(r.Context())))
}

// ResetProfile удаляет профиль целиком.
func (h *Handler) ResetProfile(w http.ResponseWriter, r *http.Request) {
	h.service.ResetProfile(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type actionResponse struct {
	Recorded         bool   `json:"recorded"`
	LeveledUp        bool   `json:"leveled_up"`
	Stage            string `json:"stage"`
	StageDisplayName string `json:"stage_display_name"`
	TotalPoints      int    `json:"total_points"`
}

// RecordAction записывает действие пользователя и проверяет повышение стадии.
func (h *Handler) RecordAction(w http.ResponseWriter, r *http.Request) {
	action, err := validation.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	recorded, err := h.service.Record(r.Context(), action)
	if err != nil {
		if errors.Is(err, service.ErrUnknownAction) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("record action error", zap.Error(err), zap.String("action", string(action)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	leveledUp, stage := h.service.CheckForLevelUp(r.Context())
	profile := h.service.Profile(r.Context())

	h.writeJSON(w, http.StatusOK, actionResponse{
		Recorded:         recorded,
		LeveledUp:        leveledUp,
		Stage:            stage.String(),
		StageDisplayName: stage.DisplayName(),
		TotalPoints:      profile.TotalPoints,
	})
}

type pointsRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type pointsResponse struct {
	TotalPoints int `json:"total_points"`
}

// AddPoints начисляет произвольное количество баллов, например за достижение.
func (h *Handler) AddPoints(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := validation.ValidatePointsAward(req.Amount, req.Reason); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	total := h.service.AddPoints(r.Context(), req.Amount, req.Reason)
	h.writeJSON(w, http.StatusOK, pointsResponse{TotalPoints: total})
}

type streakResponse struct {
	Updated       bool `json:"updated"`
	CurrentStreak int  `json:"current_streak"`
}

// CheckStreak выполняет ежедневную проверку серии активных дней.
func (h *Handler) CheckStreak(w http.ResponseWriter, r *http.Request) {
	updated := h.service.CheckDailyStreak(r.Context())
	profile := h.service.Profile(r.Context())

	h.writeJSON(w, http.StatusOK, streakResponse{
		Updated:       updated,
		CurrentStreak: profile.CurrentStreak,
	})
}

type levelUpResponse struct {
	LeveledUp        bool   `json:"leveled_up"`
	Stage            string `json:"stage"`
	StageDisplayName string `json:"stage_display_name"`
}

// CheckLevelUp проверяет, перешло ли растение на новую стадию.
func (h *Handler) CheckLevelUp(w http.ResponseWriter, r *http.Request) {
	leveledUp, stage := h.service.CheckForLevelUp(r.Context())

	h.writeJSON(w, http.StatusOK, levelUpResponse{
		LeveledUp:        leveledUp,
		Stage:            stage.String(),
		StageDisplayName: stage.DisplayName(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}
