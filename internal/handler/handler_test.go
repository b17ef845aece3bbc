package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/moneywise/internal/middleware"
	"github.com/mmeshcher/moneywise/internal/model"
	"github.com/mmeshcher/moneywise/internal/repository"
	"github.com/mmeshcher/moneywise/internal/service"
	"github.com/mmeshcher/moneywise/internal/store"
)

type stubService struct {
	profile model.Profile
	now     time.Time

	recordErr   error
	recorded    []model.Action
	streakOK    bool
	leveledUp   bool
	levelStage  model.Stage
	addedAmount int
	addedReason string
	resetCalled bool
}

func (s *stubService) Profile(ctx context.Context) model.Profile {
	return s.profile
}

func (s *stubService) Status(ctx context.Context) model.Status {
	return model.NewStatus(s.profile, s.now)
}

func (s *stubService) Record(ctx context.Context, action model.Action) (bool, error) {
	if s.recordErr != nil {
		return false, s.recordErr
	}
	s.recorded = append(s.recorded, action)
	return true, nil
}

func (s *stubService) AddPoints(ctx context.Context, amount int, reason string) int {
	s.addedAmount = amount
	s.addedReason = reason
	s.profile.TotalPoints += amount
	return s.profile.TotalPoints
}

func (s *stubService) CheckDailyStreak(ctx context.Context) bool {
	return s.streakOK
}

func (s *stubService) CheckForLevelUp(ctx context.Context) (bool, model.Stage) {
	return s.leveledUp, s.levelStage
}

func (s *stubService) ResetProfile(ctx context.Context) {
	s.resetCalled = true
}

func newTestHandler(t *testing.T, svc Service, token string) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	return NewHandler(svc, logger, middleware.NewAuthMiddleware(token))
}

func serve(t *testing.T, h *Handler, method, target string, body []byte, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()

	h.SetupRouter().ServeHTTP(rec, req)
	return rec.Result()
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()

	var v T
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestGetProfile_JSONResponse(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := &stubService{
		now: now,
		profile: model.Profile{
			TotalPoints:          320,
			CurrentStreak:        4,
			LastActiveDate:       now,
			TotalExpensesLogged:  12,
			ChatInteractions:     3,
			LastPlantCelebration: now.Add(-time.Hour),
		},
	}
	h := newTestHandler(t, svc, "")

	res := serve(t, h, http.MethodGet, "/api/progression/profile", nil, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q, want application/json", ct)
	}

	got := decode[profileResponse](t, res)
	if got.TotalPoints != 320 || got.CurrentStreak != 4 {
		t.Fatalf("unexpected counters: %+v", got)
	}
	if got.Stage != "Seedling" || got.StageDisplayName != "Building Habits" {
		t.Fatalf("stage = %q (%q)", got.Stage, got.StageDisplayName)
	}
	if got.NextStage != "YoungPlant" || got.PointsToNextStage != 280 {
		t.Fatalf("next stage = %q, points to next = %d", got.NextStage, got.PointsToNextStage)
	}
	if got.WellnessScore != 30 {
		t.Fatalf("wellness = %d, want 30", got.WellnessScore)
	}
	if !got.RecentlyLeveledUp {
		t.Fatalf("recently_leveled_up must be true for a celebration an hour ago")
	}
	if got.LastExpenseDate != "" {
		t.Fatalf("never-set date must be omitted, got %q", got.LastExpenseDate)
	}
	if got.LastActiveDate != now.Format(time.RFC3339Nano) {
		t.Fatalf("last_active_date = %q", got.LastActiveDate)
	}
}

func TestGetProfile_TopStageHasNoNext(t *testing.T) {
	svc := &stubService{profile: model.Profile{TotalPoints: 2000}}
	h := newTestHandler(t, svc, "")

	got := decode[profileResponse](t, serve(t, h, http.MethodGet, "/api/progression/profile", nil, ""))
	if got.Stage != "BloomingTree" || got.NextStage != "" || got.PointsToNextStage != 0 {
		t.Fatalf("unexpected top stage response: %+v", got)
	}
}

func TestResetProfile_NoContent(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc, "")

	res := serve(t, h, http.MethodDelete, "/api/progression/profile", nil, "")
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNoContent)
	}
	if !svc.resetCalled {
		t.Fatalf("ResetProfile was not called")
	}
}

func TestRecordAction_Success(t *testing.T) {
	svc := &stubService{
		profile:    model.Profile{TotalPoints: 105},
		leveledUp:  true,
		levelStage: model.Sprout,
	}
	h := newTestHandler(t, svc, "")

	res := serve(t, h, http.MethodPost, "/api/progression/actions/weekly-review", nil, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	got := decode[actionResponse](t, res)
	want := actionResponse{
		Recorded:         true,
		LeveledUp:        true,
		Stage:            "Sprout",
		StageDisplayName: "Money Aware",
		TotalPoints:      105,
	}
	if got != want {
		t.Fatalf("response = %+v, want %+v", got, want)
	}
	if len(svc.recorded) != 1 || svc.recorded[0] != model.ActionWeeklyReview {
		t.Fatalf("recorded = %v", svc.recorded)
	}
}

func TestRecordAction_UnknownAction(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc, "")

	res := serve(t, h, http.MethodPost, "/api/progression/actions/gardening", nil, "")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
	if len(svc.recorded) != 0 {
		t.Fatalf("nothing should be recorded, got %v", svc.recorded)
	}
}

func TestRecordAction_ServiceRejectsAction(t *testing.T) {
	svc := &stubService{recordErr: fmt.Errorf("%w: expense", service.ErrUnknownAction)}
	h := newTestHandler(t, svc, "")

	res := serve(t, h, http.MethodPost, "/api/progression/actions/expense", nil, "")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestRecordAction_InternalError(t *testing.T) {
	svc := &stubService{recordErr: context.DeadlineExceeded}
	h := newTestHandler(t, svc, "")

	res := serve(t, h, http.MethodPost, "/api/progression/actions/chat", nil, "")
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusInternalServerError)
	}
}

func TestAddPoints(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "milestone", body: `{"amount":100,"reason":"First week complete"}`, wantStatus: http.StatusOK},
		{name: "zero amount", body: `{"amount":0,"reason":"nothing"}`, wantStatus: http.StatusBadRequest},
		{name: "negative amount", body: `{"amount":-10,"reason":"penalty"}`, wantStatus: http.StatusBadRequest},
		{name: "empty reason", body: `{"amount":10,"reason":""}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"amount":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{profile: model.Profile{TotalPoints: 50}}
			h := newTestHandler(t, svc, "")

			res := serve(t, h, http.MethodPost, "/api/progression/points", []byte(tt.body), "")
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				if svc.addedAmount != 0 {
					t.Fatalf("AddPoints must not be called on invalid input")
				}
				return
			}

			got := decode[pointsResponse](t, res)
			if got.TotalPoints != 150 {
				t.Fatalf("total_points = %d, want 150", got.TotalPoints)
			}
			if svc.addedReason != "First week complete" {
				t.Fatalf("reason = %q", svc.addedReason)
			}
		})
	}
}

func TestCheckStreak(t *testing.T) {
	svc := &stubService{streakOK: true, profile: model.Profile{CurrentStreak: 3}}
	h := newTestHandler(t, svc, "")

	res := serve(t, h, http.MethodPost, "/api/progression/streak", nil, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	got := decode[streakResponse](t, res)
	if !got.Updated || got.CurrentStreak != 3 {
		t.Fatalf("response = %+v", got)
	}
}

func TestCheckLevelUp_NoChange(t *testing.T) {
	svc := &stubService{levelStage: model.Seedling}
	h := newTestHandler(t, svc, "")

	got := decode[levelUpResponse](t, serve(t, h, http.MethodPost, "/api/progression/level-up", nil, ""))
	if got.LeveledUp || got.Stage != "Seedling" || got.StageDisplayName != "Building Habits" {
		t.Fatalf("response = %+v", got)
	}
}

func TestRouter_RequiresTokenWhenConfigured(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc, "secret")

	res := serve(t, h, http.MethodGet, "/api/progression/profile", nil, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}

	res = serve(t, h, http.MethodGet, "/api/progression/profile", nil, "secret")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, &stubService{}, "")

	res := serve(t, h, http.MethodPut, "/api/progression/profile", nil, "")
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestRouter_EndToEnd(t *testing.T) {
	day := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	st := store.New(repository.NewMemoryRepository(), zap.NewNop())
	svc := service.NewService(st, zap.NewNop(),
		service.WithClock(func() time.Time { return day }),
		service.WithLocation(time.UTC),
	)
	h := newTestHandler(t, svc, "")

	got := decode[actionResponse](t, serve(t, h, http.MethodPost, "/api/progression/actions/expense", nil, ""))
	if !got.Recorded || got.TotalPoints != 15 || got.LeveledUp {
		t.Fatalf("first expense response = %+v", got)
	}

	got = decode[actionResponse](t, serve(t, h, http.MethodPost, "/api/progression/actions/savings-goal-achieved", nil, ""))
	if !got.LeveledUp || got.Stage != "Sprout" || got.TotalPoints != 115 {
		t.Fatalf("level-up response = %+v", got)
	}

	profile := decode[profileResponse](t, serve(t, h, http.MethodGet, "/api/progression/profile", nil, ""))
	if profile.CurrentStreak != 1 || profile.SavingsGoalsAchieved != 1 || !profile.RecentlyLeveledUp {
		t.Fatalf("profile = %+v", profile)
	}

	res := serve(t, h, http.MethodDelete, "/api/progression/profile", nil, "")
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("reset status = %d", res.StatusCode)
	}

	profile = decode[profileResponse](t, serve(t, h, http.MethodGet, "/api/progression/profile", nil, ""))
	if profile.TotalPoints != 0 || profile.Stage != "Seed" || profile.LastActiveDate != "" {
		t.Fatalf("profile after reset = %+v", profile)
	}
}
