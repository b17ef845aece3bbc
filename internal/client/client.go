// Package client предоставляет HTTP-клиент для API движка прогрессии.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrUnauthorized возвращается, если сервер отклонил токен доступа.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnknownAction возвращается, если сервер не знает указанного действия.
	ErrUnknownAction = errors.New("unknown action")
)

// StatusError описывает неожиданный ответ сервера.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status: %d: %s", e.Code, e.Message)
}

// Client инкапсулирует HTTP-взаимодействие с сервером прогрессии.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Profile описывает ответ сервера с состоянием профиля.
type Profile struct {
	TotalPoints              int       `json:"total_points"`
	CurrentStreak            int       `json:"current_streak"`
	LastActiveDate           time.Time `json:"last_active_date"`
	LastExpenseDate          time.Time `json:"last_expense_date"`
	TotalExpensesLogged      int       `json:"total_expenses_logged"`
	DaysWithBudgetCompliance int       `json:"days_with_budget_compliance"`
	FinancialLessonsRead     int       `json:"financial_lessons_read"`
	SavingsGoalsSet          int       `json:"savings_goals_set"`
	SavingsGoalsAchieved     int       `json:"savings_goals_achieved"`
	ChatInteractions         int       `json:"chat_interactions"`
	WeeklyReviewsCompleted   int       `json:"weekly_reviews_completed"`
	LastPlantCelebration     time.Time `json:"last_plant_celebration"`
	Stage                    string    `json:"stage"`
	StageDisplayName         string    `json:"stage_display_name"`
	StageImage               string    `json:"stage_image"`
	Motivation               string    `json:"motivation"`
	NextStage                string    `json:"next_stage"`
	PointsToNextStage        int       `json:"points_to_next_stage"`
	ProgressToNextStage      float64   `json:"progress_to_next_stage"`
	WellnessScore            int       `json:"wellness_score"`
	RecentlyLeveledUp        bool      `json:"recently_leveled_up"`
}

// ActionResult описывает результат записи действия.
type ActionResult struct {
	Recorded         bool   `json:"recorded"`
	LeveledUp        bool   `json:"leveled_up"`
	Stage            string `json:"stage"`
	StageDisplayName string `json:"stage_display_name"`
	TotalPoints      int    `json:"total_points"`
}

// StreakResult описывает результат ежедневной проверки серии.
type StreakResult struct {
	Updated       bool `json:"updated"`
	CurrentStreak int  `json:"current_streak"`
}

// LevelUpResult описывает результат проверки повышения стадии.
type LevelUpResult struct {
	LeveledUp        bool   `json:"leveled_up"`
	Stage            string `json:"stage"`
	StageDisplayName string `json:"stage_display_name"`
}

type pointsRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type pointsResponse struct {
	TotalPoints int `json:"total_points"`
}

// NewClient создаёт HTTP-клиент для сервера по указанному адресу.
// Пустой token означает работу без аутентификации.
func NewClient(baseURL, token string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		token:   token,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Profile запрашивает текущий профиль.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RecordAction записывает действие указанного вида.
func (c *Client) RecordAction(ctx context.Context, action string) (*ActionResult, error) {
	var res ActionResult
	err := c.do(ctx, http.MethodPost, "/actions/"+url.PathEscape(action), nil, &res)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
		}
		return nil, err
	}
	return &res, nil
}

// AddPoints начисляет произвольное количество баллов и возвращает новую сумму.
func (c *Client) AddPoints(ctx context.Context, amount int, reason string) (int, error) {
	var res pointsResponse
	if err := c.do(ctx, http.MethodPost, "/points", pointsRequest{Amount: amount, Reason: reason}, &res); err != nil {
		return 0, err
	}
	return res.TotalPoints, nil
}

// CheckStreak запускает ежедневную проверку серии активных дней.
func (c *Client) CheckStreak(ctx context.Context) (*StreakResult, error) {
	var res StreakResult
	if err := c.do(ctx, http.MethodPost, "/streak", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckLevelUp запускает проверку повышения стадии.
func (c *Client) CheckLevelUp(ctx context.Context) (*LevelUpResult, error) {
	var res LevelUpResult
	if err := c.do(ctx, http.MethodPost, "/level-up", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Reset удаляет профиль на сервере.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/profile", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("progression client not configured")
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/progression"+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
