// Package store реализует типизированное хранилище полей профиля поверх хранилища «ключ-значение».
//
// Ни один метод Store не возвращает ошибок: сбой хранилища записывается в лог, чтение
// возвращает значение по умолчанию, запись отбрасывается. В худшем случае профиль ведёт
// себя как только что сброшенный.
package store

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/mmeshcher/moneywise/internal/repository"
)

// Backend описывает контракт хранилища «ключ-значение», используемый Store.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Store предоставляет типизированный доступ к значениям с подстановкой значений по умолчанию.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// New создаёт Store. При nil backend хранилище считается недоступным.
func New(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

// Close закрывает хранилище.
func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// GetInt возвращает целое значение по ключу или def при отсутствии или ошибке.
func (s *Store) GetInt(ctx context.Context, key string, def int) int {
	raw, ok := s.get(ctx, key)
	if !ok {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("invalid int preference", zap.String("key", key), zap.String("value", raw), zap.Error(err))
		return def
	}
	return v
}

// GetString возвращает строковое значение по ключу или def при отсутствии или ошибке.
func (s *Store) GetString(ctx context.Context, key, def string) string {
	raw, ok := s.get(ctx, key)
	if !ok {
		return def
	}
	return raw
}

// SetInt сохраняет целое значение.
func (s *Store) SetInt(ctx context.Context, key string, value int) {
	s.SetString(ctx, key, strconv.Itoa(value))
}

// SetString сохраняет строковое значение.
func (s *Store) SetString(ctx context.Context, key, value string) {
	if s.backend == nil {
		s.logger.Warn("set preference skipped: storage unavailable", zap.String("key", key))
		return
	}
	if err := s.backend.Set(ctx, key, value); err != nil {
		s.logger.Warn("set preference error", zap.String("key", key), zap.Error(err))
	}
}

// SetValues сохраняет набор значений одной операцией хранилища.
func (s *Store) SetValues(ctx context.Context, values map[string]string) {
	if len(values) == 0 {
		return
	}
	if s.backend == nil {
		s.logger.Warn("set preferences skipped: storage unavailable", zap.Int("count", len(values)))
		return
	}
	if err := s.backend.SetMany(ctx, values); err != nil {
		s.logger.Warn("set preferences error", zap.Int("count", len(values)), zap.Error(err))
	}
}

// Remove удаляет значения по ключам.
func (s *Store) Remove(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if s.backend == nil {
		s.logger.Warn("remove preferences skipped: storage unavailable", zap.Strings("keys", keys))
		return
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		s.logger.Warn("remove preferences error", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	if s.backend == nil {
		return "", false
	}

	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrKeyNotFound) {
			s.logger.Warn("get preference error", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return raw, true
}
