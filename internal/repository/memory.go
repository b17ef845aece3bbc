package repository

import (
	"context"
	"sync"
)

// MemoryRepository хранит настройки в памяти процесса. Данные теряются при завершении.
type MemoryRepository struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// NewMemoryRepository создаёт пустое хранилище в памяти.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{values: make(map[string]string)}
}

// Close помечает хранилище закрытым; дальнейшие обращения возвращают ErrClosed.
func (r *MemoryRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Get возвращает значение по ключу.
func (r *MemoryRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return "", ErrClosed
	}
	v, ok := r.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set сохраняет значение по ключу.
func (r *MemoryRepository) Set(ctx context.Context, key, value string) error {
	return r.SetMany(ctx, map[string]string{key: value})
}

// SetMany сохраняет набор значений атомарно относительно других обращений.
func (r *MemoryRepository) SetMany(_ context.Context, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

// Delete удаляет значения по ключам.
func (r *MemoryRepository) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

// Len возвращает количество сохранённых ключей.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.values)
}
