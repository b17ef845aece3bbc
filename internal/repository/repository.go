// Package repository содержит реализации хранилища «ключ-значение» для профиля прогрессии.
package repository

import (
	"embed"
	"errors"
	"sort"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// ErrKeyNotFound возвращается, если значение по ключу отсутствует в хранилище.
var ErrKeyNotFound = errors.New("key not found")

// ErrClosed возвращается при обращении к закрытому хранилищу.
var ErrClosed = errors.New("repository is closed")

// sortedKeys возвращает ключи в детерминированном порядке, чтобы пакетные записи
// выполнялись одинаково при каждом запуске.
func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
