package repository

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// badgerKeyPrefix отделяет ключи профиля от прочих данных в той же базе.
const badgerKeyPrefix = "preferences/"

// BadgerConfig содержит параметры встроенной базы BadgerDB.
type BadgerConfig struct {
	// Path — каталог с файлами базы. Не используется при InMemory.
	Path string
	// InMemory включает режим без записи на диск (для тестов).
	InMemory bool
	// SyncWrites включает синхронную запись для устойчивости к сбоям.
	SyncWrites bool
	// Logger получает внутренние сообщения BadgerDB. nil отключает их.
	Logger *zap.Logger
}

// BadgerRepository хранит настройки во встроенной базе BadgerDB.
type BadgerRepository struct {
	db *badger.DB
}

// badgerLogger адаптирует zap к интерфейсу логгера BadgerDB.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.sugar.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.sugar.Infof(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.sugar.Debugf(format, args...) }

// NewBadgerRepository открывает базу BadgerDB с указанной конфигурацией.
func NewBadgerRepository(cfg BadgerConfig) (*BadgerRepository, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{sugar: cfg.Logger.Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerRepository{db: db}, nil
}

// Close закрывает базу данных.
func (r *BadgerRepository) Close() error {
	return r.db.Close()
}

// Get возвращает значение по ключу.
func (r *BadgerRepository) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var value []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", ErrKeyNotFound
		}
		if errors.Is(err, badger.ErrDBClosed) {
			return "", ErrClosed
		}
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	return string(value), nil
}

// Set сохраняет значение по ключу, перезаписывая предыдущее.
func (r *BadgerRepository) Set(ctx context.Context, key, value string) error {
	return r.SetMany(ctx, map[string]string{key: value})
}

// SetMany сохраняет набор значений в одной транзакции.
func (r *BadgerRepository) SetMany(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		for _, key := range sortedKeys(values) {
			if err := txn.Set(badgerKey(key), []byte(values[key])); err != nil {
				return fmt.Errorf("set preference %s: %w", key, err)
			}
		}
		return nil
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

// Delete удаляет значения по ключам в одной транзакции.
func (r *BadgerRepository) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(badgerKey(key)); err != nil {
				return fmt.Errorf("delete preference %s: %w", key, err)
			}
		}
		return nil
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

func badgerKey(key string) []byte {
	return []byte(badgerKeyPrefix + key)
}
