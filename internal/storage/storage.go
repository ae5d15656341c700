// storage определяет контракт клиентского хранилища ключ-значение,
// в котором живёт пара токенов.
//
// Реализации:
//   - memory - in-process (go-cache), для тестов и одноразовых запусков;
//   - file   - JSON-файл в каталоге пользователя, для CLI;
//   - redis  - общий стор для нескольких процессов/машин.
//
// Все реализации безопасны для конкурентного использования.
package storage

//go:generate mockgen -destination=../../mocks/mock_storage.go -package=mocks github.com/pribylovaa/car-market/internal/storage Store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound - ключ отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrUnknownDriver - в конфиге указан неизвестный драйвер хранилища.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Store - минимальный контракт хранилища строковых значений.
type Store interface {
	// Get возвращает значение ключа или ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set сохраняет значение без срока жизни.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключи; отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context, keys ...string) error
	// Close освобождает ресурсы.
	Close() error
}

// Noop - хранилище "без клиентского контекста": ничего не сохраняет,
// любое чтение возвращает ErrNotFound.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, error) { return "", ErrNotFound }
func (Noop) Set(context.Context, string, string) error   { return nil }
func (Noop) Delete(context.Context, ...string) error     { return nil }
func (Noop) Close() error                                { return nil }
