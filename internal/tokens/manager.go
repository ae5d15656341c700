// tokens - единственный владелец пары access/refresh токенов
// и метаданных их срока жизни в клиентском хранилище.
//
// Manager не хранит состояния в памяти: каждый вызов читает/пишет
// storage.Store, поэтому несколько Manager над одним хранилищем
// видят одну и ту же сессию (побеждает последний писатель).
package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/pribylovaa/car-market/internal/models"
	"github.com/pribylovaa/car-market/internal/pkg/log"
	"github.com/pribylovaa/car-market/internal/storage"
)

// Ключи хранилища.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyExpiresAt    = "tokenExpiresAt"
)

// Manager - сервис работы с парой токенов.
type Manager struct {
	store  storage.Store
	decode Decoder
	now    func() time.Time
}

// Option настраивает Manager.
type Option func(*Manager)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithDecoder подменяет декодер payload.
func WithDecoder(d Decoder) Option {
	return func(m *Manager) {
		if d != nil {
			m.decode = d
		}
	}
}

// New создаёт Manager. store == nil - работа без хранилища (storage.Noop).
func New(store storage.Store, opts ...Option) *Manager {
	if store == nil {
		store = storage.Noop{}
	}

	m := &Manager{
		store:  store,
		decode: DecodePayload,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// SetTokens сохраняет пару токенов и срок жизни access-токена.
// Недекодируемый токен всё равно сохраняется, но прежний срок удаляется:
// при проверке такой токен будет считаться истёкшим.
func (m *Manager) SetTokens(ctx context.Context, access, refresh string) error {
	const op = "tokens.SetTokens"

	if err := m.store.Set(ctx, KeyAccessToken, access); err != nil {
		return fmt.Errorf("%s: set access: %w", op, err)
	}

	if err := m.store.Set(ctx, KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("%s: set refresh: %w", op, err)
	}

	if err := m.storeExpiry(ctx, access); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SetAccessToken заменяет только access-токен и его срок; refresh не трогает.
func (m *Manager) SetAccessToken(ctx context.Context, access string) error {
	const op = "tokens.SetAccessToken"

	if err := m.store.Set(ctx, KeyAccessToken, access); err != nil {
		return fmt.Errorf("%s: set access: %w", op, err)
	}

	if err := m.storeExpiry(ctx, access); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (m *Manager) storeExpiry(ctx context.Context, access string) error {
	p, err := m.decode(access)
	if err == nil {
		if ms, ok := expiryMillis(p); ok {
			if err := m.store.Set(ctx, KeyExpiresAt, strconv.FormatInt(ms, 10)); err != nil {
				return fmt.Errorf("set expiry: %w", err)
			}
			return nil
		}
	}

	log.From(ctx).Debug("token_expiry_unknown",
		slog.String("op", "tokens.storeExpiry"),
		slog.Bool("decoded", err == nil),
	)

	if err := m.store.Delete(ctx, KeyExpiresAt); err != nil {
		return fmt.Errorf("delete expiry: %w", err)
	}

	return nil
}

// Границы exp*1000, представимые в int64 без потерь на конвертации.
const (
	maxExpiryMillis = float64(math.MaxInt64) / 2
	minExpiryMillis = float64(math.MinInt64) / 2
)

// expiryMillis - exp в миллисекундах. Нечисловой и вне диапазона int64
// (включая NaN/Inf) - срок неизвестен.
func expiryMillis(p Payload) (int64, bool) {
	exp, ok := p.Exp()
	if !ok {
		return 0, false
	}

	ms := exp * 1000
	if math.IsNaN(ms) || ms > maxExpiryMillis || ms < minExpiryMillis {
		return 0, false
	}

	return int64(ms), true
}

// AccessToken возвращает сохранённый access-токен.
func (m *Manager) AccessToken(ctx context.Context) (string, bool) {
	return m.get(ctx, KeyAccessToken)
}

// RefreshToken возвращает сохранённый refresh-токен.
func (m *Manager) RefreshToken(ctx context.Context) (string, bool) {
	return m.get(ctx, KeyRefreshToken)
}

// get - чтение с fail-safe: ошибка хранилища равносильна отсутствию значения.
func (m *Manager) get(ctx context.Context, key string) (string, bool) {
	v, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.From(ctx).Warn("token_storage_read_failed",
				slog.String("op", "tokens.get"),
				slog.String("key", key),
				slog.String("err", err.Error()),
			)
		}
		return "", false
	}

	return v, v != ""
}

// ClearTokens удаляет все три значения. Идемпотентна.
func (m *Manager) ClearTokens(ctx context.Context) error {
	if err := m.store.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyExpiresAt); err != nil {
		return fmt.Errorf("tokens.ClearTokens: %w", err)
	}

	return nil
}

// IsTokenExpired - true, если токен не декодируется, в нём нет exp
// или exp (секунды) меньше текущего времени. Никогда не паникует.
func (m *Manager) IsTokenExpired(token string) bool {
	p, err := m.decode(token)
	if err != nil {
		return true
	}

	exp, ok := p.Exp()
	if !ok {
		return true
	}

	nowSec := float64(m.now().UnixMilli()) / 1000
	return exp < nowSec
}

// ExpirationTime возвращает ранее вычисленный срок жизни access-токена.
func (m *Manager) ExpirationTime(ctx context.Context) (time.Time, bool) {
	v, ok := m.get(ctx, KeyExpiresAt)
	if !ok {
		return time.Time{}, false
	}

	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	return time.UnixMilli(ms), true
}

// Pair - снимок текущей сессии. ok == false, если access-токена нет.
func (m *Manager) Pair(ctx context.Context) (models.TokenPair, bool) {
	access, ok := m.AccessToken(ctx)
	if !ok {
		return models.TokenPair{}, false
	}

	refresh, _ := m.RefreshToken(ctx)
	exp, _ := m.ExpirationTime(ctx)

	return models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp,
	}, true
}
