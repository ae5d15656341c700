package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoRefreshToken - обновление невозможно: refresh-токен не сохранён.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrRefreshFailed - бэкенд отклонил refresh или ответ непригоден.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// Error - ответ бэкенда со статусом вне 2xx.
//
// Особенности:
//   - Status - HTTP-код; по нему вызывающий отличает "не аутентифицирован"
//     (401 после попытки refresh) от прочих отказов;
//   - Message - поле message тела, иначе "http error: status <code>";
//   - Body - разобранное тело; не-JSON или пустое тело - пустой объект.
type Error struct {
	Status  int
	Message string
	Body    map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// newError разбирает тело ответа с ошибкой.
func newError(status int, raw []byte) *Error {
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		body = map[string]any{}
	}

	msg := messageOf(body)
	if msg == "" {
		msg = fmt.Sprintf("http error: status %d", status)
	}

	return &Error{Status: status, Message: msg, Body: body}
}

// messageOf достаёт message: строку или массив строк (ошибки валидации).
func messageOf(body map[string]any) string {
	switch v := body["message"].(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			if s, ok := p.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// StatusOf возвращает HTTP-статус из *Error в цепочке err, иначе 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	return 0
}

// IsUnauthorized - err несёт 401, пережившую попытку refresh.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsNotFound - err несёт 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
