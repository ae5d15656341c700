package tokens

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrMalformedToken - токен не удалось разобрать: нет сегментов,
// битый base64url или payload не является JSON-объектом.
var ErrMalformedToken = errors.New("malformed token")

// Payload - декодированный payload JWT.
type Payload map[string]any

// Exp возвращает claim exp (секунды эпохи). Отсутствующий и нечисловой
// exp считаются отсутствующими; exp = 0 - валидная дата (давно истёк).
func (p Payload) Exp() (float64, bool) {
	var exp float64

	switch v := p["exp"].(type) {
	case float64:
		exp = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		exp = f
	case int64:
		exp = float64(v)
	case int:
		exp = float64(v)
	default:
		return 0, false
	}

	return exp, true
}

// Decoder превращает токен в payload. Подпись не проверяется.
type Decoder func(token string) (Payload, error)

var b64urlToStd = strings.NewReplacer("-", "+", "_", "/")

// DecodePayload читает средний сегмент JWT без криптографической проверки.
// Это удобство для UX (показ/проверка срока), а не граница безопасности.
func DecodePayload(token string) (Payload, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: expected at least 2 segments, got %d", ErrMalformedToken, len(parts))
	}

	seg := b64urlToStd.Replace(parts[1])
	if rem := len(seg) % 4; rem != 0 {
		seg += strings.Repeat("=", 4-rem)
	}

	raw, err := base64.StdEncoding.DecodeString(seg)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrMalformedToken, err)
	}

	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: payload is not valid utf-8", ErrMalformedToken)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrMalformedToken, err)
	}

	// "null" декодируется без ошибки, но объектом не является.
	if p == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedToken)
	}

	return p, nil
}
