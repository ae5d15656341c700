package tokens

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ParseUnverified - Decoder на golang-jwt. Строже DecodePayload:
// требует три сегмента и валидный заголовок. Подпись также не проверяется.
func ParseUnverified(token string) (Payload, error) {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	return Payload(claims), nil
}

// DecoderByName возвращает Decoder по имени из конфигурации.
func DecoderByName(name string) (Decoder, error) {
	switch name {
	case "", "builtin":
		return DecodePayload, nil
	case "jwt":
		return ParseUnverified, nil
	default:
		return nil, fmt.Errorf("tokens: unknown decoder %q", name)
	}
}
