package transport

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID - заголовок корреляции запросов.
const HeaderRequestID = "X-Request-Id"

type ctxKey struct{}

// ContextWithRequestID кладёт request id в контекст; WithMetadata возьмёт его
// вместо генерации нового.
func ContextWithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, rid)
}

// RequestIDFrom достаёт request id из контекста.
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKey{}).(string)
	return rid
}

// WithMetadata добавляет к исходящему запросу заголовки:
//   - X-Request-Id (из заголовка, из контекста или новый UUID);
//   - User-Agent (если передан и не задан вызывающим).
//
// Итоговый request id прокладывается в контекст запроса для следующих звеньев.
func WithMetadata(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx := req.Context()

			rid := req.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = RequestIDFrom(ctx)
			}
			if rid == "" {
				rid = uuid.NewString()
			}

			out := req.Clone(ContextWithRequestID(ctx, rid))
			out.Header.Set(HeaderRequestID, rid)
			if userAgent != "" && req.Header.Get("User-Agent") == "" {
				out.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(out)
		})
	}
}
