package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/car-market/internal/pkg/log"
	"github.com/pribylovaa/car-market/internal/pkg/redact"
)

// WithLogging - логирование исходящих запросов.
// Поведение:
//   - добавляет поля request_id/method/path, прокладывает обогащённый логгер
//     в контекст (internal/pkg/log);
//   - пишет одну финальную запись msg="http_client": Info со status и dur,
//     при транспортной ошибке - Warn с err.
//
// Безопасность: тела и заголовки не логируются; в query значения
// секретных ключей (token, password) заменяются (internal/pkg/redact).
func WithLogging(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			rid := req.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = RequestIDFrom(req.Context())
			}

			l := base.With(
				slog.String("request_id", rid),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
			)
			if req.URL.RawQuery != "" {
				l = l.With(slog.String("query", redact.Query(req.URL.Query())))
			}

			resp, err := next.RoundTrip(req.WithContext(log.Into(req.Context(), l)))
			if err != nil {
				l.Warn("http_client",
					slog.String("err", err.Error()),
					slog.Duration("dur", time.Since(start)),
				)
				return nil, err
			}

			l.Info("http_client",
				slog.Int("status", resp.StatusCode),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}
