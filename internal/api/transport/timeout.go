package transport

import (
	"context"
	"io"
	"net/http"
	"time"
)

// WithTimeout навешивает таймаут d на исходящий запрос, если у контекста
// ещё нет дедлайна.
//
// Контракт:
//  1. d <= 0 - запрос передаётся как есть;
//  2. у ctx уже есть deadline - он не переопределяется;
//  3. иначе ctx оборачивается context.WithTimeout(ctx, d). cancel вызывается
//     при ошибке round trip или при закрытии тела ответа, чтобы
//     чтение тела не обрывалось раньше времени.
func WithTimeout(d time.Duration) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if d <= 0 {
				return next.RoundTrip(req)
			}
			if _, ok := req.Context().Deadline(); ok {
				return next.RoundTrip(req)
			}

			ctx, cancel := context.WithTimeout(req.Context(), d)

			resp, err := next.RoundTrip(req.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}

			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
