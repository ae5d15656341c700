// transport - цепочка http.RoundTripper для исходящих запросов к бэкенду.
//
// Порядок по умолчанию: metadata → timeout → logging → metrics → base.
// Каждое звено клонирует запрос перед изменением: контракт RoundTripper
// запрещает мутировать входящий *http.Request.
package transport

import (
	"net/http"
)

// Middleware оборачивает RoundTripper.
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc - адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain собирает цепочку: первый middleware - самый внешний.
// base == nil - http.DefaultTransport.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			rt = mws[i](rt)
		}
	}

	return rt
}
