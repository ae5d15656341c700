// api - REST-клиент бэкенда маркетплейса с прозрачным обновлением токена.
//
// Поток одного запроса: собрать URL и тело → приложить Bearer, если
// access-токен есть и не истёк → выполнить через цепочку transport →
// на 401 с приложенным токеном один раз обновить токен и повторить →
// не-2xx превратить в *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/car-market/internal/api/transport"
	"github.com/pribylovaa/car-market/internal/metrics"
	"github.com/pribylovaa/car-market/internal/tokens"
)

const (
	contentTypeJSON = "application/json"
	refreshPath     = "/auth/refresh"
)

// Options - параметры клиента.
type Options struct {
	// BaseURL - адрес бэкенда (config api.base_url / API_BASE_URL).
	BaseURL   string
	UserAgent string
	// Timeout - дедлайн запроса, если у ctx его нет. 0 - без дедлайна.
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// HTTPClient - базовый клиент; его Transport оборачивается цепочкой.
	HTTPClient *http.Client
}

// Client - клиент API. Безопасен для конкурентного использования.
type Client struct {
	base    string
	hc      *http.Client
	tokens  *tokens.Manager
	log     *slog.Logger
	metrics *metrics.Metrics

	refreshGroup singleflight.Group
}

// New создаёт клиент. tm == nil - менеджер без хранилища (сессия не сохраняется).
func New(opts Options, tm *tokens.Manager) (*Client, error) {
	const op = "api.New"

	u, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%s: base url must be absolute http(s), got %q", op, opts.BaseURL)
	}

	if tm == nil {
		tm = tokens.New(nil)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}

	hc.Transport = transport.Chain(hc.Transport,
		transport.WithMetadata(opts.UserAgent),
		transport.WithTimeout(opts.Timeout),
		transport.WithLogging(logger),
		transport.WithMetrics(opts.Metrics),
	)

	return &Client{
		base:    strings.TrimRight(u.String(), "/"),
		hc:      hc,
		tokens:  tm,
		log:     logger,
		metrics: opts.Metrics,
	}, nil
}

// Tokens - менеджер токенов клиента.
func (c *Client) Tokens() *tokens.Manager { return c.tokens }

// Request - описание одного вызова.
type Request struct {
	Method string
	// Path - путь относительно базового URL, начинается с "/".
	Path   string
	Query  url.Values
	Header http.Header

	// JSON - тело, сериализуемое в JSON. Взаимоисключимо с Form.
	JSON any
	// Form - multipart-тело. Content-Type с boundary ставится автоматически.
	Form *Multipart

	// NoAuth - не прикладывать Bearer (login, signup, сброс пароля).
	NoAuth bool
}

// Do выполняет запрос и декодирует JSON-ответ в out.
// Ответ 204 (или пустое тело) оставляет out нетронутым.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	raw, err := c.Raw(ctx, r)
	if err != nil {
		return err
	}

	if raw == nil || out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api.Do: decode %s %s: %w", r.Method, r.Path, err)
	}

	return nil
}

// Raw выполняет запрос и возвращает тело ответа как есть.
//
// Ошибки:
//   - *Error - статус вне 2xx (в т.ч. 401 после неудачного refresh);
//   - транспортные ошибки http.Client возвращаются без изменений.
//
// Для 204 No Content возвращается nil.
func (c *Client) Raw(ctx context.Context, r Request) (json.RawMessage, error) {
	const op = "api.Raw"

	if r.Method == "" {
		r.Method = http.MethodGet
	}

	body, err := r.encode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	target := c.url(r.Path, r.Query)

	var token string
	if !r.NoAuth {
		token = c.validAccessToken(ctx)
	}

	resp, err := c.send(ctx, r, target, body, token)
	if err != nil {
		c.logNetworkError(r, err)
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		// Тело исходной 401 читается до refresh: при неудаче уходит вызывающему.
		raw, err := readAll(resp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		fresh, rerr := c.refresh(ctx, token)
		if rerr != nil {
			c.dropSession(ctx, rerr)
			return nil, newError(http.StatusUnauthorized, raw)
		}

		resp, err = c.send(ctx, r, target, body, fresh)
		if err != nil {
			c.logNetworkError(r, err)
			return nil, err
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		drain(resp)
		return nil, nil
	}

	raw, err := readAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result(resp.StatusCode, raw)
}

func (c *Client) url(path string, q url.Values) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	return u
}

// validAccessToken возвращает access-токен, если он есть и не истёк.
func (c *Client) validAccessToken(ctx context.Context) string {
	token, ok := c.tokens.AccessToken(ctx)
	if !ok || c.tokens.IsTokenExpired(token) {
		return ""
	}

	return token
}

func (c *Client) send(ctx context.Context, r Request, target string, b encodedBody, token string) (*http.Response, error) {
	var rdr io.Reader
	if b.data != nil {
		rdr = bytes.NewReader(b.data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, rdr)
	if err != nil {
		return nil, fmt.Errorf("api.send: build request: %w", err)
	}

	req.Header.Set("Content-Type", b.contentType)
	req.Header.Set("Accept", contentTypeJSON)
	for k, vs := range r.Header {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.hc.Do(req)
}

// result превращает тело ответа в JSON или *Error.
func result(status int, raw []byte) (json.RawMessage, error) {
	if status < 200 || status > 299 {
		return nil, newError(status, raw)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("api.result: response is not valid json (status %d)", status)
	}

	return json.RawMessage(raw), nil
}

// readAll читает и закрывает тело ответа.
func readAll(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return raw, nil
}

// dropSession очищает токены после неустранимой 401: refresh-токена нет
// или бэкенд его отклонил. Сетевая ошибка refresh сессию не трогает.
func (c *Client) dropSession(ctx context.Context, cause error) {
	var apiErr *Error
	if !errors.Is(cause, ErrNoRefreshToken) && !errors.As(cause, &apiErr) && !errors.Is(cause, errRefreshMalformed) {
		return
	}

	if err := c.tokens.ClearTokens(ctx); err != nil {
		c.log.Warn("session_clear_failed",
			slog.String("op", "api.dropSession"),
			slog.String("err", err.Error()),
		)
		return
	}

	c.log.Info("session_cleared",
		slog.String("op", "api.dropSession"),
		slog.String("cause", cause.Error()),
	)
}

func (c *Client) logNetworkError(r Request, err error) {
	c.log.Error("api_request_failed",
		slog.String("op", "api.Raw"),
		slog.String("method", r.Method),
		slog.String("path", r.Path),
		slog.String("err", err.Error()),
	)
}

// drain дочитывает и закрывает тело, чтобы соединение вернулось в пул.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
