package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/car-market/internal/metrics"
	"github.com/pribylovaa/car-market/internal/models"
)

// errRefreshMalformed - 2xx от /auth/refresh без пригодного accessToken.
var errRefreshMalformed = fmt.Errorf("%w: response has no accessToken", ErrRefreshFailed)

// refresh обменивает refresh-токен на новый access-токен.
//
// Конкурентные вызовы схлопываются в один запрос к /auth/refresh
// (singleflight). stale - токен, получивший 401: если в хранилище уже
// лежит другой действующий токен, его ротировал параллельный запрос,
// и сетевой вызов не нужен.
//
// Ожидание общего refresh прерывается отменой ctx вызывающего, сам refresh
// при этом продолжается для остальных ожидающих.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		return c.doRefresh(context.WithoutCancel(ctx), stale)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Client) doRefresh(ctx context.Context, stale string) (string, error) {
	const op = "api.refresh"

	if cur := c.validAccessToken(ctx); cur != "" && cur != stale {
		c.metrics.IncRefresh(metrics.RefreshCoalesced)
		return cur, nil
	}

	rt, ok := c.tokens.RefreshToken(ctx)
	if !ok {
		c.metrics.IncRefresh(metrics.RefreshNoToken)
		return "", fmt.Errorf("%s: %w", op, ErrNoRefreshToken)
	}

	r := Request{
		Method: http.MethodPost,
		Path:   refreshPath,
		JSON:   models.RefreshRequest{RefreshToken: rt},
		NoAuth: true,
	}

	body, err := r.encode()
	if err != nil {
		c.metrics.IncRefresh(metrics.RefreshError)
		return "", fmt.Errorf("%s: %w: %w", op, ErrRefreshFailed, err)
	}

	resp, err := c.send(ctx, r, c.url(r.Path, nil), body, "")
	if err != nil {
		c.metrics.IncRefresh(metrics.RefreshError)
		c.log.Warn("token_refresh_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("%s: %w: %w", op, ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.IncRefresh(metrics.RefreshError)
		return "", fmt.Errorf("%s: %w: read body: %w", op, ErrRefreshFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.IncRefresh(metrics.RefreshRejected)
		c.log.Warn("token_refresh_rejected",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("%s: %w: %w", op, ErrRefreshFailed, newError(resp.StatusCode, raw))
	}

	var out models.RefreshResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.AccessToken == "" {
		c.metrics.IncRefresh(metrics.RefreshRejected)
		return "", fmt.Errorf("%s: %w", op, errRefreshMalformed)
	}

	if err := c.tokens.SetAccessToken(ctx, out.AccessToken); err != nil {
		c.metrics.IncRefresh(metrics.RefreshError)
		return "", fmt.Errorf("%s: %w: %w", op, ErrRefreshFailed, err)
	}

	c.metrics.IncRefresh(metrics.RefreshOK)
	c.log.Info("token_refreshed", slog.String("op", op))

	return out.AccessToken, nil
}
