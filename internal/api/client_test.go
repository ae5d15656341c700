package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/car-market/internal/api/transport"
	"github.com/pribylovaa/car-market/internal/metrics"
	"github.com/pribylovaa/car-market/internal/models"
)

func TestNew_ValidatesBaseURL(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "backend.local", "ftp://backend.local", "http://"} {
		_, err := New(Options{BaseURL: bad}, nil)
		require.Error(t, err, bad)
	}

	c, err := New(Options{BaseURL: " https://api.example.com/v1/ "}, nil)
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/v1/car/all?page=2", c.url("car/all", map[string][]string{"page": {"2"}}))
	require.NotNil(t, c.Tokens())
}

func TestDo_AttachesBearerAndDefaults(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	var seen http.Header
	b.protected(http.MethodGet, "/auth/me", func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		writeJSON(w, http.StatusOK, models.User{ID: "u1", Email: "a@b.c"})
	})

	env := newTestClient(t, b)
	ctx := context.Background()
	access := b.issue(time.Hour)
	require.NoError(t, env.tm.SetTokens(ctx, access, b.refresh))

	u, err := env.client.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)

	require.Equal(t, "Bearer "+access, seen.Get("Authorization"))
	require.Equal(t, "application/json", seen.Get("Content-Type"))
	require.Equal(t, "carctl-test", seen.Get("User-Agent"))
	require.NotEmpty(t, seen.Get(transport.HeaderRequestID))
	require.EqualValues(t, 0, b.refreshCalls.Load())
}

func TestDo_ExpiredTokenIsNotAttached(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	var auth string
	b.router.Get("/car/all", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, models.Page[models.Car]{Page: 1, TotalPages: 1})
	})

	env := newTestClient(t, b)
	ctx := context.Background()
	require.NoError(t, env.tm.SetTokens(ctx, mint(t, -time.Minute), b.refresh))

	_, err := env.client.ListCars(ctx, ListOptions{})
	require.NoError(t, err)
	require.Empty(t, auth)
}

func TestDo_UnauthorizedThenRefreshThenSuccess(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.protected(http.MethodGet, "/car/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Page[models.Car]{
			Items: []models.Car{{ID: "c1", Brand: "BMW", Model: "X5"}},
			Total: 1, Page: 1, Limit: 10, TotalPages: 1,
		})
	})

	env := newTestClient(t, b)
	ctx := context.Background()

	// Локально токен действующий, но бэкенд его не знает.
	stale := mint(t, time.Hour)
	require.NoError(t, env.tm.SetTokens(ctx, stale, b.refresh))

	page, err := env.client.ListCars(ctx, ListOptions{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "X5", page.Items[0].Model)

	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.Equal(t, 2, b.hitsOf("GET /car/all"))

	fresh, ok := env.tm.AccessToken(ctx)
	require.True(t, ok)
	require.NotEqual(t, stale, fresh)
	require.True(t, b.isAccepted(fresh))

	rt, _ := env.tm.RefreshToken(ctx)
	require.Equal(t, b.refresh, rt, "refresh-токен не меняется")

	require.Equal(t, 1.0, counterValue(t, env.reg, "carmarket_client_token_refresh_total", "result", metrics.RefreshOK))
}

func TestDo_RefreshRejected_SurfacesOriginal401AndClearsSession(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.refreshStatus = http.StatusUnauthorized
	reached := false
	b.protected(http.MethodGet, "/auth/me", func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})

	env := newTestClient(t, b)
	ctx := context.Background()
	require.NoError(t, env.tm.SetTokens(ctx, mint(t, time.Hour), b.refresh))

	_, err := env.client.Me(ctx)
	require.Error(t, err)
	require.True(t, IsUnauthorized(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Unauthorized", apiErr.Message, "ошибка исходного запроса, а не refresh")
	require.Equal(t, "Unauthorized", apiErr.Body["message"])

	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.Equal(t, 1, b.hitsOf("GET /auth/me"), "без повтора")
	require.False(t, reached)

	_, ok := env.tm.AccessToken(ctx)
	require.False(t, ok, "неустранимая 401 очищает сессию")
	_, ok = env.tm.RefreshToken(ctx)
	require.False(t, ok)

	require.Equal(t, 1.0, counterValue(t, env.reg, "carmarket_client_token_refresh_total", "result", metrics.RefreshRejected))
}

func TestDo_NoRefreshToken_NoNetworkCall(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.protected(http.MethodGet, "/auth/me", func(w http.ResponseWriter, r *http.Request) {})

	env := newTestClient(t, b)
	ctx := context.Background()
	require.NoError(t, env.tm.SetAccessToken(ctx, mint(t, time.Hour)))

	_, err := env.client.Me(ctx)
	require.Equal(t, http.StatusUnauthorized, StatusOf(err))
	require.EqualValues(t, 0, b.refreshCalls.Load())
	require.Equal(t, 1, b.hitsOf("GET /auth/me"))

	_, ok := env.tm.AccessToken(ctx)
	require.False(t, ok)
}

func TestDo_UnauthorizedWithoutToken_NoRefresh(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.protected(http.MethodGet, "/auth/me", func(w http.ResponseWriter, r *http.Request) {})

	env := newTestClient(t, b)

	_, err := env.client.Me(context.Background())
	require.True(t, IsUnauthorized(err))
	require.EqualValues(t, 0, b.refreshCalls.Load())
}

func TestDo_SecondUnauthorizedIsNotRetriedAgain(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.router.Get("/auth/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "role required"})
	})

	env := newTestClient(t, b)
	ctx := context.Background()
	require.NoError(t, env.tm.SetTokens(ctx, mint(t, time.Hour), b.refresh))

	_, err := env.client.ListUsers(ctx, ListOptions{})
	require.True(t, IsUnauthorized(err))
	require.Equal(t, "role required", err.Error())

	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.Equal(t, 2, b.hitsOf("GET /auth/users"))

	_, ok := env.tm.AccessToken(ctx)
	require.True(t, ok, "успешный refresh сессию не сбрасывает")
}

func TestDo_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.refreshDelay = 50 * time.Millisecond
	b.protected(http.MethodGet, "/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.User{ID: "u1"})
	})

	env := newTestClient(t, b)
	ctx := context.Background()
	require.NoError(t, env.tm.SetTokens(ctx, mint(t, time.Hour), b.refresh))

	const n = 10
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make(chan error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.client.Me(ctx)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, b.refreshCalls.Load())
}

func TestDo_RefreshWaitHonoursContext(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.refreshDelay = 300 * time.Millisecond
	b.protected(http.MethodGet, "/auth/me", func(w http.ResponseWriter, r *http.Request) {})

	env := newTestClient(t, b)
	require.NoError(t, env.tm.SetTokens(context.Background(), mint(t, time.Hour), b.refresh))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := env.client.Me(ctx)
	require.True(t, IsUnauthorized(err), "ожидание refresh прервано: исходная 401")

	_, ok := env.tm.RefreshToken(context.Background())
	require.True(t, ok, "отмена ожидания не сбрасывает сессию")
}

func TestRaw_NoContent(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.router.Delete("/auth/admin/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	env := newTestClient(t, b)
	ctx := context.Background()

	raw, err := env.client.Raw(ctx, Request{Method: http.MethodDelete, Path: "/auth/admin/7"})
	require.NoError(t, err)
	require.Nil(t, raw)

	out := map[string]any{"untouched": true}
	require.NoError(t, env.client.Do(ctx, Request{Method: http.MethodDelete, Path: "/auth/admin/7"}, &out))
	require.Equal(t, map[string]any{"untouched": true}, out)
}

func TestRaw_ErrorStatuses(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.router.Get("/json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "email taken", "field": "email"})
	})
	b.router.Get("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})
	b.router.Get("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	env := newTestClient(t, b)

	tcs := []struct {
		path    string
		status  int
		message string
		body    map[string]any
	}{
		{"/json", http.StatusConflict, "email taken", map[string]any{"message": "email taken", "field": "email"}},
		{"/plain", http.StatusBadGateway, "http error: status 502", map[string]any{}},
		{"/empty", http.StatusInternalServerError, "http error: status 500", map[string]any{}},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(strings.TrimPrefix(tc.path, "/"), func(t *testing.T) {
			_, err := env.client.Raw(context.Background(), Request{Path: tc.path})

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tc.status, apiErr.Status)
			require.Equal(t, tc.message, apiErr.Message)
			require.Equal(t, tc.body, apiErr.Body)
			require.False(t, IsUnauthorized(err))
		})
	}
}

func TestRaw_InvalidJSONSuccess(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.router.Get("/broken", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	})
	b.router.Get("/blank", func(w http.ResponseWriter, r *http.Request) {})

	env := newTestClient(t, b)

	_, err := env.client.Raw(context.Background(), Request{Path: "/broken"})
	require.Error(t, err)
	require.Zero(t, StatusOf(err))

	raw, err := env.client.Raw(context.Background(), Request{Path: "/blank"})
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestRaw_NetworkErrorReturnedUnchanged(t *testing.T) {
	t.Parallel()

	boom := errors.New("dial tcp: connection refused")
	c, err := New(Options{
		BaseURL: "http://backend.invalid",
		HTTPClient: &http.Client{Transport: transport.RoundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, boom
		})},
	}, nil)
	require.NoError(t, err)

	_, err = c.Raw(context.Background(), Request{Path: "/car/all"})
	require.ErrorIs(t, err, boom)
	require.Zero(t, StatusOf(err))
}

func TestContentTypeRules(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	type seen struct {
		ct   string
		body string
	}
	got := make(chan seen, 1)
	b.router.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- seen{ct: r.Header.Get("Content-Type"), body: string(body)}
		w.WriteHeader(http.StatusNoContent)
	})

	env := newTestClient(t, b)
	ctx := context.Background()

	// JSON-тело.
	_, err := env.client.Raw(ctx, Request{Method: http.MethodPost, Path: "/echo", JSON: map[string]int{"a": 1}})
	require.NoError(t, err)
	s := <-got
	require.Equal(t, "application/json", s.ct)
	require.JSONEq(t, `{"a":1}`, s.body)

	// Заголовок вызывающего перекрывает дефолт.
	_, err = env.client.Raw(ctx, Request{
		Method: http.MethodPost, Path: "/echo", JSON: "x",
		Header: http.Header{"content-type": {"application/vnd.car+json"}},
	})
	require.NoError(t, err)
	require.Equal(t, "application/vnd.car+json", (<-got).ct)

	// Multipart - boundary, никакого JSON.
	_, err = env.client.Raw(ctx, Request{
		Method: http.MethodPost, Path: "/echo",
		Form: &Multipart{
			Fields: map[string]string{"brand": "BMW"},
			Files:  []models.File{{FieldName: "images", Name: "a.jpg", Content: strings.NewReader("JPEG")}},
		},
	})
	require.NoError(t, err)
	s = <-got
	require.True(t, strings.HasPrefix(s.ct, "multipart/form-data; boundary="), s.ct)
	require.Contains(t, s.body, `name="brand"`)
	require.Contains(t, s.body, `filename="a.jpg"`)

	// Оба тела сразу - ошибка до сети.
	_, err = env.client.Raw(ctx, Request{Method: http.MethodPost, Path: "/echo", JSON: 1, Form: &Multipart{}})
	require.Error(t, err)
}

func TestRetryResendsSameMultipartBody(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	bodies := make(chan string, 2)
	b.router.Post("/car-images/upload", func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("images")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		bodies <- string(data)

		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !b.isAccepted(tok) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, models.UploadResult{URLs: []string{"https://cdn/x.jpg"}})
	})

	env := newTestClient(t, b)
	ctx := context.Background()
	require.NoError(t, env.tm.SetTokens(ctx, mint(t, time.Hour), b.refresh))

	res, err := env.client.UploadCarImages(ctx, []models.File{{Name: "x.jpg", Content: strings.NewReader("PIXELS")}})
	require.NoError(t, err)
	require.Equal(t, []string{"https://cdn/x.jpg"}, res.URLs)

	require.Equal(t, "PIXELS", <-bodies)
	require.Equal(t, "PIXELS", <-bodies)
}

func TestNewError_MessageVariants(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `{"message":"bad"}`, "bad"},
		{"array", `{"message":["email must be an email","password too short"]}`, "email must be an email; password too short"},
		{"number", `{"message":42}`, "http error: status 400"},
		{"null", `null`, "http error: status 400"},
		{"array_body", `[1,2]`, "http error: status 400"},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			e := newError(http.StatusBadRequest, []byte(tc.raw))
			require.Equal(t, tc.want, e.Message)
			require.NotNil(t, e.Body)
		})
	}
}

func TestDo_DecodesIntoOut(t *testing.T) {
	t.Parallel()

	b := newBackend(t)
	b.router.Get("/car/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "42", "brand": "Audi", "year": 2020})
	})

	env := newTestClient(t, b)

	var out json.RawMessage
	require.NoError(t, env.client.Do(context.Background(), Request{Path: "/car/42"}, &out))
	require.JSONEq(t, `{"id":"42","brand":"Audi","year":2020}`, string(out))

	var bad struct{ Year string }
	err := env.client.Do(context.Background(), Request{Path: "/car/42"}, &bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), "api.Do")
}
