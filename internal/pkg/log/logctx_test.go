package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// Тесты меняют slog.Default(), поэтому без t.Parallel().

func TestFrom_FallsBackToDefault(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := Discard()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.Background()))

	// Мусор и nil по нашему ключу не должны ломать From.
	require.Equal(t, def, From(context.WithValue(context.Background(), ctxKey{}, "not-a-logger")))

	var nilLogger *slog.Logger
	require.Equal(t, def, From(context.WithValue(context.Background(), ctxKey{}, nilLogger)))
}

func TestInto_RoundTripAndShadowing(t *testing.T) {
	parentL := Discard()
	childL := Discard()

	parent := Into(context.Background(), parentL)
	child := Into(parent, childL)

	require.Equal(t, parentL, From(parent))
	require.Equal(t, childL, From(child))
}

func TestWith_AddsAttrsAndStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, l := With(Into(context.Background(), base), "op", "test.With")
	require.Equal(t, l, From(ctx))

	From(ctx).Info("probe")
	require.Contains(t, buf.String(), "op=test.With")
	require.Contains(t, buf.String(), "msg=probe")
}
