package log

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Тесты меняют slog.Default(), поэтому t.Parallel() не используем.

func newSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Без логгера в контексте From возвращает slog.Default().
func TestFrom_DefaultWhenEmpty(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.Background()))
}

// Into/From — round-trip; мусор и nil по нашему ключу игнорируются.
func TestIntoFrom_RoundTripAndGarbage(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	l := newSilent()
	require.Equal(t, l, From(Into(context.Background(), l)))

	wrong := context.WithValue(context.Background(), ctxKey{}, "not-a-logger")
	require.Equal(t, def, From(wrong))

	var nilLogger *slog.Logger
	require.Equal(t, def, From(context.WithValue(context.Background(), ctxKey{}, nilLogger)))
}

// Дочерний контекст перекрывает логгер, не трогая родителя, отмена сохраняется.
func TestInto_ShadowAndCancel(t *testing.T) {
	parentL, childL := newSilent(), newSilent()

	base, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	parent := Into(base, parentL)
	child := Into(parent, childL)

	require.Equal(t, parentL, From(parent))
	require.Equal(t, childL, From(child))

	select {
	case <-child.Done():
		require.ErrorIs(t, child.Err(), context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("ожидали дедлайн у дочернего контекста")
	}
}
