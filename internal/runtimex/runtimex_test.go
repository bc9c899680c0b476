package runtimex

import (
	"errors"
	"testing"
)

func mustPanic(t *testing.T, f func()) (value any) {
	t.Helper()
	defer func() {
		value = recover()
		if value == nil {
			t.Fatal("expected a panic")
		}
	}()
	f()
	return
}

func TestPanicOnError(t *testing.T) {
	t.Run("no panic on nil error", func(t *testing.T) {
		PanicOnError(nil, "antani")
	})

	t.Run("panic wraps the error", func(t *testing.T) {
		expected := errors.New("mocked error")
		value := mustPanic(t, func() {
			PanicOnError(expected, "antani")
		})
		err, ok := value.(error)
		if !ok || !errors.Is(err, expected) {
			t.Fatal("unexpected panic value", value)
		}
		if err.Error() != "antani: mocked error" {
			t.Fatal("unexpected message", err.Error())
		}
	})
}

func TestTry(t *testing.T) {
	if v := Try1(17, nil); v != 17 {
		t.Fatal("unexpected value", v)
	}
	mustPanic(t, func() {
		Try1(0, errors.New("mocked error"))
	})
}
