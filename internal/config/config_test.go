package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	settings := Default()
	if err := settings.Validate(); err != nil {
		t.Fatal(err)
	}
	if settings.Count != 20 || settings.Delay != 500*time.Millisecond {
		t.Fatal("unexpected defaults", settings)
	}
	if settings.Threshold != 500*time.Millisecond || settings.SkipFailed {
		t.Fatal("unexpected defaults", settings)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *Settings)
		expect error
	}{{
		name:   "zero count",
		mutate: func(s *Settings) { s.Count = 0 },
		expect: ErrInvalidCount,
	}, {
		name:   "negative delay",
		mutate: func(s *Settings) { s.Delay = -time.Second },
		expect: ErrNegativeDuration,
	}, {
		name:   "negative timeout",
		mutate: func(s *Settings) { s.Timeout = -time.Second },
		expect: ErrNegativeDuration,
	}, {
		name:   "zero threshold",
		mutate: func(s *Settings) { s.Threshold = 0 },
		expect: ErrInvalidThreshold,
	}, {
		name:   "zero delay and timeout are fine",
		mutate: func(s *Settings) { s.Delay, s.Timeout = 0, 0 },
		expect: nil,
	}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := Default()
			tc.mutate(&settings)
			if err := settings.Validate(); !errors.Is(err, tc.expect) {
				t.Fatal("expected", tc.expect, "got", err)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("missing fields keep the defaults", func(t *testing.T) {
		settings, err := ParseConfig([]byte("count: 5\ndelay: 0s\nresolver: 1.1.1.1\n"))
		if err != nil {
			t.Fatal(err)
		}
		expect := Default()
		expect.Count = 5
		expect.Delay = 0
		expect.Resolver = "1.1.1.1"
		if diff := cmp.Diff(&expect, settings); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("all fields", func(t *testing.T) {
		data := []byte(`
count: 10
delay: 250ms
timeout: 3s
threshold: 1s
resolver: "[::1]:5353"
skip_failed: true
user_agent: curl/8.0
`)
		settings, err := ParseConfig(data)
		if err != nil {
			t.Fatal(err)
		}
		expect := &Settings{
			Count:      10,
			Delay:      250 * time.Millisecond,
			Timeout:    3 * time.Second,
			Threshold:  time.Second,
			Resolver:   "[::1]:5353",
			SkipFailed: true,
			UserAgent:  "curl/8.0",
		}
		if diff := cmp.Diff(expect, settings); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := ParseConfig([]byte("count: [")); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := ParseConfig([]byte("count: -1\n"))
		if !errors.Is(err, ErrInvalidCount) {
			t.Fatal("unexpected err", err)
		}
	})
}

func TestReadConfig(t *testing.T) {
	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lbprobe.yaml")
		if err := os.WriteFile(path, []byte("count: 3\n"), 0600); err != nil {
			t.Fatal(err)
		}
		settings, err := ReadConfig(path)
		if err != nil {
			t.Fatal(err)
		}
		if settings.Count != 3 {
			t.Fatal("unexpected count", settings.Count)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatal("unexpected err", err)
		}
	})
}
