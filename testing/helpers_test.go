package testing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zoobzio/mirror"
)

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{
			name:     "valid settings",
			settings: Settings{Theme: "dark", FontSize: 14},
			wantErr:  false,
		},
		{
			name:     "font size too low",
			settings: Settings{Theme: "dark", FontSize: 0},
			wantErr:  true,
		},
		{
			name:     "font size too high",
			settings: Settings{Theme: "dark", FontSize: 97},
			wantErr:  true,
		},
		{
			name:     "empty theme",
			settings: Settings{FontSize: 14},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWaitFor(t *testing.T) {
	t.Run("condition met immediately", func(t *testing.T) {
		if !WaitFor(t, 100*time.Millisecond, func() bool { return true }) {
			t.Error("expected WaitFor to return true")
		}
	})

	t.Run("condition never met", func(t *testing.T) {
		if WaitFor(t, 50*time.Millisecond, func() bool { return false }) {
			t.Error("expected WaitFor to return false")
		}
	})

	t.Run("condition met after delay", func(t *testing.T) {
		start := time.Now()
		if !WaitFor(t, time.Second, func() bool { return time.Since(start) > 30*time.Millisecond }) {
			t.Error("expected WaitFor to return true")
		}
	})
}

func TestWriteFileAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	WriteFileAt(t, path, []byte(`{"theme":"dark"}`), when)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"theme":"dark"}` {
		t.Errorf("unexpected contents %q", data)
	}
	RequireModTime(t, path, when)
}

func TestCountingCodec(t *testing.T) {
	codec := NewCountingCodec(mirror.JSONCodec{})

	data, err := codec.Marshal(Settings{Theme: "dark", FontSize: 12})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out Settings
	if err := codec.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	_ = codec.Unmarshal([]byte("not json"), &out) //nolint:errcheck // Counted regardless

	if codec.Marshals() != 1 {
		t.Errorf("expected 1 marshal, got %d", codec.Marshals())
	}
	if codec.Unmarshals() != 2 {
		t.Errorf("expected 2 unmarshals, got %d", codec.Unmarshals())
	}
	if codec.ContentType() != "application/json" {
		t.Errorf("unexpected content type %q", codec.ContentType())
	}
}
