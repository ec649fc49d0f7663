package benchmarks

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/zoobzio/mirror"
)

type benchConfig struct {
	Value int      `json:"value" yaml:"value" toml:"value" plist:"value" cbor:"value"`
	Name  string   `json:"name" yaml:"name" toml:"name" plist:"name" cbor:"name"`
	Tags  []string `json:"tags" yaml:"tags" toml:"tags" plist:"tags" cbor:"tags"`
}

func newBenchMonitor(b *testing.B, codec mirror.Codec) *mirror.Monitor[benchConfig] {
	b.Helper()
	path := filepath.Join(b.TempDir(), "bench")
	return mirror.New(path, benchConfig{Name: "bench", Tags: []string{"a", "b", "c"}}).Codec(codec)
}

func BenchmarkMonitor_Value(b *testing.B) {
	m := newBenchMonitor(b, mirror.JSONCodec{})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = m.Value()
		}
	})
}

func BenchmarkMonitor_Set(b *testing.B) {
	m := newBenchMonitor(b, mirror.JSONCodec{})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Set(benchConfig{Value: i, Name: "bench"})
	}
	b.StopTimer()
	if err := m.Flush(ctx); err != nil {
		b.Fatalf("Flush() error = %v", err)
	}
}

func BenchmarkMonitor_Save(b *testing.B) {
	codecs := []mirror.Codec{
		mirror.JSONCodec{},
		mirror.YAMLCodec{},
		mirror.TOMLCodec{},
		mirror.PlistCodec{},
		mirror.CBORCodec{},
	}

	for _, codec := range codecs {
		b.Run(codec.ContentType(), func(b *testing.B) {
			m := newBenchMonitor(b, codec)
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := m.Save(ctx); err != nil {
					b.Fatalf("Save() error = %v", err)
				}
			}
		})
	}
}

func BenchmarkMonitor_ReloadUnchanged(b *testing.B) {
	m := newBenchMonitor(b, mirror.JSONCodec{})
	ctx := context.Background()
	if err := m.Save(ctx); err != nil {
		b.Fatalf("Save() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := m.Reload(ctx); err != nil {
			b.Fatalf("Reload() error = %v", err)
		}
	}
}

func BenchmarkCodec_Marshal(b *testing.B) {
	value := benchConfig{Value: 42, Name: "bench", Tags: []string{"a", "b", "c"}}
	for _, codec := range []mirror.Codec{mirror.JSONCodec{}, mirror.CBORCodec{}, mirror.PlistCodec{}} {
		b.Run(fmt.Sprintf("%T", codec), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := codec.Marshal(value); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
