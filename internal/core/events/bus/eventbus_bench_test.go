package bus

import (
	"sync/atomic"
	"testing"
)

func BenchmarkPublish(b *testing.B) {
	bus := New()
	var c int64
	for i := 0; i < 8; i++ {
		_, _ = bus.Subscribe("bench", func(Event) error {
			atomic.AddInt64(&c, 1)
			return nil
		})
	}
	evt := NewEvent("bench", "bench", nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.Publish(evt)
	}
}
