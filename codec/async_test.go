package codec

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolBound(t *testing.T) {
	p := NewPool(2)
	var cur, peak atomic.Int32
	for i := 0; i < 10; i++ {
		p.Go(func() {
			n := cur.Add(1)
			for {
				m := peak.Load()
				if n <= m || peak.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			cur.Add(-1)
		})
	}
	p.Wait()
	if peak.Load() > 2 {
		t.Errorf("peak concurrency %d", peak.Load())
	}
	if NewPool(0) == nil {
		t.Error("nil pool")
	}
}

func TestDeserializeObjectAsync(t *testing.T) {
	opts := (&capture{}).opts(WithWorkers(3))
	texts := []string{
		`{"name":"a","age":1}`,
		`{"name":"b","age":2}`,
		`{not json`,
		`{"name":"c","age":3}`,
	}
	var (
		mu    sync.Mutex
		got   = map[string]int{}
		fails int
		wg    sync.WaitGroup
	)
	for _, text := range texts {
		wg.Add(1)
		DeserializeObjectAsync(text, func(p Person, ok bool) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			if !ok {
				fails++
				return
			}
			got[p.Name] = p.Age
		}, opts...)
	}
	wg.Wait()
	if fails != 1 || len(got) != 3 || got["b"] != 2 {
		t.Errorf("got %v with %d failures", got, fails)
	}
}

func TestSerializeObjectAsync(t *testing.T) {
	opts := (&capture{}).opts()
	res := make(chan string, 2)
	SerializeObjectAsync(Person{Name: "a", Age: 1}, func(s string, ok bool) {
		if !ok {
			s = "failed"
		}
		res <- s
	}, opts...)
	SerializeObjectAsync(Inner{X: -1}, func(s string, ok bool) {
		if ok {
			s = "unexpected success"
		}
		res <- s
	}, append(opts, WithConverters(loudInt{}))...)
	got := map[string]bool{<-res: true, <-res: true}
	if !got[`{"name":"a","age":1}`] || !got["{}"] {
		t.Errorf("got %v", got)
	}
}

func TestWorkersShared(t *testing.T) {
	a, b := New(WithWorkers(1)).workers(), New(WithWorkers(1)).workers()
	if a != b {
		t.Error("codecs with the same worker count got distinct pools")
	}
	if a == New(WithWorkers(2)).workers() {
		t.Error("codecs with different worker counts share a pool")
	}
	if New(WithWorkers(0)).workers() != a {
		t.Error("non-positive worker count not clamped to 1")
	}
	p := NewPool(1)
	if New(WithPool(p)).workers() != p {
		t.Error("WithPool ignored")
	}
	if New().workers() != DefaultPool() {
		t.Error("default codec not on the default pool")
	}
}
