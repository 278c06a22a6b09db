package codec

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool runs tasks on goroutines, at most n at a time.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n))}
}

// Go schedules f. It never blocks the caller: the task waits for a free
// slot on its own goroutine.
func (p *Pool) Go(f func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// the background context is never done, so Acquire cannot fail
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		f()
	}()
}

// Wait blocks until every scheduled task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// DefaultPool is the pool shared by codecs without WithWorkers, sized by
// GOMAXPROCS at first use.
func DefaultPool() *Pool {
	defaultPoolOnce.Do(func() { defaultPool = NewPool(runtime.GOMAXPROCS(0)) })
	return defaultPool
}

var (
	sizedPools   = map[int]*Pool{}
	sizedPoolsMu sync.Mutex
)

// SizedPool returns the pool of n workers shared by every codec configured
// with WithWorkers(n).
func SizedPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	sizedPoolsMu.Lock()
	defer sizedPoolsMu.Unlock()
	p := sizedPools[n]
	if p == nil {
		p = NewPool(n)
		sizedPools[n] = p
	}
	return p
}

func (c *Codec) workers() *Pool {
	if c.pool != nil {
		return c.pool
	}
	return DefaultPool()
}

// DeserializeObjectAsync runs DeserializeObject on a worker and calls done
// exactly once with its result. Results of concurrent calls arrive in no
// particular order.
func DeserializeObjectAsync[T any](text string, done func(T, bool), opts ...Option) {
	c := codecFor(opts)
	c.workers().Go(func() {
		var (
			res T
			ok  bool
		)
		defer func() { done(res, ok) }()
		res, ok = deserializeFresh[T](c, text)
	})
}

// SerializeObjectAsync runs SerializeObject on a worker and calls done
// exactly once with its result.
func SerializeObjectAsync[T any](v T, done func(string, bool), opts ...Option) {
	c := codecFor(opts)
	c.workers().Go(func() {
		res, ok := "{}", false
		defer func() { done(res, ok) }()
		res, ok = serializeText(c, v)
	})
}
