package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var runs atomic.Int32
	var sharedCount atomic.Int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, shared := g.Do("competition:demo", func() (any, error) {
				runs.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "demo", nil
			})
			if err != nil || v != "demo" {
				t.Errorf("unexpected result %v, %v", v, err)
			}
			if shared {
				sharedCount.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := runs.Load(); got != 1 {
		t.Fatalf("expected one run, got %d", got)
	}
	if got := sharedCount.Load(); got != workers-1 {
		t.Fatalf("expected %d shared results, got %d", workers-1, got)
	}
}

func TestSingleFlight_ErrorIsNotRemembered(t *testing.T) {
	var g SingleFlight
	boom := errors.New("boom")

	if _, err, _ := g.Do("k", func() (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected leader error, got %v", err)
	}
	v, err, _ := g.Do("k", func() (any, error) { return 1, nil })
	if err != nil || v != 1 {
		t.Fatalf("expected fresh run after error, got %v, %v", v, err)
	}
}

func TestSingleFlight_PanicReleasesWaiters(t *testing.T) {
	var g SingleFlight
	entered := make(chan struct{})
	release := make(chan struct{})
	waiterErr := make(chan error, 1)

	go func() {
		defer func() { _ = recover() }()
		_, _, _ = g.Do("k", func() (any, error) {
			close(entered)
			<-release
			panic("loader blew up")
		})
	}()

	<-entered
	go func() {
		_, err, _ := g.Do("k", func() (any, error) { return "late", nil })
		waiterErr <- err
	}()
	time.Sleep(10 * time.Millisecond)
	close(release)

	select {
	case err := <-waiterErr:
		// The waiter either joined the panicking run or started after it.
		if err != nil && !errors.Is(err, errFlightPanicked) {
			t.Fatalf("unexpected waiter error %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("waiter was not released after leader panic")
	}
}
