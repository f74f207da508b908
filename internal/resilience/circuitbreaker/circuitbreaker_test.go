package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cb := New(Config{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      3,
	})

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, boom })
		if !errors.Is(err, boom) {
			t.Fatalf("attempt %d: expected boom, got %v", i, err)
		}
	}

	if !cb.IsOpen() {
		t.Fatalf("expected breaker to be open, state=%v", cb.State())
	}

	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
}

func TestCircuitBreaker_StaysClosedBelowMinRequests(t *testing.T) {
	cb := New(FeedFetchConfig())

	_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("boom") })

	if cb.IsOpen() {
		t.Error("breaker opened below the minimum request count")
	}
}

func TestCircuitBreaker_PassesThroughResult(t *testing.T) {
	cb := New(DefaultConfig("test"))

	result, err := cb.Execute(func() (interface{}, error) { return 42, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(int) != 42 {
		t.Errorf("expected 42, got %v", result)
	}
}
