package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func healthyChecker(name string) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return Healthy("ok")
	})
}

func TestAggregatorRegisterUnregister(t *testing.T) {
	agg := NewAggregator()

	agg.Register("a", healthyChecker("a"))
	agg.Register("b", healthyChecker("b"))
	agg.Register("a", healthyChecker("a")) // re-register keeps order

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("CheckerNames = %v, want [a b]", names)
	}

	agg.Unregister("a")
	names = agg.CheckerNames()
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("CheckerNames after Unregister = %v, want [b]", names)
	}
}

func TestAggregatorCheck(t *testing.T) {
	agg := NewAggregator()
	agg.Register("backend", healthyChecker("backend"))

	result, err := agg.Check(context.Background(), "backend")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("Check status = %v, want healthy", result.Status)
	}

	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check(missing) = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregatorCheckAll(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		agg := NewAggregator(AggregatorConfig{Timeout: 5 * time.Second, Parallel: parallel})
		agg.Register("a", healthyChecker("a"))
		agg.Register("b", NewCheckerFunc("b", func(ctx context.Context) Result {
			return Degraded("slow")
		}))

		results := agg.CheckAll(context.Background())
		if len(results) != 2 {
			t.Fatalf("parallel=%v: got %d results, want 2", parallel, len(results))
		}
		if results["a"].Status != StatusHealthy {
			t.Errorf("parallel=%v: a = %v, want healthy", parallel, results["a"].Status)
		}
		if results["b"].Status != StatusDegraded {
			t.Errorf("parallel=%v: b = %v, want degraded", parallel, results["b"].Status)
		}
		if results["a"].Duration < 0 {
			t.Errorf("parallel=%v: negative duration", parallel)
		}
	}
}

func TestAggregatorCheckAllEmpty(t *testing.T) {
	agg := NewAggregator()
	results := agg.CheckAll(context.Background())
	if len(results) != 0 {
		t.Errorf("CheckAll on empty aggregator = %v, want empty", results)
	}
	if status := agg.OverallStatus(results); status != StatusHealthy {
		t.Errorf("OverallStatus(empty) = %v, want healthy", status)
	}
}

func TestAggregatorTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 50 * time.Millisecond, Parallel: true})
	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		select {
		case <-time.After(2 * time.Second):
			return Healthy("too late")
		case <-ctx.Done():
			return Unhealthy("cancelled", ctx.Err())
		}
	}))

	results := agg.CheckAll(context.Background())
	result := results["slow"]
	if result.Status != StatusUnhealthy {
		t.Errorf("slow check status = %v, want unhealthy", result.Status)
	}
}

func TestOverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{
			name:    "all healthy",
			results: map[string]Result{"a": Healthy("ok"), "b": Healthy("ok")},
			want:    StatusHealthy,
		},
		{
			name:    "one degraded",
			results: map[string]Result{"a": Healthy("ok"), "b": Degraded("slow")},
			want:    StatusDegraded,
		},
		{
			name: "unhealthy wins over degraded",
			results: map[string]Result{
				"a": Degraded("slow"),
				"b": Unhealthy("down", nil),
			},
			want: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus = %v, want %v", got, tt.want)
			}
		})
	}
}
