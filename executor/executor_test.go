package executor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/tokens"
)

func valueTask(name string, value int, delay time.Duration) Task[int] {
	return Task[int]{
		Name: name,
		Run: func(ctx context.Context) (int, error) {
			select {
			case <-time.After(delay):
				return value, nil
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		},
	}
}

func failTask(name string, err error) Task[int] {
	return Task[int]{
		Name: name,
		Run: func(ctx context.Context) (int, error) {
			return 0, err
		},
	}
}

func countingTask(counter *int32, task Task[int]) Task[int] {
	return Task[int]{
		Name: task.Name,
		Run: func(ctx context.Context) (int, error) {
			atomic.AddInt32(counter, 1)
			return task.Run(ctx)
		},
	}
}

func TestEqualSpeedFirstSuccess(t *testing.T) {
	tasks := []Task[int]{
		valueTask("slow", 1, time.Second),
		failTask("broken", errors.New("boom")),
		valueTask("fast", 2, 5*time.Millisecond),
	}
	start := time.Now()
	result, err := Execute(context.Background(), tasks, Policy[int]{Mode: EqualSpeed})
	require.NoError(t, err)
	require.Equal(t, 2, result)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestEqualSpeedBest(t *testing.T) {
	tasks := []Task[int]{
		valueTask("a", 5, 20*time.Millisecond),
		valueTask("b", 9, 10*time.Millisecond),
		valueTask("c", 7, time.Millisecond),
		failTask("d", errors.New("boom")),
	}
	better := func(a, b int) bool { return a > b }
	result, err := Execute(context.Background(), tasks, Policy[int]{Mode: EqualSpeed, Better: better})
	require.NoError(t, err)
	require.Equal(t, 9, result)
}

func TestBestTieBreakByOrder(t *testing.T) {
	type quote struct {
		name  string
		value int
	}
	tasks := []Task[quote]{
		{Name: "first", Run: func(ctx context.Context) (quote, error) {
			time.Sleep(10 * time.Millisecond)
			return quote{"first", 1}, nil
		}},
		{Name: "second", Run: func(ctx context.Context) (quote, error) {
			return quote{"second", 1}, nil
		}},
	}
	better := func(a, b quote) bool { return a.value > b.value }
	result, err := Execute(context.Background(), tasks, Policy[quote]{Mode: EqualSpeed, Better: better})
	require.NoError(t, err)
	require.Equal(t, "first", result.name)
}

func TestPrioritySpeedStopsAfterSuccessfulChunk(t *testing.T) {
	var started int32
	tasks := []Task[int]{
		countingTask(&started, failTask("p1", errors.New("no route"))),
		countingTask(&started, valueTask("p2", 2, time.Millisecond)),
		countingTask(&started, valueTask("p3", 3, time.Millisecond)),
		countingTask(&started, valueTask("p4", 4, time.Millisecond)),
	}
	result, err := Execute(context.Background(), tasks, Policy[int]{Mode: PrioritySpeed, ChunkSize: 2})
	require.NoError(t, err)
	require.Equal(t, 2, result)
	require.Equal(t, int32(2), atomic.LoadInt32(&started))
}

func TestPrioritySpeedAdvancesOnFailedChunk(t *testing.T) {
	var started int32
	tasks := []Task[int]{
		countingTask(&started, failTask("p1", errors.New("no route"))),
		countingTask(&started, failTask("p2", errors.New("no route"))),
		countingTask(&started, valueTask("p3", 3, time.Millisecond)),
	}
	result, err := Execute(context.Background(), tasks, Policy[int]{Mode: PrioritySpeed, ChunkSize: 2})
	require.NoError(t, err)
	require.Equal(t, 3, result)
	require.Equal(t, int32(3), atomic.LoadInt32(&started))
}

func TestFailureAggregation(t *testing.T) {
	cases := []struct {
		name     string
		errs     []error
		expected error
	}{
		{
			name:     "liquidity wins",
			errs:     []error{tokens.ErrSourcesNotSupported, fmt.Errorf("uniswap: %w", tokens.ErrSwapLiquidityUnavailable), errors.New("x")},
			expected: tokens.ErrSwapLiquidityUnavailable,
		},
		{
			name:     "all sources unsupported",
			errs:     []error{tokens.ErrSourcesNotSupported, fmt.Errorf("lifi: %w", tokens.ErrSourcesNotSupported)},
			expected: tokens.ErrSourcesNotSupported,
		},
		{
			name:     "generic",
			errs:     []error{tokens.ErrSourcesNotSupported, errors.New("timeout")},
			expected: tokens.ErrNoQuoteFound,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tasks := make([]Task[int], len(c.errs))
			for i, err := range c.errs {
				tasks[i] = failTask(fmt.Sprintf("t%d", i), err)
			}
			_, err := Execute(context.Background(), tasks, Policy[int]{Mode: EqualSpeed})
			require.ErrorIs(t, err, c.expected)
			var aggErr *AggregateError
			require.True(t, errors.As(err, &aggErr))
			require.Len(t, aggErr.Errors, len(c.errs))
		})
	}
}

func TestExecuteEmptyAndPanic(t *testing.T) {
	_, err := Execute(context.Background(), nil, Policy[int]{})
	require.ErrorIs(t, err, tokens.ErrNoQuoteFound)

	tasks := []Task[int]{{Name: "panic", Run: func(ctx context.Context) (int, error) { panic("oops") }}}
	_, err = Execute(context.Background(), tasks, Policy[int]{})
	require.ErrorIs(t, err, tokens.ErrNoQuoteFound)
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tasks := []Task[int]{valueTask("a", 1, time.Millisecond)}
	_, err := Execute(ctx, tasks, Policy[int]{Mode: PrioritySpeed})
	require.ErrorIs(t, err, tokens.ErrNoQuoteFound)
}

func TestFailureAggregationAmountTooLow(t *testing.T) {
	tasks := []Task[int]{
		failTask("a", fmt.Errorf("dai: %w", tokens.NewAmountTooLowError("short", big.NewInt(1000), big.NewInt(900)))),
		failTask("b", tokens.NewAmountTooLowError("short", big.NewInt(1000), big.NewInt(990))),
	}
	_, err := Execute(context.Background(), tasks, Policy[int]{Mode: EqualSpeed})
	require.ErrorIs(t, err, tokens.ErrAmountTooLow)
	require.Equal(t, tokens.KindAmountTooLow, tokens.KindOf(err))
	var tooLow *tokens.AmountTooLowError
	require.True(t, errors.As(err, &tooLow))
	require.Equal(t, "10", tooLow.Shortfall().String())

	tasks = append(tasks, failTask("c", errors.New("timeout")))
	_, err = Execute(context.Background(), tasks, Policy[int]{Mode: EqualSpeed})
	require.ErrorIs(t, err, tokens.ErrNoQuoteFound)
	require.False(t, errors.Is(err, tokens.ErrAmountTooLow))
}
