// Package executor runs candidate quote tasks under a racing policy.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/metrics"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

// Mode racing mode
type Mode int

// Mode constants
const (
	// EqualSpeed run all tasks at once
	EqualSpeed Mode = iota
	// PrioritySpeed run tasks chunk by chunk in order
	PrioritySpeed
)

func (m Mode) String() string {
	switch m {
	case EqualSpeed:
		return "equal-speed"
	case PrioritySpeed:
		return "priority-speed"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Task named candidate task
type Task[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Policy racing policy.
// If Better is set, each chunk waits all settled and returns the best success,
// otherwise the first success wins and cancels the rest.
type Policy[T any] struct {
	Mode      Mode
	ChunkSize int
	Better    func(a, b T) bool
}

// AggregateError all tasks failed
type AggregateError struct {
	kind   error
	Errors []error
}

// Error impl error interface
func (e *AggregateError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%v: all %d candidates failed [%v]", e.kind, len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap unwrap to the classified kind
func (e *AggregateError) Unwrap() error {
	return e.kind
}

type outcome[T any] struct {
	index int
	value T
	err   error
}

// Execute run tasks with policy
func Execute[T any](ctx context.Context, tasks []Task[T], policy Policy[T]) (result T, err error) {
	if len(tasks) == 0 {
		return result, fmt.Errorf("%w: no candidates", tokens.ErrNoQuoteFound)
	}
	mode := policy.Mode.String()

	var errs []error
	for i, chunk := range splitChunks(tasks, policy) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = append(errs, ctxErr)
			break
		}
		res, chunkErrs, ok := runChunk(ctx, chunk, policy.Better)
		if ok {
			metrics.IncExecutorOutcome(mode, "success")
			return res, nil
		}
		log.Debug("executor chunk failed", "mode", mode, "chunk", i, "tasks", len(chunk), "errs", len(chunkErrs))
		errs = append(errs, chunkErrs...)
	}
	metrics.IncExecutorOutcome(mode, "failure")
	return result, aggregate(errs)
}

func splitChunks[T any](tasks []Task[T], policy Policy[T]) [][]Task[T] {
	if policy.Mode == EqualSpeed {
		return [][]Task[T]{tasks}
	}
	size := policy.ChunkSize
	if size <= 0 {
		size = 1
	}
	chunks := make([][]Task[T], 0, (len(tasks)+size-1)/size)
	for start := 0; start < len(tasks); start += size {
		end := start + size
		if end > len(tasks) {
			end = len(tasks)
		}
		chunks = append(chunks, tasks[start:end])
	}
	return chunks
}

func runChunk[T any](parent context.Context, chunk []Task[T], better func(a, b T) bool) (best T, errs []error, found bool) {
	ctx, cancel := context.WithCancel(parent)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	results := make(chan outcome[T], len(chunk))
	for i, task := range chunk {
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()
			results <- runTask(ctx, i, task)
		}(i, task)
	}

	bestIndex := -1
	for range chunk {
		o := <-results
		if o.err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", chunk[o.index].Name, o.err))
			continue
		}
		if better == nil {
			return o.value, nil, true
		}
		if !found || better(o.value, best) || (!better(best, o.value) && o.index < bestIndex) {
			best, bestIndex, found = o.value, o.index, true
		}
	}
	return best, errs, found
}

func runTask[T any](ctx context.Context, index int, task Task[T]) (o outcome[T]) {
	o.index = index
	defer func() {
		if r := recover(); r != nil {
			o.err = fmt.Errorf("task panic: %v", r)
			log.Error("executor task panic", "task", task.Name, "panic", r)
		}
	}()
	o.value, o.err = task.Run(ctx)
	return o
}

func aggregate(errs []error) error {
	var kind error = tokens.ErrNoQuoteFound
	allSourcesNotSupported := len(errs) > 0
	for _, err := range errs {
		if errors.Is(err, tokens.ErrSwapLiquidityUnavailable) {
			kind = tokens.ErrSwapLiquidityUnavailable
			allSourcesNotSupported = false
			break
		}
		if !errors.Is(err, tokens.ErrSourcesNotSupported) {
			allSourcesNotSupported = false
		}
	}
	if allSourcesNotSupported {
		kind = tokens.ErrSourcesNotSupported
	}
	if tooLow := smallestShortfall(errs); tooLow != nil {
		kind = tooLow
	}
	return &AggregateError{kind: kind, Errors: errs}
}

// smallestShortfall closest amount invariant violation if every task failed on one
func smallestShortfall(errs []error) *tokens.AmountTooLowError {
	var closest *tokens.AmountTooLowError
	for _, err := range errs {
		var tooLow *tokens.AmountTooLowError
		if !errors.As(err, &tooLow) {
			return nil
		}
		if closest == nil || lessShortfall(tooLow, closest) {
			closest = tooLow
		}
	}
	return closest
}

func lessShortfall(a, b *tokens.AmountTooLowError) bool {
	sa, sb := a.Shortfall(), b.Shortfall()
	if sa == nil || sb == nil {
		return sa != nil
	}
	return sa.Cmp(sb) < 0
}
