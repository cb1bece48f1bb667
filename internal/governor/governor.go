// Package governor bounds how many media-engine processes run at once.
package governor

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Capacity returns max(1, floor(parallelism*0.8) - 1).
func Capacity(parallelism int) int {
	n := int(math.Floor(float64(parallelism)*0.8)) - 1
	if n < 1 {
		return 1
	}
	return n
}

// DefaultCapacity sizes the gate from the CPUs available to the process.
func DefaultCapacity() int {
	return Capacity(runtime.GOMAXPROCS(0))
}

type Task func(ctx context.Context) error

// Governor admits tasks in submission order and never runs more than its
// capacity at the same time.
type Governor struct {
	sem      *semaphore.Weighted
	capacity int
}

func New(capacity int) *Governor {
	if capacity < 1 {
		capacity = 1
	}
	return &Governor{sem: semaphore.NewWeighted(int64(capacity)), capacity: capacity}
}

func (g *Governor) Capacity() int { return g.capacity }

// Run executes every task and returns one error slot per task. A failing task
// does not stop the others. Tasks not yet admitted when ctx is cancelled get
// ctx.Err().
func (g *Governor) Run(ctx context.Context, tasks []Task) []error {
	errs := make([]error, len(tasks))
	var grp errgroup.Group
	for i, task := range tasks {
		// Acquire on the submitting goroutine so admission follows slice order.
		if err := g.sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(tasks); j++ {
				errs[j] = err
			}
			break
		}
		i, task := i, task
		grp.Go(func() error {
			defer g.sem.Release(1)
			errs[i] = task(ctx)
			return nil
		})
	}
	_ = grp.Wait()
	return errs
}
