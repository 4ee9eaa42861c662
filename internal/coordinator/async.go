package coordinator

import "context"

// Fire-and-forget forms of the coordinator operations.
//
// Each Go* method runs the awaitable form on a background goroutine and
// invokes the optional completion callback with the same return values.
// The callback runs on whatever goroutine the operation finished on;
// callers needing ordering relative to other work must use the awaitable
// form directly. The core logic lives entirely in the awaitable forms.

// LoadCallback receives the outcome of a backgrounded load or unload.
type LoadCallback func(results []Result, err error)

// DoneCallback receives the outcome of a backgrounded result-less call.
type DoneCallback func(err error)

// GoLoadMany runs LoadMany in the background.
func (c *Coordinator) GoLoadMany(ctx context.Context, names []string, activeName string, recalc bool, done LoadCallback) {
	go func() {
		results, err := c.LoadMany(ctx, names, activeName, recalc)
		if done != nil {
			done(results, err)
		}
	}()
}

// GoUnloadMany runs UnloadMany in the background.
func (c *Coordinator) GoUnloadMany(ctx context.Context, names []string, recalc bool, done LoadCallback) {
	go func() {
		results, err := c.UnloadMany(ctx, names, recalc)
		if done != nil {
			done(results, err)
		}
	}()
}

// GoUnloadAllExcept runs UnloadAllExcept in the background.
func (c *Coordinator) GoUnloadAllExcept(ctx context.Context, keep []string, recalc bool, done DoneCallback) {
	go func() {
		err := c.UnloadAllExcept(ctx, keep, recalc)
		if done != nil {
			done(err)
		}
	}()
}

// GoRunBatch runs RunBatch in the background.
func (c *Coordinator) GoRunBatch(ctx context.Context, batch SceneBatch, recalc bool, done DoneCallback) {
	go func() {
		err := c.RunBatch(ctx, batch, recalc)
		if done != nil {
			done(err)
		}
	}()
}

// GoSetActive runs SetActive in the background.
func (c *Coordinator) GoSetActive(ctx context.Context, name string, done DoneCallback) {
	go func() {
		err := c.SetActive(ctx, name)
		if done != nil {
			done(err)
		}
	}()
}
