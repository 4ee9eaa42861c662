package coordinator

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunBatch executes a composed unload-set/load-set operation.
//
// The unload half and the load half run concurrently, not sequentially:
// the two sets are assumed disjoint, so parallel execution is safe and
// cuts latency. Activation (if requested by the batch) happens on the
// load half after its own joins, exactly as in LoadMany.
//
// Both halves are joined before the call returns; the recalculation hook
// runs once after both, not once per half. The batch is not transactional:
// if either half fails, the other half's partial effects stand.
func (c *Coordinator) RunBatch(ctx context.Context, batch SceneBatch, recalc bool) error {
	started := time.Now()
	c.logger.Info("batch started",
		"unload", len(batch.Unload),
		"load", len(batch.Load),
		"activate", batch.Activate,
	)

	var g errgroup.Group
	g.Go(func() error {
		_, err := c.UnloadMany(ctx, batch.Unload, false)
		return err
	})
	g.Go(func() error {
		_, err := c.LoadMany(ctx, batch.Load, batch.Activate, false)
		return err
	})
	err := g.Wait()

	if recalc {
		c.runRecalc(ctx)
	}

	elapsed := time.Since(started).Milliseconds()
	success := err == nil
	c.logger.Info("batch complete",
		"duration_ms", elapsed,
		"success", success,
	)
	if c.metrics != nil {
		c.metrics.RecordOperation("batch", batch.Activate, float64(elapsed), success)
	}
	c.publishBatchEvent(batch, elapsed, success)

	return err
}

// publishBatchEvent emits a batch-completed event to both sinks.
func (c *Coordinator) publishBatchEvent(batch SceneBatch, durationMS int64, success bool) {
	payload := map[string]any{
		"unloaded":    batch.Unload,
		"loaded":      batch.Load,
		"activated":   batch.Activate,
		"duration_ms": durationMS,
		"success":     success,
	}
	if c.hub != nil {
		c.hub.Broadcast("batch.completed", payload)
	}
	if c.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("failed to marshal batch event", "error", err)
		return
	}
	if pubErr := c.events.PublishBatchCompleted(data); pubErr != nil {
		c.logger.Warn("failed to publish batch event", "error", pubErr)
	}
}
