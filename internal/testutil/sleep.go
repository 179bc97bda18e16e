// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"slices"
	"sync"
	"time"
)

// SleepRecorder stands in for a context-aware sleep. It records every
// requested delay and returns at once, so backoff schedules can be asserted
// without waiting for them.
type SleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

// Sleep records d. It returns ctx.Err() without recording when ctx is
// already done, matching a real sleep that was interrupted.
func (r *SleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

// Delays returns a copy of the recorded delays in call order.
func (r *SleepRecorder) Delays() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.delays)
}
