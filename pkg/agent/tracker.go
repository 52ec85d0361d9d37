package agent

import (
	"context"
	"time"

	"browser-connector-be/internal/pkg/logger"
	"browser-connector-be/pkg/collector"
	"browser-connector-be/pkg/retry"

	"github.com/patrickmn/go-cache"
)

// URLEntry is the cached "current URL" for one target.
type URLEntry struct {
	TargetID     string
	URL          string
	Source       string
	LastPushedAt time.Time
}

// Tracker keeps a best-effort cache of the current URL per target and pushes
// updates to the collector. Cache updates are synchronous and independent of
// push success: the local view is never stale just because the network was.
type Tracker struct {
	entries *cache.Cache
	client  *collector.Client
	policy  retry.Policy
	logger  logger.ILogger
}

func NewTracker(client *collector.Client, log logger.ILogger) *Tracker {
	return &Tracker{
		entries: cache.New(cache.NoExpiration, 10*time.Minute),
		client:  client,
		policy: retry.Policy{
			MaxAttempts:    3,
			Backoff:        500 * time.Millisecond,
			AttemptTimeout: collector.PushTimeout,
		},
		logger: log,
	}
}

// RecordURL updates the cache immediately, then pushes to the collector in
// the background.
func (t *Tracker) RecordURL(targetID, url, source string) {
	if url == "" {
		t.logger.Warn("Tracker", "Ignoring empty URL update", map[string]interface{}{"target_id": targetID})
		return
	}

	t.entries.Set(targetID, &URLEntry{
		TargetID: targetID,
		URL:      url,
		Source:   source,
	}, cache.NoExpiration)

	go t.Push(context.Background(), targetID)
}

// Push sends the cached URL for a target, retrying per the telemetry policy
// and giving up silently after the attempts are exhausted. URL tracking is
// telemetry, not a correctness-critical path.
func (t *Tracker) Push(ctx context.Context, targetID string) {
	raw, found := t.entries.Get(targetID)
	if !found {
		return
	}
	entry := raw.(*URLEntry)

	err := t.policy.Do(ctx, func(ctx context.Context) error {
		return t.client.PushCurrentURL(ctx, entry.TargetID, entry.URL, entry.Source)
	})
	if err != nil {
		t.logger.Warn("Tracker", "Giving up on URL push", map[string]interface{}{
			"target_id": targetID,
			"url":       entry.URL,
			"error":     err.Error(),
		})
		return
	}

	pushed := *entry
	pushed.LastPushedAt = time.Now()
	t.entries.Set(targetID, &pushed, cache.NoExpiration)
}

// Lookup returns the cached entry for a target.
func (t *Tracker) Lookup(targetID string) (*URLEntry, bool) {
	raw, found := t.entries.Get(targetID)
	if !found {
		return nil, false
	}
	return raw.(*URLEntry), true
}

// Forget evicts a target when it is closed.
func (t *Tracker) Forget(targetID string) {
	t.entries.Delete(targetID)
}
