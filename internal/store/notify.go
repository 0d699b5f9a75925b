package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/campboard/campboard/internal/schedule"
	"github.com/campboard/campboard/pkg/logger"
)

// channelPrefix namespaces the per-schedule pub/sub channels.
const channelPrefix = "schedule:"

// Notifier fans committed schedule versions out to live subscribers over
// Redis pub/sub, one channel per schedule id. Because every committed write
// publishes the full resulting document, subscribers on any service instance
// observe versions in commit order without polling the store.
type Notifier struct {
	client *redis.Client
}

// NewNotifier wraps the given Redis client.
func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

// wireEvent is the published JSON envelope. The document's json tags match
// the persisted field contract, so it travels as-is.
type wireEvent struct {
	ID      string             `json:"id"`
	Deleted bool               `json:"deleted,omitempty"`
	Doc     *schedule.Document `json:"doc,omitempty"`
}

// Publish broadcasts one committed event. Publish failures are logged, never
// propagated: a missed notification degrades liveness, not correctness, and
// the write itself has already committed.
func (n *Notifier) Publish(ctx context.Context, ev Event) {
	b, err := json.Marshal(wireEvent{ID: ev.ID, Deleted: ev.Deleted, Doc: ev.Doc})
	if err != nil {
		logger.Errorf("notifier: marshal event for %s: %v", ev.ID, err)
		return
	}
	if err := n.client.Publish(ctx, channelPrefix+ev.ID, b).Err(); err != nil {
		logger.Warnf("notifier: publish %s: %v", ev.ID, err)
	}
}

// Subscribe streams events for the given schedule ids until ctx is canceled.
// The returned channel is closed on teardown; nothing is delivered after.
func (n *Notifier) Subscribe(ctx context.Context, ids []string) (<-chan Event, error) {
	channels := make([]string, len(ids))
	for i, id := range ids {
		channels[i] = channelPrefix + id
	}
	ps := n.client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var we wireEvent
				if err := json.Unmarshal([]byte(msg.Payload), &we); err != nil {
					logger.Warnf("notifier: malformed event on %s: %v", msg.Channel, err)
					continue
				}
				ev := Event{ID: we.ID, Deleted: we.Deleted, Doc: we.Doc}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
