package pg

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/tftboard/tftboard/internal/domain"
	"github.com/tftboard/tftboard/internal/logger"
)

const replyChannel = "forum_comments_changes"

// Listen streams reply change notifications from the forum_comments trigger
// until ctx is cancelled. Delivery is unordered and best effort: after a
// connection loss, missed notifications are gone, which is fine because
// consumers re-derive state from a fresh read on every signal.
func (s *Storage) Listen(ctx context.Context, onChange func(domain.ReplyChange)) error {
	listener := pq.NewListener(ConnString(s.cfg), 2*time.Second, time.Minute,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				logger.Log.Warn("pg listener event", "event", event, "error", err)
			}
		})
	if err := listener.Listen(replyChannel); err != nil {
		listener.Close()
		return err
	}

	go func() {
		defer listener.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener.Notify:
				if n == nil {
					// Reconnect happened; state may have changed meanwhile.
					onChange(domain.ReplyChange{Op: domain.ChangeUpdate})
					continue
				}
				var change domain.ReplyChange
				if err := json.Unmarshal([]byte(n.Extra), &change); err != nil {
					logger.Log.Warn("bad change payload", "payload", n.Extra, "error", err)
					continue
				}
				onChange(change)
			case <-time.After(90 * time.Second):
				go listener.Ping()
			}
		}
	}()
	return nil
}
