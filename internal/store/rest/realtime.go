package rest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tftboard/tftboard/internal/domain"
	"github.com/tftboard/tftboard/internal/logger"
)

const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// SubscribeReplies opens the post's server-sent event stream and invokes cb
// for every change notification. The stream reconnects with backoff until
// the returned function is called. Dropped events during a reconnect are
// acceptable; consumers re-read state on every notification anyway, and the
// first event after reconnecting triggers such a read.
func (c *Client) SubscribeReplies(post domain.PostId, cb func(domain.ReplyChange)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())

	go c.streamLoop(ctx, post, cb)

	return cancel, nil
}

func (c *Client) streamLoop(ctx context.Context, post domain.PostId, cb func(domain.ReplyChange)) {
	backoff := reconnectBase
	for {
		err := c.streamOnce(ctx, post, cb)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Log.Debug("reply stream dropped", "post", post, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (c *Client) streamOnce(ctx context.Context, post domain.PostId, cb func(domain.ReplyChange)) error {
	path := fmt.Sprintf("%s/v1/posts/%s/events", c.baseURL, url.PathEscape(post))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	c.setAuthHeaders(req)

	// The shared client enforces a per-request timeout which would kill a
	// long-lived stream, so streaming uses a bare client.
	streamClient := &http.Client{Timeout: 0}
	resp, err := streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	var eventType string
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if eventType == "reply_change" && data.Len() > 0 {
				var change domain.ReplyChange
				if err := json.Unmarshal([]byte(data.String()), &change); err == nil {
					cb(change)
				}
			}
			eventType = ""
			data.Reset()
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data.WriteString(strings.TrimPrefix(line, "data: "))
		}
	}
	return scanner.Err()
}
