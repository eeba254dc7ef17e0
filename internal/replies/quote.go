package replies

import (
	"context"
	"fmt"

	"github.com/tftboard/tftboard/internal/domain"
	"github.com/tftboard/tftboard/internal/logger"
)

const snippetLen = 120

// Quote is the collapsed summary rendered for a quoting reply. It is fetched
// lazily, only when the quoting row is in view, so a page load never fans out
// into the full quoted tree.
type Quote struct {
	Reply   domain.Reply
	Summary string
}

// ResolveQuote fetches the quoted reply for display. It returns false when
// the target is missing, unreachable, or belongs to a different post: nothing
// prevents the store from holding a cross-post target, but the viewer never
// renders one.
func (v *Viewer) ResolveQuote(ctx context.Context, id domain.ReplyId) (*Quote, bool) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	row, err := v.client.GetReply(ctx, id)
	if err != nil {
		logger.Log.Debug("quote fetch failed", "reply", id, "error", err)
		return nil, false
	}
	if row.PostId != v.post {
		logger.Log.Debug("quote target on foreign post", "reply", id, "post", row.PostId)
		return nil, false
	}

	author := row.AuthorName
	if author == "" {
		author = "Anonymous"
	}
	summary := fmt.Sprintf("Quoted from • %s • %s — “%s”",
		row.CreatedAt.Local().Format("Jan 2, 2006 15:04"),
		author,
		domain.Snippet(row.Body, snippetLen),
	)
	return &Quote{Reply: *row, Summary: summary}, true
}

// ReplyingTo fetches the author and timestamp shown in the composer chip
// while a quote target is selected. Best effort: false hides the chip.
func (v *Viewer) ReplyingTo(ctx context.Context, id domain.ReplyId) (*domain.Reply, bool) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	row, err := v.client.GetReply(ctx, id)
	if err != nil || row.PostId != v.post {
		return nil, false
	}
	return row, true
}
