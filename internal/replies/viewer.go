// Package replies implements the paginated reply viewer: a chronologically
// ascending, fixed-size-page view over one post's replies, with deep links to
// arbitrary replies, lazily resolved quotes and append-then-seek submits.
// Pagination is offset-based but navigation targets are identity-based, so
// jumping to a reply means inferring its display index, computing the page
// holding it and scrolling once that page has rendered.
package replies

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/logger"
	"github.com/tftboard/tftboard/internal/store"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Errored
)

// View is the viewer's published state. The three renderable conditions
// (loading, error, content) are mutually exclusive through Phase, never
// inferred from independent flags. Rows survive a failed refetch so a retry
// affordance can sit next to still-visible content.
type View struct {
	Phase Phase
	Page  int
	Total int
	Rows  []domain.Reply
	Err   string
	// PendingAnchor is a 1-based display index awaiting the next successful
	// page render before it can be scrolled to. Zero means none.
	PendingAnchor int
}

func (v View) PageCount() int {
	return domain.PageCount(v.Total, domain.PageSize)
}

// AnchorFunc receives the located anchor: its 1-based display index and its
// 0-based offset on the now-current page. Implementations scroll to the row
// and apply a transient highlight.
type AnchorFunc func(rank, pageOffset int)

type Options struct {
	// Timeout bounds every backend call. Zero uses the default.
	Timeout time.Duration
	// OnAnchor is invoked whenever an anchor is located on a rendered page.
	OnAnchor AnchorFunc
}

const defaultTimeout = 12 * time.Second

// Viewer is one mounted instance of the reply view for a single post.
type Viewer struct {
	client   store.Client
	post     domain.PostId
	timeout  time.Duration
	onAnchor AnchorFunc

	mu      sync.Mutex
	view    View
	gen     uint64 // monotonic request generation; stale completions are discarded
	changed chan struct{}

	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

func New(client store.Client, post domain.PostId, opts Options) *Viewer {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	onAnchor := opts.OnAnchor
	if onAnchor == nil {
		onAnchor = func(int, int) {}
	}
	return &Viewer{
		client:   client,
		post:     post,
		timeout:  timeout,
		onAnchor: onAnchor,
		view:     View{Phase: Idle, Page: 1},
		changed:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start loads the first page and subscribes to the post's change feed. The
// initial fetch runs asynchronously; Start never blocks on the network.
func (v *Viewer) Start() {
	unsubscribe, err := v.client.SubscribeReplies(v.post, func(domain.ReplyChange) {
		// Notifications carry no usable delta; re-derive from a fresh read.
		v.Refresh()
	})
	if err != nil {
		logger.Log.Debug("reply feed subscription unavailable", "post", v.post, "error", err)
	} else {
		v.unsubscribe = unsubscribe
	}

	gen := v.beginLoad(1)
	v.spawn(func() { v.fetchPage(gen, 1) })
}

// SetPage requests another page without blocking. Out-of-order completions
// are resolved by the request generation: only the latest request's result is
// applied, superseded responses are discarded.
func (v *Viewer) SetPage(page int) {
	v.mu.Lock()
	if page < 1 {
		page = 1
	}
	if max := v.view.PageCount(); page > max {
		page = max
	}
	v.mu.Unlock()

	gen := v.beginLoad(page)
	v.spawn(func() { v.fetchPage(gen, page) })
}

// Retry re-issues the fetch for the current page after an error.
func (v *Viewer) Retry() {
	v.mu.Lock()
	page := v.view.Page
	v.mu.Unlock()
	gen := v.beginLoad(page)
	v.spawn(func() { v.fetchPage(gen, page) })
}

// Refresh re-runs the count and current-page fetch in place. It neither
// resets the page nor disturbs an in-flight pending anchor.
func (v *Viewer) Refresh() {
	v.mu.Lock()
	page := v.view.Page
	v.mu.Unlock()
	gen := v.beginLoad(page)
	v.spawn(func() { v.fetchPage(gen, page) })
}

// Submit inserts a reply and seeks to it. The new reply is never spliced into
// local state; the viewer re-counts, switches to the recomputed last page and
// lets the standard anchor path highlight the row once it renders. The new
// reply's display index is by definition the new total.
func (v *Viewer) Submit(ctx context.Context, draft domain.ReplyDraft) (*domain.Reply, error) {
	draft.PostId = v.post
	draft.Body = strings.TrimSpace(draft.Body)
	if draft.Body == "" {
		return nil, &internal_errors.ValidationError{Message: "reply body is empty"}
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	reply, err := v.client.InsertReply(ctx, draft)
	if err != nil {
		return nil, err
	}

	total, err := v.client.CountReplies(ctx, v.post)
	if err != nil {
		// The write landed; a realtime notification or the next navigation
		// will surface it even though the seek is lost.
		logger.Log.Debug("post-submit count failed", "post", v.post, "error", err)
		return reply, nil
	}

	lastPage := domain.PageCount(total, domain.PageSize)
	v.mu.Lock()
	v.view.Total = total
	v.view.PendingAnchor = total
	v.mu.Unlock()

	gen := v.beginLoad(lastPage)
	v.fetchPage(gen, lastPage)
	return reply, nil
}

// JumpTo navigates to an arbitrary reply by identifier, wherever it falls.
// Failures are silent: the jump is a nice-to-have, so the viewer simply does
// not navigate rather than surfacing an error.
func (v *Viewer) JumpTo(ctx context.Context, id domain.ReplyId) {
	// Short-circuit: already on screen.
	v.mu.Lock()
	offset := (v.view.Page - 1) * domain.PageSize
	for i, row := range v.view.Rows {
		if row.Id == id {
			rank := offset + i + 1
			v.mu.Unlock()
			v.onAnchor(rank, i)
			return
		}
	}
	v.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	target, err := v.client.GetReply(ctx, id)
	if err != nil {
		logger.Log.Debug("anchor target fetch failed", "reply", id, "error", err)
		return
	}
	if target.PostId != v.post {
		// Never navigate to a row that belongs to another post.
		logger.Log.Debug("anchor target on foreign post", "reply", id, "post", target.PostId)
		return
	}

	rank, err := v.client.ReplyRank(ctx, target)
	if err != nil {
		logger.Log.Debug("anchor rank query failed", "reply", id, "error", err)
		return
	}

	targetPage := domain.PageOf(rank, domain.PageSize)
	v.mu.Lock()
	v.view.PendingAnchor = rank
	v.mu.Unlock()

	gen := v.beginLoad(targetPage)
	v.fetchPage(gen, targetPage)
}

// Snapshot returns the current view.
func (v *Viewer) Snapshot() View {
	v.mu.Lock()
	defer v.mu.Unlock()
	view := v.view
	view.Rows = append([]domain.Reply(nil), v.view.Rows...)
	return view
}

// Changed returns a channel closed on the next view replacement.
func (v *Viewer) Changed() <-chan struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.changed
}

// Close detaches the change-feed subscription and stops in-flight appliers.
func (v *Viewer) Close() {
	v.closeOnce.Do(func() {
		close(v.done)
		if v.unsubscribe != nil {
			v.unsubscribe()
		}
	})
	v.wg.Wait()
}

// beginLoad bumps the request generation and publishes the loading state for
// the requested page. The returned generation must accompany the completion.
func (v *Viewer) beginLoad(page int) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	v.view.Phase = Loading
	v.view.Page = page
	v.view.Err = ""
	v.notifyLocked()
	return v.gen
}

// fetchPage performs the slice+count read and applies the result if this
// request is still the latest and the viewer is still alive.
func (v *Viewer) fetchPage(gen uint64, page int) {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	offset := (page - 1) * domain.PageSize
	rows, total, err := v.client.ListReplies(ctx, v.post, offset, domain.PageSize)

	v.mu.Lock()
	if gen != v.gen || v.isClosed() {
		v.mu.Unlock()
		return
	}
	if err != nil {
		// Keep prior rows visible next to the error.
		v.view.Phase = Errored
		v.view.Err = "Unable to load replies."
		v.notifyLocked()
		v.mu.Unlock()
		logger.Log.Debug("reply page fetch failed", "post", v.post, "page", page, "error", err)
		return
	}
	v.view.Phase = Ready
	v.view.Page = page
	v.view.Rows = rows
	v.view.Total = total
	rank := v.view.PendingAnchor
	located := -1
	if rank > 0 {
		pageOffset := rank - offset - 1
		if pageOffset >= 0 && pageOffset < len(rows) {
			located = pageOffset
			v.view.PendingAnchor = 0
		}
	}
	v.notifyLocked()
	v.mu.Unlock()

	if located >= 0 {
		v.onAnchor(rank, located)
	}
}

func (v *Viewer) notifyLocked() {
	close(v.changed)
	v.changed = make(chan struct{})
}

func (v *Viewer) isClosed() bool {
	select {
	case <-v.done:
		return true
	default:
		return false
	}
}

func (v *Viewer) spawn(fn func()) {
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		fn()
	}()
}
