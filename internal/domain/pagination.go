package domain

// PageSize is the fixed slice size of the reply viewer.
const PageSize = 10

// ReplyPage is a transient client-side view over one post's reply set: an
// ordered slice, the exact total at query time and the current page number.
type ReplyPage struct {
	Page  int
	Total int
	Rows  []Reply
}

// PageCount returns max(1, ceil(total/size)).
func PageCount(total, size int) int {
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// PageOf returns the page holding the 1-based display index rank.
func PageOf(rank, size int) int {
	if rank < 1 {
		return 1
	}
	return (rank + size - 1) / size
}

// PageOffset returns the 0-based in-page offset of the 1-based rank.
func PageOffset(rank, size int) int {
	return (rank - 1) % size
}

func (p ReplyPage) PageCount() int {
	return PageCount(p.Total, PageSize)
}

// Offset is the 0-based slice offset of the page's first row.
func (p ReplyPage) Offset() int {
	return (p.Page - 1) * PageSize
}
