package session

import (
	"sync"

	"github.com/feral-file/ff-social/internal/domain"
)

// Pager reveals a list page by page. The visible count returns to one page
// whenever the length of the list changes.
type Pager struct {
	mu       sync.Mutex
	pageSize int
	visible  int
	total    int
}

// NewPager creates a pager; a non-positive page size uses the default of 12
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = domain.DisplayPageSize
	}
	return &Pager{pageSize: pageSize, visible: pageSize}
}

// SetTotal records the list length
func (p *Pager) SetTotal(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n != p.total {
		p.total = n
		p.visible = p.pageSize
	}
}

// Visible returns how many entries are shown
func (p *Pager) Visible() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return min(p.visible, p.total)
}

// HasMore reports whether ShowMore would reveal anything
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible < p.total
}

// ShowMore reveals one more page
func (p *Pager) ShowMore() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.visible < p.total {
		p.visible += p.pageSize
	}
}

// Page returns the visible prefix of items, updating the total first
func Page[T any](p *Pager, items []T) []T {
	p.SetTotal(len(items))
	return items[:p.Visible()]
}
