package foodsearch

import "github.com/vladimiradmaev/meal-ledger/internal/domain"

// PageSize is the number of candidates shown per page
const PageSize = 8

// Pager slices search results into fixed pages. Pages are 1-based and
// every movement clamps to the valid range.
type Pager struct {
	items []domain.FoodCandidate
	page  int
}

// NewPager starts at page 1
func NewPager(items []domain.FoodCandidate) *Pager {
	return &Pager{items: items, page: 1}
}

// Reset replaces the results and returns to page 1
func (p *Pager) Reset(items []domain.FoodCandidate) {
	p.items = items
	p.page = 1
}

// Len is the total number of results
func (p *Pager) Len() int {
	return len(p.items)
}

// TotalPages is ceil(len / PageSize), 0 when there are no results
func (p *Pager) TotalPages() int {
	return (len(p.items) + PageSize - 1) / PageSize
}

// Page is the current 1-based page index
func (p *Pager) Page() int {
	return p.page
}

// Items returns the candidates on the current page
func (p *Pager) Items() []domain.FoodCandidate {
	start := (p.page - 1) * PageSize
	if start >= len(p.items) {
		return nil
	}
	end := min(start+PageSize, len(p.items))
	return p.items[start:end]
}

// Item returns the i-th candidate on the current page
func (p *Pager) Item(i int) (domain.FoodCandidate, bool) {
	items := p.Items()
	if i < 0 || i >= len(items) {
		return domain.FoodCandidate{}, false
	}
	return items[i], true
}

// Next advances one page, staying on the last page
func (p *Pager) Next() {
	p.SetPage(p.page + 1)
}

// Prev goes back one page, staying on page 1
func (p *Pager) Prev() {
	p.SetPage(p.page - 1)
}

// SetPage jumps to n clamped into [1, max(TotalPages, 1)]
func (p *Pager) SetPage(n int) {
	last := max(p.TotalPages(), 1)
	p.page = min(max(n, 1), last)
}
