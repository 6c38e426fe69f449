package pagination

// Page describes one slice of a listing. Limit is clamped so a caller
// cannot request unbounded result sets.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func Normalize(p Page) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

func NewMeta(p Page, total int) Meta {
	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
