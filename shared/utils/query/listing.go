// Package query turns list request parameters into gorm scopes.
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Filter maps one request key to a column. Parse converts the raw value and
// reports false for values that must be ignored.
type Filter struct {
	Column string
	Parse  func(raw string) (any, bool)
}

// Bool filters a boolean column. Only values strconv.ParseBool accepts are applied.
func Bool(column string) Filter {
	return Filter{
		Column: column,
		Parse: func(raw string) (any, bool) {
			v, err := strconv.ParseBool(raw)
			return v, err == nil
		},
	}
}

// Listing declares what a list endpoint lets clients filter, search and order by.
// Request names map to columns here; nothing else from the request reaches SQL.
type Listing struct {
	Filters  map[string]Filter
	Ordering map[string]string
	Search   []string
	// DefaultOrder is used when the request names no known ordering.
	DefaultOrder string
}

// Params is a parsed list request.
type Params struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]any
	// Order is a column from Listing.Ordering plus direction, empty for the default.
	Order string
}

// Parse reads page, limit, search, ordering (DRF style, "-field" for descending)
// and the listing's filter keys from the query string.
func (l Listing) Parse(c *gin.Context) Params {
	p := Params{
		Page:    atLeast(c.Query("page"), 1, 1),
		Limit:   atLeast(c.Query("limit"), DefaultLimit, 1),
		Search:  strings.TrimSpace(c.Query("search")),
		Filters: make(map[string]any),
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	for key, filter := range l.Filters {
		raw, ok := c.GetQuery(key)
		if !ok {
			continue
		}
		if v, ok := filter.Parse(raw); ok {
			p.Filters[key] = v
		}
	}

	ordering := c.Query("ordering")
	desc := strings.HasPrefix(ordering, "-")
	if column, ok := l.Ordering[strings.TrimPrefix(ordering, "-")]; ok {
		p.Order = column + " ASC"
		if desc {
			p.Order = column + " DESC"
		}
	}
	return p
}

// Where scopes a query to the rows matching the filters and search of p.
func (l Listing) Where(p Params) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		keys := make([]string, 0, len(p.Filters))
		for key := range p.Filters {
			if _, ok := l.Filters[key]; ok {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			db = db.Where(clause.Eq{Column: clause.Column{Name: l.Filters[key].Column}, Value: p.Filters[key]})
		}

		if p.Search == "" || len(l.Search) == 0 {
			return db
		}
		pattern := "%" + likeEscaper.Replace(p.Search) + "%"
		conditions := make([]clause.Expression, len(l.Search))
		for i, column := range l.Search {
			conditions[i] = clause.Expr{SQL: "? ILIKE ?", Vars: []any{clause.Column{Name: column}, pattern}}
		}
		return db.Where(clause.Or(conditions...))
	}
}

// Page orders and limits a query to page p.
func (l Listing) Page(p Params) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		order := p.Order
		if order == "" {
			order = l.DefaultOrder
		}
		if order != "" {
			db = db.Order(order)
		}
		return db.Offset((p.Page - 1) * p.Limit).Limit(p.Limit)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func atLeast(raw string, fallback, floor int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if n < floor {
		return floor
	}
	return n
}

// Pagination is the metadata returned next to a page of results.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

func NewPagination(p Params, total int64) Pagination {
	totalPages := (total + int64(p.Limit) - 1) / int64(p.Limit)
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(p.Page) < totalPages,
		HasPrev:    p.Page > 1,
	}
}
