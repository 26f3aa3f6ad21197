package models

import (
	"net/url"
	"strconv"
	"strings"
)

// FilterOptions narrows the catalog. Nil bounds impose no constraint.
type FilterOptions struct {
	Category Category `json:"category,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	MinYear  *int     `json:"minYear,omitempty"`
	MaxYear  *int     `json:"maxYear,omitempty"`
	Search   string   `json:"search,omitempty"`
}

// Matches reports whether v satisfies every constraint in f.
func (f FilterOptions) Matches(v *Vehicle) bool {
	if f.Category != "" && f.Category != CategoryAll && v.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && v.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && v.Price > *f.MaxPrice {
		return false
	}
	if f.MinYear != nil && v.Year < *f.MinYear {
		return false
	}
	if f.MaxYear != nil && v.Year > *f.MaxYear {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(v.Name), term) &&
			!strings.Contains(strings.ToLower(v.Make), term) &&
			!strings.Contains(strings.ToLower(v.Model), term) &&
			!strings.Contains(strings.ToLower(v.Description), term) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether f places no constraint at all.
func (f FilterOptions) IsEmpty() bool {
	return (f.Category == "" || f.Category == CategoryAll) &&
		f.MinPrice == nil && f.MaxPrice == nil &&
		f.MinYear == nil && f.MaxYear == nil &&
		strings.TrimSpace(f.Search) == ""
}

// ParseFilterQuery reads category, search, minPrice, maxPrice, minYear and
// maxYear. Missing or malformed numbers leave the bound unset.
func ParseFilterQuery(q url.Values) FilterOptions {
	f := FilterOptions{
		Category: Category(q.Get("category")),
		Search:   q.Get("search"),
	}
	if f.Category == CategoryAll {
		f.Category = ""
	}
	f.MinPrice = parseFloat(q.Get("minPrice"))
	f.MaxPrice = parseFloat(q.Get("maxPrice"))
	f.MinYear = parseInt(q.Get("minYear"))
	f.MaxYear = parseInt(q.Get("maxYear"))
	return f
}

// Query encodes f for a shareable URL, leaving out absent constraints.
func (f FilterOptions) Query() url.Values {
	q := url.Values{}
	if f.Category != "" && f.Category != CategoryAll {
		q.Set("category", string(f.Category))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}
	if f.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.MinYear != nil {
		q.Set("minYear", strconv.Itoa(*f.MinYear))
	}
	if f.MaxYear != nil {
		q.Set("maxYear", strconv.Itoa(*f.MaxYear))
	}
	return q
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &n
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
