package person

import (
	"cmp"
	"slices"
	"strings"
)

type SortKey string

const (
	SortNone  SortKey = ""
	SortName  SortKey = "name"
	SortEmail SortKey = "email"
	SortCity  SortKey = "city"
	SortState SortKey = "state"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortNone, SortName, SortEmail, SortCity, SortState:
		return true
	}
	return false
}

// Query selects and orders people for display.
type Query struct {
	Search string
	Sort   SortKey
	Desc   bool
}

// Apply returns a new slice; people is never modified. Without a sort key
// the insertion order is kept.
func (q Query) Apply(people []Person) []Person {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]Person, 0, len(people))
	for _, p := range people {
		if needle == "" || matches(p, needle) {
			out = append(out, p)
		}
	}

	if q.Sort != SortNone {
		key := sortKey(q.Sort)
		slices.SortStableFunc(out, func(a, b Person) int {
			return cmp.Compare(key(a), key(b))
		})
	}
	if q.Desc {
		slices.Reverse(out)
	}
	return out
}

func matches(p Person, needle string) bool {
	for _, s := range []string{p.Name(), p.Email, p.Phone, p.City, p.State} {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func sortKey(k SortKey) func(Person) string {
	switch k {
	case SortEmail:
		return func(p Person) string { return strings.ToLower(p.Email) }
	case SortCity:
		return func(p Person) string { return strings.ToLower(p.City) }
	case SortState:
		return func(p Person) string { return p.State }
	default:
		return func(p Person) string { return strings.ToLower(p.LastName + " " + p.FirstName) }
	}
}
