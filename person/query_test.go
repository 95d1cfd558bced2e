package person

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func people() []Person {
	return []Person{
		{ID: "1", FirstName: "Ravi", LastName: "Kumar", Email: "ravi@x.com", Phone: "9000000001", State: "KA", City: "Mysore"},
		{ID: "2", FirstName: "Ana", LastName: "Lee", Email: "ana@x.com", Phone: "9876543210", State: "MH", City: "Mumbai"},
		{ID: "3", FirstName: "Zoe", LastName: "Adams", Email: "zoe@y.org", Phone: "8000000003", State: "DL", City: "Noida"},
	}
}

func ids(ps []Person) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestQuery_Apply(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"zero query keeps insertion order", Query{}, []string{"1", "2", "3"}},
		{"search name case-insensitively", Query{Search: "ANA"}, []string{"2"}},
		{"search full name", Query{Search: "ana lee"}, []string{"2"}},
		{"search phone", Query{Search: "98765"}, []string{"2"}},
		{"search city", Query{Search: "noida"}, []string{"3"}},
		{"search state", Query{Search: "ka"}, []string{"1"}},
		{"no match", Query{Search: "nobody"}, []string{}},
		{"sort by last name", Query{Sort: SortName}, []string{"3", "1", "2"}},
		{"sort by email desc", Query{Sort: SortEmail, Desc: true}, []string{"3", "1", "2"}},
		{"sort by state", Query{Sort: SortState}, []string{"3", "1", "2"}},
		{"reverse insertion order", Query{Desc: true}, []string{"3", "2", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ids(tt.query.Apply(people()))); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQuery_DoesNotModifyInput(t *testing.T) {
	in := people()
	Query{Sort: SortName, Desc: true}.Apply(in)
	assert.Equal(t, []string{"1", "2", "3"}, ids(in))
}

func TestSortKey_Valid(t *testing.T) {
	assert.True(t, SortCity.Valid())
	assert.True(t, SortNone.Valid())
	assert.False(t, SortKey("phone").Valid())
}

func TestIndex(t *testing.T) {
	assert.Equal(t, 1, Index(people(), "2"))
	assert.Equal(t, -1, Index(people(), "9"))
	assert.Equal(t, "Ana Lee", people()[1].Name())
	assert.Equal(t, "Mumbai, MH", people()[1].Location())
}
