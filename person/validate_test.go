package person

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ana() Fields {
	return Fields{
		FirstName: "Ana",
		LastName:  "Lee",
		Email:     "ana@x.com",
		Phone:     "9876543210",
		State:     "MH",
		City:      "Mumbai",
	}
}

func TestValidate_Valid(t *testing.T) {
	require.NoError(t, Validate(ana()))

	f := ana()
	f.FirstName = "Mary Ann"
	assert.NoError(t, Validate(f))
}

func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Fields)
		field  string
		msg    string
	}{
		{"missing first name", func(f *Fields) { f.FirstName = "" }, "firstName", "First name is required"},
		{"digits in first name", func(f *Fields) { f.FirstName = "An4" }, "firstName", "First name should not contain special characters"},
		{"symbols in last name", func(f *Fields) { f.LastName = "Lee!" }, "lastName", "Last name should not contain special characters"},
		{"missing email", func(f *Fields) { f.Email = "" }, "email", "Email is required"},
		{"bad email", func(f *Fields) { f.Email = "ana-at-x" }, "email", "Invalid email format"},
		{"missing phone", func(f *Fields) { f.Phone = "" }, "phone", "Phone number is required"},
		{"leading zero", func(f *Fields) { f.Phone = "0876543210" }, "phone", "Phone number must be 10 digits starting with 1-9"},
		{"short phone", func(f *Fields) { f.Phone = "987654321" }, "phone", "Phone number must be 10 digits starting with 1-9"},
		{"missing state", func(f *Fields) { f.State = "" }, "state", "State is required"},
		{"unknown state", func(f *Fields) { f.State = "ZZ" }, "state", "Unknown state"},
		{"missing city", func(f *Fields) { f.City = "" }, "city", "City is required"},
		{"city of other state", func(f *Fields) { f.City = "Pune"; f.State = "KA" }, "city", "City does not belong to the selected state"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ana()
			tt.mutate(&f)

			err := Validate(f)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Equal(t, tt.msg, verrs[tt.field])
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	err := Validate(Fields{})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 6)
	assert.Contains(t, err.Error(), "city: City is required")
}

func TestCatalog(t *testing.T) {
	states := States()
	require.Len(t, states, 10)
	assert.Equal(t, "MH", states[0].Code)

	states[0].Cities[0] = "Changed"
	assert.Equal(t, []string{"Mumbai", "Pune", "Nagpur", "Nashik"}, Cities("MH"))

	assert.True(t, HasCity("AP", "Hyderabad"))
	assert.False(t, HasCity("AP", "Mumbai"))
	assert.Nil(t, Cities("XX"))
}
