package person

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]*$`)
	phonePattern = regexp.MustCompile(`^[1-9]\d{9}$`)
)

var messages = map[string]map[string]string{
	"firstName": {
		"required": "First name is required",
		"name":     "First name should not contain special characters",
	},
	"lastName": {
		"required": "Last name is required",
		"name":     "Last name should not contain special characters",
	},
	"email": {
		"required": "Email is required",
		"email":    "Invalid email format",
	},
	"phone": {
		"required": "Phone number is required",
		"phone":    "Phone number must be 10 digits starting with 1-9",
	},
	"state": {
		"required":  "State is required",
		"statecode": "Unknown state",
	},
	"city": {
		"required": "City is required",
		"city":     "City does not belong to the selected state",
	},
}

// ValidationErrors maps a field's JSON name to a human readable message.
type ValidationErrors map[string]string

// Fields returns the invalid field names in sorted order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (v ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("invalid person: ")
	for i, f := range v.Fields() {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f + ": " + v[f])
	}
	return b.String()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("name", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("statecode", func(fl validator.FieldLevel) bool {
		_, ok := LookupState(fl.Field().String())
		return ok
	}))
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		f := sl.Current().Interface().(Fields)
		if f.City == "" {
			return
		}
		if _, ok := LookupState(f.State); ok && !HasCity(f.State, f.City) {
			sl.ReportError(f.City, "city", "City", "city", "")
		}
	}, Fields{})

	return v
}

// Validate checks fields the way the add form does. It returns nil or a
// ValidationErrors holding the first failure of every invalid field.
func Validate(f Fields) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out[fe.Field()] = msg
	}
	return out
}
