package person

// Person is a directory entry. The JSON layout is the persisted layout and
// must stay compatible with previously stored data.
type Person struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	State     string `json:"state"`
	City      string `json:"city"`
}

// Fields are the user-supplied parts of a Person.
type Fields struct {
	FirstName string `json:"firstName" validate:"required,name"`
	LastName  string `json:"lastName"  validate:"required,name"`
	Email     string `json:"email"     validate:"required,email"`
	Phone     string `json:"phone"     validate:"required,phone"`
	State     string `json:"state"     validate:"required,statecode"`
	City      string `json:"city"      validate:"required"`
}

func New(id string, f Fields) Person {
	return Person{
		ID:        id,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
		State:     f.State,
		City:      f.City,
	}
}

func (p Person) Fields() Fields {
	return Fields{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		State:     p.State,
		City:      p.City,
	}
}

func (p Person) Name() string {
	return p.FirstName + " " + p.LastName
}

// Location renders "City, ST".
func (p Person) Location() string {
	return p.City + ", " + p.State
}

// Index returns the position of the person with id, or -1.
func Index(people []Person, id string) int {
	for i := range people {
		if people[i].ID == id {
			return i
		}
	}
	return -1
}
