package person

import "slices"

type StateInfo struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Cities []string `json:"cities"`
}

var catalog = []StateInfo{
	{"MH", "Maharashtra", []string{"Mumbai", "Pune", "Nagpur", "Nashik"}},
	{"DL", "Delhi", []string{"New Delhi", "Dwarka", "Noida", "Gurgaon"}},
	{"KA", "Karnataka", []string{"Bangalore", "Mysore", "Mangalore", "Hubli"}},
	{"TN", "Tamil Nadu", []string{"Chennai", "Coimbatore", "Madurai", "Salem"}},
	{"UP", "Uttar Pradesh", []string{"Lucknow", "Kanpur", "Varanasi", "Agra"}},
	{"WB", "West Bengal", []string{"Kolkata", "Siliguri", "Howrah", "Durgapur"}},
	{"RJ", "Rajasthan", []string{"Jaipur", "Udaipur", "Jodhpur", "Kota"}},
	{"GJ", "Gujarat", []string{"Ahmedabad", "Surat", "Vadodara", "Rajkot"}},
	{"AP", "Andhra Pradesh", []string{"Hyderabad", "Visakhapatnam", "Vijayawada", "Guntur"}},
	{"MP", "Madhya Pradesh", []string{"Bhopal", "Indore", "Jabalpur", "Gwalior"}},
}

// States returns a copy of the state catalog in display order.
func States() []StateInfo {
	out := make([]StateInfo, len(catalog))
	for i, s := range catalog {
		out[i] = StateInfo{Code: s.Code, Name: s.Name, Cities: slices.Clone(s.Cities)}
	}
	return out
}

func LookupState(code string) (StateInfo, bool) {
	for _, s := range catalog {
		if s.Code == code {
			return s, true
		}
	}
	return StateInfo{}, false
}

// Cities returns the cities of a state, nil for an unknown code.
func Cities(code string) []string {
	s, ok := LookupState(code)
	if !ok {
		return nil
	}
	return slices.Clone(s.Cities)
}

func HasCity(state, city string) bool {
	s, ok := LookupState(state)
	return ok && slices.Contains(s.Cities, city)
}
