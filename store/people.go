package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"persondir/person"
)

// DefaultKey is the key the person list is stored under.
const DefaultKey = "people"

// People persists the whole person list as one JSON array under Key.
// Every Save is a full snapshot replace.
type People struct {
	Blob Blob
	Key  string
	Log  *zap.Logger
}

func NewPeople(b Blob, key string, log *zap.Logger) *People {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &People{Blob: b, Key: key, Log: log.Named("store")}
}

// record mirrors person.Person with nullable fields so that missing and
// null values can be told apart from empty strings.
type record struct {
	ID        *string `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	State     *string `json:"state"`
	City      *string `json:"city"`
}

func (r record) person() (person.Person, bool) {
	for _, f := range []*string{r.ID, r.FirstName, r.LastName, r.Email, r.Phone, r.State, r.City} {
		if f == nil {
			return person.Person{}, false
		}
	}
	if *r.ID == "" {
		return person.Person{}, false
	}
	return person.Person{
		ID:        *r.ID,
		FirstName: *r.FirstName,
		LastName:  *r.LastName,
		Email:     *r.Email,
		Phone:     *r.Phone,
		State:     *r.State,
		City:      *r.City,
	}, true
}

// Load returns the stored list. It never fails: a missing, unreadable or
// unparsable blob loads as an empty list and malformed records are skipped.
func (p *People) Load(ctx context.Context) []person.Person {
	people := []person.Person{}

	if err := ctx.Err(); err != nil {
		p.Log.Warn("load skipped", zap.Error(err))
		return people
	}

	data, err := p.Blob.Get(p.Key)
	switch {
	case errors.Is(err, ErrNotFound):
		return people
	case err != nil:
		p.Log.Error("could not read stored people", zap.String("key", p.Key), zap.Error(err))
		return people
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		p.Log.Error("could not parse stored people", zap.String("key", p.Key), zap.Error(err))
		return people
	}

	seen := make(map[string]struct{}, len(raws))
	for i, raw := range raws {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			p.Log.Warn("dropping unparsable record", zap.Int("index", i), zap.Error(err))
			continue
		}
		pp, ok := r.person()
		if !ok {
			p.Log.Warn("dropping incomplete record", zap.Int("index", i))
			continue
		}
		if _, dup := seen[pp.ID]; dup {
			p.Log.Warn("dropping duplicate record", zap.Int("index", i), zap.String("id", pp.ID))
			continue
		}
		seen[pp.ID] = struct{}{}
		people = append(people, pp)
	}

	return people
}

// Save overwrites the stored list. Errors are logged and returned.
func (p *People) Save(ctx context.Context, people []person.Person) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(people)
	if err != nil {
		p.Log.Error("could not encode people", zap.Error(err))
		return fmt.Errorf("store: encode people: %w", err)
	}

	if err := p.Blob.Put(p.Key, data); err != nil {
		p.Log.Error("could not write people", zap.String("key", p.Key), zap.Int("count", len(people)), zap.Error(err))
		return fmt.Errorf("store: write %s: %w", p.Key, err)
	}

	p.Log.Debug("saved people", zap.String("key", p.Key), zap.Int("count", len(people)), zap.Int("bytes", len(data)))
	return nil
}

// Encode renders people in the persisted layout: a compact JSON array,
// never null, without HTML escaping.
func Encode(people []person.Person) ([]byte, error) {
	if people == nil {
		people = []person.Person{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(people); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
