package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"persondir/directory"
	"persondir/person"
)

type People struct {
	Directory    *directory.Directory
	ErrorHandler func(context.Context, error)
}

func (h *People) Register(api huma.API) {
	huma.Get(api, "/people",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusInternalServerError),
	)
	huma.Post(api, "/people",
		handlerWithErrorHandler(h.add, h.ErrorHandler),
		opErrors(http.StatusConflict, http.StatusUnprocessableEntity, http.StatusInternalServerError, http.StatusServiceUnavailable),
		func(o *huma.Operation) { o.DefaultStatus = http.StatusCreated },
	)
	huma.Delete(api, "/people/{id}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opErrors(http.StatusInternalServerError, http.StatusServiceUnavailable),
	)
	huma.Get(api, "/status", h.status)
	huma.Get(api, "/states", h.states)
}

type PersonModel struct {
	ID        string `json:"id"        readOnly:"true" example:"01920e5c-7e4b-7cc2-9d4a-3a1f0c9b8e11"`
	FirstName string `json:"firstName" example:"Ana"`
	LastName  string `json:"lastName"  example:"Lee"`
	Email     string `json:"email"     example:"ana@x.com"`
	Phone     string `json:"phone"     example:"9876543210"`
	State     string `json:"state"     example:"MH"`
	City      string `json:"city"      example:"Mumbai"`
}

func personModel(p person.Person) PersonModel {
	return PersonModel{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		State:     p.State,
		City:      p.City,
	}
}

type FieldsModel struct {
	FirstName string `json:"firstName" example:"Ana"        doc:"letters and spaces only"`
	LastName  string `json:"lastName"  example:"Lee"        doc:"letters and spaces only"`
	Email     string `json:"email"     example:"ana@x.com"`
	Phone     string `json:"phone"     example:"9876543210" doc:"10 digits, first digit 1-9"`
	State     string `json:"state"     example:"MH"         doc:"state code, see /states"`
	City      string `json:"city"      example:"Mumbai"     doc:"a city of the state"`
}

type PeopleListOutput struct {
	Body []PersonModel
}

func (h *People) list(ctx context.Context, input *struct {
	Q    string `query:"q"    doc:"search name, email, phone, city or state"`
	Sort string `query:"sort" enum:"name,email,city,state" doc:"sort key, insertion order when empty"`
	Desc bool   `query:"desc" doc:"reverse the order"`
}) (*PeopleListOutput, error) {
	if err := h.Directory.Initialize().Wait(ctx); err != nil {
		return nil, serviceError(err)
	}

	q := person.Query{Search: input.Q, Sort: person.SortKey(input.Sort), Desc: input.Desc}
	people := q.Apply(h.Directory.People())

	body := make([]PersonModel, 0, len(people))
	for _, p := range people {
		body = append(body, personModel(p))
	}
	return &PeopleListOutput{Body: body}, nil
}

type PeopleAddOutput struct {
	Body PersonModel
}

func (h *People) add(ctx context.Context, input *struct {
	Body FieldsModel
}) (*PeopleAddOutput, error) {
	fields := person.Fields(input.Body)

	if err := person.Validate(fields); err != nil {
		var verrs person.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		return nil, huma.Error422UnprocessableEntity("invalid person", validationDetails(verrs)...)
	}

	t := h.Directory.AddPerson(fields)
	if err := t.Wait(ctx); err != nil {
		return nil, serviceError(err)
	}
	return &PeopleAddOutput{Body: personModel(t.Person)}, nil
}

func (h *People) del(ctx context.Context, input *struct {
	ID string `path:"id" doc:"ID of the person to delete"`
}) (*struct{}, error) {
	if err := h.Directory.DeletePerson(input.ID).Wait(ctx); err != nil {
		return nil, serviceError(err)
	}
	return nil, nil
}

type StatusOutput struct {
	Body struct {
		IsLoading  bool      `json:"isLoading"`
		IsFetching bool      `json:"isFetching"`
		IsError    bool      `json:"isError"`
		Error      string    `json:"error,omitempty"`
		Count      int       `json:"count"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}
}

func (h *People) status(_ context.Context, _ *struct{}) (*StatusOutput, error) {
	st := h.Directory.State()

	out := &StatusOutput{}
	out.Body.IsLoading = st.IsLoading
	out.Body.IsFetching = st.IsFetching
	out.Body.IsError = st.IsError
	if st.Err != nil {
		out.Body.Error = st.Err.Error()
	}
	out.Body.Count = len(st.People)
	out.Body.UpdatedAt = st.UpdatedAt
	return out, nil
}

type StatesOutput struct {
	Body []person.StateInfo
}

func (h *People) states(_ context.Context, _ *struct{}) (*StatesOutput, error) {
	return &StatesOutput{Body: person.States()}, nil
}

func validationDetails(verrs person.ValidationErrors) []error {
	details := make([]error, 0, len(verrs))
	for _, f := range verrs.Fields() {
		details = append(details, &huma.ErrorDetail{Location: "body." + f, Message: verrs[f]})
	}
	return details
}

// serviceError maps directory task errors to HTTP errors.
func serviceError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable("request ended before the directory answered", err)
	case errors.Is(err, directory.ErrClosed):
		return huma.Error503ServiceUnavailable("directory is shutting down", err)
	case errors.Is(err, directory.ErrDuplicateID):
		return huma.Error409Conflict("id already in use", err)
	default:
		return huma.Error500InternalServerError("could not update the directory", err)
	}
}
