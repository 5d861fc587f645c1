package remote

import (
	"context"
	"net/http"
	"net/url"

	"rhystmorgan/contactterm/internal/models"
)

const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathContacts = "/contacts"
)

// Credentials is the body of login and registration requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// API is the typed view of the contacts service. Every method issues exactly
// one request through the underlying Requester.
type API struct {
	requester Requester
}

func NewAPI(requester Requester) *API {
	return &API{requester: requester}
}

// Login returns the session token, or "" when the response carries none.
func (a *API) Login(ctx context.Context, creds Credentials) (string, error) {
	return a.authenticate(ctx, pathLogin, creds)
}

// Register returns the session token, or "" when the service created the
// account without logging it in.
func (a *API) Register(ctx context.Context, creds Credentials) (string, error) {
	return a.authenticate(ctx, pathRegister, creds)
}

func (a *API) authenticate(ctx context.Context, path string, creds Credentials) (string, error) {
	body, err := a.requester.Request(ctx, path, RequestOptions{
		Method:       http.MethodPost,
		Body:         creds,
		RequiresAuth: false,
	})
	if err != nil {
		return "", err
	}
	return NormalizeToken(body), nil
}

func (a *API) ListContacts(ctx context.Context) ([]models.Contact, error) {
	body, err := a.requester.Request(ctx, pathContacts, RequestOptions{
		Method:       http.MethodGet,
		RequiresAuth: true,
	})
	if err != nil {
		return nil, err
	}
	return NormalizeContactList(body), nil
}

// CreateContact returns whatever part of the created record the service
// echoed back. found is false when the response held no record.
func (a *API) CreateContact(ctx context.Context, fields models.ContactFields) (patch models.ContactPatch, found bool, err error) {
	body, err := a.requester.Request(ctx, pathContacts, RequestOptions{
		Method:       http.MethodPost,
		Body:         fields,
		RequiresAuth: true,
	})
	if err != nil {
		return models.ContactPatch{}, false, err
	}
	patch, found = NormalizeRecordResponse(body)
	return patch, found, nil
}

// UpdateContact sends only the fields present in changes and returns the
// fields the service echoed back for the record.
func (a *API) UpdateContact(ctx context.Context, id string, changes models.ContactPatch) (patch models.ContactPatch, found bool, err error) {
	body, err := a.requester.Request(ctx, contactPath(id), RequestOptions{
		Method:       http.MethodPut,
		Body:         changes,
		RequiresAuth: true,
	})
	if err != nil {
		return models.ContactPatch{}, false, err
	}
	patch, found = NormalizeRecordResponse(body)
	return patch, found, nil
}

func (a *API) DeleteContact(ctx context.Context, id string) error {
	_, err := a.requester.Request(ctx, contactPath(id), RequestOptions{
		Method:       http.MethodDelete,
		RequiresAuth: true,
	})
	return err
}

func contactPath(id string) string {
	return pathContacts + "/" + url.PathEscape(id)
}
