package resources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrInvalid marks a value rejected before it is sent.
var ErrInvalid = errors.New("invalid resource")

// Collection paths. List calls use these verbatim so static mode can map them.
const (
	AccountsPath   = "/accounts/"
	CategoriesPath = "/categories/"
	RequestsPath   = "/requests/"
	searchPath     = "/requests/search"
)

// Fetcher is the subset of *fetcher.Fetcher the client uses.
type Fetcher interface {
	GetInto(ctx context.Context, path string, out any) error
	JSONInto(ctx context.Context, path, method string, body, out any) error
}

// Client exposes typed CRUD calls.
type Client struct {
	f Fetcher
}

// New wraps f.
func New(f Fetcher) *Client {
	return &Client{f: f}
}

func itemPath(collection string, id int) string {
	return collection + strconv.Itoa(id)
}

// ListAccounts returns every account.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var out []Account
	if err := c.f.GetInto(ctx, AccountsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAccount returns one account.
func (c *Client) GetAccount(ctx context.Context, id int) (Account, error) {
	var out Account
	err := c.f.GetInto(ctx, itemPath(AccountsPath, id), &out)
	return out, err
}

// CreateAccount validates and posts a, returning the stored account.
func (c *Client) CreateAccount(ctx context.Context, a Account) (Account, error) {
	if err := a.Validate(); err != nil {
		return Account{}, err
	}
	out := a
	err := c.f.JSONInto(ctx, AccountsPath, http.MethodPost, a, &out)
	return out, err
}

// UpdateAccount validates and puts a under id.
func (c *Client) UpdateAccount(ctx context.Context, id int, a Account) (Account, error) {
	if err := a.Validate(); err != nil {
		return Account{}, err
	}
	out := a
	err := c.f.JSONInto(ctx, itemPath(AccountsPath, id), http.MethodPut, a, &out)
	return out, err
}

// DeleteAccount deletes one account.
func (c *Client) DeleteAccount(ctx context.Context, id int) error {
	return c.f.JSONInto(ctx, itemPath(AccountsPath, id), http.MethodDelete, nil, nil)
}

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.f.GetInto(ctx, CategoriesPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCategory returns one category.
func (c *Client) GetCategory(ctx context.Context, id int) (Category, error) {
	var out Category
	err := c.f.GetInto(ctx, itemPath(CategoriesPath, id), &out)
	return out, err
}

// CreateCategory validates and posts cat.
func (c *Client) CreateCategory(ctx context.Context, cat Category) (Category, error) {
	if err := cat.Validate(); err != nil {
		return Category{}, err
	}
	out := cat
	err := c.f.JSONInto(ctx, CategoriesPath, http.MethodPost, cat, &out)
	return out, err
}

// UpdateCategory validates and puts cat under id.
func (c *Client) UpdateCategory(ctx context.Context, id int, cat Category) (Category, error) {
	if err := cat.Validate(); err != nil {
		return Category{}, err
	}
	out := cat
	err := c.f.JSONInto(ctx, itemPath(CategoriesPath, id), http.MethodPut, cat, &out)
	return out, err
}

// DeleteCategory deletes one category.
func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	return c.f.JSONInto(ctx, itemPath(CategoriesPath, id), http.MethodDelete, nil, nil)
}

// ListRequests returns every request.
func (c *Client) ListRequests(ctx context.Context) ([]Request, error) {
	var out []Request
	if err := c.f.GetInto(ctx, RequestsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRequest returns one request.
func (c *Client) GetRequest(ctx context.Context, id int) (Request, error) {
	var out Request
	err := c.f.GetInto(ctx, itemPath(RequestsPath, id), &out)
	return out, err
}

// CreateRequest validates and posts r.
func (c *Client) CreateRequest(ctx context.Context, r Request) (Request, error) {
	if err := r.Validate(); err != nil {
		return Request{}, err
	}
	out := r
	err := c.f.JSONInto(ctx, RequestsPath, http.MethodPost, r, &out)
	return out, err
}

// UpdateRequest validates p and patches the request stored under id,
// returning the updated request.
func (c *Client) UpdateRequest(ctx context.Context, id int, p RequestPatch) (Request, error) {
	if err := p.Validate(); err != nil {
		return Request{}, err
	}
	var out Request
	err := c.f.JSONInto(ctx, itemPath(RequestsPath, id), http.MethodPatch, p, &out)
	return out, err
}

// DeleteRequest deletes one request.
func (c *Client) DeleteRequest(ctx context.Context, id int) error {
	return c.f.JSONInto(ctx, itemPath(RequestsPath, id), http.MethodDelete, nil, nil)
}

// SearchFilter narrows SearchRequests. Zero fields are omitted.
type SearchFilter struct {
	CategoryID int
	RegionID   int
	DistrictID int
	CreatedAt  time.Time // only the date part is sent
}

// Query encodes the non-zero fields.
func (s SearchFilter) Query() string {
	q := url.Values{}
	if s.CategoryID != 0 {
		q.Set("category_id", strconv.Itoa(s.CategoryID))
	}
	if s.RegionID != 0 {
		q.Set("region_id", strconv.Itoa(s.RegionID))
	}
	if s.DistrictID != 0 {
		q.Set("district_id", strconv.Itoa(s.DistrictID))
	}
	if !s.CreatedAt.IsZero() {
		q.Set("created_at", s.CreatedAt.Format(time.DateOnly))
	}
	return q.Encode()
}

// SearchRequests filters requests on the backend. It has no static file,
// so it fails with fetcher.ErrUnknownPath in static mode.
func (c *Client) SearchRequests(ctx context.Context, filter SearchFilter) ([]Request, error) {
	p := searchPath
	if q := filter.Query(); q != "" {
		p = fmt.Sprintf("%s?%s", p, q)
	}
	var out []Request
	if err := c.f.GetInto(ctx, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}
