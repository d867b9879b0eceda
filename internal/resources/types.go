// Package resources is a typed client for the SureThing accounts,
// categories and requests endpoints, built on the fetcher.
package resources

import (
	"fmt"
	"strings"
	"time"
)

// AccountRole is the role of an account.
type AccountRole string

const (
	RoleUserAdmin       AccountRole = "UserAdmin"
	RoleCSR             AccountRole = "CSR"
	RolePIN             AccountRole = "PIN"
	RolePlatformManager AccountRole = "PlatformManager"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
	AccountBlocked  AccountStatus = "blocked"
)

// RequestStatus is the lifecycle state of a help request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestCompleted RequestStatus = "completed"
	RequestExpired   RequestStatus = "expired"
)

// Account is a platform user. CSR accounts belong to a company.
type Account struct {
	ID        *int          `json:"id,omitempty"`
	Email     string        `json:"email"`
	Password  string        `json:"password,omitempty"`
	Name      *string       `json:"name,omitempty"`
	Phone     *string       `json:"phone,omitempty"`
	Role      AccountRole   `json:"role"`
	Status    AccountStatus `json:"status,omitempty"`
	CompanyID *int          `json:"company_id,omitempty"`
}

// Category groups requests.
type Category struct {
	ID          *int    `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Request is a help request raised by a PIN and handled by a CSR.
type Request struct {
	ID          *int          `json:"id,omitempty"`
	PinID       int           `json:"pin_id"`
	CsrID       *int          `json:"csr_id,omitempty"`
	CategoryID  int           `json:"category_id"`
	DistrictID  int           `json:"district_id"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Status      RequestStatus `json:"status"`
	StartAt     *time.Time    `json:"start_at,omitempty"`
	EndAt       *time.Time    `json:"end_at,omitempty"`
	CreatedAt   *time.Time    `json:"created_at,omitempty"`
	Volunteers  []int         `json:"volunteers,omitempty"`
}

// Validate mirrors the backend's account rules.
func (a Account) Validate() error {
	if !strings.Contains(a.Email, "@") {
		return fmt.Errorf("%w: email %q is not an address", ErrInvalid, a.Email)
	}
	switch a.Role {
	case RoleUserAdmin, RoleCSR, RolePIN, RolePlatformManager:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalid, a.Role)
	}
	switch a.Status {
	case "", AccountActive, AccountInactive, AccountBlocked:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, a.Status)
	}
	if a.Role == RoleCSR && a.CompanyID == nil {
		return fmt.Errorf("%w: CSR accounts must have a company_id", ErrInvalid)
	}
	if a.Role != RoleCSR && a.CompanyID != nil {
		return fmt.Errorf("%w: only CSR accounts can have company_id", ErrInvalid)
	}
	return nil
}

// Validate requires a non-blank name.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name must not be empty", ErrInvalid)
	}
	return nil
}

// Validate mirrors the backend's request rules: a non-blank title, end
// not before start, and csr/volunteers consistent with the status.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: request title must not be empty", ErrInvalid)
	}
	if r.StartAt != nil && r.EndAt != nil && r.EndAt.Before(*r.StartAt) {
		return fmt.Errorf("%w: end_at cannot be earlier than start_at", ErrInvalid)
	}
	switch r.Status {
	case RequestPending, RequestExpired:
		if r.CsrID != nil {
			return fmt.Errorf("%w: csr_id must be empty for %s requests", ErrInvalid, r.Status)
		}
		if len(r.Volunteers) != 0 {
			return fmt.Errorf("%w: volunteers must be empty for %s requests", ErrInvalid, r.Status)
		}
	case RequestAccepted, RequestCompleted:
		if r.CsrID == nil {
			return fmt.Errorf("%w: csr_id is required for %s requests", ErrInvalid, r.Status)
		}
		if len(r.Volunteers) == 0 {
			return fmt.Errorf("%w: at least one volunteer is required for %s requests", ErrInvalid, r.Status)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, r.Status)
	}
	return nil
}

// RequestPatch is a partial request update. Nil fields are left unchanged.
type RequestPatch struct {
	CsrID       *int           `json:"csr_id,omitempty"`
	CategoryID  *int           `json:"category_id,omitempty"`
	DistrictID  *int           `json:"district_id,omitempty"`
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *RequestStatus `json:"status,omitempty"`
	StartAt     *time.Time     `json:"start_at,omitempty"`
	EndAt       *time.Time     `json:"end_at,omitempty"`
	Volunteers  *[]int         `json:"volunteers,omitempty"`
}

// Validate checks only the fields that are set. Rules that need the stored
// request, such as csr_id being required once accepted, are left to the
// backend.
func (p RequestPatch) Validate() error {
	if p == (RequestPatch{}) {
		return fmt.Errorf("%w: request patch sets no fields", ErrInvalid)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: request title must not be empty", ErrInvalid)
	}
	if p.StartAt != nil && p.EndAt != nil && p.EndAt.Before(*p.StartAt) {
		return fmt.Errorf("%w: end_at cannot be earlier than start_at", ErrInvalid)
	}
	if p.Status == nil {
		return nil
	}
	switch *p.Status {
	case RequestPending, RequestExpired:
		if p.CsrID != nil {
			return fmt.Errorf("%w: csr_id must be empty for %s requests", ErrInvalid, *p.Status)
		}
		if p.Volunteers != nil && len(*p.Volunteers) != 0 {
			return fmt.Errorf("%w: volunteers must be empty for %s requests", ErrInvalid, *p.Status)
		}
	case RequestAccepted, RequestCompleted:
		if p.Volunteers != nil && len(*p.Volunteers) == 0 {
			return fmt.Errorf("%w: at least one volunteer is required for %s requests", ErrInvalid, *p.Status)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, *p.Status)
	}
	return nil
}
