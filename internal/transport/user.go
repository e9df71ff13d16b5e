package transport

import (
	"net/mail"
	"strings"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     *int64 `json:"phone"`
}

// ToModel leaves PasswordHash empty; hashing is the caller's job. New accounts
// are always customers; a role only changes through PatchUserRequest.
func (r CreateUserRequest) ToModel() (*models.User, error) {
	for _, f := range []struct{ name, v string }{
		{"first_name", r.FirstName}, {"last_name", r.LastName}, {"email", r.Email}, {"password", r.Password},
	} {
		if err := required(f.name, f.v); err != nil {
			return nil, err
		}
	}
	u := &models.User{Role: models.RoleCustomer}
	patch := PatchUserRequest{FirstName: &r.FirstName, LastName: &r.LastName, Email: &r.Email, Phone: r.Phone}
	if err := patch.Apply(u); err != nil {
		return nil, err
	}
	return u, nil
}

type PatchUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Phone     *int64  `json:"phone"`
	Role      *string `json:"role"`
}

// Apply copies profile fields. Password is handled by the caller.
func (r PatchUserRequest) Apply(u *models.User) error {
	if r.FirstName != nil {
		u.FirstName = strings.TrimSpace(*r.FirstName)
	}
	if r.LastName != nil {
		u.LastName = strings.TrimSpace(*r.LastName)
	}
	if r.Email != nil {
		email, err := normalizeEmail(*r.Email)
		if err != nil {
			return err
		}
		u.Email = email
	}
	if r.Phone != nil {
		u.Phone = r.Phone
	}
	if r.Role != nil {
		role := models.Role(*r.Role)
		if !role.Valid() {
			return domain.Invalid("role must be customer or admin")
		}
		u.Role = role
	}
	return nil
}

func normalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", domain.Invalid("email is not valid")
	}
	return s, nil
}

type CreateAddressRequest struct {
	UserID       uint   `json:"user_id"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	Pincode      string `json:"pincode"`
	IsDefault    int    `json:"is_default"`
}

func (r CreateAddressRequest) ToModel() (*models.Address, error) {
	if r.UserID == 0 {
		return nil, domain.Invalid("user_id is required")
	}
	for _, f := range []struct{ name, v string }{
		{"full_name", r.FullName}, {"phone", r.Phone}, {"email", r.Email},
		{"address_line1", r.AddressLine1}, {"city", r.City}, {"pincode", r.Pincode},
	} {
		if err := required(f.name, f.v); err != nil {
			return nil, err
		}
	}
	if err := flag("is_default", r.IsDefault); err != nil {
		return nil, err
	}
	return &models.Address{
		UserID:       r.UserID,
		FullName:     r.FullName,
		Phone:        r.Phone,
		Email:        r.Email,
		AddressLine1: r.AddressLine1,
		City:         r.City,
		Pincode:      r.Pincode,
		IsDefault:    r.IsDefault,
	}, nil
}

type PatchAddressRequest struct {
	UserID       *uint   `json:"user_id"`
	FullName     *string `json:"full_name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	AddressLine1 *string `json:"address_line1"`
	City         *string `json:"city"`
	Pincode      *string `json:"pincode"`
	IsDefault    *int    `json:"is_default"`
}

func (r PatchAddressRequest) Apply(a *models.Address) error {
	if r.UserID != nil {
		a.UserID = *r.UserID
	}
	for _, f := range []struct {
		name string
		src  *string
		dst  *string
	}{
		{"full_name", r.FullName, &a.FullName},
		{"phone", r.Phone, &a.Phone},
		{"email", r.Email, &a.Email},
		{"address_line1", r.AddressLine1, &a.AddressLine1},
		{"city", r.City, &a.City},
		{"pincode", r.Pincode, &a.Pincode},
	} {
		if f.src == nil {
			continue
		}
		if err := required(f.name, *f.src); err != nil {
			return err
		}
		*f.dst = *f.src
	}
	if r.IsDefault != nil {
		if err := flag("is_default", *r.IsDefault); err != nil {
			return err
		}
		a.IsDefault = *r.IsDefault
	}
	return nil
}
