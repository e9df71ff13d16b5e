package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const DefaultAccessTTL = 15 * time.Minute

type UserService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	AccessTTL time.Duration
	Effects
}

type LoginResult struct {
	User        *models.User
	AccessToken string
	ExpiresAt   time.Time
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	return u, storeErr(err, withID("User", id))
}

func (s *UserService) GetUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	total, items, err := s.Repo.GetUsers(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list users: %w", err)
	}
	return total, items, nil
}

func (s *UserService) CreateUser(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	u, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	taken, err := s.Repo.EmailTaken(ctx, u.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, domain.Conflict("User with email %s already exists", u.Email)
	}
	if u.PasswordHash, err = hash.HashPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, storeErr(err, "User with email "+u.Email)
	}
	s.publish(ctx, TopicUsers, "user_created", u.ID, map[string]any{"user_id": u.ID, "email": u.Email, "role": u.Role})
	return u, nil
}

func (s *UserService) PatchUser(ctx context.Context, id uint, req transport.PatchUserRequest) (*models.User, error) {
	u, err := s.Repo.PatchUser(ctx, id, func(tx *gorm.DB, u *models.User) error {
		if err := req.Apply(u); err != nil {
			return err
		}
		if req.Email != nil {
			taken, err := repo.EmailTakenIn(ctx, tx, u.Email, u.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.Conflict("User with email %s already exists", u.Email)
			}
		}
		if req.Password != nil {
			if strings.TrimSpace(*req.Password) == "" {
				return domain.Invalid("password is required")
			}
			h, err := hash.HashPassword(*req.Password)
			if err != nil {
				return err
			}
			u.PasswordHash = h
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, withID("User", id))
	}
	s.dropCart(ctx, id)
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return storeErr(err, withID("User", id))
	}
	s.dropCart(ctx, id)
	return nil
}

// Login checks the credentials and issues an access token. Unknown email and
// wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.Invalid("email and password are required")
	}
	u, err := s.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !hash.CheckPassword(u.PasswordHash, req.Password) {
		return nil, domain.Unauthorized("Invalid credentials")
	}

	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	exp := time.Now().Add(ttl)
	token, err := tokens.NewAccessToken(strconv.FormatUint(uint64(u.ID), 10), string(u.Role), exp, s.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{User: u, AccessToken: token, ExpiresAt: exp}, nil
}

// Me resolves the subject of a validated access token.
func (s *UserService) Me(ctx context.Context, subject string) (*models.User, error) {
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || id == 0 {
		return nil, domain.Unauthorized("invalid token subject")
	}
	return s.GetUser(ctx, uint(id))
}

func (s *UserService) GetAddress(ctx context.Context, id uint) (*models.Address, error) {
	a, err := s.Repo.GetAddress(ctx, id)
	return a, storeErr(err, withID("Address", id))
}

func (s *UserService) GetAddresses(ctx context.Context, offset, limit int) (int64, []models.Address, error) {
	total, items, err := s.Repo.GetAddresses(ctx, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("list addresses: %w", err)
	}
	return total, items, nil
}

func (s *UserService) CreateAddress(ctx context.Context, req transport.CreateAddressRequest) (*models.Address, error) {
	a, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateAddress(ctx, a); err != nil {
		return nil, storeErr(err, "Address")
	}
	return a, nil
}

func (s *UserService) PatchAddress(ctx context.Context, id uint, req transport.PatchAddressRequest) (*models.Address, error) {
	a, err := s.Repo.PatchAddress(ctx, id, func(_ *gorm.DB, a *models.Address) error {
		return req.Apply(a)
	})
	return a, storeErr(err, withID("Address", id))
}

func (s *UserService) DeleteAddress(ctx context.Context, id uint) error {
	return storeErr(s.Repo.DeleteAddress(ctx, id), withID("Address", id))
}
