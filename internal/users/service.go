package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riceshop/ricestore-backend/pkg/config"
	"github.com/riceshop/ricestore-backend/pkg/db"
	"github.com/riceshop/ricestore-backend/pkg/enums"
	pkgerrors "github.com/riceshop/ricestore-backend/pkg/errors"
	"github.com/riceshop/ricestore-backend/pkg/pagination"
	"github.com/riceshop/ricestore-backend/pkg/security"
)

// Service exposes user profile and administration operations.
type Service interface {
	Get(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, params pagination.Params, keyword string) (*pagination.Page[UserDTO], error)
	Update(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (*UserDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo        *Repository
	passwordCfg config.PasswordConfig
}

// NewService constructs a users service instance.
func NewService(repo *Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

// Get returns the user's profile. Non-admin callers may only read themselves.
func (s *service) Get(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, id uuid.UUID) (*UserDTO, error) {
	if err := ensureOwnerOrAdmin(callerID, callerRole, id); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	return FromModel(user), nil
}

// List returns one page of users for the admin directory.
func (s *service) List(ctx context.Context, params pagination.Params, keyword string) (*pagination.Page[UserDTO], error) {
	rows, total, err := s.repo.List(ctx, params, keyword)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list users")
	}

	items := make([]UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	page := pagination.NewPage(items, total, params)
	return &page, nil
}

// Update applies a partial profile change. Username/email changes re-check
// uniqueness against every other user; password changes are re-hashed.
func (s *service) Update(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	if err := ensureOwnerOrAdmin(callerID, callerRole, id); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "username cannot be empty")
		}
		if username != user.Username {
			taken, err := s.repo.ExistsByUsername(ctx, username, &user.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check username")
			}
			if taken {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is already taken")
			}
			user.Username = username
		}
	}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		if email != user.Email {
			taken, err := s.repo.ExistsByEmail(ctx, email, &user.ID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check email")
			}
			if taken {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is already in use")
			}
			user.Email = email
		}
	}

	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}

	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hashing password")
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Save(ctx, user); err != nil {
		// the unique indexes catch writers that slip past the checks above
		switch {
		case db.IsUniqueViolation(err, "username"):
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is already taken")
		case db.IsUniqueViolation(err, "email"):
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user")
	}
	return FromModel(user), nil
}

// UpdateRole assigns a new role. Route-level guards restrict this to admins.
func (s *service) UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (*UserDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}

	if err := s.repo.UpdateRole(ctx, id, role.String()); err != nil {
		return nil, userLookupError(err)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	return FromModel(user), nil
}

// Delete removes the user permanently; carts and orders cascade in the schema.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return userLookupError(err)
	}
	return nil
}

func ensureOwnerOrAdmin(callerID uuid.UUID, callerRole enums.UserRole, ownerID uuid.UUID) error {
	if callerID == ownerID || callerRole == enums.UserRoleAdmin {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to access this user")
}

func userLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
}
