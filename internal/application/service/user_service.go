package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
	"projectdesk/pkg/utils"
)

// CreateUserInput carries the fields of an account creation request
type CreateUserInput struct {
	Name        string
	Email       string
	Role        entity.Role
	CompanyName string
	Department  string
	Address     string
	Phone       string
}

// UserService manages accounts. Only admins create users; authentication
// itself happens at the HTTP boundary against the stored account.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput, actor *entity.User) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context, actor *entity.User) ([]*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role, actor *entity.User) ([]*entity.User, error)
}

type userServiceImpl struct {
	userRepo port.UserRepository
	logger   Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo port.UserRepository, logger Logger) UserService {
	return &userServiceImpl{userRepo: userRepo, logger: logger}
}

// Create adds an account with a unique email
func (s *userServiceImpl) Create(ctx context.Context, input CreateUserInput, actor *entity.User) (*entity.User, error) {
	if actor.Role != entity.RoleAdmin {
		return nil, apperror.Forbidden("only admins can create users")
	}
	if !input.Role.IsValid() {
		return nil, apperror.BadRequest("invalid role %q", input.Role)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := utils.ValidateEmail(email); err != nil {
		return nil, apperror.BadRequest("invalid email address")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, apperror.BadRequest("email already in use")
	}

	now := time.Now()
	user := &entity.User{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Email:       email,
		Role:        input.Role,
		Status:      entity.UserActive,
		CompanyName: input.CompanyName,
		Department:  input.Department,
		Address:     input.Address,
		Phone:       input.Phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// GetByID returns a user, or a not-found error
func (s *userServiceImpl) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	return user, nil
}

// List returns every account, admins only
func (s *userServiceImpl) List(ctx context.Context, actor *entity.User) ([]*entity.User, error) {
	if actor.Role != entity.RoleAdmin {
		return nil, apperror.Forbidden("only admins can list users")
	}
	return s.userRepo.List(ctx)
}

// ListByRole returns the accounts with a role, admins only
func (s *userServiceImpl) ListByRole(ctx context.Context, role entity.Role, actor *entity.User) ([]*entity.User, error) {
	if actor.Role != entity.RoleAdmin {
		return nil, apperror.Forbidden("only admins can list users")
	}
	if !role.IsValid() {
		return nil, apperror.BadRequest("invalid role %q", role)
	}
	return s.userRepo.ListByRole(ctx, role)
}
