package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"elite-app/internal/auth"
	"elite-app/internal/domain"
	"elite-app/internal/repository"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	Role  string
	User  *domain.User
}

// UserService describes account lifecycle operations.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Me(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileInput, profileImage *string) (*domain.User, error)
	AdminUpdate(ctx context.Context, callerID, targetID string, in AdminUpdateInput) (*domain.User, error)
	Delete(ctx context.Context, callerID, targetID string) (*domain.User, error)
}

type userService struct {
	users      repository.UserRepository
	activities ActivityService
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenIssuer
	revoker    auth.Revoker
}

func NewUserService(
	users repository.UserRepository,
	activities ActivityService,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	revoker auth.Revoker,
) UserService {
	if revoker == nil {
		revoker = auth.NopRevoker{}
	}
	return &userService{
		users:      users,
		activities: activities,
		hasher:     hasher,
		tokens:     tokens,
		revoker:    revoker,
	}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	email := in.Email

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Role:         strings.TrimSpace(in.Role),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	if err := s.activities.Record(ctx, user.ID, fmt.Sprintf("User %s registered.", user.Name)); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.activities.Record(ctx, user.ID, fmt.Sprintf("User %s logged in.", user.Name)); err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Role: user.Role, User: sanitizeUser(user)}, nil
}

func (s *userService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.User.ID == "" {
		return auth.ErrTokenInvalid
	}
	userID := claims.User.ID

	if claims.ExpiresAt != nil {
		if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return err
		}
	}

	// the account may already be gone; the entry then names the id
	name := userID
	user, err := s.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		name = user.Name
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	return s.activities.Record(ctx, userID, fmt.Sprintf("User %s logged out.", name))
}

func (s *userService) Me(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, len(users))
	for i := range users {
		out[i] = *sanitizeUser(&users[i])
	}
	return out, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in ProfileInput, profileImage *string) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	update := domain.UserUpdate{
		Contact:       in.Contact,
		Bio:           in.Bio,
		Mail:          in.Mail,
		Qualification: in.Qualification,
		Location:      in.Location,
		ProfileImage:  profileImage,
	}
	if update.Empty() {
		return s.Me(ctx, userID)
	}

	user, err := s.users.Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.activities.Record(ctx, user.ID, fmt.Sprintf("User %s updated their profile.", user.Name)); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) AdminUpdate(ctx context.Context, callerID, targetID string, in AdminUpdateInput) (*domain.User, error) {
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return nil, err
	}
	target, err := s.getUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(in.CurrentPassword, target.PasswordHash) {
		return nil, ErrIncorrectPassword
	}

	update := domain.UserUpdate{
		Name:          trimmed(in.Name),
		Email:         in.Email,
		Role:          trimmed(in.Role),
		Contact:       in.Contact,
		Bio:           in.Bio,
		Mail:          in.Mail,
		Qualification: in.Qualification,
		Location:      in.Location,
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}
	if update.Empty() {
		return sanitizeUser(target), nil
	}

	updated, err := s.users.Update(ctx, target.ID, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	if err := s.activities.Record(ctx, updated.ID, fmt.Sprintf("User %s updated their profile.", updated.Name)); err != nil {
		return nil, err
	}
	return sanitizeUser(updated), nil
}

func (s *userService) Delete(ctx context.Context, callerID, targetID string) (*domain.User, error) {
	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return nil, err
	}

	user, err := s.users.Delete(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.activities.Record(ctx, user.ID, fmt.Sprintf("User %s was deleted.", user.Name)); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// authorize allows callers to act on their own account, and admins on any.
func (s *userService) authorize(ctx context.Context, callerID, targetID string) error {
	if callerID != "" && callerID == targetID {
		return nil
	}
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	if caller.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *userService) getUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
