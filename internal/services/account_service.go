package services

import (
	"fmt"
	"strings"

	"backend/internal/authz"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// AccountService handles registration, credentials and role directory
// administration. New accounts get the customer role by default.
type AccountService struct {
	Users     repositories.UserRepo
	RequestID string
}

func (s AccountService) Register(username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return models.User{}, domain.ValidationError{Field: "username", Msg: "must not be empty"}
	}
	if email == "" {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "must not be empty"}
	}
	if len(password) < 8 {
		return models.User{}, domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}
	id, err := s.Users.Create(username, email, string(hash))
	if err != nil {
		return models.User{}, err
	}
	if err := s.Users.AssignRole(id, domain.RoleCustomer); err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "accounts", "register", fmt.Sprintf("user_id=%d", id))
	return models.User{ID: id, Username: username, Email: email, Roles: []string{string(domain.RoleCustomer)}}, nil
}

// Login verifies credentials by username or email and returns the account.
// Token signing stays in the HTTP layer.
func (s AccountService) Login(login, password string) (models.User, error) {
	user, hash, err := s.Users.GetCredentials(strings.TrimSpace(login))
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, domain.AuthorizationError{Msg: "invalid credentials"}
		}
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.User{}, domain.AuthorizationError{Msg: "invalid credentials"}
	}
	return user, nil
}

// Principal resolves the full principal (account plus role set) for an
// authenticated user id. The role directory lookup lives here so transport
// middleware stays thin.
func (s AccountService) Principal(userID int64) (domain.Principal, error) {
	user, err := s.Users.GetByID(userID)
	if err != nil {
		return domain.Principal{}, err
	}
	roles, err := s.Users.RolesOf(userID)
	if err != nil {
		return domain.Principal{}, domain.InternalError{Err: err}
	}
	return domain.Principal{ID: user.ID, Username: user.Username, Roles: roles}, nil
}

func (s AccountService) Profile(p domain.Principal) (models.User, error) {
	if !p.Authenticated() {
		return models.User{}, domain.AuthorizationError{}
	}
	user, err := s.Users.GetByID(p.ID)
	if err != nil {
		return models.User{}, err
	}
	roles, err := s.Users.RolesOf(p.ID)
	if err != nil {
		return models.User{}, domain.InternalError{Err: err}
	}
	for _, r := range domain.AllRoles {
		if roles.Has(r) {
			user.Roles = append(user.Roles, string(r))
		}
	}
	return user, nil
}

func (s AccountService) UpdateProfile(p domain.Principal, username, email string) (models.User, error) {
	if !p.Authenticated() {
		return models.User{}, domain.AuthorizationError{}
	}
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return models.User{}, domain.ValidationError{Field: "username", Msg: "must not be empty"}
	}
	if email == "" {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "must not be empty"}
	}
	if err := s.Users.UpdateProfile(p.ID, username, email); err != nil {
		return models.User{}, err
	}
	return s.Users.GetByID(p.ID)
}

func (s AccountService) ChangePassword(p domain.Principal, oldPassword, newPassword string) error {
	if !p.Authenticated() {
		return domain.AuthorizationError{}
	}
	if len(newPassword) < 8 {
		return domain.ValidationError{Field: "newPassword", Msg: "must be at least 8 characters"}
	}
	hash, err := s.Users.GetPasswordHash(p.ID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(oldPassword)); err != nil {
		return domain.ValidationError{Field: "oldPassword", Msg: "wrong password"}
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if err := s.Users.UpdatePassword(p.ID, string(newHash)); err != nil {
		return domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "accounts", "change_password", fmt.Sprintf("user_id=%d", p.ID))
	return nil
}

// ChangeUserRole replaces the target user's role set with the single named
// role. Manager only.
func (s AccountService) ChangeUserRole(p domain.Principal, username, roleName string) error {
	if err := authz.Authorize(p, authz.OpChangeUserRole); err != nil {
		return err
	}
	role, ok := domain.ParseRole(roleName)
	if !ok {
		return domain.ValidationError{Field: "role", Msg: fmt.Sprintf("unknown role %q", roleName)}
	}
	user, err := s.Users.GetByUsername(username)
	if err != nil {
		return err
	}
	if err := s.Users.ReplaceRoles(user.ID, role); err != nil {
		return domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "accounts", "change_role",
		fmt.Sprintf("user_id=%d role=%s", user.ID, role))
	return nil
}
