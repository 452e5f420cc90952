package services

import (
	"database/sql"
	"errors"
	"regexp"
	"time"

	"github.com/devtrail/devtrail-be/internal/apperr"
	"github.com/devtrail/devtrail-be/internal/auth"
	"github.com/devtrail/devtrail-be/internal/models"
	"github.com/google/uuid"
)

// Basic email shape check, matching the original listing service's policy.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// UserServiceProvider defines the interface for account and credential
// management.
type UserServiceProvider interface {
	Register(name, email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	GetUsers() ([]models.User, error)
	CreateUser(name, email, password, role string) (models.User, error)
	UpdateUser(id, name, email, role string) (models.User, error)
	UpdateDetails(id, name, email string) (models.User, error)
	UpdatePassword(id, currentPassword, newPassword string) error
	DeleteUser(id string) error
	ForgotPassword(email string) (string, error)
	ResetPassword(rawToken, newPassword string) (models.User, error)
	IssueEmailConfirmToken(id string) (string, error)
	ConfirmEmail(rawToken string) error
	PurgeExpiredResetTokens() (int64, error)
}

// UserService provides business logic for accounts and their credentials.
type UserService struct {
	db     *sql.DB
	events EventServiceProvider

	// Now is the clock used for token expiry. Overridable in tests.
	Now func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, events EventServiceProvider) *UserService {
	return &UserService{db: db, events: events, Now: time.Now}
}

const userColumns = "id, name, email, role, password_hash, reset_token, reset_expires, confirm_token, email_confirmed, created_at"

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var (
		user         models.User
		resetToken   sql.NullString
		resetExpires sql.NullTime
		confirmToken sql.NullString
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.PasswordHash,
		&resetToken, &resetExpires, &confirmToken, &user.EmailConfirmed, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	user.ResetToken = resetToken.String
	if resetExpires.Valid {
		t := resetExpires.Time
		user.ResetExpires = &t
	}
	user.ConfirmToken = confirmToken.String
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.NotFound("user", id)
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by their email, including the
// password hash.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.NotFound("user", email)
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUsers retrieves all users.
func (s *UserService) GetUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT " + userColumns + " FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Register creates a new account with the default role. Roles are only ever
// assigned administratively.
func (s *UserService) Register(name, email, password string) (models.User, error) {
	user, err := s.CreateUser(name, email, password, models.RoleUser)
	if err != nil {
		return models.User{}, err
	}
	if s.events != nil {
		s.events.CreateEvent("auth.register", "info", "Account registered: "+user.Email, &user.ID)
	}
	return user, nil
}

// CreateUser creates a new user with an explicit role, hashing their
// password exactly once before persistence.
func (s *UserService) CreateUser(name, email, password, role string) (models.User, error) {
	if name == "" {
		return models.User{}, apperr.Validationf("please add a name")
	}
	if !emailPattern.MatchString(email) {
		return models.User{}, apperr.Validationf("please add a valid email")
	}
	if role != models.RoleUser && role != models.RolePublisher && role != models.RoleAdmin {
		return models.User{}, apperr.Validationf("invalid role %q", role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.Now().UTC(),
	}

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&exists); err != nil {
		return models.User{}, err
	}
	if exists > 0 {
		return models.User{}, apperr.Validationf("email %s is already registered", email)
	}

	_, err = s.db.Exec("INSERT INTO users (id, name, email, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.Role, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, apperr.Validationf("please provide an email and password")
	}

	user, err := s.GetUserByEmail(email)
	if err != nil {
		// Same failure as a bad password; do not reveal which.
		return models.User{}, apperr.NotAuthenticated()
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return models.User{}, apperr.NotAuthenticated()
	}

	if s.events != nil {
		s.events.CreateEvent("auth.login", "info", "Account logged in: "+user.Email, &user.ID)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateDetails updates an account's own name and email.
func (s *UserService) UpdateDetails(id, name, email string) (models.User, error) {
	if name == "" {
		return models.User{}, apperr.Validationf("please add a name")
	}
	if !emailPattern.MatchString(email) {
		return models.User{}, apperr.Validationf("please add a valid email")
	}

	res, err := s.db.Exec("UPDATE users SET name = ?, email = ? WHERE id = ?", name, email, id)
	if err != nil {
		return models.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.User{}, apperr.NotFound("user", id)
	}
	return s.GetUserByID(id)
}

// UpdateUser is the administrative update: name, email and role.
func (s *UserService) UpdateUser(id, name, email, role string) (models.User, error) {
	if role != models.RoleUser && role != models.RolePublisher && role != models.RoleAdmin {
		return models.User{}, apperr.Validationf("invalid role %q", role)
	}
	if !emailPattern.MatchString(email) {
		return models.User{}, apperr.Validationf("please add a valid email")
	}

	res, err := s.db.Exec("UPDATE users SET name = ?, email = ?, role = ? WHERE id = ?", name, email, role, id)
	if err != nil {
		return models.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.User{}, apperr.NotFound("user", id)
	}
	return s.GetUserByID(id)
}

// UpdatePassword verifies the current password, then hashes and stores the
// new one. The hash is recomputed only here, where the password actually
// changes.
func (s *UserService) UpdatePassword(id, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return apperr.NotAuthenticated()
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
	return err
}

// DeleteUser removes a user from the database.
func (s *UserService) DeleteUser(id string) error {
	res, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

// ForgotPassword issues a password-reset token for the account with the
// given email. Only the token's digest is stored; the raw token is returned
// for out-of-band delivery. A newer token replaces any outstanding one.
func (s *UserService) ForgotPassword(email string) (string, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return "", err
	}

	raw, hashed, err := auth.GenerateToken()
	if err != nil {
		return "", err
	}
	expires := s.Now().UTC().Add(auth.ResetTokenTTL)

	_, err = s.db.Exec("UPDATE users SET reset_token = ?, reset_expires = ? WHERE id = ?", hashed, expires, user.ID)
	if err != nil {
		return "", err
	}

	if s.events != nil {
		s.events.CreateEvent("auth.forgot_password", "info", "Password reset requested: "+user.Email, &user.ID)
	}
	return raw, nil
}

// ResetPassword consumes a reset token and sets a new password. The token is
// invalidated in the same statement that commits the new password, so it can
// never be replayed. An expired token is rejected and cleared even when its
// digest matches.
func (s *UserService) ResetPassword(rawToken, newPassword string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE reset_token = ?", auth.HashToken(rawToken)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.Validationf("invalid token")
		}
		return models.User{}, err
	}

	// Expiry gates the token before it is treated as a match at all.
	if user.ResetExpires == nil || s.Now().After(*user.ResetExpires) {
		s.db.Exec("UPDATE users SET reset_token = NULL, reset_expires = NULL WHERE id = ?", user.ID)
		return models.User{}, apperr.Validationf("invalid token")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return models.User{}, err
	}

	_, err = s.db.Exec("UPDATE users SET password_hash = ?, reset_token = NULL, reset_expires = NULL WHERE id = ?", hash, user.ID)
	if err != nil {
		return models.User{}, err
	}

	if s.events != nil {
		s.events.CreateEvent("auth.reset_password", "info", "Password reset completed: "+user.Email, &user.ID)
	}
	user.PasswordHash = ""
	return user, nil
}

// IssueEmailConfirmToken issues a confirmation token for the account. As
// with reset tokens, only the digest is stored.
func (s *UserService) IssueEmailConfirmToken(id string) (string, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return "", err
	}
	if user.EmailConfirmed {
		return "", apperr.Validationf("email is already confirmed")
	}

	raw, hashed, err := auth.GenerateToken()
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec("UPDATE users SET confirm_token = ? WHERE id = ?", hashed, user.ID)
	if err != nil {
		return "", err
	}
	return raw, nil
}

// ConfirmEmail consumes a confirmation token, marking the account's email
// confirmed and clearing the token in one step.
func (s *UserService) ConfirmEmail(rawToken string) error {
	res, err := s.db.Exec("UPDATE users SET email_confirmed = TRUE, confirm_token = NULL WHERE confirm_token = ?", auth.HashToken(rawToken))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Validationf("invalid token")
	}
	return nil
}

// PurgeExpiredResetTokens clears reset tokens whose window has elapsed.
// Called periodically by the maintenance sweeper.
func (s *UserService) PurgeExpiredResetTokens() (int64, error) {
	res, err := s.db.Exec("UPDATE users SET reset_token = NULL, reset_expires = NULL WHERE reset_expires IS NOT NULL AND reset_expires < ?", s.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
