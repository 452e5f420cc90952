package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/devtrail/devtrail-be/internal/apperr"
	"github.com/devtrail/devtrail-be/internal/database"
	"github.com/devtrail/devtrail-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)

	user, err := svc.Register("John Doe", "john@example.com", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash)
	assert.NotEmpty(t, user.ID)

	got, err := svc.Authenticate("john@example.com", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	_, err = svc.Authenticate("john@example.com", "wrongpassword")
	var na *apperr.NotAuthenticatedError
	assert.ErrorAs(t, err, &na)

	_, err = svc.Authenticate("nobody@example.com", "sup3rsecret")
	assert.ErrorAs(t, err, &na)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)

	var ve *apperr.ValidationError

	_, err := svc.Register("", "john@example.com", "sup3rsecret")
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Register("John", "not-an-email", "sup3rsecret")
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Register("John", "john@example.com", "short")
	assert.ErrorAs(t, err, &ve)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)

	_, err := svc.Register("John", "john@example.com", "sup3rsecret")
	require.NoError(t, err)

	_, err = svc.Register("Jane", "john@example.com", "an0thersecret")
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdatePassword(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)

	user, err := svc.Register("John", "john@example.com", "oldpassword")
	require.NoError(t, err)

	var na *apperr.NotAuthenticatedError
	err = svc.UpdatePassword(user.ID, "wrongpassword", "newpassword")
	assert.ErrorAs(t, err, &na)

	require.NoError(t, svc.UpdatePassword(user.ID, "oldpassword", "newpassword"))

	_, err = svc.Authenticate("john@example.com", "oldpassword")
	assert.Error(t, err)
	_, err = svc.Authenticate("john@example.com", "newpassword")
	assert.NoError(t, err)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)

	user, err := svc.Register("John", "john@example.com", "oldpassword")
	require.NoError(t, err)

	raw, err := svc.ForgotPassword("john@example.com")
	require.NoError(t, err)
	require.Len(t, raw, 40)

	// The raw token is never persisted, only its digest.
	stored, err := svc.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ResetToken)
	assert.NotEqual(t, raw, stored.ResetToken)
	require.NotNil(t, stored.ResetExpires)

	got, err := svc.ResetPassword(raw, "newpassword")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate("john@example.com", "newpassword")
	assert.NoError(t, err)

	// Consumed tokens cannot be replayed.
	_, err = svc.ResetPassword(raw, "thirdpassword")
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestResetPasswordExpired(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)

	_, err := svc.Register("John", "john@example.com", "oldpassword")
	require.NoError(t, err)

	raw, err := svc.ForgotPassword("john@example.com")
	require.NoError(t, err)

	// Jump past the 10-minute window; the digest still matches but the
	// token must be rejected.
	svc.Now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	_, err = svc.ResetPassword(raw, "newpassword")
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)

	// The expired token was cleared, so the old password still works.
	_, err = svc.Authenticate("john@example.com", "oldpassword")
	assert.NoError(t, err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)

	_, err := svc.ForgotPassword("nobody@example.com")
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestConfirmEmailFlow(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)

	user, err := svc.Register("John", "john@example.com", "sup3rsecret")
	require.NoError(t, err)

	raw, err := svc.IssueEmailConfirmToken(user.ID)
	require.NoError(t, err)
	require.Len(t, raw, 40)

	var ve *apperr.ValidationError
	err = svc.ConfirmEmail("bogus-token")
	assert.ErrorAs(t, err, &ve)

	require.NoError(t, svc.ConfirmEmail(raw))

	got, err := svc.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailConfirmed)
	assert.Empty(t, got.ConfirmToken)

	// Single use.
	err = svc.ConfirmEmail(raw)
	assert.ErrorAs(t, err, &ve)

	// Re-issuing for a confirmed email is rejected.
	_, err = svc.IssueEmailConfirmToken(user.ID)
	assert.ErrorAs(t, err, &ve)
}

func TestPurgeExpiredResetTokens(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)

	_, err := svc.Register("John", "john@example.com", "sup3rsecret")
	require.NoError(t, err)
	_, err = svc.Register("Jane", "jane@example.com", "sup3rsecret")
	require.NoError(t, err)

	_, err = svc.ForgotPassword("john@example.com")
	require.NoError(t, err)
	_, err = svc.ForgotPassword("jane@example.com")
	require.NoError(t, err)

	purged, err := svc.PurgeExpiredResetTokens()
	require.NoError(t, err)
	assert.Zero(t, purged)

	svc.Now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	purged, err = svc.PurgeExpiredResetTokens()
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}

func TestRoleIsAdministrative(t *testing.T) {
	svc := NewUserService(newTestDB(t), nil)

	user, err := svc.Register("John", "john@example.com", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)

	// Profile updates never touch the role.
	updated, err := svc.UpdateDetails(user.ID, "John D", "johnd@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, updated.Role)

	// The admin update is the only role path, and the enum is enforced.
	_, err = svc.UpdateUser(user.ID, "John D", "johnd@example.com", "superadmin")
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	promoted, err := svc.UpdateUser(user.ID, "John D", "johnd@example.com", models.RolePublisher)
	require.NoError(t, err)
	assert.Equal(t, models.RolePublisher, promoted.Role)
}
