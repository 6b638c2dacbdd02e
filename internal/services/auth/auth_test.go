// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/digitalnomads/internal/repository"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/auth"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/token"
	"codeberg.org/oliverandrich/digitalnomads/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://localhost:8080"

// captureNotifier records every confirmation link instead of sending mail.
type captureNotifier struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	email string
	url   string
}

func (n *captureNotifier) SendConfirmation(_ context.Context, email, confirmURL string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{email: email, url: confirmURL})
	return nil
}

// lastToken extracts the token from the most recently sent link.
func (n *captureNotifier) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, n.sent)
	url := n.sent[len(n.sent)-1].url
	return url[strings.LastIndex(url, "/")+1:]
}

func newService(t *testing.T) (*auth.Service, *repository.Repository, *captureNotifier) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	notifier := &captureNotifier{}
	tokens := token.NewService("test-secret", "email-confirm-salt")
	svc := auth.NewService(repo, tokens, notifier, baseURL)
	return svc, repo, notifier
}

func TestSignup_CreatesUnverifiedActiveUser(t *testing.T) {
	svc, _, notifier := newService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, auth.SignupParams{
		Username: "nomad1",
		Email:    "a@b.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "nomad1", user.Username)
	assert.Equal(t, "a@b.com", user.Email)
	assert.False(t, user.EmailVerified)
	assert.Nil(t, user.EmailVerifiedAt)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "password123", user.PasswordHash)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "a@b.com", notifier.sent[0].email)
	assert.True(t, strings.HasPrefix(notifier.sent[0].url, baseURL+"/confirm/"))
}

func TestSignup_PreservesCase(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, auth.SignupParams{
		Username: "NoMad1",
		Email:    "Alice@B.com",
		Password: "password123",
	})
	require.NoError(t, err)

	user, err := repo.GetUserByUsername(ctx, "NoMad1")
	require.NoError(t, err)
	assert.Equal(t, "NoMad1", user.Username)
	assert.Equal(t, "Alice@B.com", user.Email)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, auth.SignupParams{Username: "nomad1", Email: "a@b.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, auth.SignupParams{Username: "nomad1", Email: "other@b.com", Password: "password123"})

	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, auth.SignupParams{Username: "nomad1", Email: "a@b.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, auth.SignupParams{Username: "nomad2", Email: "a@b.com", Password: "password123"})

	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestSignup_SucceedsWhenDeliveryFails(t *testing.T) {
	svc, repo, notifier := newService(t)
	notifier.err = errors.New("smtp down")
	ctx := context.Background()

	user, err := svc.Signup(ctx, auth.SignupParams{Username: "nomad1", Email: "a@b.com", Password: "password123"})

	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	stored, err := repo.GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestLogin_BeforeConfirmationFails(t *testing.T) {
	svc, _, notifier := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, auth.SignupParams{Username: "nomad1", Email: "a@b.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nomad1", "password123")

	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)
	// Signup plus the login attempt each sent a link
	assert.Len(t, notifier.sent, 2)
}

func TestLogin_SameOutcomeForUnknownUserAndWrongPassword(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, auth.SignupParams{Username: "alice", Email: "alice@b.com", Password: "correct-pass"})
	require.NoError(t, err)

	_, errWrongPass := svc.Login(ctx, "alice", "wrongpass")
	_, errUnknown := svc.Login(ctx, "nonexistent", "anything")

	assert.ErrorIs(t, errWrongPass, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
}

func TestLogin_ByUsernameOrEmail(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	testutil.NewVerifiedUser(t, repo, "nomad1", "a@b.com")

	byUsername, err := svc.Login(ctx, "nomad1", testutil.Password)
	require.NoError(t, err)

	byEmail, err := svc.Login(ctx, "a@b.com", testutil.Password)
	require.NoError(t, err)

	assert.Equal(t, byUsername.ID, byEmail.ID)
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	user := testutil.NewVerifiedUser(t, repo, "nomad1", "a@b.com")
	_, err := repo.DB().ExecContext(ctx, `UPDATE users SET is_active = 0 WHERE id = ?`, user.ID)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nomad1", testutil.Password)

	assert.ErrorIs(t, err, auth.ErrAccountDisabled)
}

func TestConfirm_TransitionsToVerified(t *testing.T) {
	svc, repo, notifier := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, auth.SignupParams{Username: "nomad1", Email: "a@b.com", Password: "password123"})
	require.NoError(t, err)

	user, already, err := svc.Confirm(ctx, notifier.lastToken(t))

	require.NoError(t, err)
	assert.False(t, already)
	assert.True(t, user.EmailVerified)
	require.NotNil(t, user.EmailVerifiedAt)

	stored, err := repo.GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
	require.NotNil(t, stored.EmailVerifiedAt)
}

func TestConfirm_Idempotent(t *testing.T) {
	svc, _, notifier := newService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, auth.SignupParams{Username: "nomad1", Email: "a@b.com", Password: "password123"})
	require.NoError(t, err)
	tok := notifier.lastToken(t)

	_, already, err := svc.Confirm(ctx, tok)
	require.NoError(t, err)
	assert.False(t, already)

	_, already, err = svc.Confirm(ctx, tok)
	require.NoError(t, err)
	assert.True(t, already)
}

func TestConfirm_BadToken(t *testing.T) {
	svc, _, _ := newService(t)

	_, _, err := svc.Confirm(context.Background(), "garbage")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestConfirm_UnknownEmail(t *testing.T) {
	svc, _, _ := newService(t)
	tokens := token.NewService("test-secret", "email-confirm-salt")

	tok, err := tokens.Issue("nobody@b.com")
	require.NoError(t, err)

	_, _, err = svc.Confirm(context.Background(), tok)

	assert.ErrorIs(t, err, auth.ErrUnknownUser)
}

func TestResendConfirmation_UnknownEmailSilentSuccess(t *testing.T) {
	svc, _, notifier := newService(t)

	already, err := svc.ResendConfirmation(context.Background(), "nobody@b.com")

	require.NoError(t, err)
	assert.False(t, already)
	assert.Empty(t, notifier.sent)
}

func TestResendConfirmation_Unverified(t *testing.T) {
	svc, repo, notifier := newService(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "nomad1", "a@b.com")

	already, err := svc.ResendConfirmation(ctx, "a@b.com")

	require.NoError(t, err)
	assert.False(t, already)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "a@b.com", notifier.sent[0].email)
}

func TestResendConfirmation_AlreadyVerified(t *testing.T) {
	svc, repo, notifier := newService(t)
	ctx := context.Background()

	testutil.NewVerifiedUser(t, repo, "nomad1", "a@b.com")

	already, err := svc.ResendConfirmation(ctx, "a@b.com")

	require.NoError(t, err)
	assert.True(t, already)
	assert.Empty(t, notifier.sent)
}

func TestUpdateProfile_AppliesFields(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	user := testutil.NewVerifiedUser(t, repo, "nomad1", "a@b.com")

	updated, err := svc.UpdateProfile(ctx, user.ID, auth.ProfileParams{
		Username:  "nomad1",
		Email:     "a@b.com",
		FirstName: "Alice",
		LastName:  "Ng",
		Bio:       "Remote from Lisbon.",
		Country:   "Portugal",
	})

	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "Portugal", updated.Country)

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Remote from Lisbon.", stored.Bio)
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt) || stored.UpdatedAt.Equal(stored.CreatedAt))
}

func TestUpdateProfile_DuplicateUsername(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	testutil.NewVerifiedUser(t, repo, "nomad1", "a@b.com")
	other := testutil.NewVerifiedUser(t, repo, "nomad2", "c@d.com")

	_, err := svc.UpdateProfile(ctx, other.ID, auth.ProfileParams{
		Username: "nomad1",
		Email:    "c@d.com",
	})

	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	testutil.NewVerifiedUser(t, repo, "nomad1", "a@b.com")
	other := testutil.NewVerifiedUser(t, repo, "nomad2", "c@d.com")

	_, err := svc.UpdateProfile(ctx, other.ID, auth.ProfileParams{
		Username: "nomad2",
		Email:    "a@b.com",
	})

	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUpdateProfile_KeepingOwnIdentityIsNotADuplicate(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	user := testutil.NewVerifiedUser(t, repo, "nomad1", "a@b.com")

	_, err := svc.UpdateProfile(ctx, user.ID, auth.ProfileParams{
		Username: "nomad1",
		Email:    "a@b.com",
		Bio:      "Still me.",
	})

	assert.NoError(t, err)
}

// Full flow from the account lifecycle: signup, blocked login, confirm,
// login by email.
func TestSignupConfirmLoginFlow(t *testing.T) {
	svc, _, notifier := newService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, auth.SignupParams{
		Username: "nomad1",
		Email:    "a@b.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.False(t, user.EmailVerified)

	_, err = svc.Login(ctx, "nomad1", "password123")
	require.ErrorIs(t, err, auth.ErrEmailNotVerified)

	_, already, err := svc.Confirm(ctx, notifier.lastToken(t))
	require.NoError(t, err)
	assert.False(t, already)

	loggedIn, err := svc.Login(ctx, "a@b.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}
