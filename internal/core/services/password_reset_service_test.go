package services

import (
	"context"
	"errors"
	"html"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"it-asset-management/internal/adapters/persistence/repositories"
	"it-asset-management/internal/core/domain"
	"it-asset-management/internal/pkg/password"
)

type resetFixture struct {
	svc    *PasswordResetService
	users  *memUserRepo
	tokens repositories.ResetTokenStore
	mailer *fakeMailer
	now    *time.Time
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	users := newMemUserRepo(
		seededUser(t, adminID, "admin@example.com", "password123", domain.RoleAdmin),
		seededUser(t, viewerID, "viewer@example.com", "password123", domain.RoleViewer),
	)
	tokens := repositories.NewMemoryResetTokenStore()
	m := &fakeMailer{}
	svc := NewPasswordResetService(users, tokens, m, testConfig())

	now := fixedClock()
	svc.now = func() time.Time { return now }
	seq := 0
	svc.newToken = func() (string, error) {
		seq++
		return "token-" + string(rune('a'+seq-1)), nil
	}
	return &resetFixture{svc: svc, users: users, tokens: tokens, mailer: m, now: &now}
}

var linkPattern = regexp.MustCompile(`href="([^"]+)"`)

func TestPasswordReset_RequestMailsLink(t *testing.T) {
	f := newResetFixture(t)

	require.NoError(t, f.svc.RequestReset(context.Background(), "viewer@example.com"))

	require.Len(t, f.mailer.sent, 1)
	msg := f.mailer.sent[0]
	assert.Equal(t, "viewer@example.com", msg.To)

	match := linkPattern.FindStringSubmatch(msg.HTML)
	require.Len(t, match, 2)
	link, err := url.Parse(html.UnescapeString(match[1]))
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", link.Path)
	assert.Equal(t, "token-a", link.Query().Get("token"))
	assert.Equal(t, "viewer@example.com", link.Query().Get("email"))

	// only the hash is stored
	_, err = f.tokens.Get(context.Background(), "token-a")
	assert.ErrorIs(t, err, repositories.ErrResetTokenNotFound)
	rec, err := f.tokens.Get(context.Background(), password.HashToken("token-a"))
	require.NoError(t, err)
	assert.Equal(t, fixedClock().Add(time.Hour), rec.ExpiresAt)
}

func TestPasswordReset_RequestUnknownEmail(t *testing.T) {
	f := newResetFixture(t)

	err := f.svc.RequestReset(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrNoAccountForEmail)
	assert.Equal(t, "No account found with that email address.", domain.Message(err))
	assert.Empty(t, f.mailer.sent)
}

func TestPasswordReset_RequestMailFailureWithdrawsToken(t *testing.T) {
	f := newResetFixture(t)
	f.mailer.err = errors.New("smtp down")

	err := f.svc.RequestReset(context.Background(), "viewer@example.com")
	assert.ErrorIs(t, err, domain.ErrResetEmailNotSent)
	assert.ErrorIs(t, err, domain.ErrUpstream)

	_, err = f.tokens.Get(context.Background(), password.HashToken("token-a"))
	assert.ErrorIs(t, err, repositories.ErrResetTokenNotFound)
}

func TestPasswordReset_ResetIsSingleUse(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "viewer@example.com"))

	input := &ResetPasswordInput{Email: "viewer@example.com", Token: "token-a", NewPassword: "newpass1"}
	require.NoError(t, f.svc.ResetPassword(context.Background(), input))

	user, err := f.users.GetByEmail(context.Background(), "viewer@example.com")
	require.NoError(t, err)
	assert.True(t, password.Verify("newpass1", user.Password))

	err = f.svc.ResetPassword(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func TestPasswordReset_FailedSaveKeepsTokenUsable(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "viewer@example.com"))

	dbDown := errors.New("db down")
	f.users.failPasswordUpdate = dbDown
	input := &ResetPasswordInput{Email: "viewer@example.com", Token: "token-a", NewPassword: "newpass1"}

	err := f.svc.ResetPassword(context.Background(), input)
	assert.ErrorIs(t, err, dbDown)

	rec, err := f.tokens.Get(context.Background(), password.HashToken("token-a"))
	require.NoError(t, err, "token handed back after the failed write")
	assert.Equal(t, fixedClock().Add(time.Hour), rec.ExpiresAt)

	require.NoError(t, f.svc.ResetPassword(context.Background(), input))
	user, err := f.users.GetByEmail(context.Background(), "viewer@example.com")
	require.NoError(t, err)
	assert.True(t, password.Verify("newpass1", user.Password))

	err = f.svc.ResetPassword(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func TestPasswordReset_TrimsEmail(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), " viewer@example.com "))

	err := f.svc.ResetPassword(context.Background(), &ResetPasswordInput{Email: "viewer@example.com\n", Token: "token-a", NewPassword: "newpass1"})
	require.NoError(t, err)

	user, err := f.users.GetByEmail(context.Background(), "viewer@example.com")
	require.NoError(t, err)
	assert.True(t, password.Verify("newpass1", user.Password))
}

func TestPasswordReset_OlderTokensStayValid(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "viewer@example.com"))
	require.NoError(t, f.svc.RequestReset(context.Background(), "viewer@example.com"))

	err := f.svc.ResetPassword(context.Background(), &ResetPasswordInput{Email: "viewer@example.com", Token: "token-a", NewPassword: "newpass1"})
	assert.NoError(t, err)
}

func TestPasswordReset_ResetErrors(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "viewer@example.com"))

	err := f.svc.ResetPassword(context.Background(), &ResetPasswordInput{Email: "viewer@example.com", Token: "token-a", NewPassword: "12345"})
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	err = f.svc.ResetPassword(context.Background(), &ResetPasswordInput{Email: "viewer@example.com", Token: "unknown", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)

	err = f.svc.ResetPassword(context.Background(), &ResetPasswordInput{Email: "admin@example.com", Token: "token-a", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, domain.ErrResetTokenForeign)

	admin, err := f.users.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.True(t, password.Verify("password123", admin.Password), "foreign token must not touch the other account")
}

func TestPasswordReset_ExpiredTokenIsDeleted(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "viewer@example.com"))

	*f.now = f.now.Add(time.Hour)

	err := f.svc.ResetPassword(context.Background(), &ResetPasswordInput{Email: "viewer@example.com", Token: "token-a", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, domain.ErrResetTokenExpired)
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = f.tokens.Get(context.Background(), password.HashToken("token-a"))
	assert.ErrorIs(t, err, repositories.ErrResetTokenNotFound)
}

func TestPasswordReset_ConcurrentRedemption(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "viewer@example.com"))

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.svc.ResetPassword(context.Background(), &ResetPasswordInput{
				Email: "viewer@example.com", Token: "token-a", NewPassword: "newpass1",
			})
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
	}
	assert.Equal(t, 1, succeeded)
}

func TestPasswordReset_SweepExpired(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.RequestReset(context.Background(), "viewer@example.com"))

	n, err := f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	*f.now = f.now.Add(2 * time.Hour)
	n, err = f.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
