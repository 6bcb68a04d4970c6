package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/pkg/helpers"
	mailtpl "github.com/oksasatya/devcamper-api/pkg/mailer/templates"
)

var testMeta = RequestMeta{IP: "203.0.113.7", UserAgent: "go-test", APIBase: "http://localhost:5000/api/v1"}

func register(t *testing.T, f *fixture, email string) *Session {
	t.Helper()
	s, err := f.auth.Register(context.Background(), RegisterInput{
		Name: "John Doe", Email: email, Password: "123456", Role: entity.RolePublisher,
	}, testMeta)
	require.NoError(t, err)
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s := register(t, f, "John@Example.com")
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "john@example.com", s.User.Email)
	assert.NotEqual(t, "123456", s.User.Password)

	u, err := f.auth.Authenticate(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, u.ID)

	logged, err := f.auth.Login(ctx, "john@example.com", "123456", testMeta)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, logged.User.ID)

	assert.Equal(t, []string{ActionRegister, ActionLogin}, f.audit.Actions())
	assert.Equal(t, "203.0.113.7", f.audit.Entries[1].IP)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	register(t, f, "john@example.com")

	_, err := f.auth.Login(ctx, "", "123456", testMeta)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.Equal(t, "Please provide an email and password", apperror.PublicMessage(err))

	_, err = f.auth.Login(ctx, "john@example.com", "wrong", testMeta)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	assert.Equal(t, "Invalid credentials", apperror.PublicMessage(err))

	_, err = f.auth.Login(ctx, "nobody@example.com", "123456", testMeta)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	assert.Equal(t, "Invalid credentials", apperror.PublicMessage(err))

	assert.Equal(t, []string{ActionRegister, ActionLoginFailed, ActionLoginFailed}, f.audit.Actions())
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := register(t, f, "john@example.com")

	expired := helpers.NewJWTManager("test-secret", -time.Minute)
	old, _, err := expired.Issue(s.User.ID)
	require.NoError(t, err)

	forged, _, err := helpers.NewJWTManager("other-secret", time.Hour).Issue(s.User.ID)
	require.NoError(t, err)

	for name, token := range map[string]string{"empty": "", "malformed": "not.a.jwt", "expired": old, "forged": forged} {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Authenticate(ctx, token)
			assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
			assert.Equal(t, "Not authorized to access this route", apperror.PublicMessage(err))
		})
	}

	require.NoError(t, f.users.Delete(ctx, s.User.ID))
	_, err = f.auth.Authenticate(ctx, s.Token)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := register(t, f, "john@example.com")

	_, err := f.auth.UpdatePassword(ctx, s.User, "wrong", "abcdef", testMeta)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	assert.Equal(t, "Password is incorrect", apperror.PublicMessage(err))

	next, err := f.auth.UpdatePassword(ctx, s.User, "123456", "abcdef", testMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, next.Token)

	_, err = f.auth.Login(ctx, "john@example.com", "abcdef", testMeta)
	require.NoError(t, err)
}

func TestUpdateDetails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := register(t, f, "john@example.com")
	register(t, f, "jane@example.com")

	u, err := f.auth.UpdateDetails(ctx, s.User, "Johnny", "", testMeta)
	require.NoError(t, err)
	assert.Equal(t, "Johnny", u.Name)
	assert.Equal(t, "john@example.com", u.Email)

	_, err = f.auth.UpdateDetails(ctx, s.User, "", "jane@example.com", testMeta)
	assert.True(t, apperror.Is(err, apperror.KindDuplicateKey))
}

func TestForgotPassword_UnknownEmailMutatesNothing(t *testing.T) {
	f := newFixture()
	register(t, f, "john@example.com")

	err := f.auth.ForgotPassword(context.Background(), "ghost@example.com", testMeta)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Zero(t, f.users.Updates)
	assert.Empty(t, f.mail.sent)
}

func TestForgotPassword_EmailFailureClearsToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := register(t, f, "john@example.com")
	f.mail.err = errSMTPDown

	err := f.auth.ForgotPassword(ctx, "john@example.com", testMeta)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
	assert.Equal(t, "Email could not be sent", apperror.PublicMessage(err))

	u, err := f.users.GetByID(ctx, s.User.ID)
	require.NoError(t, err)
	assert.Empty(t, u.ResetPasswordToken)
	assert.Nil(t, u.ResetPasswordExpire)
	assert.Equal(t, 2, f.users.Updates)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := register(t, f, "john@example.com")

	require.NoError(t, f.auth.ForgotPassword(ctx, "john@example.com", testMeta))
	require.Len(t, f.mail.sent, 1)
	msg := f.mail.sent[0]
	assert.Equal(t, "john@example.com", msg.To)
	assert.Equal(t, mailtpl.ResetPassword, msg.Template)

	resetURL, _ := msg.Data["ResetURL"].(string)
	prefix := "http://localhost:5000/api/v1/auth/resetpassword/"
	require.True(t, strings.HasPrefix(resetURL, prefix), resetURL)
	raw := strings.TrimPrefix(resetURL, prefix)
	assert.Len(t, raw, 40)

	stored, err := f.users.GetByID(ctx, s.User.ID)
	require.NoError(t, err)
	assert.Equal(t, helpers.HashResetToken(raw), stored.ResetPasswordToken)
	require.NotNil(t, stored.ResetPasswordExpire)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *stored.ResetPasswordExpire, time.Minute)

	_, err = f.auth.ResetPassword(ctx, "deadbeef", "newpass", testMeta)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.Equal(t, "Invalid token", apperror.PublicMessage(err))

	sess, err := f.auth.ResetPassword(ctx, raw, "newpass", testMeta)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	_, err = f.auth.ResetPassword(ctx, raw, "again1", testMeta)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest), "token is single use")

	_, err = f.auth.Login(ctx, "john@example.com", "newpass", testMeta)
	require.NoError(t, err)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	register(t, f, "john@example.com")
	require.NoError(t, f.auth.ForgotPassword(ctx, "john@example.com", testMeta))
	raw := strings.TrimPrefix(f.mail.sent[0].Data["ResetURL"].(string), "http://localhost:5000/api/v1/auth/resetpassword/")

	f.auth.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	_, err := f.auth.ResetPassword(ctx, raw, "newpass", testMeta)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

func TestActivity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s := register(t, f, "john@example.com")
	f.auth.Logout(ctx, s.User, testMeta)

	entries, err := f.auth.Activity(ctx, s.User, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionLogout, entries[0].Action)

	f.auth.Audit = nil
	entries, err = f.auth.Activity(ctx, s.User, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUserAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	u, err := f.userAdmin.Create(ctx, CreateUserInput{Name: "Admin Made", Email: "made@example.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, u.Role)

	role := entity.RolePublisher
	u, err = f.userAdmin.Update(ctx, u.ID, UserPatch{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, entity.RolePublisher, u.Role)

	res, err := f.userAdmin.List(ctx, map[string][]string{"role": {"publisher"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.NotContains(t, res.Data[0], "password")

	require.NoError(t, f.userAdmin.Delete(ctx, u.ID))
	_, err = f.userAdmin.Get(ctx, u.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
