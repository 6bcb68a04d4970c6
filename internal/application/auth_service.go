package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
	"github.com/oksasatya/devcamper-api/pkg/helpers"
	"github.com/oksasatya/devcamper-api/pkg/mailer"
	mailtpl "github.com/oksasatya/devcamper-api/pkg/mailer/templates"
)

// Audit actions.
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionLoginFailed    = "login_failed"
	ActionLogout         = "logout"
	ActionForgotPassword = "forgot_password"
	ActionResetPassword  = "reset_password"
	ActionUpdatePassword = "update_password"
	ActionUpdateDetails  = "update_details"
)

const defaultActivityLimit = 20

// ErrNotAuthorized is returned for every failure to authenticate a request token.
var ErrNotAuthorized = apperror.Unauthorized("Not authorized to access this route")

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

// Session is the outcome of a successful authentication.
type Session struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	Users    repository.UserRepository
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Mailer   mailer.Sender
	Audit    repository.AuditRepository // nil disables the audit log
	AppName  string
	ResetTTL time.Duration
	Logger   *logrus.Logger
	now      func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	sender mailer.Sender,
	audit repository.AuditRepository,
	appName string,
	resetTTL time.Duration,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		Users:    users,
		Hasher:   hasher,
		Tokens:   tokens,
		Mailer:   sender,
		Audit:    audit,
		AppName:  appName,
		ResetTTL: resetTTL,
		Logger:   logger,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*Session, error) {
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Role:     role,
		Password: hash,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.record(ctx, u.ID, u.Email, ActionRegister, meta, map[string]any{"role": string(u.Role)})
	return s.issue(u)
}

// Login verifies the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string, meta RequestMeta) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.BadRequest("Please provide an email and password")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			s.record(ctx, "", email, ActionLoginFailed, meta, map[string]any{"reason": "unknown_email"})
			return nil, apperror.Unauthorized("Invalid credentials")
		}
		return nil, err
	}
	if !s.Hasher.Compare(u.Password, password) {
		s.record(ctx, u.ID, u.Email, ActionLoginFailed, meta, map[string]any{"reason": "wrong_password"})
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	s.record(ctx, u.ID, u.Email, ActionLogin, meta, nil)
	return s.issue(u)
}

// Authenticate resolves a bearer token into the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrNotAuthorized
	}
	uid, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, ErrNotAuthorized
	}
	u, err := s.Users.GetByID(ctx, uid)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, actor *entity.User, meta RequestMeta) {
	if actor == nil {
		return
	}
	s.record(ctx, actor.ID, actor.Email, ActionLogout, meta, nil)
}

func (s *AuthService) Me(ctx context.Context, actor *entity.User) (*entity.User, error) {
	return s.Users.GetByID(ctx, actor.ID)
}

// UpdateDetails changes the actor's name and email. Empty values are ignored.
func (s *AuthService) UpdateDetails(ctx context.Context, actor *entity.User, name, email string, meta RequestMeta) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		u.Name = name
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		u.Email = email
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.record(ctx, u.ID, u.Email, ActionUpdateDetails, meta, nil)
	return u, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, actor *entity.User, current, next string, meta RequestMeta) (*Session, error) {
	u, err := s.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !s.Hasher.Compare(u.Password, current) {
		return nil, apperror.Unauthorized("Password is incorrect")
	}
	hash, err := s.Hasher.Hash(next)
	if err != nil {
		return nil, err
	}
	u.Password = hash
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.record(ctx, u.ID, u.Email, ActionUpdatePassword, meta, nil)
	return s.issue(u)
}

// ForgotPassword stores a hashed reset token and mails the raw token to the user.
// When the email cannot be sent the stored token is cleared again.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, meta RequestMeta) error {
	u, err := s.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}

	raw, hash, err := helpers.NewResetToken()
	if err != nil {
		return apperror.Internal("reset token generation failed", err)
	}
	expires := s.now().Add(s.ResetTTL)
	u.ResetPasswordToken = hash
	u.ResetPasswordExpire = &expires
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}

	resetURL := strings.TrimRight(meta.APIBase, "/") + "/auth/resetpassword/" + raw
	msg := mailer.Message{
		To:       u.Email,
		Template: mailtpl.ResetPassword,
		Data: mailtpl.NewResetPasswordData(s.AppName, u.Name, u.Email, resetURL,
			mailtpl.WithIP(meta.IP),
			mailtpl.WithUserAgent(meta.UserAgent),
			mailtpl.WithExpiresAt(expires),
		),
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset email failed")
		}
		u.ClearResetToken()
		if uerr := s.Users.Update(ctx, u); uerr != nil && s.Logger != nil {
			s.Logger.WithError(uerr).WithField("user_id", u.ID).Error("clear reset token failed")
		}
		return apperror.Upstream("Email could not be sent", err)
	}
	s.record(ctx, u.ID, u.Email, ActionForgotPassword, meta, map[string]any{"expires_at": expires.UTC().Format(time.RFC3339)})
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password string, meta RequestMeta) (*Session, error) {
	u, err := s.Users.GetByResetToken(ctx, helpers.HashResetToken(rawToken), s.now())
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.BadRequest("Invalid token")
		}
		return nil, err
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u.Password = hash
	u.ClearResetToken()
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.record(ctx, u.ID, u.Email, ActionResetPassword, meta, nil)
	return s.issue(u)
}

// Activity returns the actor's most recent audit entries, newest first.
func (s *AuthService) Activity(ctx context.Context, actor *entity.User, limit int) ([]entity.AuditEntry, error) {
	if s.Audit == nil {
		return []entity.AuditEntry{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = defaultActivityLimit
	}
	entries, err := s.Audit.ListByUser(ctx, actor.ID, limit)
	if err != nil {
		return nil, apperror.Internal("audit query failed", err)
	}
	if entries == nil {
		entries = []entity.AuditEntry{}
	}
	return entries, nil
}

func (s *AuthService) issue(u *entity.User) (*Session, error) {
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return nil, err
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}

// record appends an audit entry. Failures are logged and never surface to the caller.
func (s *AuthService) record(ctx context.Context, userID, email, action string, meta RequestMeta, md map[string]any) {
	if s.Audit == nil {
		return
	}
	entry := &entity.AuditEntry{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  md,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Audit.Record(ctx, entry); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("action", action).Warn("audit log failed")
	}
}
