package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"Campus_Portal/internal/metrics"
	"Campus_Portal/internal/model"
	"Campus_Portal/internal/pkg"
	"Campus_Portal/internal/repository/redis"
	"Campus_Portal/internal/repository/sqlstore"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const sessionCodeAttempts = 3

type CodeVerifier interface {
	VerifyCode(ctx context.Context, scope, email, code string) error
}

type UserService struct {
	users         UserStore
	sessions      SessionStore
	faculty       FacultyStore
	codes         CodeVerifier
	tokens        *pkg.TokenManager
	allowedDomain string
	newCode       func() (string, error)
}

func NewUserService(users UserStore, sessions SessionStore, faculty FacultyStore, codes CodeVerifier, tokens *pkg.TokenManager, allowedDomain string) *UserService {
	return &UserService{
		users:         users,
		sessions:      sessions,
		faculty:       faculty,
		codes:         codes,
		tokens:        tokens,
		allowedDomain: strings.ToLower(strings.TrimPrefix(allowedDomain, "@")),
		newCode:       pkg.NewSessionCode,
	}
}

type LoginResult struct {
	Tokens      *pkg.Pair
	UserID      string
	Role        string
	SessionCode string
	Redirect    string
}

type Profile struct {
	UserID      string                `json:"id"`
	Email       string                `json:"email"`
	Role        string                `json:"role"`
	JoinedAt    string                `json:"joined_at"`
	SessionCode string                `json:"session_code,omitempty"`
	Faculty     *model.FacultyProfile `json:"faculty,omitempty"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, email, password, code string) error {
	email = normalizeEmail(email)
	if s.allowedDomain != "" && !strings.HasSuffix(email, "@"+s.allowedDomain) {
		return ErrEmailDomain
	}
	// 验证code是否正确
	if err := s.codes.VerifyCode(ctx, redis.ScopeRegister, email, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = s.users.Create(ctx, &model.User{
		Email:    email,
		Password: string(hash),
		Role:     model.RoleStudent,
	})
	if errors.Is(err, sqlstore.ErrDuplicate) {
		return ErrEmailTaken
	}
	return err
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sqlstore.ErrNotFound) {
			metrics.LoginFailure.WithLabelValues("unknown_user").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		metrics.LoginFailure.WithLabelValues("bad_password").Inc()
		return nil, ErrInvalidCredentials
	}

	res := &LoginResult{UserID: user.ID, Role: user.Role, Redirect: model.DashboardPath(user.Role)}
	// 学生首次登录时生成匿名代号
	if user.Role == model.RoleStudent {
		if res.SessionCode, err = s.EnsureSessionCode(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	// 将token写入redis，旧的登录态随之失效
	if res.Tokens, err = s.tokens.GeneratePair(user.ID); err != nil {
		return nil, err
	}
	if err = s.sessions.AddUserToken(ctx, user.ID, res.Tokens.AccessToken); err != nil {
		return nil, err
	}
	metrics.LoginSuccess.Inc()
	return res, nil
}

// EnsureSessionCode 已有则直接返回；新生成的代号撞上唯一索引时重试
func (s *UserService) EnsureSessionCode(ctx context.Context, userID string) (string, error) {
	code, err := s.users.SessionCode(ctx, userID)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, sqlstore.ErrNotFound) {
		return "", err
	}

	for i := 0; i < sessionCodeAttempts; i++ {
		if code, err = s.newCode(); err != nil {
			return "", err
		}
		err = s.users.CreateStudentProfile(ctx, userID, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, sqlstore.ErrDuplicate) {
			return "", err
		}
		// 并发的另一次登录可能已经建好了档案
		if existing, lookupErr := s.users.SessionCode(ctx, userID); lookupErr == nil {
			return existing, nil
		}
		logrus.WithField("user_id", userID).Warn("session code collision, regenerating")
	}
	return "", ErrSessionCodeExhausted
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.sessions.DeleteUserToken(ctx, userID)
}

// Refresh 新的 access token 同时写回 redis，否则中间件会判定为异地登录
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	pair, userID, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err = s.sessions.GetUserToken(ctx, userID); err != nil {
		// 已登出的会话不允许续期
		return nil, ErrUnauthenticated
	}
	if err = s.sessions.AddUserToken(ctx, userID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if err := s.codes.VerifyCode(ctx, redis.ScopeReset, email, code); err != nil {
		return err
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	return s.Logout(ctx, user.ID)
}

// ChangePassword 登录态修改密码，成功后强制重新登录
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	if err = s.setPassword(ctx, userID, newPassword); err != nil {
		return err
	}
	return s.Logout(ctx, userID)
}

func (s *UserService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// Authenticate 校验 access token 与 redis 中的当前会话一致，角色回库读取
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*model.Principal, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	current, err := s.sessions.GetUserToken(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, redis.ErrTokenNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if current != accessToken {
		return nil, ErrUnauthenticated
	}
	if err = s.sessions.ExtendUserToken(ctx, claims.UserID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sqlstore.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	p := &model.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}
	if user.Role == model.RoleStudent {
		code, err := s.users.SessionCode(ctx, user.ID)
		if err != nil && !errors.Is(err, sqlstore.ErrNotFound) {
			return nil, err
		}
		p.SessionCode = code
	}
	return p, nil
}

func (s *UserService) Profile(ctx context.Context, p *model.Principal) (*Profile, error) {
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	out := &Profile{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
		JoinedAt:    user.CreatedAt.UTC().Format(time.RFC3339),
		SessionCode: p.SessionCode,
	}
	if user.Role == model.RoleFaculty {
		fp, err := s.faculty.FindByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, sqlstore.ErrNotFound) {
			return nil, err
		}
		out.Faculty = fp
	}
	return out, nil
}

// SetRole 角色由外部管理，只给管理命令调用
func (s *UserService) SetRole(ctx context.Context, email, role string) error {
	if role != model.RoleStudent && role != model.RoleFaculty {
		return invalid("field role must be student or faculty")
	}
	return s.users.UpdateRole(ctx, normalizeEmail(email), role)
}
