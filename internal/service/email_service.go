package service

import (
	"context"
	"errors"

	"Campus_Portal/internal/pkg"
	"Campus_Portal/internal/repository/redis"

	"github.com/sirupsen/logrus"
)

// Mailer 发送 HTML 邮件，默认实现是 pkg.SendEmail
type Mailer func(to, subject, htmlBody string) error

func SMTPMailer(cfg pkg.SMTPConfig) Mailer {
	return func(to, subject, htmlBody string) error {
		return pkg.SendEmail(cfg, to, subject, htmlBody)
	}
}

type EmailService struct {
	codes CodeStore
	mail  Mailer
}

func NewEmailService(codes CodeStore, mail Mailer) *EmailService {
	return &EmailService{codes: codes, mail: mail}
}

var scopeSubjects = map[string]string{
	redis.ScopeRegister: "Campus portal registration code",
	redis.ScopeReset:    "Campus portal password reset code",
}

var scopeActions = map[string]string{
	redis.ScopeRegister: "registration",
	redis.ScopeReset:    "password reset",
}

// SendCode 先写 pending，邮件发出后再转 confirmed；发送失败则清掉 pending
func (s *EmailService) SendCode(ctx context.Context, scope, email string) error {
	subject, ok := scopeSubjects[scope]
	if !ok {
		return invalid("field scope must be register or reset")
	}
	email = normalizeEmail(email)
	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	if err = s.codes.SetPending(ctx, scope, email, code); err != nil {
		return err
	}

	html := pkg.EmailCodeHTML(scopeActions[scope], code, redis.DefaultEmailCodeTTL)
	if err = s.mail(email, subject, html); err != nil {
		_ = s.codes.DeletePending(ctx, scope, email)
		logrus.WithError(err).WithField("scope", scope).Error("send verification email")
		return err
	}

	if err = s.codes.Confirm(ctx, scope, email); err != nil {
		_ = s.codes.DeletePending(ctx, scope, email)
		return err
	}
	return nil
}

// VerifyCode 校验通过后验证码立即作废
func (s *EmailService) VerifyCode(ctx context.Context, scope, email, code string) error {
	val, err := s.codes.GetConfirmed(ctx, scope, email)
	if err != nil {
		if errors.Is(err, redis.ErrEmailNotFound) {
			return ErrCodeInvalid
		}
		return err
	}
	if val != code {
		return ErrCodeInvalid
	}
	return s.codes.DeleteConfirmed(ctx, scope, email)
}
