package usecase

import (
	"context"
	"errors"
	"fmt"

	"frecks-web/internal/domain"
	"frecks-web/pkg/apperror"
	"frecks-web/pkg/email"
	"frecks-web/pkg/logger"
	"frecks-web/pkg/security"

	"github.com/go-playground/validator/v10"
)

// configurable is implemented by senders that can report missing credentials.
type configurable interface {
	IsConfigured() bool
}

type notificationUsecase struct {
	sender   email.Sender
	validate *validator.Validate
	from     func() string
}

// NewNotificationUsecase wires the email sender. from is read on every dispatch.
func NewNotificationUsecase(sender email.Sender, validate *validator.Validate, from func() string) domain.NotificationUsecase {
	return &notificationUsecase{
		sender:   sender,
		validate: validate,
		from:     from,
	}
}

func (uc *notificationUsecase) Dispatch(ctx context.Context, body []byte) error {
	req, err := email.Parse(body, uc.validate)
	if err != nil {
		var missing *email.MissingFieldsError
		switch {
		case errors.Is(err, email.ErrMissingType):
			return apperror.BadRequest("Email type is required")
		case errors.Is(err, email.ErrUnknownType):
			return apperror.BadRequest("Invalid email type")
		case errors.As(err, &missing):
			return apperror.BadRequest(fmt.Sprintf("Missing required fields for %s email", missing.Type))
		default:
			return apperror.Internal("Failed to send email", err)
		}
	}

	return uc.Send(ctx, req)
}

func (uc *notificationUsecase) Send(ctx context.Context, req email.Request) error {
	if c, ok := uc.sender.(configurable); ok && !c.IsConfigured() {
		logger.Log.Error("SMTP credentials are not configured")
		return apperror.Config("Email service not configured")
	}
	from := uc.from()
	if from == "" {
		logger.Log.Error("EMAIL_FROM is not configured")
		return apperror.Config("Email service not configured")
	}

	msg, err := email.Render(from, req)
	if err != nil {
		return apperror.Internal("Failed to send email", err)
	}

	if err := uc.sender.Send(ctx, msg); err != nil {
		logger.Log.Error("email dispatch failed", "type", req.Type(), "to", security.MaskEmail(msg.To), "error", err)
		return apperror.Internal("Failed to send email", err)
	}

	logger.Log.Info("email dispatched", "type", req.Type(), "to", security.MaskEmail(msg.To))
	return nil
}
