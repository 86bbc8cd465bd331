package domain

import (
	"context"

	"frecks-web/pkg/email"
)

// NotificationUsecase renders and dispatches transactional email.
type NotificationUsecase interface {
	// Dispatch takes the raw tagged request body ({"type": ..., ...fields}).
	Dispatch(ctx context.Context, body []byte) error
	// Send delivers an already-built request, e.g. the welcome mail after sign-up.
	Send(ctx context.Context, req email.Request) error
}
