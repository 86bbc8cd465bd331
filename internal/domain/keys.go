package domain

import "context"

type CtxKey string

const (
	KeyRequestID   CtxKey = "RequestID"
	KeyBrowser     CtxKey = "Browser"
	KeyCSRFToken   CtxKey = "CSRFToken"
	KeyAccessToken CtxKey = "AccessToken"
)

// WithAccessToken attaches the signed-in user's access token to ctx so data
// reads run as that user.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyAccessToken, token)
}

// AccessToken returns the token set by WithAccessToken, or "".
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(KeyAccessToken).(string)
	return token
}
