package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxPartnerID     ContextKey = "ctx_partner_id"
	CtxUserID        ContextKey = "ctx_user_id"
	CtxDBTransaction ContextKey = "ctx_db_transaction"

	// Default values
	DefaultPartnerID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID    = "00000000-0000-0000-0000-000000000000"
)

// HTTP headers mapped onto context values by the request middleware.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderPartnerID = "X-Partner-ID"
	HeaderUserID    = "X-User-ID"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetPartnerID(ctx context.Context) string {
	if partnerID, ok := ctx.Value(CtxPartnerID).(string); ok {
		return partnerID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// SetPartnerID sets the partner ID in the context
func SetPartnerID(ctx context.Context, partnerID string) context.Context {
	return context.WithValue(ctx, CtxPartnerID, partnerID)
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}
