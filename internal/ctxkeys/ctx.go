package ctxkeys

import (
	"context"

	"github.com/templui/blogapi/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	IdentityKey    contextKey = "identity"
	RequestMetaKey contextKey = "request_meta"
)

// RequestMeta is shared by the request logger and the handlers below it.
// Inner middleware fill it in; the logger reads it after the response.
type RequestMeta struct {
	RequestID string
	UserID    string
}

func Identity(ctx context.Context) *model.Identity {
	identity, _ := ctx.Value(IdentityKey).(*model.Identity)
	return identity
}

// IdentityID returns the authenticated user id, or "" for anonymous requests.
func IdentityID(ctx context.Context) string {
	if identity := Identity(ctx); identity != nil {
		return identity.ID
	}
	return ""
}

func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	if meta := Meta(ctx); meta != nil {
		meta.UserID = identity.ID
	}
	return context.WithValue(ctx, IdentityKey, identity)
}

func Meta(ctx context.Context) *RequestMeta {
	meta, _ := ctx.Value(RequestMetaKey).(*RequestMeta)
	return meta
}

func WithMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, RequestMetaKey, meta)
}
