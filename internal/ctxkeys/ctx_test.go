package ctxkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/templui/blogapi/internal/model"
)

func TestIdentity(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, Identity(ctx))
	assert.Equal(t, "", IdentityID(ctx))

	meta := &RequestMeta{RequestID: "req-1"}
	ctx = WithMeta(ctx, meta)
	ctx = WithIdentity(ctx, &model.Identity{ID: "user-1", Name: "Alice"})

	assert.Equal(t, "Alice", Identity(ctx).Name)
	assert.Equal(t, "user-1", IdentityID(ctx))
	assert.Equal(t, "user-1", meta.UserID, "the logger sees the user set further down the chain")
}
