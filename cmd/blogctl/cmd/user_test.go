package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/blogapi/internal/model"
	"github.com/templui/blogapi/internal/repository"
)

type memoryUsers struct {
	repository.UserRepository
	users map[string]*model.User
}

func (m *memoryUsers) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	for _, u := range m.users {
		if u.ID == id {
			u.IsActive = active
			u.UpdatedAt = at
		}
	}
	return nil
}

func TestSetUserActive(t *testing.T) {
	ctx := context.Background()
	users := &memoryUsers{users: map[string]*model.User{
		"alice@x.com": {ID: "alice", Email: "alice@x.com", IsActive: true},
	}}

	var out bytes.Buffer
	require.NoError(t, setUserActive(ctx, &out, users, " Alice@X.com ", false))
	assert.False(t, users.users["alice@x.com"].IsActive)
	assert.Equal(t, "alice@x.com disabled\n", out.String())

	out.Reset()
	require.NoError(t, setUserActive(ctx, &out, users, "alice@x.com", false))
	assert.Contains(t, out.String(), "already disabled")

	require.NoError(t, setUserActive(ctx, &out, users, "alice@x.com", true))
	assert.True(t, users.users["alice@x.com"].IsActive)

	assert.Error(t, setUserActive(ctx, &out, users, "nobody@x.com", false))
}
