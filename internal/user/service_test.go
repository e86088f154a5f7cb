package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	byID    map[string]*User
	byEmail map[string]*User
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*User{}, byEmail: map[string]*User{}}
}

func (m *memRepo) Insert(ctx context.Context, u *User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memRepo) ByID(ctx context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *memRepo) ByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo, nil)

	profile, err := svc.Signup(ctx, SignupRequest{
		FullName: "Asha Verma",
		Email:    "Asha@Example.com",
		Phone:    "9876543210",
		Password: "s3cret-pass",
		Location: "Pune",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, "asha@example.com", profile.Email)
	assert.Equal(t, "Pune", profile.Location)
	assert.Equal(t, 0.0, profile.WalletBalance)

	// Stored hash is not the plaintext.
	stored := repo.byID[profile.ID]
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)

	got, err := svc.Login(ctx, "asha@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)

	_, err = svc.Login(ctx, "asha@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupValidation(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	ctx := context.Background()

	cases := []SignupRequest{
		{FullName: "", Email: "a@b.com", Phone: "1", Password: "longenough"},
		{FullName: "A", Email: "not-an-email", Phone: "1", Password: "longenough"},
		{FullName: "A", Email: "a@b.com", Phone: "", Password: "longenough"},
		{FullName: "A", Email: "a@b.com", Phone: "1", Password: "short"},
	}
	for _, c := range cases {
		_, err := svc.Signup(ctx, c)
		assert.Error(t, err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo(), nil)

	req := SignupRequest{FullName: "A", Email: "a@b.com", Phone: "1", Password: "longenough"}
	_, err := svc.Signup(ctx, req)
	require.NoError(t, err)

	_, err = svc.Signup(ctx, req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetUnknownUser(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
