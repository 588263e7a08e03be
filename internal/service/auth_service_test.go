package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arkana/auth-service/internal/config"
	"github.com/arkana/auth-service/internal/model"
	"github.com/arkana/auth-service/internal/repository"
	"github.com/arkana/auth-service/internal/store"
	"github.com/arkana/auth-service/internal/utils"
)

// fakeUserStore is an in-memory UserStore keyed by email.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, email, fullName, hashedPassword string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[email]; ok {
		return 0, repository.ErrEmailExists
	}
	f.nextID++
	f.users[email] = &model.User{
		ID:             f.nextID,
		Email:          email,
		FullName:       fullName,
		HashedPassword: hashedPassword,
		IsActive:       true,
		IsVerified:     false,
		CreatedAt:      time.Now().UTC(),
	}
	return f.nextID, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return *u, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) SetVerified(_ context.Context, email string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return 0, nil
	}
	u.IsVerified = true
	u.UpdatedAt = &now
	return 1, nil
}

func (f *fakeUserStore) SetPassword(_ context.Context, email, hashedPassword string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return 0, nil
	}
	u.HashedPassword = hashedPassword
	u.UpdatedAt = &now
	return 1, nil
}

func (f *fakeUserStore) deactivate(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email].IsActive = false
}

func (f *fakeUserStore) drop(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, email)
}

// recordingMailer captures dispatched emails for inspection.
type recordingMailer struct {
	mu            sync.Mutex
	verifications []sentMail
	resets        []sentMail
}

type sentMail struct {
	email string
	token string
}

func (m *recordingMailer) SendVerificationEmail(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, sentMail{email: email, token: token})
	return nil
}

func (m *recordingMailer) SendPasswordResetEmail(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, sentMail{email: email, token: token})
	return nil
}

func (m *recordingMailer) verificationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.verifications)
}

func (m *recordingMailer) resetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resets)
}

func (m *recordingMailer) lastVerification() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifications[len(m.verifications)-1]
}

func (m *recordingMailer) lastReset() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets[len(m.resets)-1]
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:     "test-secret",
		AccessTTLSec:  3600,
		RefreshTTLSec: 2592000,
		BcryptCost:    bcrypt.MinCost,
	}
}

type fixture struct {
	svc    *AuthService
	users  *fakeUserStore
	tokens *store.MemoryStore
	mailer *recordingMailer
}

func newFixture() fixture {
	users := newFakeUserStore()
	tokens := store.NewMemoryStore()
	mailer := &recordingMailer{}
	return fixture{
		svc:    NewAuthService(testConfig(), users, tokens, mailer),
		users:  users,
		tokens: tokens,
		mailer: mailer,
	}
}

// register creates a user and waits for the verification email so the test
// can capture the token.
func (f fixture) register(t *testing.T, email, password, name string) (uint64, string) {
	t.Helper()
	id, err := f.svc.Register(context.Background(), email, password, name)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return f.mailer.verificationCount() > 0 },
		time.Second, 5*time.Millisecond)
	return id, f.mailer.lastVerification().token
}

func TestRegister(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	id, token := f.register(t, "A@X.com", "pw12345!", "A")
	assert.NotZero(t, id)

	// email is case-normalized, account starts active and unverified
	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsVerified)
	assert.Nil(t, u.UpdatedAt)
	assert.NotEqual(t, "pw12345!", u.HashedPassword)

	// the verification token maps back to the email in the ephemeral store
	v, err := f.tokens.Get(ctx, store.VerificationKey(token))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", v)

	assert.Equal(t, "a@x.com", f.mailer.lastVerification().email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.register(t, "a@x.com", "pw12345!", "A")

	_, err := f.svc.Register(context.Background(), "a@x.com", "other-pw", "B")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.register(t, "a@x.com", "pw12345!", "A")

	pair, err := f.svc.Login(ctx, "a@x.com", "pw12345!")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresIn)

	// both tokens carry the right type and subject
	ac, err := utils.VerifyToken("test-secret", pair.AccessToken, utils.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", ac.Subject)
	rc, err := utils.VerifyToken("test-secret", pair.RefreshToken, utils.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", rc.Subject)

	// refresh token is persisted under the subject key
	stored, err := f.tokens.Get(ctx, store.RefreshTokenKey("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.register(t, "a@x.com", "pw12345!", "A")

	// unknown email and wrong password yield the identical error
	_, errUnknown := f.svc.Login(ctx, "nobody@x.com", "pw12345!")
	_, errWrongPw := f.svc.Login(ctx, "a@x.com", "nope")
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPw)
}

func TestLogin_AccountDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.register(t, "a@x.com", "pw12345!", "A")
	f.users.deactivate("a@x.com")

	_, err := f.svc.Login(context.Background(), "a@x.com", "pw12345!")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.register(t, "a@x.com", "pw12345!", "A")

	pair, err := f.svc.Login(ctx, "a@x.com", "pw12345!")
	require.NoError(t, err)

	next, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)
	// no rotation: the same refresh token is echoed back and stays stored
	assert.Equal(t, pair.RefreshToken, next.RefreshToken)
	stored, err := f.tokens.Get(ctx, store.RefreshTokenKey("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored)
}

func TestRefresh_InvalidToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.register(t, "a@x.com", "pw12345!", "A")
	pair, err := f.svc.Login(ctx, "a@x.com", "pw12345!")
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// a valid access token must not pass as a refresh token
	_, err = f.svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_SupersededTokenRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.register(t, "a@x.com", "pw12345!", "A")

	first, err := f.svc.Login(ctx, "a@x.com", "pw12345!")
	require.NoError(t, err)

	// a second login overwrites the stored token under the subject key
	second, err := f.svc.Login(ctx, "a@x.com", "pw12345!")
	require.NoError(t, err)
	stored, err := f.tokens.Get(ctx, store.RefreshTokenKey("a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, second.RefreshToken, stored)

	// Stand in for a later login from another client: mint the stored
	// replacement with a different lifetime so the two tokens differ
	// without waiting out a clock tick.
	replacement, err := utils.NewRefreshToken("test-secret", "a@x.com", 1, 2*time.Hour)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, replacement.Token)
	require.NoError(t, f.tokens.Put(ctx, store.RefreshTokenKey("a@x.com"), replacement.Token, 2*time.Hour))

	// the first token still verifies cryptographically, but it is no
	// longer the stored token and must be rejected
	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.svc.Refresh(ctx, replacement.Token)
	assert.NoError(t, err)
}

func TestRefresh_RevokedByLogout(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.register(t, "a@x.com", "pw12345!", "A")

	pair, err := f.svc.Login(ctx, "a@x.com", "pw12345!")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, "a@x.com"))
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// logout is idempotent
	require.NoError(t, f.svc.Logout(ctx, "a@x.com"))
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	_, token := f.register(t, "a@x.com", "pw12345!", "A")

	require.NoError(t, f.svc.VerifyEmail(ctx, token))

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.NotNil(t, u.UpdatedAt)

	// the token is consumed exactly once
	err = f.svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, ErrActionTokenInvalid)
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	err := f.svc.VerifyEmail(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrActionTokenInvalid)
}

func TestVerifyEmail_Concurrent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	_, token := f.register(t, "a@x.com", "pw12345!", "A")

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		invalids  int
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			err := f.svc.VerifyEmail(ctx, token)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, ErrActionTokenInvalid):
				invalids++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, invalids)

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
}

func TestVerifyEmail_UserVanished(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, token := f.register(t, "a@x.com", "pw12345!", "A")
	f.users.drop("a@x.com")

	err := f.svc.VerifyEmail(context.Background(), token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	t.Parallel()

	f := newFixture()
	// unknown email reports success and leaves no trace
	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "unknown@x.com"))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, f.mailer.resetCount())
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.register(t, "a@x.com", "pw12345!", "A")

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "a@x.com"))
	require.Eventually(t, func() bool { return f.mailer.resetCount() > 0 },
		time.Second, 5*time.Millisecond)
	reset := f.mailer.lastReset()
	assert.Equal(t, "a@x.com", reset.email)

	require.NoError(t, f.svc.ConfirmPasswordReset(ctx, reset.token, "new-pw-789!"))

	// token is single use
	err := f.svc.ConfirmPasswordReset(ctx, reset.token, "another-pw")
	assert.ErrorIs(t, err, ErrActionTokenInvalid)

	// old password no longer works, the new one does
	_, err = f.svc.Login(ctx, "a@x.com", "pw12345!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "a@x.com", "new-pw-789!")
	assert.NoError(t, err)
}

func TestConfirmPasswordReset_ForcesLogout(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.register(t, "a@x.com", "pw12345!", "A")

	pair, err := f.svc.Login(ctx, "a@x.com", "pw12345!")
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "a@x.com"))
	require.Eventually(t, func() bool { return f.mailer.resetCount() > 0 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, f.svc.ConfirmPasswordReset(ctx, f.mailer.lastReset().token, "new-pw-789!"))

	// the previously issued refresh token must be dead now
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestConfirmPasswordReset_InvalidToken(t *testing.T) {
	t.Parallel()

	f := newFixture()
	err := f.svc.ConfirmPasswordReset(context.Background(), "never-issued", "new-pw")
	assert.ErrorIs(t, err, ErrActionTokenInvalid)
}

func TestLifecycleEndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	// register -> unverified account plus captured token
	id, token := f.register(t, "a@x.com", "pw12345!", "A")
	require.NotZero(t, id)
	u, err := f.svc.GetUserByID(ctx, id)
	require.NoError(t, err)
	require.False(t, u.IsVerified)

	// verify-email flips the flag
	require.NoError(t, f.svc.VerifyEmail(ctx, token))
	u, err = f.svc.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, u.IsVerified)

	// login yields a pair with expires_in=3600
	pair, err := f.svc.Login(ctx, "a@x.com", "pw12345!")
	require.NoError(t, err)
	require.Equal(t, 3600, pair.ExpiresIn)

	// refresh returns a new access token and the same refresh token
	next, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, next.AccessToken)
	require.Equal(t, pair.RefreshToken, next.RefreshToken)

	// logout kills subsequent refreshes
	require.NoError(t, f.svc.Logout(ctx, "a@x.com"))
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	id, _ := f.register(t, "a@x.com", "pw12345!", "Alice Doe")

	u, err := f.svc.GetUserByEmail(ctx, "A@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", u.FullName)

	u, err = f.svc.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = f.svc.GetUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.svc.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
