package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/clivebixby0/myapt-2/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	token    string
	user     *models.User
	meErr    error
	signErr  error
	outErr   error
	signOuts int
}

func (f *fakeBackend) SignUp(ctx context.Context, reg models.Registration) (*models.SignInResult, error) {
	return f.SignIn(ctx, models.Credentials{Email: reg.Email, Password: reg.Password})
}

func (f *fakeBackend) SignIn(ctx context.Context, creds models.Credentials) (*models.SignInResult, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	f.token = "tok-" + creds.Email
	return &models.SignInResult{Token: f.token, ExpiresAt: time.Now().Add(time.Hour).Unix()}, nil
}

func (f *fakeBackend) SignOut(ctx context.Context) error {
	f.signOuts++
	f.token = ""
	return f.outErr
}

func (f *fakeBackend) Me(ctx context.Context) (*models.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.token == "" {
		return nil, apperr.ErrUnauthenticated
	}
	return f.user, nil
}

func (f *fakeBackend) SetToken(token string) { f.token = token }

func bob() *models.User {
	return &models.User{ID: "u1", Email: "bob@example.com", Role: models.RoleTenant, Status: models.UserActive}
}

func TestWatcher_SignInPublishesProfile(t *testing.T) {
	backend := &fakeBackend{user: bob()}
	w := NewWatcher(backend, nil, nil)
	ch, cancel := w.Subscribe()
	defer cancel()
	assert.Nil(t, <-ch, "starts signed out")

	u, err := w.SignIn(context.Background(), models.Credentials{Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	got := <-ch
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "u1", w.Current().ID)

	require.NoError(t, w.SignOut(context.Background()))
	assert.Nil(t, <-ch)
	assert.Nil(t, w.Current())
	assert.Equal(t, 1, backend.signOuts)
}

func TestWatcher_ProfileLookupFailurePublishesNil(t *testing.T) {
	backend := &fakeBackend{meErr: apperr.New(apperr.UserDataNotFound, "")}
	w := NewWatcher(backend, nil, nil)
	ch, cancel := w.Subscribe()
	defer cancel()
	<-ch

	_, err := w.SignIn(context.Background(), models.Credentials{Email: "bob@example.com", Password: "secret1"})
	assert.Equal(t, apperr.UserDataNotFound, apperr.CodeOf(err))
	assert.Nil(t, <-ch)
	assert.Nil(t, w.Current())
	assert.Empty(t, backend.token, "token is dropped when the profile is missing")
}

func TestWatcher_SignInErrorLeavesStateAlone(t *testing.T) {
	backend := &fakeBackend{user: bob(), signErr: apperr.New(apperr.InvalidCredentials, "")}
	w := NewWatcher(backend, nil, nil)

	_, err := w.SignIn(context.Background(), models.Credentials{Email: "bob@example.com", Password: "nope"})
	assert.Equal(t, apperr.InvalidCredentials, apperr.CodeOf(err))
	assert.Nil(t, w.Current())
}

func TestWatcher_SignOutPublishesNilOnServerError(t *testing.T) {
	backend := &fakeBackend{user: bob(), outErr: apperr.New(apperr.NetworkRequestFailed, "")}
	w := NewWatcher(backend, nil, nil)
	_, err := w.SignIn(context.Background(), models.Credentials{Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	err = w.SignOut(context.Background())
	assert.Equal(t, apperr.NetworkRequestFailed, apperr.CodeOf(err))
	assert.Nil(t, w.Current())
}

func TestWatcher_SlowSubscriberSeesLatest(t *testing.T) {
	backend := &fakeBackend{user: bob()}
	w := NewWatcher(backend, nil, nil)
	ch, cancel := w.Subscribe()

	_, err := w.SignIn(context.Background(), models.Credentials{Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, w.SignOut(context.Background()))

	assert.Nil(t, <-ch)
	cancel()
	_, open := <-ch
	assert.False(t, open)
	cancel()
}

func TestWatcher_CurrentIsACopy(t *testing.T) {
	w := NewWatcher(&fakeBackend{user: bob()}, nil, nil)
	_, err := w.SignIn(context.Background(), models.Credentials{Email: "bob@example.com"})
	require.NoError(t, err)

	u := w.Current()
	u.Role = models.RoleAdmin
	assert.Equal(t, models.RoleTenant, w.Current().Role)
}

func TestWatcher_RestoreFromFile(t *testing.T) {
	file := &SessionFile{Path: filepath.Join(t.TempDir(), "myapt", "session.json")}
	backend := &fakeBackend{user: bob()}
	w := NewWatcher(backend, file, nil)
	_, err := w.SignIn(context.Background(), models.Credentials{Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	info, err := os.Stat(file.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	next := &fakeBackend{user: bob()}
	restored := NewWatcher(next, file, nil)
	u, err := restored.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "tok-bob@example.com", next.token)

	require.NoError(t, restored.SignOut(context.Background()))
	_, err = os.Stat(file.Path)
	assert.True(t, os.IsNotExist(err))

	u, err = NewWatcher(&fakeBackend{user: bob()}, file, nil).Restore(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestWatcher_RestoreSkipsExpiredSession(t *testing.T) {
	file := &SessionFile{Path: filepath.Join(t.TempDir(), "session.json")}
	require.NoError(t, file.Save(SavedSession{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
	backend := &fakeBackend{user: bob()}

	u, err := NewWatcher(backend, file, nil).Restore(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, u)
	assert.Empty(t, backend.token)
}

func TestSessionFile_LoadErrors(t *testing.T) {
	file := &SessionFile{Path: filepath.Join(t.TempDir(), "session.json")}
	s, err := file.Load()
	require.NoError(t, err)
	assert.Empty(t, s.Token)

	require.NoError(t, os.WriteFile(file.Path, []byte("{broken"), 0o600))
	_, err = file.Load()
	assert.Error(t, err)

	assert.NoError(t, file.Clear())
	assert.NoError(t, file.Clear(), "clearing twice is fine")
}
