// Package auth tracks the signed-in user on the client and tells subscribers
// when it changes.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/clivebixby0/myapt-2/internal/models"
	"go.uber.org/zap"
)

// Backend is the part of the API client the watcher needs. *api.Client
// implements it.
type Backend interface {
	SignUp(ctx context.Context, reg models.Registration) (*models.SignInResult, error)
	SignIn(ctx context.Context, creds models.Credentials) (*models.SignInResult, error)
	SignOut(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	SetToken(token string)
}

// Watcher holds the current user. Every session change looks the profile up
// again; a failed lookup publishes nil.
type Watcher struct {
	backend Backend
	file    *SessionFile
	log     *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	current *models.User
	subs    map[int]chan *models.User
	nextSub int
}

// NewWatcher returns a signed-out watcher. file may be nil to keep the
// session in memory only.
func NewWatcher(backend Backend, file *SessionFile, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		backend: backend,
		file:    file,
		log:     log,
		now:     time.Now,
		subs:    map[int]chan *models.User{},
	}
}

// Restore picks up a saved session. It returns nil, nil when there is none
// or it has expired.
func (w *Watcher) Restore(ctx context.Context) (*models.User, error) {
	if w.file == nil {
		return nil, nil
	}
	saved, err := w.file.Load()
	if err != nil {
		return nil, err
	}
	if saved.Token == "" || saved.Expired(w.now()) {
		return nil, nil
	}
	w.backend.SetToken(saved.Token)
	return w.refresh(ctx)
}

// SignUp registers a tenant and signs them in.
func (w *Watcher) SignUp(ctx context.Context, reg models.Registration) (*models.User, error) {
	res, err := w.backend.SignUp(ctx, reg)
	if err != nil {
		return nil, err
	}
	w.save(res, reg.Email)
	return w.refresh(ctx)
}

// SignIn opens a session and returns the signed-in profile.
func (w *Watcher) SignIn(ctx context.Context, creds models.Credentials) (*models.User, error) {
	res, err := w.backend.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	w.save(res, creds.Email)
	return w.refresh(ctx)
}

// SignOut ends the session. Subscribers see nil even when the server could
// not be told.
func (w *Watcher) SignOut(ctx context.Context) error {
	err := w.backend.SignOut(ctx)
	w.forget()
	w.publish(nil)
	return err
}

// Current returns a copy of the signed-in user, or nil.
func (w *Watcher) Current() *models.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	return clone(w.current)
}

// Subscribe returns a channel that receives the current user right away and
// on every change after that. Only the latest value is kept for a slow
// reader. cancel closes the channel.
func (w *Watcher) Subscribe() (<-chan *models.User, func()) {
	ch := make(chan *models.User, 1)
	w.mu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch
	ch <- clone(w.current)
	w.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			close(ch)
			w.mu.Unlock()
		})
	}
	return ch, cancel
}

func (w *Watcher) refresh(ctx context.Context) (*models.User, error) {
	u, err := w.backend.Me(ctx)
	if err != nil {
		w.log.Warn("profile lookup failed, signing out", zap.Error(err))
		w.backend.SetToken("")
		w.forget()
		w.publish(nil)
		return nil, err
	}
	w.publish(u)
	return clone(u), nil
}

func (w *Watcher) save(res *models.SignInResult, email string) {
	if w.file == nil {
		return
	}
	s := SavedSession{Token: res.Token, Email: email}
	if res.ExpiresAt > 0 {
		s.ExpiresAt = time.Unix(res.ExpiresAt, 0)
	}
	if err := w.file.Save(s); err != nil {
		w.log.Warn("failed to save session", zap.Error(err))
	}
}

func (w *Watcher) forget() {
	if w.file == nil {
		return
	}
	if err := w.file.Clear(); err != nil {
		w.log.Warn("failed to clear session file", zap.Error(err))
	}
}

func (w *Watcher) publish(u *models.User) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = clone(u)
	for _, ch := range w.subs {
		select {
		case <-ch:
		default:
		}
		ch <- clone(u)
	}
}

func clone(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
