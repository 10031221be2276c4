// Package session supplies the identity stamped onto uploaded records.
// Identity is passed explicitly into the upload and publish paths so tests
// can run with fixture users instead of ambient global state.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

var ErrNoSession = errors.New("session: not signed in")

type User struct {
	UserID      string
	DisplayName string
	AvatarURL   string
}

// Channel is the display name stamped on published records.
func (u User) Channel() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return "Anonymous Creator"
}

// Avatar falls back to a generated avatar seeded by the user id.
func (u User) Avatar() string {
	if u.AvatarURL != "" {
		return u.AvatarURL
	}
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", u.UserID)
}

type Provider interface {
	// Current returns the signed-in user, or ErrNoSession when there is
	// none. Uploads and publishes are blocked without one.
	Current(ctx context.Context) (User, error)
}

// StaticProvider serves one configured identity, for deployments fronted
// by an auth layer that pins the user.
type StaticProvider struct {
	user User
}

func NewStaticProvider(user User) *StaticProvider {
	return &StaticProvider{user: user}
}

func (p *StaticProvider) Current(ctx context.Context) (User, error) {
	if p.user.UserID == "" {
		return User{}, ErrNoSession
	}
	return p.user, nil
}

// AnonymousProvider mints a random identity on first use and keeps it for
// the lifetime of the process, mirroring anonymous sign-in.
type AnonymousProvider struct {
	once sync.Once
	user User
}

func NewAnonymousProvider() *AnonymousProvider {
	return &AnonymousProvider{}
}

func (p *AnonymousProvider) Current(ctx context.Context) (User, error) {
	p.once.Do(func() {
		id := uuid.NewString()
		p.user = User{
			UserID:      id,
			DisplayName: fmt.Sprintf("User%d", rand.Intn(10000)),
			AvatarURL:   fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", id),
		}
	})
	return p.user, nil
}
