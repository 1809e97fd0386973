// Package memory provides in-process implementations of the link repository
// and the external collaborator contracts. Intended for development and
// tests; production deployments use the redis or pg backends.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/ssobridge/internal/domain/repository"
)

// LinkStore implementa repository.LinkRepository sobre go-cache.
// Las keys siguen el layout "{provider}Id:uid/{providerUserID}", el mismo
// namespace que usan los backends KV persistentes.
type LinkStore struct {
	c *gocache.Cache
}

// NewLinkStore crea un link store en memoria sin expiración.
func NewLinkStore() *LinkStore {
	return &LinkStore{c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func linkKey(provider, providerUserID string) string {
	return provider + "Id:uid/" + providerUserID
}

func (s *LinkStore) FindUserID(ctx context.Context, provider, providerUserID string) (string, error) {
	v, ok := s.c.Get(linkKey(provider, providerUserID))
	if !ok {
		return "", repository.ErrNotFound
	}
	return v.(string), nil
}

func (s *LinkStore) CreateLink(ctx context.Context, provider, providerUserID, userID string) error {
	// Last-write-wins ante un duplicado, según el contrato del store.
	s.c.Set(linkKey(provider, providerUserID), userID, gocache.NoExpiration)
	return nil
}

func (s *LinkStore) DeleteLink(ctx context.Context, provider, providerUserID string) error {
	s.c.Delete(linkKey(provider, providerUserID))
	return nil
}

// Directory implementa repository.UserDirectory en memoria.
type Directory struct {
	mu      sync.RWMutex
	byID    map[string]*repository.User
	byEmail map[string]string
}

// NewDirectory crea un directorio de usuarios en memoria.
func NewDirectory() *Directory {
	return &Directory{
		byID:    make(map[string]*repository.User),
		byEmail: make(map[string]string),
	}
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	uid, ok := d.byEmail[email]
	if !ok {
		return "", repository.ErrNotFound
	}
	return uid, nil
}

func (d *Directory) Create(ctx context.Context, input repository.CreateUserInput) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	uid := uuid.NewString()
	d.byID[uid] = &repository.User{
		ID:       uid,
		Username: input.Username,
		Email:    input.Email,
		Fields:   make(map[string]string),
	}
	d.byEmail[input.Email] = uid
	return uid, nil
}

func (d *Directory) SetUserField(ctx context.Context, userID, field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Fields[field] = value
	return nil
}

func (d *Directory) GetUserField(ctx context.Context, userID, field string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byID[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	v, ok := u.Fields[field]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

// Groups implementa repository.GroupService en memoria.
type Groups struct {
	mu      sync.Mutex
	members map[string]map[string]bool // group -> set de user ids
}

// NewGroups crea un group service en memoria.
func NewGroups() *Groups {
	return &Groups{members: make(map[string]map[string]bool)}
}

func (g *Groups) JoinGroup(ctx context.Context, group, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.members[group] == nil {
		g.members[group] = make(map[string]bool)
	}
	g.members[group][userID] = true
	return nil
}

// IsMember reporta si el usuario pertenece al grupo. Solo para tests.
func (g *Groups) IsMember(group, userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members[group][userID]
}
