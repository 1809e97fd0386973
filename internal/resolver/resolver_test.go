package resolver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dropDatabas3/ssobridge/internal/domain/repository"
	"github.com/dropDatabas3/ssobridge/internal/profile"
	"github.com/dropDatabas3/ssobridge/internal/provider"
	"github.com/dropDatabas3/ssobridge/internal/store/memory"
)

func acmeConfig() *provider.Config {
	return &provider.Config{
		Name:        "acme",
		Variant:     provider.VariantOAuth2,
		UserInfoURL: "https://idp.acme.test/api/me",
	}
}

func acmeProfile(id, email string) *profile.Profile {
	return &profile.Profile{
		Provider:       "acme",
		ProviderUserID: id,
		DisplayName:    "Jane Doe",
		Emails:         []string{email},
	}
}

// countingLinks cuenta escrituras para verificar el fast path.
type countingLinks struct {
	repository.LinkRepository
	writes atomic.Int64
}

func (c *countingLinks) CreateLink(ctx context.Context, provider, providerUserID, userID string) error {
	c.writes.Add(1)
	return c.LinkRepository.CreateLink(ctx, provider, providerUserID, userID)
}

// failingLinks inyecta errores en la persistencia del link.
type failingLinks struct {
	repository.LinkRepository
	createErr error
}

func (f *failingLinks) CreateLink(ctx context.Context, provider, providerUserID, userID string) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.LinkRepository.CreateLink(ctx, provider, providerUserID, userID)
}

// failingGroups siempre rechaza el join.
type failingGroups struct{}

func (failingGroups) JoinGroup(ctx context.Context, group, userID string) error {
	return errors.New("group backend down")
}

func TestResolve_FirstLoginCreatesThenFastPath(t *testing.T) {
	ctx := context.Background()
	links := &countingLinks{LinkRepository: memory.NewLinkStore()}
	dir := memory.NewDirectory()
	r := New(acmeConfig(), Deps{Links: links, Directory: dir})

	uid1, err := r.Resolve(ctx, acmeProfile("42", "jane@acme.test"))
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if uid1 == "" {
		t.Fatal("empty user id")
	}
	if got := links.writes.Load(); got != 1 {
		t.Fatalf("link writes after first login = %d, want 1", got)
	}

	// El campo del provider quedó en el directorio.
	if v, err := dir.GetUserField(ctx, uid1, "acmeId"); err != nil || v != "42" {
		t.Fatalf("acmeId field = %q, %v", v, err)
	}

	// Segundo login: mismo uid, cero escrituras nuevas.
	uid2, err := r.Resolve(ctx, acmeProfile("42", "jane@acme.test"))
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if uid2 != uid1 {
		t.Fatalf("fast path returned %q, want %q", uid2, uid1)
	}
	if got := links.writes.Load(); got != 1 {
		t.Fatalf("link writes after fast path = %d, want 1", got)
	}
}

func TestResolve_MergesByEmail(t *testing.T) {
	ctx := context.Background()
	links := memory.NewLinkStore()
	dir := memory.NewDirectory()

	existing, err := dir.Create(ctx, repository.CreateUserInput{Username: "jane", Email: "jane@acme.test"})
	if err != nil {
		t.Fatal(err)
	}

	r := New(acmeConfig(), Deps{Links: links, Directory: dir})
	uid, err := r.Resolve(ctx, acmeProfile("42", "jane@acme.test"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if uid != existing {
		t.Fatalf("merged into %q, want existing account %q", uid, existing)
	}

	// El link apunta a la cuenta existente.
	if got, err := links.FindUserID(ctx, "acme", "42"); err != nil || got != existing {
		t.Fatalf("link = %q, %v", got, err)
	}
}

func TestResolve_DistinctIdentitiesDistinctAccounts(t *testing.T) {
	ctx := context.Background()
	r := New(acmeConfig(), Deps{Links: memory.NewLinkStore(), Directory: memory.NewDirectory()})

	uid1, err := r.Resolve(ctx, acmeProfile("1", "a@acme.test"))
	if err != nil {
		t.Fatal(err)
	}
	uid2, err := r.Resolve(ctx, acmeProfile("2", "b@acme.test"))
	if err != nil {
		t.Fatal(err)
	}
	if uid1 == uid2 {
		t.Fatal("distinct provider identities mapped to the same account")
	}
}

func TestResolve_LinkPersistFailure(t *testing.T) {
	ctx := context.Background()
	links := &failingLinks{
		LinkRepository: memory.NewLinkStore(),
		createErr:      errors.New("kv down"),
	}
	r := New(acmeConfig(), Deps{Links: links, Directory: memory.NewDirectory()})

	_, err := r.Resolve(ctx, acmeProfile("42", "jane@acme.test"))
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("got %v, want ErrResolution", err)
	}
	if !errors.Is(err, ErrLinkPersist) {
		t.Fatalf("got %v, want ErrLinkPersist cause", err)
	}

	// El usuario quedó creado sin link; el retry cae en el merge por email.
	links.createErr = nil
	uid, err := r.Resolve(ctx, acmeProfile("42", "jane@acme.test"))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if uid == "" {
		t.Fatal("retry returned empty uid")
	}
}

func TestResolve_AdminGroupBestEffort(t *testing.T) {
	ctx := context.Background()
	cfg := acmeConfig()
	cfg.TrustAdminClaim = true

	p := acmeProfile("42", "jane@acme.test")
	p.IsAdmin = true

	r := New(cfg, Deps{
		Links:     memory.NewLinkStore(),
		Directory: memory.NewDirectory(),
		Groups:    failingGroups{},
	})

	// Sin AdminGroupRequired el join fallido no corta el login.
	if _, err := r.Resolve(ctx, p); err != nil {
		t.Fatalf("best-effort join failed the login: %v", err)
	}
}

func TestResolve_AdminGroupRequired(t *testing.T) {
	ctx := context.Background()
	cfg := acmeConfig()
	cfg.TrustAdminClaim = true
	cfg.AdminGroupRequired = true

	p := acmeProfile("42", "jane@acme.test")
	p.IsAdmin = true

	r := New(cfg, Deps{
		Links:     memory.NewLinkStore(),
		Directory: memory.NewDirectory(),
		Groups:    failingGroups{},
	})

	if _, err := r.Resolve(ctx, p); !errors.Is(err, ErrGroupJoin) {
		t.Fatalf("got %v, want ErrGroupJoin", err)
	}
}

func TestResolve_AdminGroupJoin(t *testing.T) {
	ctx := context.Background()
	cfg := acmeConfig()
	cfg.TrustAdminClaim = true
	cfg.AdminGroup = "staff"

	p := acmeProfile("42", "jane@acme.test")
	p.IsAdmin = true

	groups := memory.NewGroups()
	r := New(cfg, Deps{
		Links:     memory.NewLinkStore(),
		Directory: memory.NewDirectory(),
		Groups:    groups,
	})

	uid, err := r.Resolve(ctx, p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !groups.IsMember("staff", uid) {
		t.Fatal("admin claim honored but user not in group")
	}
}

func TestResolve_ConcurrentSameIdentity(t *testing.T) {
	ctx := context.Background()
	dir := memory.NewDirectory()
	r := New(acmeConfig(), Deps{Links: memory.NewLinkStore(), Directory: dir})

	const goroutines = 16
	uids := make([]string, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			uid, err := r.Resolve(ctx, acmeProfile("42", "jane@acme.test"))
			if err != nil {
				t.Errorf("resolve %d: %v", i, err)
				return
			}
			uids[i] = uid
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if uids[i] != uids[0] {
			t.Fatalf("concurrent resolutions diverged: %q vs %q", uids[i], uids[0])
		}
	}
}
