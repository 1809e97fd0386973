package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/ssobridge/internal/http/state"
	"github.com/dropDatabas3/ssobridge/internal/oauth"
	"github.com/dropDatabas3/ssobridge/internal/profile"
	"github.com/dropDatabas3/ssobridge/internal/provider"
	"github.com/dropDatabas3/ssobridge/internal/store/memory"
)

// fakeHandshake reemplaza el round-trip OAuth real en tests.
type fakeHandshake struct {
	profileJSON string
	exchangeErr error
	fetchErr    error

	lastState string
	lastCode  string
}

func (f *fakeHandshake) AuthURL(_ context.Context, st string) (string, error) {
	f.lastState = st
	return "https://idp.test/authorize?state=" + st, nil
}

func (f *fakeHandshake) Exchange(_ context.Context, code string) (string, error) {
	f.lastCode = code
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return "access-token", nil
}

func (f *fakeHandshake) FetchProfile(_ context.Context, _ string) ([]byte, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return []byte(f.profileJSON), nil
}

func newTestService(t *testing.T, hs oauth.Handshake) LoginService {
	t.Helper()

	registry, rejected := provider.NewRegistry([]provider.Config{{
		Name:        "acme",
		Variant:     provider.VariantOAuth2,
		UserInfoURL: "https://idp.test/me",
		FieldMap: map[string]string{
			profile.FieldID:          "user.id",
			profile.FieldDisplayName: "user.name",
			profile.FieldEmails:      "user.email",
		},
		OAuth2: provider.OAuth2Endpoints{
			AuthURL:  "https://idp.test/authorize",
			TokenURL: "https://idp.test/token",
			ClientID: "client",
		},
		Icon: "fa-acme",
	}})
	if len(rejected) != 0 {
		t.Fatalf("rejected configs: %v", rejected)
	}

	return NewLoginService(Deps{
		Registry:   registry,
		Signer:     state.NewSigner([]byte("test-secret"), time.Minute),
		Links:      memory.NewLinkStore(),
		Directory:  memory.NewDirectory(),
		Groups:     memory.NewGroups(),
		BaseURL:    "https://bridge.test/",
		Handshakes: map[string]oauth.Handshake{"acme": hs},
	})
}

const goodProfile = `{"user":{"id":42,"name":"Jane Doe","email":"jane@acme.test"}}`

func TestBeginCallback_FullFlow(t *testing.T) {
	ctx := context.Background()
	hs := &fakeHandshake{profileJSON: goodProfile}
	svc := newTestService(t, hs)

	authURL, err := svc.Begin(ctx, "acme")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !strings.HasPrefix(authURL, "https://idp.test/authorize?state=") {
		t.Fatalf("auth url = %q", authURL)
	}
	if hs.lastState == "" {
		t.Fatal("state not passed to handshake")
	}

	res, err := svc.Callback(ctx, CallbackRequest{
		Provider: "acme",
		State:    hs.lastState,
		Code:     "the-code",
	})
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if res.UserID == "" || res.Provider != "acme" {
		t.Fatalf("result = %+v", res)
	}
	if hs.lastCode != "the-code" {
		t.Fatalf("code = %q", hs.lastCode)
	}

	// Segundo login con la misma identidad: mismo usuario.
	res2, err := svc.Callback(ctx, CallbackRequest{
		Provider: "acme",
		State:    mustState(t, svc, hs),
		Code:     "another-code",
	})
	if err != nil {
		t.Fatalf("second callback: %v", err)
	}
	if res2.UserID != res.UserID {
		t.Fatalf("repeat login: %q != %q", res2.UserID, res.UserID)
	}
}

func mustState(t *testing.T, svc LoginService, hs *fakeHandshake) string {
	t.Helper()
	if _, err := svc.Begin(context.Background(), "acme"); err != nil {
		t.Fatal(err)
	}
	return hs.lastState
}

func TestCallback_ParamValidation(t *testing.T) {
	ctx := context.Background()
	hs := &fakeHandshake{profileJSON: goodProfile}
	svc := newTestService(t, hs)

	if _, err := svc.Callback(ctx, CallbackRequest{Provider: "ghost", State: "s", Code: "c"}); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("got %v, want ErrUnknownProvider", err)
	}
	if _, err := svc.Callback(ctx, CallbackRequest{Provider: "acme", Code: "c"}); !errors.Is(err, ErrMissingState) {
		t.Fatalf("got %v, want ErrMissingState", err)
	}
	if _, err := svc.Callback(ctx, CallbackRequest{Provider: "acme", State: "s"}); !errors.Is(err, ErrMissingCode) {
		t.Fatalf("got %v, want ErrMissingCode", err)
	}
	if _, err := svc.Callback(ctx, CallbackRequest{Provider: "acme", State: "forged", Code: "c"}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestCallback_ExchangeFailure(t *testing.T) {
	ctx := context.Background()
	hs := &fakeHandshake{profileJSON: goodProfile, exchangeErr: errors.New("idp down")}
	svc := newTestService(t, hs)

	_, err := svc.Callback(ctx, CallbackRequest{
		Provider: "acme",
		State:    mustState(t, svc, hs),
		Code:     "c",
	})
	if !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("got %v, want ErrExchangeFailed", err)
	}
}

func TestCallback_MalformedProfile(t *testing.T) {
	ctx := context.Background()
	hs := &fakeHandshake{profileJSON: `{"user":{"name":"NoID"}}`}
	svc := newTestService(t, hs)

	_, err := svc.Callback(ctx, CallbackRequest{
		Provider: "acme",
		State:    mustState(t, svc, hs),
		Code:     "c",
	})
	if !errors.Is(err, ErrProfileInvalid) {
		t.Fatalf("got %v, want ErrProfileInvalid", err)
	}
}

func TestBegin_UnknownProvider(t *testing.T) {
	svc := newTestService(t, &fakeHandshake{profileJSON: goodProfile})
	if _, err := svc.Begin(context.Background(), "ghost"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("got %v, want ErrUnknownProvider", err)
	}
}

func TestProviders(t *testing.T) {
	svc := newTestService(t, &fakeHandshake{profileJSON: goodProfile})

	infos := svc.Providers()
	if len(infos) != 1 {
		t.Fatalf("providers = %d", len(infos))
	}
	info := infos[0]
	if info.Name != "acme" || info.URL != "/auth/acme" || info.CallbackURL != "/auth/acme/callback" {
		t.Fatalf("info = %+v", info)
	}
	if info.Icon != "fa-acme" {
		t.Fatalf("icon = %q", info.Icon)
	}
}

func TestUnlink_ThroughService(t *testing.T) {
	ctx := context.Background()
	hs := &fakeHandshake{profileJSON: goodProfile}
	svc := newTestService(t, hs)

	res, err := svc.Callback(ctx, CallbackRequest{
		Provider: "acme",
		State:    mustState(t, svc, hs),
		Code:     "c",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Unlink(ctx, res.UserID); err != nil {
		t.Fatalf("unlink: %v", err)
	}

	// Tras el unlink un nuevo login no encuentra link, pero el merge por
	// email devuelve la misma cuenta.
	res2, err := svc.Callback(ctx, CallbackRequest{
		Provider: "acme",
		State:    mustState(t, svc, hs),
		Code:     "c",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res2.UserID != res.UserID {
		t.Fatalf("relink landed on %q, want %q", res2.UserID, res.UserID)
	}
}
