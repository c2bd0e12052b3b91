package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"shrnq/config"
	"shrnq/controller"
	"shrnq/dtos/response"
	"shrnq/middleware"
	"shrnq/repository"
	"shrnq/repository/command_repository"
	"shrnq/repository/query_repository"
	"shrnq/repository/repository_test"
	"shrnq/services"

	"github.com/descope/virtualwebauthn"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryKV struct {
	data map[string]string
}

func (m *memoryKV) Put(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryKV) PutIfAbsent(_ context.Context, key, value string) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

type memoryCeremonies struct {
	data map[string][]byte
}

func (m *memoryCeremonies) StoreCeremony(_ context.Context, c *services.Ceremony) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.data[c.ID] = raw
	return nil
}

func (m *memoryCeremonies) TakeCeremony(_ context.Context, id string) (*services.Ceremony, error) {
	raw, ok := m.data[id]
	if !ok {
		return nil, services.ErrChallengeNotFound
	}
	delete(m.data, id)
	var c services.Ceremony
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *memoryCeremonies) DeleteCeremony(_ context.Context, id string) error {
	delete(m.data, id)
	return nil
}

// browser keeps cookies between requests the way a user agent would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := b.app.Test(req)
	require.NoError(b.t, err)
	for _, c := range resp.Cookies() {
		if c.Value == "" || c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	return resp
}

func (b *browser) get(target string) *http.Response {
	return b.do(httptest.NewRequest(fiber.MethodGet, target, nil))
}

func (b *browser) post(target string, form url.Values) *http.Response {
	req := httptest.NewRequest(fiber.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return b.do(req)
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func newTestServer(t *testing.T) *browser {
	t.Helper()
	conf := &config.Config{Application: config.Application{
		DisplayName: "shrnq",
		BaseURL:     "https://example.com",
		Server:      config.Server{RateLimit: 100, RateLimitWindow: 60},
		Security: config.Security{
			SessionSecret:            "session-secret",
			HoneypotSecret:           "honeypot-secret",
			SessionValidityInSeconds: 3600,
		},
		WebAuthn: config.WebAuthn{RpDisplayName: "shrnq", RpID: "example.com", RpOrigin: "https://example.com"},
		Links:    config.Links{MaxAllocationAttempts: 10},
	}}
	logger := zap.NewNop()
	middleware.InitValidator()

	db := repository_test.SetupSQLiteDB(t)
	store := repository.NewPasskeyStore(db, query_repository.NewUserQueryRepository(), command_repository.NewUserCommandRepository())
	// nil storage falls back to fiber's in-memory session storage.
	sessions := config.NewSessionStore(conf.Application.Security, nil)
	honeypot := services.NewHoneypotService(conf.Application.Security.HoneypotSecret)
	links := services.NewLinkService(&memoryKV{data: map[string]string{}}, conf.Application.Links.MaxAllocationAttempts, logger)
	passkeys := services.NewPasskeyService(store, &memoryCeremonies{data: map[string][]byte{}}, "shrnq", logger)

	app, err := NewServer(
		conf,
		logger,
		sessions,
		store,
		honeypot,
		controller.NewLinkController(links, honeypot, services.NewQRService(), conf.Application.BaseURL, logger),
		controller.NewPasskeyController(passkeys, sessions, conf.Application.WebAuthn, logger),
		controller.NewSeoController(conf.Application.BaseURL),
		controller.NewThemeController(false),
	).Start()
	require.NoError(t, err)
	return &browser{t: t, app: app, cookies: map[string]string{}}
}

func TestServer_ShortenAndRedirect(t *testing.T) {
	b := newTestServer(t)

	resp := b.get("/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var index response.IndexResponse
	decode(t, resp, &index)
	require.NotEmpty(t, index.CSRF)
	assert.Nil(t, index.User)

	form := url.Values{
		middleware.CSRFFormField:          {index.CSRF},
		index.Honeypot.NameFieldName:      {""},
		index.Honeypot.ValidFromFieldName: {index.Honeypot.EncryptedValidFrom},
		"url":                             {"https://example.com/page"},
	}
	resp = b.post("/", form)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var shortened response.ShortenResponse
	decode(t, resp, &shortened)
	assert.Equal(t, response.StatusSuccess, shortened.Status)
	require.True(t, strings.HasPrefix(shortened.URL, "example.com/"), shortened.URL)
	slug := strings.TrimPrefix(shortened.URL, "example.com/")

	resp = b.get("/" + slug)
	assert.Equal(t, fiber.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "https://example.com/page", resp.Header.Get(fiber.HeaderLocation))

	resp = b.get("/" + slug + "/qr.png")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))

	resp = b.get("/missing")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestServer_ShortenRejections(t *testing.T) {
	b := newTestServer(t)

	resp := b.get("/")
	var index response.IndexResponse
	decode(t, resp, &index)

	valid := func() url.Values {
		return url.Values{
			middleware.CSRFFormField:          {index.CSRF},
			index.Honeypot.NameFieldName:      {""},
			index.Honeypot.ValidFromFieldName: {index.Honeypot.EncryptedValidFrom},
			"url":                             {"https://example.com/page"},
		}
	}

	tests := []struct {
		name    string
		edit    func(url.Values)
		status  int
		message string
	}{
		{
			name:    "missing csrf token",
			edit:    func(f url.Values) { f.Del(middleware.CSRFFormField) },
			status:  fiber.StatusForbidden,
			message: "Invalid CSRF token",
		},
		{
			name:    "honeypot filled",
			edit:    func(f url.Values) { f.Set(index.Honeypot.NameFieldName, "bot") },
			status:  fiber.StatusBadRequest,
			message: "Form not submitted properly",
		},
		{
			name:    "plain http url",
			edit:    func(f url.Values) { f.Set("url", "http://example.com/page") },
			status:  fiber.StatusBadRequest,
			message: "Invalid submission",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid()
			tt.edit(form)
			resp := b.post("/", form)
			assert.Equal(t, tt.status, resp.StatusCode)
			var body response.ErrorResponse
			decode(t, resp, &body)
			assert.Equal(t, tt.message, body.Error)
		})
	}
}

func TestServer_PasskeyRegistrationFromLoginPage(t *testing.T) {
	b := newTestServer(t)
	rp := virtualwebauthn.RelyingParty{Name: "shrnq", ID: "example.com", Origin: "https://example.com"}
	credential := virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2)

	resp := b.get("/login?username=alice")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var options response.LoginOptions
	decode(t, resp, &options)
	require.NotEmpty(t, options.CSRF)
	require.NotNil(t, options.Registration)

	raw, err := json.Marshal(options.Registration.Response)
	require.NoError(t, err)
	parsed, err := virtualwebauthn.ParseAttestationOptions(string(raw))
	require.NoError(t, err)
	attestation := virtualwebauthn.CreateAttestationResponse(rp, virtualwebauthn.NewAuthenticator(), credential, *parsed)

	resp = b.post("/login", url.Values{
		"intent":   {services.IntentRegistration},
		"username": {"alice"},
		"response": {attestation},
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = b.post("/login", url.Values{
		middleware.CSRFFormField: {options.CSRF},
		"intent":                 {services.IntentRegistration},
		"username":               {"alice"},
		"response":               {attestation},
	})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	resp = b.get("/")
	var index response.IndexResponse
	decode(t, resp, &index)
	require.NotNil(t, index.User)
	assert.Equal(t, "alice", index.User.Username)

	resp = b.post("/logout", url.Values{middleware.CSRFFormField: {index.CSRF}})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	resp = b.get("/")
	decode(t, resp, &index)
	assert.Nil(t, index.User)
}

func TestServer_SeoRoutes(t *testing.T) {
	b := newTestServer(t)

	resp := b.get("/robots.txt")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=300", resp.Header.Get(fiber.HeaderCacheControl))

	resp = b.get("/sitemap.xml")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
