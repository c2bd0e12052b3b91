package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"shrnq/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type memoryKV struct {
	data map[string]string
	err  error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}}
}

func (m *memoryKV) Put(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryKV) PutIfAbsent(_ context.Context, key, value string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

// fullKV behaves like a store where every slug is already taken.
type fullKV struct{}

func (fullKV) Put(context.Context, string, string) error { return nil }
func (fullKV) Get(context.Context, string) (string, bool, error) {
	return "https://taken.example", true, nil
}
func (fullKV) Delete(context.Context, string) error { return nil }
func (fullKV) PutIfAbsent(context.Context, string, string) (bool, error) {
	return false, nil
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

var errStoreDown = errors.New("connection refused")

func formRequest(method, target string, form url.Values, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func readJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}
