package controllers

import (
	"io"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FinWiseHQ/FinWise/internal/pkg/constants"
)

func newLoginPageApp() *fiber.App {
	app := fiber.New()
	app.Get(constants.LoginRoute, HandleLoginPage)
	return app
}

func TestHandleLoginPageEscapesRedirectTarget(t *testing.T) {
	app := newLoginPageApp()

	// A same-site path that tries to break out of the hidden input's
	// value attribute and inject its own form.
	payload := `/x"><form action="https://evil.example">`
	req := httptest.NewRequest("GET", constants.LoginRoute+"?redirect_url="+url.QueryEscape(payload), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.NotContains(t, string(body), `"><form action=`)
	assert.Contains(t, string(body), `value="/x&#34;&gt;&lt;form action=&#34;https://evil.example&#34;&gt;"`)
}

func TestHandleLoginPageKeepsPlainRedirectTarget(t *testing.T) {
	app := newLoginPageApp()

	req := httptest.NewRequest("GET", constants.LoginRoute+"?redirect_url=%2Ftransactions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `value="/transactions"`)
}

func TestSanitizeReturnTarget(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"relative path", "/transactions", "/transactions"},
		{"empty", "", constants.PublicRoute},
		{"absolute url", "https://evil.example", constants.PublicRoute},
		{"protocol relative", "//evil.example", constants.PublicRoute},
		{"no leading slash", "transactions", constants.PublicRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeReturnTarget(tt.target))
		})
	}
}
