package theme

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_CookieRoundTrip(t *testing.T) {
	s := NewSet("", nil)

	rec := httptest.NewRecorder()
	require.NoError(t, s.Write(rec, "green"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "green", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 365*24*60*60, c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	assert.Equal(t, "green", s.FromRequest(req))
}

func TestSet_UnknownFallsBack(t *testing.T) {
	s := NewSet("blue", []string{"blue", "green"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "blue", s.FromRequest(req), "no cookie")

	req.AddCookie(&http.Cookie{Name: CookieName, Value: "neon"})
	assert.Equal(t, "blue", s.FromRequest(req), "unknown cookie value")

	err := s.Write(httptest.NewRecorder(), "neon")
	assert.ErrorContains(t, err, "unknown theme")
}

func TestNewSet_AddsDefault(t *testing.T) {
	s := NewSet("amber", []string{"blue"})
	assert.True(t, s.Valid("amber"))
	assert.Equal(t, "amber", s.Available[0])
}

func TestBodyClasses(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"blue", "theme-blue"},
		{"blue-scaled", "theme-blue-scaled theme-scaled"},
		{"mono-scaled", "theme-mono-scaled theme-scaled"},
	}
	for _, tt := range tests {
		if got := BodyClasses(tt.name); got != tt.want {
			t.Errorf("BodyClasses(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("default-scaled"); got != "Default Scaled" {
		t.Errorf("Label = %q, want %q", got, "Default Scaled")
	}
}
