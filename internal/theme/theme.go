// Package theme persists the active dashboard theme in a cookie and derives
// the body classes the stylesheet keys off.
package theme

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
)

const (
	// CookieName is the cookie holding the active theme name.
	CookieName = "active_theme"

	// DefaultTheme is used when no valid cookie is present.
	DefaultTheme = "blue"

	cookieMaxAge = 365 * 24 * time.Hour
	scaledSuffix = "-scaled"
)

// DefaultAvailable is the theme list used when none is configured.
var DefaultAvailable = []string{"default", "blue", "green", "amber", "default-scaled", "blue-scaled", "mono-scaled"}

// Option is one entry of the theme selector.
type Option struct {
	Value string
	Label string
}

// Set is the list of selectable themes and the fallback.
type Set struct {
	Default   string
	Available []string
}

// NewSet returns a Set. An empty list falls back to DefaultAvailable, and a
// default outside the list is added to it.
func NewSet(def string, available []string) Set {
	if def == "" {
		def = DefaultTheme
	}
	if len(available) == 0 {
		available = DefaultAvailable
	}
	list := slices.Clone(available)
	if !slices.Contains(list, def) {
		list = append([]string{def}, list...)
	}
	return Set{Default: def, Available: list}
}

// Valid reports whether name is selectable.
func (s Set) Valid(name string) bool {
	return slices.Contains(s.Available, name)
}

// Resolve returns name if it is selectable and the default otherwise.
func (s Set) Resolve(name string) string {
	if s.Valid(name) {
		return name
	}
	return s.Default
}

// FromRequest reads the theme cookie.
func (s Set) FromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return s.Default
	}
	return s.Resolve(c.Value)
}

// Write sets the theme cookie for one year on the whole site.
func (s Set) Write(w http.ResponseWriter, name string) error {
	if !s.Valid(name) {
		return fmt.Errorf("unknown theme %q", name)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    name,
		Path:     "/",
		MaxAge:   int(cookieMaxAge / time.Second),
		Expires:  time.Now().Add(cookieMaxAge),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Options lists the selectable themes with display labels.
func (s Set) Options() []Option {
	opts := make([]Option, 0, len(s.Available))
	for _, name := range s.Available {
		opts = append(opts, Option{Value: name, Label: Label(name)})
	}
	return opts
}

// IsScaled reports whether name is a compact variant.
func IsScaled(name string) bool {
	return strings.HasSuffix(name, scaledSuffix)
}

// BodyClasses returns the classes for the <body> element.
func BodyClasses(name string) string {
	classes := "theme-" + name
	if IsScaled(name) {
		classes += " theme-scaled"
	}
	return classes
}

// Label turns "blue-scaled" into "Blue Scaled".
func Label(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
