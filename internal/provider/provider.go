// Package provider defines the built-in DNS provider catalog.
package provider

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Provider is a named pair of resolver addresses with a short description.
type Provider struct {
	Name        string
	Primary     string
	Secondary   string
	Description string
}

// Label returns the menu label for the provider, "Name - Description".
func (p Provider) Label() string {
	return fmt.Sprintf("%s - %s", p.Name, p.Description)
}

// Catalog returns the built-in providers. A fresh slice is returned on every
// call so callers cannot mutate the catalog underneath each other.
func Catalog() []Provider {
	return []Provider{
		{
			Name:        "Cloudflare",
			Primary:     "1.1.1.1",
			Secondary:   "1.0.0.1",
			Description: "Fast and privacy-focused DNS",
		},
		{
			Name:        "Google",
			Primary:     "8.8.8.8",
			Secondary:   "8.8.4.4",
			Description: "Reliable Google DNS",
		},
		{
			Name:        "Quad9",
			Primary:     "9.9.9.9",
			Secondary:   "149.112.112.112",
			Description: "Security-focused DNS",
		},
		{
			Name:        "OpenDNS",
			Primary:     "208.67.222.222",
			Secondary:   "208.67.220.220",
			Description: "Family-safe DNS",
		},
	}
}

// Lookup finds a catalog entry by name, ignoring case. ok is false when no
// entry matches.
func Lookup(name string) (Provider, bool) {
	for _, p := range Catalog() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Provider{}, false
}

var validate = validator.New()

// ValidateAddr reports whether s is a usable IPv4 resolver address. Checked
// before anything reaches the privileged nmcli call so a typo fails here
// instead of as an opaque nmcli diagnostic.
func ValidateAddr(s string) error {
	if err := validate.Var(s, "required,ip4_addr"); err != nil {
		return fmt.Errorf("%q is not a valid IPv4 address", s)
	}
	return nil
}
