// Package countries resolves ISO-3166 country codes and names in both
// directions for biographical sub-records and report rows.
package countries

import (
	"strings"

	"github.com/biter777/countries"
)

// NameByAlpha2 returns the country name for an alpha-2 code, or "" when the
// code is unknown.
func NameByAlpha2(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	c := countries.ByName(code)
	if c == countries.Unknown {
		return ""
	}
	return c.String()
}

// Alpha2ByName returns the alpha-2 code for a country name, or "" when the
// name is unknown.
func Alpha2ByName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	c := countries.ByName(name)
	if c == countries.Unknown {
		return ""
	}
	return c.Alpha2()
}
