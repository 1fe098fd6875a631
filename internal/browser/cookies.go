package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Cookie mirrors the browser-exported JSON cookie format.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// LoadCookies reads a per-platform cookie file. Two formats are
// supported: a .json array exported from browser devtools, or a .txt
// file holding a raw "name=value; name2=value2" Cookie header (the
// domain parameter applies to the latter). Comment lines starting with
// '#' in .txt files are ignored.
func LoadCookies(path, domain string) ([]playwright.OptionalCookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(path) == ".json" {
		var cookies []Cookie
		if err := json.Unmarshal(data, &cookies); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		out := make([]playwright.OptionalCookie, 0, len(cookies))
		for _, c := range cookies {
			out = append(out, c.toPlaywright())
		}
		return out, nil
	}

	return parseCookieHeader(string(data), domain)
}

func parseCookieHeader(content, domain string) ([]playwright.OptionalCookie, error) {
	var header string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		header = line
		break
	}
	if header == "" {
		return nil, fmt.Errorf("cookie file is empty")
	}

	var out []playwright.OptionalCookie
	for _, item := range strings.Split(header, ";") {
		item = strings.TrimSpace(item)
		name, value, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		out = append(out, playwright.OptionalCookie{
			Name:   strings.TrimSpace(name),
			Value:  strings.TrimSpace(value),
			Domain: playwright.String(domain),
			Path:   playwright.String("/"),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no cookies parsed from header line")
	}
	return out, nil
}

func (c Cookie) toPlaywright() playwright.OptionalCookie {
	pc := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(c.Path),
	}
	if c.Expires > 0 {
		pc.Expires = playwright.Float(c.Expires)
	}
	if c.HTTPOnly {
		pc.HttpOnly = playwright.Bool(true)
	}
	if c.Secure {
		pc.Secure = playwright.Bool(true)
	}
	switch c.SameSite {
	case "Lax":
		pc.SameSite = playwright.SameSiteAttributeLax
	case "Strict":
		pc.SameSite = playwright.SameSiteAttributeStrict
	case "None":
		pc.SameSite = playwright.SameSiteAttributeNone
	}
	return pc
}
