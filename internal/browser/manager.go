// Playwright lifecycle and per-platform sessions. Each platform owns
// one browser context with its own cookies for the whole run.

package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func Launch(headless bool) (*Manager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	return &Manager{pw: pw, browser: b}, nil
}

func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.browser != nil {
		_ = m.browser.Close()
	}
	if m.pw != nil {
		_ = m.pw.Stop()
	}
}

// Session is one platform's exclusive browser context. Goto paces
// navigations through a rate limiter so the adapters cannot hammer the
// site between the orchestrator's jitter pauses.
type Session struct {
	Context playwright.BrowserContext
	Page    playwright.Page

	nav *rate.Limiter
}

// NewSession creates a context with the platform's cookies injected.
// navPerSec limits page navigations for this session.
func (m *Manager) NewSession(cookies []playwright.OptionalCookie, navPerSec float64) (*Session, error) {
	ctx, err := m.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
		UserAgent: playwright.String(userAgent),
	})
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	if len(cookies) > 0 {
		if err := ctx.AddCookies(cookies); err != nil {
			_ = ctx.Close()
			return nil, fmt.Errorf("add cookies: %w", err)
		}
	}

	page, err := ctx.NewPage()
	if err != nil {
		_ = ctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	page.SetDefaultTimeout(30000)

	if navPerSec <= 0 {
		navPerSec = 0.5
	}
	return &Session{
		Context: ctx,
		Page:    page,
		nav:     rate.NewLimiter(rate.Limit(navPerSec), 1),
	}, nil
}

func (s *Session) Goto(ctx context.Context, url string) error {
	if err := s.nav.Wait(ctx); err != nil {
		return err
	}
	_, err := s.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	})
	return err
}

func (s *Session) Close() {
	if s == nil || s.Context == nil {
		return
	}
	_ = s.Context.Close()
}
