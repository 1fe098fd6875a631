// Boss直聘 (zhipin.com) adapter.

package boss

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/playwright-community/playwright-go"

	"go-jobapply-automation/internal/browser"
	"go-jobapply-automation/internal/platform"
)

const (
	platformID = "boss"
	baseURL    = "https://www.zhipin.com"
)

// Search URL code tables. Keys are the values as they appear in the
// config file; unknown values simply omit the parameter.
var urlParams = map[string]map[string]string{
	"city": {
		"全国": "100010000",
		"北京": "101010100",
		"上海": "101020100",
		"广州": "101280100",
		"深圳": "101280600",
		"杭州": "101210100",
		"成都": "101270100",
		"南京": "101190100",
		"武汉": "101200100",
		"西安": "101110100",
		"苏州": "101190400",
	},
	"salary": {
		"20-50K":  "406",
		"50K以上":   "407",
	},
	"experience": {
		"不限":    "101",
		"3-5年":  "105",
		"5-10年": "106",
		"10年以上": "107",
	},
	"degree": {
		"本科": "203",
	},
}

type Adapter struct {
	sess  *browser.Session
	debug *browser.Debugger
}

func New(sess *browser.Session, debug *browser.Debugger) *Adapter {
	return &Adapter{sess: sess, debug: debug}
}

func (a *Adapter) ID() string { return platformID }

func (a *Adapter) Search(ctx context.Context, spec platform.SearchSpec) ([]platform.JobPosting, error) {
	var all []platform.JobPosting
	seen := mapset.NewSet[string]()

	for _, keyword := range spec.Keywords {
		if ctx.Err() != nil {
			return all, ctx.Err()
		}

		url := buildSearchURL(keyword, spec)
		log.Printf("[boss] 🔍 searching %q: %s", keyword, url)

		if err := a.sess.Goto(ctx, url); err != nil {
			log.Printf("[boss] ⚠️ navigation failed for %q: %v", keyword, err)
			continue
		}
		browser.RandomDelay(1500, 3000)

		if a.loginRequired() {
			return all, fmt.Errorf("search redirected to login: %w", platform.ErrSessionExpired)
		}

		if _, err := a.sess.Page.WaitForSelector(".job-card-wrap", playwright.PageWaitForSelectorOptions{
			Timeout: playwright.Float(10000),
		}); err != nil {
			a.debug.Capture(a.sess.Page, "boss-no-results", "Boss: no job cards found, markup may have changed")
			continue
		}

		cards, err := a.sess.Page.QuerySelectorAll(".job-card-wrap")
		if err != nil {
			continue
		}

		found := 0
		for _, card := range cards {
			p, ok := parseCard(card)
			if !ok || seen.Contains(p.ExternalID) {
				continue
			}
			seen.Add(p.ExternalID)
			all = append(all, p)
			found++
		}
		log.Printf("[boss] found %d new postings for %q", found, keyword)

		_ = browser.HumanScroll(a.sess.Page)
		browser.RandomDelay(1500, 2500)
	}

	return all, nil
}

func parseCard(card playwright.ElementHandle) (platform.JobPosting, bool) {
	link, err := card.QuerySelector(".job-name")
	if err != nil || link == nil {
		return platform.JobPosting{}, false
	}

	href, _ := link.GetAttribute("href")
	id := externalID(href)
	title, _ := link.InnerText()
	title = strings.TrimSpace(title)
	if id == "" || title == "" {
		return platform.JobPosting{}, false
	}

	p := platform.JobPosting{
		Platform:     platformID,
		ExternalID:   id,
		Title:        title,
		Salary:       innerText(card, ".job-salary"),
		Company:      innerText(card, ".boss-name"),
		Location:     innerText(card, ".company-location"),
		URL:          absoluteURL(href),
		DiscoveredAt: time.Now(),
	}
	return p, true
}

func (a *Adapter) Apply(ctx context.Context, posting platform.JobPosting, greeting string) error {
	if posting.URL == "" {
		return fmt.Errorf("posting has no url")
	}

	if err := a.sess.Goto(ctx, posting.URL); err != nil {
		return fmt.Errorf("open posting: %w", err)
	}
	browser.RandomDelay(1500, 2500)

	if a.loginRequired() {
		return platform.ErrSessionExpired
	}

	chatBtn, err := a.sess.Page.QuerySelector(".btn-startchat")
	if err != nil || chatBtn == nil {
		return fmt.Errorf("chat button not found")
	}

	btnText, _ := chatBtn.InnerText()
	if strings.Contains(btnText, "继续沟通") {
		return fmt.Errorf("already in contact with recruiter")
	}

	if err := chatBtn.Click(); err != nil {
		return fmt.Errorf("click chat button: %w", err)
	}
	browser.RandomDelay(1500, 2500)

	return a.sendGreeting(greeting)
}

// sendGreeting fills the chat box if one is present. Some postings
// jump straight into the chat page without a compose box; clicking the
// chat button already counts as the apply there.
func (a *Adapter) sendGreeting(greeting string) error {
	if greeting == "" {
		return nil
	}

	inputSelectors := []string{
		".chat-input textarea",
		".message-input textarea",
		"#chat-input",
		"textarea.input-area",
	}

	var input playwright.ElementHandle
	for _, sel := range inputSelectors {
		input, _ = a.sess.Page.QuerySelector(sel)
		if input != nil {
			break
		}
	}
	if input == nil {
		return nil
	}

	if err := input.Fill(greeting); err != nil {
		return fmt.Errorf("fill greeting: %w", err)
	}
	browser.RandomDelay(400, 800)

	sendSelectors := []string{".btn-send", ".send-btn", `button:has-text("发送")`}
	for _, sel := range sendSelectors {
		btn, _ := a.sess.Page.QuerySelector(sel)
		if btn != nil {
			if err := btn.Click(); err != nil {
				return fmt.Errorf("click send: %w", err)
			}
			browser.RandomDelay(800, 1200)
			return nil
		}
	}
	return nil
}

func (a *Adapter) loginRequired() bool {
	if strings.Contains(a.sess.Page.URL(), "login") {
		return true
	}
	btn, _ := a.sess.Page.QuerySelector(".btn-sign")
	return btn != nil
}

func buildSearchURL(keyword string, spec platform.SearchSpec) string {
	params := []string{"query=" + url.QueryEscape(keyword)}
	for _, p := range []struct{ kind, value, name string }{
		{"city", spec.City, "city"},
		{"salary", spec.Salary, "salary"},
		{"experience", spec.Experience, "experience"},
		{"degree", spec.Degree, "degree"},
	} {
		if code := urlParams[p.kind][p.value]; code != "" {
			params = append(params, p.name+"="+code)
		}
	}
	return baseURL + "/web/geek/jobs?" + strings.Join(params, "&")
}

func absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

func externalID(href string) string {
	if href == "" {
		return ""
	}
	parts := strings.Split(href, "/")
	return strings.TrimSuffix(parts[len(parts)-1], ".html")
}

func innerText(card playwright.ElementHandle, sel string) string {
	el, err := card.QuerySelector(sel)
	if err != nil || el == nil {
		return ""
	}
	text, _ := el.InnerText()
	return strings.TrimSpace(text)
}
