// 猎聘 (liepin.com) adapter. Liepin's list page markup shifts between
// frontend releases, so card parsing falls back through several
// selector generations and finally to a raw /job/ link scan.

package liepin

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
	platformID = "liepin"
	baseURL    = "https://www.liepin.com"
)

// Liepin encodes salary as annual ranges (万/year) via salaryCode and
// experience via workYearCode.
var urlParams = map[string]map[string]string{
	"city": {
		"北京": "010",
		"上海": "020",
		"深圳": "050090",
		"广州": "050020",
		"杭州": "070020",
		"成都": "280020",
		"南京": "060020",
		"武汉": "170020",
		"西安": "200020",
		"苏州": "060080",
	},
	"salary": {
		"10万以下":  "1",
		"10-20万": "2",
		"20-30万": "3",
		"21-30万": "4",
		"31-50万": "5",
		"51-70万": "6",
		"71-100万": "7",
		"100万以上": "8",
	},
	"experience": {
		"1年以内":  "0$1",
		"1-3年":  "1$3",
		"3-5年":  "3$5",
		"5-10年": "5$10",
		"10年以上": "10$",
	},
	"degree": {
		"大专": "30",
		"本科": "40",
		"硕士": "50",
		"博士": "60",
	},
}

var cardSelectors = []string{
	".job-card-pc-container",
	".job-list-box .job-card",
	`[class*="job-card"]`,
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

		searchURL := buildSearchURL(keyword, spec)
		log.Printf("[liepin] 🔍 searching %q: %s", keyword, searchURL)

		if err := a.sess.Goto(ctx, searchURL); err != nil {
			log.Printf("[liepin] ⚠️ navigation failed for %q: %v", keyword, err)
			continue
		}
		// Liepin renders the list client-side and is slow about it.
		browser.RandomDelay(2500, 4000)

		if a.loginRequired() {
			return all, fmt.Errorf("search redirected to login: %w", platform.ErrSessionExpired)
		}

		found := 0
		for _, p := range a.parseResults() {
			if seen.Contains(p.ExternalID) {
				continue
			}
			seen.Add(p.ExternalID)
			all = append(all, p)
			found++
		}
		log.Printf("[liepin] found %d new postings for %q", found, keyword)

		_ = browser.HumanScroll(a.sess.Page)
		browser.RandomDelay(1500, 2500)
	}

	return all, nil
}

func (a *Adapter) parseResults() []platform.JobPosting {
	var cards []playwright.ElementHandle
	for _, sel := range cardSelectors {
		if _, err := a.sess.Page.WaitForSelector(sel, playwright.PageWaitForSelectorOptions{
			Timeout: playwright.Float(10000),
		}); err != nil {
			continue
		}
		cards, _ = a.sess.Page.QuerySelectorAll(sel)
		if len(cards) > 0 {
			break
		}
	}

	if len(cards) == 0 {
		a.debug.Capture(a.sess.Page, "liepin-no-cards", "Liepin: no job cards matched, falling back to link scan")
		return a.parseJobLinks()
	}

	var jobs []platform.JobPosting
	for _, card := range cards {
		if p, ok := parseCard(card); ok {
			jobs = append(jobs, p)
		}
	}
	return jobs
}

// parseJobLinks is the last-resort parser: collect every /job/ anchor
// on the page. Yields id, title and url only.
func (a *Adapter) parseJobLinks() []platform.JobPosting {
	links, err := a.sess.Page.QuerySelectorAll(`a[href*="/job/"]`)
	if err != nil {
		return nil
	}

	seen := mapset.NewSet[string]()
	var jobs []platform.JobPosting
	for _, link := range links {
		href, _ := link.GetAttribute("href")
		id := externalID(href)
		if id == "" || seen.Contains(id) {
			continue
		}

		title, _ := link.InnerText()
		title = strings.Join(strings.Fields(title), " ")
		if len([]rune(title)) < 2 {
			continue
		}

		seen.Add(id)
		jobs = append(jobs, platform.JobPosting{
			Platform:     platformID,
			ExternalID:   id,
			Title:        title,
			URL:          absoluteURL(href),
			DiscoveredAt: time.Now(),
		})
	}
	log.Printf("[liepin] link scan recovered %d postings", len(jobs))
	return jobs
}

func parseCard(card playwright.ElementHandle) (platform.JobPosting, bool) {
	link := firstMatch(card, "a.ellipsis-1", ".job-title-box a", `a[href*="/job/"]`)
	if link == nil {
		return platform.JobPosting{}, false
	}

	href, _ := link.GetAttribute("href")
	id := externalID(href)

	title, _ := link.GetAttribute("title")
	if title == "" {
		title, _ = link.InnerText()
	}
	title = strings.Join(strings.Fields(title), " ")
	if id == "" || title == "" {
		return platform.JobPosting{}, false
	}

	company := innerText(card, ".company-name a", ".company-name", `a[href*="/company/"]`)
	company = strings.Join(strings.Fields(company), " ")

	return platform.JobPosting{
		Platform:     platformID,
		ExternalID:   id,
		Title:        title,
		Salary:       innerText(card, ".job-salary", ".salary", `span[class*="salary"]`),
		Company:      company,
		Location:     innerText(card, ".job-dq", ".area", `[class*="city"]`),
		URL:          absoluteURL(href),
		DiscoveredAt: time.Now(),
	}, true
}

func (a *Adapter) Apply(ctx context.Context, posting platform.JobPosting, greeting string) error {
	if posting.URL == "" {
		return fmt.Errorf("posting has no url")
	}

	if err := a.sess.Goto(ctx, posting.URL); err != nil {
		return fmt.Errorf("open posting: %w", err)
	}
	browser.RandomDelay(2500, 4000)

	if a.loginRequired() {
		return platform.ErrSessionExpired
	}

	btn := a.findApplyButton()
	if btn == nil {
		a.debug.Capture(a.sess.Page, "liepin-no-apply-btn", "Liepin: apply button not found on detail page")
		return fmt.Errorf("apply button not found")
	}

	btnText, _ := btn.InnerText()
	btnText = strings.TrimSpace(btnText)
	for _, done := range []string{"已投递", "已沟通", "已申请"} {
		if strings.Contains(btnText, done) {
			return fmt.Errorf("already applied (%s)", btnText)
		}
	}

	if err := btn.Click(); err != nil {
		return fmt.Errorf("click apply button: %w", err)
	}
	browser.RandomDelay(2500, 3500)

	// Clicking may land in the IM page, pop a confirm dialog, or just
	// register the apply in place.
	cur := a.sess.Page.URL()
	if strings.Contains(cur, "im.") || strings.Contains(cur, "chat") {
		return a.sendGreeting(greeting)
	}

	if confirm := firstPageMatch(a.sess.Page, `button:has-text("确认")`, `button:has-text("确定")`); confirm != nil {
		if visible, _ := confirm.IsVisible(); visible {
			if err := confirm.Click(); err != nil {
				return fmt.Errorf("click confirm: %w", err)
			}
			browser.RandomDelay(1500, 2500)
		}
	}
	return nil
}

func (a *Adapter) findApplyButton() playwright.ElementHandle {
	selectors := []string{
		`button:has-text("聊一聊")`,
		`a:has-text("聊一聊")`,
		".job-apply-btn",
		".btn-chat",
		`button:has-text("立即沟通")`,
		`button:has-text("投递简历")`,
	}
	for _, sel := range selectors {
		btns, _ := a.sess.Page.QuerySelectorAll(sel)
		for _, btn := range btns {
			visible, _ := btn.IsVisible()
			if !visible {
				continue
			}
			text, _ := btn.InnerText()
			text = strings.TrimSpace(text)
			// Skip containers that merely wrap the real button.
			if len([]rune(text)) < 20 &&
				(strings.Contains(text, "聊") || strings.Contains(text, "沟通") || strings.Contains(text, "投递")) {
				return btn
			}
		}
	}
	return nil
}

func (a *Adapter) sendGreeting(greeting string) error {
	if greeting == "" {
		return nil
	}

	input := firstPageMatch(a.sess.Page,
		".chat-input textarea",
		".message-input textarea",
		".im-input textarea",
		`textarea[placeholder*="输入"]`,
	)
	if input == nil {
		return nil
	}

	if err := input.Fill(greeting); err != nil {
		return fmt.Errorf("fill greeting: %w", err)
	}
	browser.RandomDelay(400, 800)

	if send := firstPageMatch(a.sess.Page, ".send-btn", ".btn-send", `button:has-text("发送")`); send != nil {
		if err := send.Click(); err != nil {
			return fmt.Errorf("click send: %w", err)
		}
		browser.RandomDelay(800, 1200)
	}
	return nil
}

func (a *Adapter) loginRequired() bool {
	cur := a.sess.Page.URL()
	if strings.Contains(cur, "login") || strings.Contains(cur, "passport") {
		return true
	}
	btn, _ := a.sess.Page.QuerySelector(".login-btn, .btn-login")
	return btn != nil
}

func buildSearchURL(keyword string, spec platform.SearchSpec) string {
	params := []string{"key=" + url.QueryEscape(keyword)}
	for _, p := range []struct{ kind, value, name string }{
		{"city", spec.City, "dqs"},
		{"salary", spec.Salary, "salaryCode"},
		{"experience", spec.Experience, "workYearCode"},
		{"degree", spec.Degree, "eduLevel"},
	} {
		if code := urlParams[p.kind][p.value]; code != "" {
			params = append(params, p.name+"="+code)
		}
	}
	return baseURL + "/zhaopin/?" + strings.Join(params, "&")
}

// externalID extracts the job id from hrefs like
// /job/1234567.shtml?d_source=... .
func externalID(href string) string {
	_, after, ok := strings.Cut(href, "/job/")
	if !ok {
		return ""
	}
	id := after
	if i := strings.IndexAny(id, ".?"); i >= 0 {
		id = id[:i]
	}
	return id
}

func absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

func firstMatch(card playwright.ElementHandle, selectors ...string) playwright.ElementHandle {
	for _, sel := range selectors {
		el, err := card.QuerySelector(sel)
		if err == nil && el != nil {
			return el
		}
	}
	return nil
}

func firstPageMatch(page playwright.Page, selectors ...string) playwright.ElementHandle {
	for _, sel := range selectors {
		el, err := page.QuerySelector(sel)
		if err == nil && el != nil {
			return el
		}
	}
	return nil
}

func innerText(card playwright.ElementHandle, selectors ...string) string {
	el := firstMatch(card, selectors...)
	if el == nil {
		return ""
	}
	text, _ := el.InnerText()
	return strings.TrimSpace(text)
}
