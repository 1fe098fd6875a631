package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/playwright-community/playwright-go"

	"go-jobapply-automation/internal/browser"
	"go-jobapply-automation/internal/config"
	"go-jobapply-automation/internal/coordinator"
	"go-jobapply-automation/internal/filter"
	"go-jobapply-automation/internal/greeting"
	"go-jobapply-automation/internal/ledger"
	"go-jobapply-automation/internal/notify"
	"go-jobapply-automation/internal/orchestrator"
	"go-jobapply-automation/internal/platform"
	"go-jobapply-automation/internal/platform/boss"
	"go-jobapply-automation/internal/platform/liepin"
	"go-jobapply-automation/internal/schedule"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	onlyPlatform := flag.String("platform", "", "run a single platform (boss or liepin)")
	scheduled := flag.Bool("schedule", false, "run on the configured schedule instead of once")
	headless := flag.Bool("headless", false, "force headless browser")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if *headless {
		cfg.Headless = true
	}

	res := cfg.Validate()
	for _, w := range res.Warnings {
		log.Printf("⚠️ config: %s", w)
	}
	if !res.OK() {
		for _, e := range res.Errors {
			log.Printf("❌ config: %s", e)
		}
		os.Exit(1)
	}

	platforms := cfg.Platforms
	if *onlyPlatform != "" {
		if cfg.Platform(*onlyPlatform) == nil {
			log.Fatalf("❌ unknown platform %q", *onlyPlatform)
		}
		platforms = []string{*onlyPlatform}
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("❌ create data dir: %v", err)
	}

	store, err := ledger.OpenSQLite(filepath.Join(cfg.DataDir, "ledger.db"))
	if err != nil {
		log.Fatalf("❌ open ledger: %v", err)
	}
	defer store.Close()

	bot, err := notify.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		log.Printf("⚠️ telegram disabled: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &app{cfg: cfg, platforms: platforms, store: store, bot: bot}

	if *scheduled || cfg.Schedule.Enabled {
		runScheduled(ctx, cfg, app)
		return
	}

	app.runOnce(ctx, schedule.IsWeekend(time.Now()))
}

func runScheduled(ctx context.Context, cfg *config.Config, app *app) {
	// One scheduler per data dir. A second instance would share the
	// ledger but double every cap.
	lock := flock.New(filepath.Join(cfg.DataDir, "jobapply.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("❌ acquire lock: %v", err)
	}
	if !locked {
		log.Fatalf("❌ another instance is already running against %s", cfg.DataDir)
	}
	defer lock.Unlock()

	policy, err := schedule.NewPolicy(cfg.Schedule.Times, cfg.Schedule.WorkdaysOnly)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	runner := schedule.NewRunner(policy, time.Duration(cfg.Schedule.CheckInterval)*time.Second, app.runOnce)
	runner.Start(ctx)
}

type app struct {
	cfg       *config.Config
	platforms []string
	store     ledger.Store
	bot       *notify.Bot
}

// runOnce is one full pass over every enabled platform: fresh browser,
// fresh sessions, one coordinator run.
func (a *app) runOnce(ctx context.Context, weekend bool) {
	mgr, err := browser.Launch(a.cfg.Headless)
	if err != nil {
		log.Printf("❌ %v", err)
		a.bot.SendStatus(fmt.Sprintf("run aborted: %v", err))
		return
	}
	defer mgr.Close()

	picker := greeting.NewPicker(a.cfg.Greetings)
	debug := browser.NewDebugger(a.cfg.DataDir)

	var targets []coordinator.Target
	var sessions []*browser.Session
	defer func() {
		for _, s := range sessions {
			s.Close()
		}
	}()

	for _, name := range a.platforms {
		t, sess, err := a.buildTarget(mgr, debug, name, weekend)
		if err != nil {
			log.Printf("⚠️ [%s] skipped: %v", name, err)
			continue
		}
		sessions = append(sessions, sess)
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		log.Println("❌ no runnable platforms")
		return
	}

	run := coordinator.New(a.store, picker).Run(ctx, targets)

	log.Printf("📋 run finished in %s", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	a.bot.SendRunReport(run)
}

func (a *app) buildTarget(mgr *browser.Manager, debug *browser.Debugger, name string, weekend bool) (coordinator.Target, *browser.Session, error) {
	pc := a.cfg.Platform(name)

	cookies, err := loadPlatformCookies(a.cfg.CookiesDir, name)
	if err != nil {
		log.Printf("⚠️ [%s] no cookies loaded: %v", name, err)
	}

	sess, err := mgr.NewSession(cookies, 0.5)
	if err != nil {
		return coordinator.Target{}, nil, err
	}

	var adapter platform.Adapter
	switch name {
	case "boss":
		adapter = boss.New(sess, debug)
	case "liepin":
		adapter = liepin.New(sess, debug)
	default:
		sess.Close()
		return coordinator.Target{}, nil, fmt.Errorf("unknown platform %q", name)
	}

	batch := pc.Apply.BatchLimit
	if weekend && a.cfg.Schedule.WeekendLimit < batch {
		batch = a.cfg.Schedule.WeekendLimit
		log.Printf("[%s] weekend batch cap: %d", name, batch)
	}

	return coordinator.Target{
		Adapter: adapter,
		Spec: platform.SearchSpec{
			Keywords:   pc.Search.Keywords,
			City:       pc.Search.City,
			Salary:     pc.Search.Salary,
			Experience: pc.Search.Experience,
			Degree:     pc.Search.Degree,
		},
		Rules: filter.NewRules(
			pc.Filter.MustInclude,
			pc.Filter.MustExclude,
			pc.Filter.CompanyBlacklist,
			pc.Filter.CompanyKeywords,
		),
		Limits: orchestrator.Limits{
			DailyLimit:   pc.Apply.DailyLimit,
			BatchLimit:   batch,
			IntervalMin:  time.Duration(pc.Apply.IntervalMin) * time.Second,
			IntervalMax:  time.Duration(pc.Apply.IntervalMax) * time.Second,
			MaxScan:      pc.Apply.MaxScan,
			RetryFailed:  pc.Apply.RetryFailed,
			ApplyTimeout: time.Duration(pc.Apply.ApplyTimeout) * time.Second,
		},
	}, sess, nil
}

var cookieDomains = map[string]string{
	"boss":   ".zhipin.com",
	"liepin": ".liepin.com",
}

// loadPlatformCookies looks for cookie_<platform>.json, then
// cookie_<platform>.txt, then the legacy bare cookie.txt (boss only).
func loadPlatformCookies(dir, name string) ([]playwright.OptionalCookie, error) {
	candidates := []string{
		filepath.Join(dir, "cookie_"+name+".json"),
		filepath.Join(dir, "cookie_"+name+".txt"),
	}
	if name == "boss" {
		candidates = append(candidates, filepath.Join(dir, "cookie.txt"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return browser.LoadCookies(path, cookieDomains[name])
	}
	return nil, fmt.Errorf("no cookie file found in %s", dir)
}
