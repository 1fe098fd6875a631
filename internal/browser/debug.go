package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Debugger saves full-page screenshots when an adapter cannot make
// sense of a page (changed markup, unexpected login wall).
type Debugger struct {
	outputDir string
}

func NewDebugger(dataDir string) *Debugger {
	dir := filepath.Join(dataDir, "screenshots")
	_ = os.MkdirAll(dir, 0755)
	return &Debugger{outputDir: dir}
}

func (d *Debugger) Capture(page playwright.Page, name, message string) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(d.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	log.Printf("📸 %s", message)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return
	}
	log.Printf("   Screenshot saved: %s", path)
}
