// Package rodutil bootstraps the shared headless browser used by the
// scrapers that can't work off plain HTTP (guest pages rendered entirely
// client side).
package rodutil

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

type BrowserOptions struct {
	// Bin overrides chromium discovery; empty means look it up.
	Bin      string
	Headless bool
}

// NewBrowser launches a chromium instance and connects to it. Callers own
// the returned browser and should Close it on shutdown.
func NewBrowser(opts BrowserOptions) (*rod.Browser, error) {
	bin := opts.Bin
	if bin == "" {
		found, ok := launcher.LookPath()
		if ok {
			bin = found
		}
	}

	l := launcher.New().
		Leakless(false).
		Headless(opts.Headless).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("window-size", "1920,1080")
	if bin != "" {
		l = l.Bin(bin)
	}

	controlUrl, err := l.Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(controlUrl)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}

// NewPage opens a stealth page, which patches the usual headless
// fingerprints before any site script runs.
func NewPage(browser *rod.Browser) (*rod.Page, error) {
	return stealth.Page(browser)
}
