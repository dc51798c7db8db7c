package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	listBaseURL = "https://www.stclassifieds.sg/section/sub/list/properties/759"

	// The date dropdown renders entries like "2025-12-13, Sat".
	dropdownLabelLayout = "2006-01-02, Mon"

	navigationTimeoutMs = 60000
)

// ErrNoResults signals a date with no published listings. Callers treat it
// as an empty day, not a failure.
var ErrNoResults = errors.New("no results for date")

// Navigator hands back raw page markup for one archive date. One session
// serves a whole multi-date run; Close releases it.
type Navigator interface {
	FetchDate(ctx context.Context, date time.Time) (string, error)
	Close()
}

// BrowserNavigator drives the classifieds site through a real browser,
// selecting the archive date from the site's dropdown.
type BrowserNavigator struct {
	baseURL  string
	headless bool

	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	page        playwright.Page
	initialized bool
}

func NewBrowserNavigator(headless bool) *BrowserNavigator {
	return &BrowserNavigator{baseURL: listBaseURL, headless: headless}
}

func (n *BrowserNavigator) ensureBrowser() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.initialized {
		return nil
	}

	var err error
	n.pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	n.browser, err = n.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(n.headless),
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	n.page, err = n.browser.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}

	n.initialized = true
	return nil
}

func (n *BrowserNavigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.page != nil {
		n.page.Close()
		n.page = nil
	}
	if n.browser != nil {
		n.browser.Close()
		n.browser = nil
	}
	if n.pw != nil {
		n.pw.Stop()
		n.pw = nil
	}
	n.initialized = false
}

// FetchDate loads the listings page, picks the date from the dropdown and
// returns the resulting markup. Returns ErrNoResults when the date is not
// offered or the site reports nothing for it.
func (n *BrowserNavigator) FetchDate(ctx context.Context, date time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := n.ensureBrowser(); err != nil {
		return "", err
	}

	label := date.Format(dropdownLabelLayout)
	log.Printf("Fetching listings for %s", label)

	page := n.page
	if _, err := page.Goto(n.baseURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(navigationTimeoutMs),
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return "", fmt.Errorf("failed to load listings page: %w", err)
	}
	page.WaitForTimeout(2000)

	dropdown := page.Locator("button.btn-default.dropdown-toggle").First()
	if !n.waitVisible(dropdown, 10) {
		log.Printf("Warning: date dropdown not found for %s", label)
		return "", ErrNoResults
	}
	if err := dropdown.Click(); err != nil {
		return "", fmt.Errorf("failed to open date dropdown: %w", err)
	}
	page.WaitForTimeout(1000)

	option := page.Locator(fmt.Sprintf(`a:has-text("%s")`, label)).First()
	if visible, _ := option.IsVisible(); !visible {
		log.Printf("Date option not in dropdown: %s", label)
		return "", ErrNoResults
	}
	if err := option.Click(); err != nil {
		return "", fmt.Errorf("failed to select date %s: %w", label, err)
	}
	// Let the list reload with the selected date.
	page.WaitForTimeout(3000)

	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	if strings.Contains(content, "No results found") {
		return "", ErrNoResults
	}
	return content, nil
}

// waitVisible polls a locator in 500ms steps.
func (n *BrowserNavigator) waitVisible(loc playwright.Locator, attempts int) bool {
	for i := 0; i < attempts; i++ {
		if visible, _ := loc.IsVisible(); visible {
			return true
		}
		n.page.WaitForTimeout(500)
	}
	return false
}
