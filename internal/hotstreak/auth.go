package hotstreak

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// privy stores the id token in the app's local storage under this key.
const privyTokenStorageKey = "privy:id_token"

// FetchPrivyToken loads the web app in a headless browser and reads the
// privy id token out of local storage. The token is short-lived, so runs
// with browser_auth enabled call this right before fetching.
func FetchPrivyToken(ctx context.Context, appURL string, timeout time.Duration) (string, error) {
	if appURL == "" {
		appURL = defaultAppURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(defaultUserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		if os.Getenv("HOTSTREAK_DEBUG") == "1" {
			fmt.Printf("chromedp: "+format, v...)
		}
	}))
	defer cancel()

	var raw string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(appURL),
		// Give the app time to bootstrap and refresh its session.
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(fmt.Sprintf(`window.localStorage.getItem(%q) || ""`, privyTokenStorageKey), &raw),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp navigation: %w", err)
	}

	token := strings.Trim(strings.TrimSpace(raw), `"`)
	if token == "" {
		// One more wait: on cold profiles the token appears after the
		// app's first auth round trip.
		err = chromedp.Run(browserCtx,
			chromedp.Sleep(3*time.Second),
			chromedp.Evaluate(fmt.Sprintf(`window.localStorage.getItem(%q) || ""`, privyTokenStorageKey), &raw),
		)
		if err != nil {
			return "", fmt.Errorf("chromedp wait: %w", err)
		}
		token = strings.Trim(strings.TrimSpace(raw), `"`)
	}

	if token == "" {
		return "", fmt.Errorf("no privy token in local storage at %s", appURL)
	}

	slog.Info("Fetched privy token via headless browser", "app_url", appURL, "token_len", len(token))
	return token, nil
}
