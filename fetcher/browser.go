package fetcher

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"os/exec"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"compensation-dashboard/apperr"
	"compensation-dashboard/utils"
)

// fetchScript downloads a URL from inside the page and returns its bytes
// base64-encoded, so cookies set by the host's bot checks are reused.
const fetchScript = `(async () => {
	const resp = await fetch(%q, {credentials: "include"});
	if (!resp.ok) {
		return {status: resp.status, body: ""};
	}
	const blob = await resp.blob();
	const dataURL = await new Promise((resolve, reject) => {
		const reader = new FileReader();
		reader.onload = () => resolve(reader.result);
		reader.onerror = () => reject(reader.error);
		reader.readAsDataURL(blob);
	});
	return {status: resp.status, body: dataURL.slice(dataURL.indexOf(",") + 1)};
})()`

type browserResult struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// BrowserTransport downloads payloads through headless Chrome, for hosts
// that refuse non-browser clients.
type BrowserTransport struct {
	chromeBin string
	logger    *utils.Logger
}

func NewBrowserTransport(chromeBin string, logger *utils.Logger) *BrowserTransport {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &BrowserTransport{chromeBin: chromeBin, logger: logger}
}

func (t *BrowserTransport) Get(ctx context.Context, target string) ([]byte, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, apperr.Network("parsing url", err)
	}
	origin := u.Scheme + "://" + u.Host + "/"

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	if t.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(t.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	t.logger.Debug("[browser] Navigating to %s before fetching %s", origin, target)

	var res browserResult
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(origin),
		chromedp.Evaluate(fmt.Sprintf(fetchScript, target), &res,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}),
	)
	if err != nil {
		return nil, apperr.Network("browser fetch", err)
	}
	if res.Status < 200 || res.Status > 299 {
		return nil, apperr.Network(fmt.Sprintf("unexpected status code %d from %s", res.Status, target), nil)
	}

	body, err := base64.StdEncoding.DecodeString(res.Body)
	if err != nil {
		return nil, apperr.Network("decoding browser payload", err)
	}
	return body, nil
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
