package scrape

import (
	"net/http"
	"strings"
)

// BlockType names the protection that turned a fetch away.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockWAF        BlockType = "waf"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

const (
	// challengePageMax is the body size above which a page is treated as
	// real content even when it mentions a captcha.
	challengePageMax = 20 * 1024
	shellPageMax     = 2000
)

// wafMarkers are body fragments of the hosted firewalls many hospital
// sites sit behind.
var wafMarkers = []string{
	"sucuri website firewall",
	"incapsula incident id",
	"request unsuccessful. incapsula",
	"the requested url was rejected",
}

// DetectBlock reports whether a response is an anti-bot page rather than
// facility content.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
		if resp.Header.Get("x-sucuri-id") != "" || resp.Header.Get("x-iinfo") != "" {
			return true, BlockWAF
		}
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		(strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge")) {
		return true, BlockCloudflare
	}

	for _, m := range wafMarkers {
		if strings.Contains(lower, m) {
			return true, BlockWAF
		}
	}

	// Full pages embedding a form captcha are not blocks.
	if len(body) < challengePageMax && strings.Contains(lower, "captcha") {
		return true, BlockCaptcha
	}

	if len(body) < shellPageMax {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
