package fetch

import (
	"os"
	"os/exec"
)

// findChromeBinary locates a Chrome or Chromium executable. An explicit
// configured path wins, then the CHROME_BIN environment variable, then
// PATH lookup, then the usual install locations. Empty means "let
// chromedp use its own default".
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if envPath := os.Getenv("CHROME_BIN"); envPath != "" {
		return envPath
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	for _, path := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/opt/google/chrome/chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
