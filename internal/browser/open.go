// Package browser hands avatar and background URLs to the desktop.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Check rejects anything but an absolute http(s) URL. Profile URLs are
// user supplied and end up as a process argument.
func Check(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("browser.Check: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("browser.Check: refusing to open %q", raw)
	}
	return nil
}

// Open opens the URL in the user's default browser.
func Open(raw string) error {
	if err := Check(raw); err != nil {
		return err
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", raw).Start()
	case "linux":
		return exec.Command("xdg-open", raw).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", raw).Start()
	default:
		return fmt.Errorf("browser.Open: unsupported OS: %s", runtime.GOOS)
	}
}
