package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pkgz/lgr"
)

// DiagWriter persists diagnostic artifacts on acquisition failures.
// All writes are best-effort and never raise past the calling stage.
type DiagWriter struct {
	dir string
	now func() time.Time
}

// NewDiagWriter creates a writer storing artifacts under dir
func NewDiagWriter(dir string) *DiagWriter {
	return &DiagWriter{dir: dir, now: time.Now}
}

// Capture grabs page markup and screenshot from the session and writes
// both as timestamped files tagged with the failure label
func (d *DiagWriter) Capture(ctx context.Context, sess PageSession, label string) {
	if d == nil {
		return
	}

	html, screenshot, err := sess.Capture(ctx)
	if err != nil {
		lgr.Printf("[WARN] diagnostics capture failed for %s: %v", label, err)
		return
	}

	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		lgr.Printf("[WARN] can't create diagnostics dir %s: %v", d.dir, err)
		return
	}

	stamp := d.now().Format("20060102_150405")
	htmlPath := filepath.Join(d.dir, fmt.Sprintf("%s_%s.html", stamp, label))
	if err := os.WriteFile(htmlPath, html, 0o600); err != nil {
		lgr.Printf("[WARN] can't write page snapshot %s: %v", htmlPath, err)
	} else {
		lgr.Printf("[INFO] page snapshot saved to %s", htmlPath)
	}

	if len(screenshot) == 0 {
		return
	}
	shotPath := filepath.Join(d.dir, fmt.Sprintf("%s_%s.png", stamp, label))
	if err := os.WriteFile(shotPath, screenshot, 0o600); err != nil {
		lgr.Printf("[WARN] can't write screenshot %s: %v", shotPath, err)
	} else {
		lgr.Printf("[INFO] screenshot saved to %s", shotPath)
	}
}
