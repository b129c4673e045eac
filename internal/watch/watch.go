// Package watch re-scans suite subdirectories when their files change.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/featlint/internal/layout"
	"github.com/starford/featlint/internal/report"
	"github.com/starford/featlint/internal/rule"
	"github.com/starford/featlint/internal/scan"
)

// debounce coalesces bursts of events (editors often fire several writes
// per save) into a single re-scan.
const debounce = 200 * time.Millisecond

// Run watches every subdirectory of proj and re-scans a subdirectory when
// an eligible file inside it changes, writing a fresh report block to out.
// Content checksums suppress re-scans for events that did not actually
// change file bytes. Run blocks until ctx is cancelled.
func Run(ctx context.Context, proj *layout.Project, set *rule.Set, out io.Writer, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	subByDir := make(map[string]layout.Subdir, len(proj.Subdirs()))
	for _, sub := range proj.Subdirs() {
		if err := w.Add(sub.Path); err != nil {
			return err
		}
		subByDir[sub.Path] = sub
	}

	logger.Info("watcher: started", slog.String("feature", proj.Feature()))

	sums := make(map[string]string)
	pending := make(map[string]layout.Subdir)

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			for _, sub := range pending {
				res, scanErr := scan.Dir(sub, set)
				if scanErr != nil {
					logger.Error("watcher: scan failed",
						slog.String("dir", sub.Path),
						slog.String("error", scanErr.Error()))
					continue
				}
				if writeErr := report.Write(out, res); writeErr != nil {
					return writeErr
				}
			}
			pending = make(map[string]layout.Subdir)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !scan.Eligible(ev.Name) {
				continue
			}
			sub, watched := subByDir[filepath.Dir(ev.Name)]
			if !watched {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				sum, readErr := fileChecksum(ev.Name)
				if readErr != nil {
					// File may be mid-write or already gone; rescan anyway.
					logger.Debug("watcher: checksum failed", slog.String("path", ev.Name))
				} else if sums[ev.Name] == sum {
					continue
				} else {
					sums[ev.Name] = sum
				}
				pending[sub.Path] = sub
				schedule()

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(sums, ev.Name)
				pending[sub.Path] = sub
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func fileChecksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}
