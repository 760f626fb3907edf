// Package watch ingests audio files dropped into a directory. New files
// become pending tracks for the logged-in artist, awaiting moderation like
// any other upload.
package watch

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"arifmusic/client/syncrepo"
	"arifmusic/logger"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
	".m4a":  true,
}

// Watcher turns files appearing in a directory into track uploads.
type Watcher struct {
	dir   string
	music *syncrepo.Music
}

// NewWatcher builds a watcher over dir.
func NewWatcher(dir string, music *syncrepo.Music) *Watcher {
	return &Watcher{dir: dir, music: music}
}

// Run watches the directory until the context ends. Files already present at
// startup are ingested first so a pre-filled drop directory is not missed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}

	existing, err := filepath.Glob(filepath.Join(w.dir, "*"))
	if err == nil {
		for _, path := range existing {
			w.ingest(ctx, path)
		}
	}

	logger.Info("watching for uploads", logger.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.ingest(ctx, event.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logger.ErrorField(err))
		}
	}
}

// ingest registers one file as a pending track. Non-audio files are skipped.
func (w *Watcher) ingest(ctx context.Context, path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if !audioExtensions[ext] {
		return
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	track, err := w.music.Add(ctx, title, path, "", "", 0)
	if err != nil {
		logger.Warn("failed to ingest upload",
			logger.String("path", path), logger.ErrorField(err))
		return
	}
	logger.Info("upload ingested",
		logger.String("id", track.ID), logger.String("title", track.Title))
}
