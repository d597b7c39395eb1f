package content

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a catalog file whenever it changes on disk. Parsed
// catalogs arrive on Reloads; the consumer decides when to apply them.
type Watcher struct {
	Path    string
	Reloads <-chan Catalog

	reloads  chan Catalog
	done     chan struct{}
	watcher  *fsnotify.Watcher
	logger   *log.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher for one catalog file. The parent directory is
// watched so editors that replace the file on save are still seen.
func NewWatcher(path string, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	ch := make(chan Catalog, 1)
	return &Watcher{
		Path:     abs,
		Reloads:  ch,
		reloads:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		logger:   logger,
		debounce: 150 * time.Millisecond,
	}, nil
}

func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Reloads channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.reloads)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("lyricfield: catalog watch: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cat, err := LoadCatalog(w.Path)
	if err != nil {
		w.logger.Printf("lyricfield: catalog reload skipped: %v", err)
		return
	}
	// keep only the newest snapshot
	select {
	case <-w.reloads:
	default:
	}
	w.reloads <- cat
}
