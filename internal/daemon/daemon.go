package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/cloudsync"
	"github.com/dailyfocus/dailyfocus/internal/tracker"
)

// Subfolders of the drop folder that receive processed files.
const (
	ImportedDir = "imported"
	FailedDir   = "failed"
)

// DefaultDebounceInterval is how long a file must stay untouched before it
// is imported.
const DefaultDebounceInterval = time.Second

// Importer loads a backup file into local state. *tracker.Tracker
// implements it.
type Importer interface {
	ImportFile(ctx context.Context, path string) (tracker.Counts, error)
}

// Downloader pulls the remote copy on start. *cloudsync.Engine implements it.
type Downloader interface {
	AutoDownload(ctx context.Context) cloudsync.Result
}

// Config holds daemon configuration.
type Config struct {
	// ImportDir is the drop folder. Required.
	ImportDir string

	// DebounceInterval is the quiet period before a file is imported.
	DebounceInterval time.Duration

	// Downloader, if set, runs once when the daemon starts.
	Downloader Downloader

	// Logger for daemon events
	Logger *log.Logger
}

// DefaultConfig returns a config with the default debounce and a stderr
// logger.
func DefaultConfig(importDir string) Config {
	return Config{
		ImportDir:        importDir,
		DebounceInterval: DefaultDebounceInterval,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Stats counts the files handled since the daemon started.
type Stats struct {
	Imported   int       `json:"imported"`
	Failed     int       `json:"failed"`
	LastImport time.Time `json:"lastImport,omitzero"`
}

// Daemon imports backup files dropped into a folder.
type Daemon struct {
	config   Config
	importer Importer
	watcher  *FileWatcher

	// Debouncing
	changeQueue   map[string]time.Time
	changeQueueMu sync.Mutex

	statsMu sync.Mutex
	stats   Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	stop   sync.Once
}

// New creates a daemon. The drop folder is created on Start.
func New(importer Importer, config Config) (*Daemon, error) {
	if importer == nil {
		return nil, fmt.Errorf("importer is required")
	}
	if config.ImportDir == "" {
		return nil, fmt.Errorf("import directory is required")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultDebounceInterval
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}

	watcher, err := NewFileWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		config:      config,
		importer:    importer,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start runs the daemon until ctx is cancelled or Stop is called.
//
// On start it pulls the remote copy (when a Downloader is configured),
// queues the backup files already in the drop folder and begins watching it.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Printf("Starting daemon (drop folder %s)", d.config.ImportDir)

	if d.config.Downloader != nil {
		res := d.config.Downloader.AutoDownload(ctx)
		switch {
		case res.Skipped:
		case res.Success:
			d.config.Logger.Printf("Pulled remote copy: %s", res.Message)
		default:
			d.config.Logger.Printf("WARNING: initial download failed: %s", res.Message)
		}
	}

	for _, sub := range []string{"", ImportedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(d.config.ImportDir, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create drop folder: %w", err)
		}
	}

	if err := d.watcher.Start(d.config.ImportDir); err != nil {
		return err
	}

	if err := d.queueExisting(); err != nil {
		d.config.Logger.Printf("WARNING: failed to scan drop folder: %v", err)
	}

	d.wg.Add(2)
	go d.watchFileEvents()
	go d.processChangeQueue()

	d.config.Logger.Println("Daemon started")

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop shuts the daemon down and waits for its goroutines. Files still in
// the queue stay in the drop folder for the next run.
func (d *Daemon) Stop() error {
	var err error
	d.stop.Do(func() {
		d.config.Logger.Println("Stopping daemon")
		d.cancel()
		if err = d.watcher.Stop(); err != nil {
			d.config.Logger.Printf("Error closing watcher: %v", err)
		}
		d.wg.Wait()
		d.config.Logger.Println("Daemon stopped")
	})
	return err
}

// Stats returns a copy of the import counters.
func (d *Daemon) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.stats
}

// Pending returns the number of files waiting out the debounce.
func (d *Daemon) Pending() int {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()
	return len(d.changeQueue)
}

func (d *Daemon) queueExisting() error {
	entries, err := os.ReadDir(d.config.ImportDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !IsBackupFile(e.Name()) {
			continue
		}
		path, err := filepath.Abs(filepath.Join(d.config.ImportDir, e.Name()))
		if err != nil {
			continue
		}
		d.queueChange(path)
	}
	return nil
}

func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events():
			if !ok {
				return
			}
			d.config.Logger.Printf("File event: %s %s", event.Op, event.Path)
			if event.Op == OpGone {
				d.dropChange(event.Path)
				continue
			}
			d.queueChange(event.Path)

		case err, ok := <-d.watcher.Errors():
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueChange (re)starts the quiet period of path.
func (d *Daemon) queueChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	d.changeQueue[path] = time.Now()
}

func (d *Daemon) dropChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	delete(d.changeQueue, path)
}

func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	// A settled file waits at most 1.5 intervals.
	ticker := time.NewTicker(max(d.config.DebounceInterval/2, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			for _, path := range d.settled() {
				if d.ctx.Err() != nil {
					return
				}
				d.importFile(path)
			}
		}
	}
}

// settled removes and returns the queued files whose quiet period is over.
func (d *Daemon) settled() []string {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	now := time.Now()
	var ready []string
	for path, queuedAt := range d.changeQueue {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}
		ready = append(ready, path)
		delete(d.changeQueue, path)
	}
	return ready
}

// importFile imports one backup and files it under imported/ or failed/.
func (d *Daemon) importFile(path string) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return
	}

	d.config.Logger.Printf("Importing %s", path)
	counts, err := d.importer.ImportFile(d.ctx, path)

	d.statsMu.Lock()
	if err != nil {
		d.stats.Failed++
	} else {
		d.stats.Imported++
		d.stats.LastImport = time.Now()
	}
	d.statsMu.Unlock()

	sub := ImportedDir
	if err != nil {
		sub = FailedDir
		d.config.Logger.Printf("WARNING: failed to import %s: %v", path, err)
	} else {
		d.config.Logger.Printf("Imported %s: %d tasks, %d goals, %d tags, %d readings",
			filepath.Base(path), counts.Tasks, counts.Goals, counts.Tags, counts.Readings)
	}

	if err := d.moveTo(path, sub); err != nil {
		d.config.Logger.Printf("WARNING: failed to move %s: %v", path, err)
		return
	}
	// A late Write event must not requeue the old name.
	d.dropChange(path)
}

// moveTo renames path into sub, adding a timestamp when the name is taken.
func (d *Daemon) moveTo(path, sub string) error {
	base := filepath.Base(path)
	dst := filepath.Join(d.config.ImportDir, sub, base)
	if _, err := os.Stat(dst); err == nil {
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		dst = filepath.Join(d.config.ImportDir, sub,
			fmt.Sprintf("%s-%s%s", stem, time.Now().Format("20060102-150405.000"), ext))
	}
	return os.Rename(path, dst)
}
