package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dailyfocus/dailyfocus/internal/dates"
	"github.com/dailyfocus/dailyfocus/internal/db"
	"github.com/dailyfocus/dailyfocus/internal/persist"
	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// DefaultDebounceInterval is the quiet period before an automatic upload.
const DefaultDebounceInterval = 3 * time.Second

// Op names a sync direction.
type Op string

const (
	OpUpload   Op = "upload"
	OpDownload Op = "download"
)

// State is the engine's transfer state.
type State int

const (
	Idle State = iota
	Uploading
	Downloading
)

func (s State) String() string {
	switch s {
	case Uploading:
		return "uploading"
	case Downloading:
		return "downloading"
	default:
		return "idle"
	}
}

// Meta reads and writes sync settings. *persist.Gateway implements it.
type Meta interface {
	RemoteHandle(ctx context.Context) (string, error)
	SetRemoteHandle(ctx context.Context, handle string) error
	Credential(ctx context.Context) (string, error)
	AutoSync(ctx context.Context) (bool, error)
	SetLastSync(ctx context.Context, t time.Time) error
}

// Source is the local application state.
type Source interface {
	// Snapshot returns the current whole-state document.
	Snapshot(ctx context.Context) (*schema.Document, error)
	// Apply replaces every local collection with doc and persists them.
	Apply(ctx context.Context, doc *schema.Document) error
}

// Remote is the document store. *gist.Client implements it.
type Remote interface {
	Create(ctx context.Context, token string, content []byte) (string, error)
	Update(ctx context.Context, token, handle string, content []byte) error
	Get(ctx context.Context, token, handle string) ([]byte, error)
}

// History records sync outcomes. *db.DB implements it.
type History interface {
	AppendSyncRecord(ctx context.Context, rec db.SyncRecord) error
}

// Result is the outcome of a sync operation.
type Result struct {
	Op      Op     `json:"op"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Message string `json:"message,omitempty"`
	Handle  string `json:"handle,omitempty"`
	Err     error  `json:"-"`

	Tasks    int `json:"tasks"`
	Goals    int `json:"goals"`
	Tags     int `json:"tags"`
	Readings int `json:"readings"`
}

// Event is published after automatic syncs complete.
type Event struct {
	Type    Op     `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Config configures an Engine.
type Config struct {
	DebounceInterval time.Duration
	Clock            dates.Clock
	History          History
	Logger           *log.Logger
}

// Engine uploads and downloads whole-state documents.
type Engine struct {
	meta    Meta
	source  Source
	remote  Remote
	history History
	clock   dates.Clock
	logger  *log.Logger

	debounce time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// ===== Guarded by mu =====
	mu      sync.Mutex
	state   State
	timer   *time.Timer
	gen     uint64
	stopped bool

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New creates an Engine.
func New(meta Meta, source Source, remote Remote, cfg Config) *Engine {
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = dates.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		meta:     meta,
		source:   source,
		remote:   remote,
		history:  cfg.History,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		debounce: cfg.DebounceInterval,
		ctx:      ctx,
		cancel:   cancel,
		subs:     make(map[int]func(Event)),
	}
}

// State returns the current transfer state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pending reports whether a debounced upload is scheduled.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timer != nil
}

// Upload pushes the current state to the remote store, creating the remote
// document when no handle is stored yet.
func (e *Engine) Upload(ctx context.Context) Result {
	if err := e.begin(Uploading); err != nil {
		return e.failed(ctx, OpUpload, "", err)
	}
	defer e.end()
	return e.upload(ctx)
}

// Download fetches the document at handle and replaces all local state with
// it.
func (e *Engine) Download(ctx context.Context, handle string) Result {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return e.failed(ctx, OpDownload, "", ErrMissingRemoteHandle)
	}
	if err := e.begin(Downloading); err != nil {
		return e.failed(ctx, OpDownload, handle, err)
	}
	defer e.end()
	return e.download(ctx, handle)
}

// AutoUpload schedules a debounced upload. It does nothing while a download
// runs, when auto sync is off, or when credential or handle is missing.
func (e *Engine) AutoUpload(ctx context.Context) {
	e.mu.Lock()
	skip := e.stopped || e.state == Downloading
	e.mu.Unlock()
	if skip {
		return
	}
	if !e.configured(ctx) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Re-check: a download may have started while settings were read.
	if e.stopped || e.state == Downloading {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(e.debounce, func() { e.fire(gen) })
}

// fire runs when the debounce timer of generation gen expires.
func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if e.stopped || gen != e.gen {
		e.mu.Unlock()
		return
	}
	switch e.state {
	case Uploading:
		e.timer = time.AfterFunc(e.debounce, func() { e.fire(gen) })
		e.mu.Unlock()
		return
	case Downloading:
		e.timer = nil
		e.mu.Unlock()
		e.logger.Printf("Dropped pending upload: download in progress")
		return
	}
	e.timer = nil
	e.state = Uploading
	e.wg.Add(1)
	e.mu.Unlock()

	defer e.wg.Done()
	res := e.upload(e.ctx)
	e.end()
	e.emit(Event{Type: OpUpload, Success: res.Success, Message: res.Message})
}

// Flush runs a scheduled debounced upload immediately. It returns a skipped
// result when nothing is pending.
func (e *Engine) Flush(ctx context.Context) Result {
	e.mu.Lock()
	if e.stopped || e.timer == nil {
		e.mu.Unlock()
		return Result{Op: OpUpload, Skipped: true, Message: "nothing to upload"}
	}
	if e.state != Idle {
		e.mu.Unlock()
		return e.failed(ctx, OpUpload, "", ErrBusy)
	}
	e.timer.Stop()
	e.timer = nil
	e.gen++
	e.state = Uploading
	e.mu.Unlock()

	res := e.upload(ctx)
	e.end()
	e.emit(Event{Type: OpUpload, Success: res.Success, Message: res.Message})
	return res
}

// AutoDownload downloads the stored handle when auto sync is configured and
// publishes the outcome to subscribers.
func (e *Engine) AutoDownload(ctx context.Context) Result {
	if !e.configured(ctx) {
		return Result{Op: OpDownload, Skipped: true, Message: "auto sync is not configured"}
	}
	handle, err := e.meta.RemoteHandle(ctx)
	if err != nil {
		return e.failed(ctx, OpDownload, "", fmt.Errorf("failed to read remote handle: %w", err))
	}
	res := e.Download(ctx, handle)
	e.emit(Event{Type: OpDownload, Success: res.Success, Message: res.Message})
	return res
}

// Subscribe registers fn for automatic sync events. The returned function
// removes the subscription.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

// Stop cancels a pending debounced upload and waits for one in flight.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	e.mu.Unlock()

	e.wg.Wait()
	e.cancel()
}

func (e *Engine) begin(s State) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Idle {
		return ErrBusy
	}
	e.state = s
	return nil
}

func (e *Engine) end() {
	e.mu.Lock()
	e.state = Idle
	e.mu.Unlock()
}

// configured reports whether auto sync is on and has what it needs.
func (e *Engine) configured(ctx context.Context) bool {
	on, err := e.meta.AutoSync(ctx)
	if err != nil {
		e.logger.Printf("WARNING: Failed to read auto sync setting: %v", err)
		return false
	}
	if !on {
		return false
	}
	token, err := e.meta.Credential(ctx)
	if err != nil || token == "" {
		return false
	}
	handle, err := e.meta.RemoteHandle(ctx)
	if err != nil || handle == "" {
		return false
	}
	return true
}

func (e *Engine) upload(ctx context.Context) Result {
	token, err := e.meta.Credential(ctx)
	if err != nil {
		return e.failed(ctx, OpUpload, "", fmt.Errorf("failed to read credential: %w", err))
	}
	if token == "" {
		return e.failed(ctx, OpUpload, "", ErrMissingCredential)
	}
	handle, err := e.meta.RemoteHandle(ctx)
	if err != nil {
		return e.failed(ctx, OpUpload, "", fmt.Errorf("failed to read remote handle: %w", err))
	}

	doc, err := e.source.Snapshot(ctx)
	if err != nil {
		return e.failed(ctx, OpUpload, handle, fmt.Errorf("failed to snapshot state: %w", err))
	}
	now := e.clock.Now()
	doc.UpdatedAt = &now
	content, err := persist.Encode(doc, persist.FormatJSON)
	if err != nil {
		return e.failed(ctx, OpUpload, handle, err)
	}

	var msg string
	if handle == "" {
		id, err := e.remote.Create(ctx, token, content)
		if err != nil {
			return e.failed(ctx, OpUpload, "", err)
		}
		handle = id
		if err := e.meta.SetRemoteHandle(ctx, handle); err != nil {
			return e.failed(ctx, OpUpload, handle, fmt.Errorf("failed to store remote handle: %w", err))
		}
		msg = fmt.Sprintf("created remote backup %s", handle)
	} else {
		if err := e.remote.Update(ctx, token, handle, content); err != nil {
			return e.failed(ctx, OpUpload, handle, err)
		}
		msg = fmt.Sprintf("uploaded to %s", handle)
	}
	if err := e.meta.SetLastSync(ctx, now); err != nil {
		e.logger.Printf("WARNING: Failed to record last sync time: %v", err)
	}

	res := Result{
		Op:       OpUpload,
		Success:  true,
		Message:  msg,
		Handle:   handle,
		Tasks:    len(doc.Tasks),
		Goals:    len(doc.Goals),
		Tags:     len(doc.CustomTags),
		Readings: len(doc.ReadingRecords),
	}
	e.logger.Printf("Upload complete: %s (tasks=%d, goals=%d, readings=%d)", handle, res.Tasks, res.Goals, res.Readings)
	e.record(ctx, res)
	return res
}

func (e *Engine) download(ctx context.Context, handle string) Result {
	token, err := e.meta.Credential(ctx)
	if err != nil {
		return e.failed(ctx, OpDownload, handle, fmt.Errorf("failed to read credential: %w", err))
	}

	raw, err := e.remote.Get(ctx, token, handle)
	if err != nil {
		return e.failed(ctx, OpDownload, handle, err)
	}
	doc, err := persist.Decode(raw)
	if err != nil {
		return e.failed(ctx, OpDownload, handle, fmt.Errorf("%w: %v", ErrInvalidRemoteFormat, err))
	}
	if err := e.source.Apply(ctx, doc); err != nil {
		return e.failed(ctx, OpDownload, handle, fmt.Errorf("failed to apply remote document: %w", err))
	}

	if err := e.meta.SetRemoteHandle(ctx, handle); err != nil {
		e.logger.Printf("WARNING: Failed to store remote handle: %v", err)
	}
	if err := e.meta.SetLastSync(ctx, e.clock.Now()); err != nil {
		e.logger.Printf("WARNING: Failed to record last sync time: %v", err)
	}

	res := Result{
		Op:       OpDownload,
		Success:  true,
		Handle:   handle,
		Tasks:    len(doc.Tasks),
		Goals:    len(doc.Goals),
		Tags:     len(doc.CustomTags),
		Readings: len(doc.ReadingRecords),
	}
	res.Message = fmt.Sprintf("downloaded %d tasks, %d goals, %d readings", res.Tasks, res.Goals, res.Readings)
	e.logger.Printf("Download complete: %s (%s)", handle, res.Message)
	e.record(ctx, res)
	return res
}

func (e *Engine) failed(ctx context.Context, op Op, handle string, err error) Result {
	res := Result{Op: op, Message: err.Error(), Handle: handle, Err: err}
	if !errors.Is(err, ErrBusy) {
		e.logger.Printf("WARNING: %s failed: %v", op, err)
		e.record(ctx, res)
	}
	return res
}

func (e *Engine) record(ctx context.Context, res Result) {
	if e.history == nil {
		return
	}
	rec := db.SyncRecord{
		Op:      string(res.Op),
		Success: res.Success,
		Message: res.Message,
		Handle:  res.Handle,
		At:      e.clock.Now(),
	}
	if err := e.history.AppendSyncRecord(context.WithoutCancel(ctx), rec); err != nil {
		e.logger.Printf("WARNING: Failed to record sync history: %v", err)
	}
}

func (e *Engine) emit(ev Event) {
	e.subMu.Lock()
	fns := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
