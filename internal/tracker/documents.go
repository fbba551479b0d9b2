package tracker

import (
	"context"
	"fmt"
	"os"

	"github.com/dailyfocus/dailyfocus/internal/persist"
	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// Counts is the size of each collection in a document.
type Counts struct {
	Tasks    int `json:"tasks"`
	Goals    int `json:"goals"`
	Tags     int `json:"tags"`
	Readings int `json:"readings"`
}

func countsOf(doc *schema.Document) Counts {
	return Counts{
		Tasks:    len(doc.Tasks),
		Goals:    len(doc.Goals),
		Tags:     len(doc.CustomTags),
		Readings: len(doc.ReadingRecords),
	}
}

// Snapshot returns a deep copy of the whole state as a document.
func (t *Tracker) Snapshot(ctx context.Context) (*schema.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot(), nil
}

// snapshot copies the state. Callers hold mu.
func (t *Tracker) snapshot() *schema.Document {
	doc := &schema.Document{
		Version:        schema.Version,
		Tasks:          cloneTasks(t.tasks.All()),
		Goals:          cloneGoals(t.goals.All()),
		CustomTags:     t.tags.All(),
		ReadingRecords: make([]*schema.ReadingRecord, 0, t.readings.Len()),
	}
	for _, r := range t.readings.All() {
		doc.ReadingRecords = append(doc.ReadingRecords, r.Clone())
	}
	return doc
}

// Apply replaces every collection with doc and persists them. It does not
// request an upload; the sync engine calls it after a download.
func (t *Tracker) Apply(ctx context.Context, doc *schema.Document) error {
	if err := t.replace(ctx, doc); err != nil {
		return err
	}
	t.publish(Change{Collection: CollectionAll, Op: "download"})
	return nil
}

func (t *Tracker) replace(ctx context.Context, doc *schema.Document) error {
	doc.FillDefaults()
	t.mu.Lock()
	defer t.mu.Unlock()
	rollback := t.checkpoint(CollectionAll)
	t.tasks.Replace(doc.Tasks)
	t.goals.Replace(doc.Goals)
	t.tags.Replace(doc.CustomTags)
	t.readings.Replace(doc.ReadingRecords)
	if err := t.save(ctx, CollectionAll); err != nil {
		rollback()
		return err
	}
	return nil
}

// Export encodes the whole state and returns it with a timestamped backup
// filename.
func (t *Tracker) Export(f persist.Format) ([]byte, string, error) {
	t.mu.Lock()
	doc := t.snapshot()
	t.mu.Unlock()
	return persist.Export(persist.StateOf(doc), t.clock.Now(), f)
}

// Import validates raw and replaces every collection with its content. An
// invalid document changes nothing.
func (t *Tracker) Import(ctx context.Context, raw []byte, f persist.Format) (Counts, error) {
	doc, err := persist.Import(raw, f)
	if err != nil {
		return Counts{}, err
	}
	if err := t.replace(ctx, doc); err != nil {
		return Counts{}, err
	}

	t.publish(Change{Collection: CollectionAll, Op: "import"})
	if e := t.Sync(); e != nil {
		e.AutoUpload(ctx)
	}
	return countsOf(doc), nil
}

// ImportFile imports a backup file, picking the format from its extension.
func (t *Tracker) ImportFile(ctx context.Context, path string) (Counts, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t.Import(ctx, raw, persist.FormatOf(path))
}
