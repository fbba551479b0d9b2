// Package daemon runs the long-lived side of focus serve.
//
// A Daemon pulls the remote copy once on start, then watches a drop folder
// for backup files (.json, .yaml, .yml or .toml). Each file must stay
// untouched for DebounceInterval before it is imported, so editors and
// copies that write in several steps produce a single import:
//
//	d, err := daemon.New(tr, daemon.Config{
//	    ImportDir:  filepath.Join(dataDir, "inbox"),
//	    Downloader: engine,
//	})
//	if err != nil {
//	    return err
//	}
//	return d.Start(ctx) // blocks until ctx is cancelled
//
// Imported files are moved to imported/ and rejected ones to failed/ inside
// the drop folder. Removing or renaming a queued file cancels its import.
package daemon
