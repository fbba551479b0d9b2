// Package cloudsync mirrors the whole DailyFocus state to a remote document
// store.
//
// Overview
//
// The engine moves one whole-state document at a time. It never merges:
// an upload overwrites the remote copy and a download overwrites every local
// collection.
//
//	local collections ──Snapshot──▶ Engine ──Create/Update──▶ remote gist
//	local collections ◀──Apply──── Engine ◀──────Get──────── remote gist
//
// State machine
//
// The engine is always in exactly one of three states:
//
//	Idle ──Upload──▶ Uploading ──done──▶ Idle
//	Idle ──Download─▶ Downloading ─done─▶ Idle
//
// A manual Upload or Download that finds the engine busy fails with ErrBusy.
// AutoUpload does nothing while a download is running, so the writes a
// download causes never bounce back to the remote.
//
// Debounce
//
// AutoUpload restarts a single timer. Only the last call inside the window
// produces an upload, and that upload snapshots the state when the timer
// fires. If the timer fires during a manual upload it is re-armed; if it
// fires during a download the pending upload is dropped.
//
// Errors
//
// Operations return a Result rather than an error. Result.Err carries one of
// ErrMissingCredential, ErrMissingRemoteHandle, ErrInvalidRemoteFormat,
// ErrBusy, *HTTPError or *NetworkError.
package cloudsync
