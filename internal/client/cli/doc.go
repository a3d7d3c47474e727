// Package cli provides the interactive fraudwatch command-line client.
//
// It wires configuration, session storage, the service client and an
// interactive REPL. Typical flow: restore a saved session (or log in), look
// at the dashboard, build a batch of draft transactions on the detect page
// and submit it for scoring.
//
// Key features:
//   - Register / Login / Logout with a persisted session
//   - Role-gated pages (train and users are admin only)
//   - Draft batch editing: add, set, rm, clear, list
//   - Submit for scoring and show verdicts next to the scored records
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, runREPL and the page handlers for details.
package cli
