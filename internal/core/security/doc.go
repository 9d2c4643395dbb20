// Package security screens commands proposed by the model before they run.
//
// The model's own SAFE verdict is the primary signal. The controller adds
// local checks on top of it:
//
//   - a list of destructive programs and command patterns
//   - restricted paths, which are never touched
//   - read-only paths, which need confirmation before a write
//
// How much of this escalates to a confirmation prompt is set by the
// policy's command level.
package security
