// Package main hosts the studio CLI.
//
// `studio serve` runs the task API over the SQLite store and file vault.
// The board commands talk to that API over HTTP through a board reconciler,
// either one operation at a time or interactively with `studio board tui`.
// Configuration is resolved once per invocation in commandContext.
package main
