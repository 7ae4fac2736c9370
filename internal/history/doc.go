// Package history keeps an opt-in ledger of setup runs in SQLite.
//
// Nothing is persisted unless history is enabled in the config; by default the
// only state a run leaves behind is the workspace itself.
package history
