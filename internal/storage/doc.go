// Package storage implements the key-value persistence adapter that backs viewer state.
//
// A [Store] is a synchronous string key-value namespace, the local equivalent of a browser
// profile's local storage. Two implementations are provided:
//   - [MemoryStore] : process-local map, used by tests and ephemeral runs
//   - [SQLiteStore] : durable profile store shared by every process using the same database file
//
// The [Adapter] layers JSON encoding and existence checks over a Store and absorbs storage
// failures: errors are logged and the operation becomes a no-op, and malformed JSON reads as absent.
//
// The [Watcher] surfaces writes made by other processes as [events.StorageChanged] notifications.
package storage
