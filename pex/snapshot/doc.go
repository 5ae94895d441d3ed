// Package snapshot serializes whole address books for bootstrap and bulk
// sync. A snapshot is the concatenated compact entries of a book, digest
// protected, LZ4-compressed when that helps, and optionally Reed-Solomon
// sharded so it can be distributed over lossy paths where individual
// shards go missing.
package snapshot
