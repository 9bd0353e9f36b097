// Package process acquires process table snapshots.
//
// Two sources are provided:
//   - PSSource runs `ps aux` in a local gosh shell session and parses its columns
//   - NativeSource enumerates processes through gopsutil without spawning a command
//
// Both return every process; filtering by owner is the reconciler's job.
package process
