// Package wasmhost exposes the scheduler's host contract to WebAssembly
// guests as a wazero host module.
//
// The module is named "pollloop:io/host" and exports:
//
//	read(handle: i32, ptr: i32, max: i32) -> i64
//	write(handle: i32, ptr: i32, len: i32) -> i64
//	poll-list(ptr: i32, count: i32, out: i32) -> i32
//	drop-pollable(pollable: i32)
//	close-read(handle: i32)
//	close-write(handle: i32)
//
// read and write return a packed status word encoding the three-way
// outcome of a non-blocking attempt: the byte count on success, the
// pollable to wait on when the operation would block, end of stream, or
// a host error. poll-list reads count little-endian u32 pollables at
// ptr, writes the ready indices as u32 at out, and returns how many are
// ready, or -1 on error.
package wasmhost
