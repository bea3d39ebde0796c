package wasmhost

import "github.com/wippyai/poll-loop/host"

// Status is the packed i64 returned by read and write: a 2-bit tag in
// the top bits and a 32-bit payload in the bottom bits.
type Status uint64

const (
	tagOK      uint64 = 0 // payload: byte count
	tagBlocked uint64 = 1 // payload: pollable
	tagEOF     uint64 = 2
	tagError   uint64 = 3

	tagShift      = 62
	payloadMask   = 0xFFFF_FFFF
	pollListError = int32(-1)
)

// PackOK encodes a completed attempt of n bytes.
func PackOK(n uint32) Status {
	return Status(tagOK<<tagShift | uint64(n))
}

// PackBlocked encodes a would-block outcome carrying the pollable to
// wait on.
func PackBlocked(p host.Pollable) Status {
	return Status(tagBlocked<<tagShift | uint64(p))
}

// PackEOF encodes end of stream.
func PackEOF() Status {
	return Status(tagEOF << tagShift)
}

// PackError encodes a host failure.
func PackError() Status {
	return Status(tagError << tagShift)
}

// OK reports a completed attempt and its byte count.
func (s Status) OK() (uint32, bool) {
	return uint32(uint64(s) & payloadMask), uint64(s)>>tagShift == tagOK
}

// Blocked reports a would-block outcome and its pollable.
func (s Status) Blocked() (host.Pollable, bool) {
	return host.Pollable(uint64(s) & payloadMask), uint64(s)>>tagShift == tagBlocked
}

// EOF reports end of stream.
func (s Status) EOF() bool {
	return uint64(s)>>tagShift == tagEOF
}

// Err reports a host failure.
func (s Status) Err() bool {
	return uint64(s)>>tagShift == tagError
}
