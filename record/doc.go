// Package record implements the versioned, length-prefixed record stream
// used by the layout cache's binary encoding.
//
// A stream is a flat byte sequence containing records. Every record starts
// with a four byte little-endian header packing the payload size and a one
// byte tag:
//
//	header = (payloadSize << 8) | tag
//
// Because the tag occupies the low byte, the next record's tag can be
// inspected with a single byte [Reader.Peek]. Payloads may contain nested
// records; the 24-bit size field limits a payload to [MaxPayload] bytes.
//
// # Writing
//
// [Writer.OpenRecord] reserves a header and [Writer.CloseRecord] backpatches
// it with the final payload size, so record contents can be emitted without
// knowing their length up front. Records nest by opening before closing.
//
// # Reading
//
// [Reader.OpenRecord] checks the expected tag and bounds all further reads
// to the record's payload; [Reader.CloseRecord] always lands on the record
// end, no matter how much of the payload the caller consumed. Unknown tags
// are skipped whole with [Reader.SkipRecord], which is what keeps old
// readers working on streams written with newer record types.
//
// # Flag records
//
// A flag record is a one byte sub-record packing four flag bits and the
// length of a fixed-size field region that follows:
//
//	marker = (flags << 4) | fixedLen
//
// [Reader.CloseFlagRecord] skips whatever part of the region the caller did
// not read, so new fields can be appended to a known record without breaking
// old readers.
//
// # Error handling
//
// Both [Reader] and [Writer] latch the first error and turn every later
// operation into a no-op returning zero values. Callers chain reads or
// writes freely and check [Reader.Err] or [Writer.Err] once at the end.
package record
