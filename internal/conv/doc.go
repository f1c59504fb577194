// Package conv provides checked integer conversions for binary headers.
//
// Column group layouts store counts as int32 and block sizes as uint32.
// These helpers reject values that would silently wrap when converted, both
// when writing (int -> fixed width) and when reading untrusted bytes back
// (fixed width -> int).
//
// Loop indices and other values bounded by construction use plain casts.
package conv
