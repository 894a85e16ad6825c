// Package encoding implements the two frame payload modes and the rules for
// choosing between them.
//
// Raw mode entropy-codes the flat pixel buffer and is used for the first
// frame of a stream, which has no reference. Delta mode run-length encodes
// the per-byte differences against the previously decoded frame and then
// entropy-codes the RLE stream; it is used for every subsequent frame.
//
// # Delta RLE stream
//
// The stream is a sequence of segments covering exactly W*H*C pixel bytes:
//
//	tag 0x00, len         next len bytes identical to the reference
//	tag 0x01, len, d...   next len bytes differ; len signed byte deltas follow
//
// len is 1..255. Reconstruction of a differing byte is
// clamp(ref + delta, 0, 255). The encoder never emits zero-length segments
// and never emits two identical-run segments back to back (runs fuse up to
// 255 per segment).
//
// A delta-typed record decoded with no reference available (stream restart)
// is passed through the raw path; this is the only cross-mode coercion.
package encoding
