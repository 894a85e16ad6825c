// Package compress provides the entropy codecs applied to frame payloads.
//
// A frame payload reaches this package already shaped by the frame encoding
// stage: either a flat pixel buffer (raw mode) or an RLE delta stream (delta
// mode). Both are byte streams with long runs and high redundancy, so a
// general-purpose LZ-family coder is applied as the final stage before the
// payload is written to the store.
//
// The codec identity is fixed per stream and is not recorded in the frame
// record header; the encoder and player must be configured with the same
// CompressionType. Mixing codecs within one stream is undefined behavior.
//
// # Supported algorithms
//
//   - None: pass-through, for benchmarking and debugging
//   - Zstd: best ratio, the default for new streams
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//
// All codecs are stateless values, safe for concurrent use; internal
// encoder/decoder state is pooled per algorithm.
package compress
