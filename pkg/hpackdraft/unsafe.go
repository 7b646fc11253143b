package hpackdraft

import "unsafe"

// bytesToString converts a byte slice to a string with zero allocations.
//
// SAFETY: the returned string shares memory with b and must never outlive
// or alias a mutated b. Storing it in a HeaderField does not copy its
// bytes. The only caller, strDecode, applies it to the buffer passed to
// Context.Decode, so decoded literal (non-Huffman) strings, both in the
// emitted list and in the dynamic table, keep referring to that buffer.
//
//go:inline
func bytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// stringToBytes views a string's bytes without copying. The returned slice
// MUST NOT be modified: strings are immutable and the runtime assumes it.
// Used on the literal-string encode path (appendString) to append a
// caller's header value into the output buffer without the intermediate
// copy the `append(dst, s...)` spread form would otherwise need.
//
//go:inline
func stringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
