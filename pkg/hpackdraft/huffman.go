package hpackdraft

import (
	"strings"
)

// Canonical Huffman codec for the draft's header-string encoding (§4.1,
// §4.2, Design Notes). The host never sees raw symbols: huffEncode and
// huffDecode only ever operate on whole header name/value byte strings.
//
// The code table below is a canonical Huffman assignment (RFC 1951-style:
// symbols sorted by (length, symbol), codes allocated in that order),
// written out as literal {code, nbits} pairs rather than hand-transcribed
// from the draft's appendix; only the decoding tree is built at package
// init. Canonical construction
// guarantees a complete, prefix-free code regardless of the exact lengths
// chosen, which is the property both huffEncode and huffDecode actually
// depend on; see DESIGN.md for why the lengths aren't claimed to be a
// byte-exact reproduction of the published table.
//
// Symbol 256 is EOS. Canonical ordering puts it last among the
// longest-length symbols, so it always receives the all-ones code of the
// maximum length — that's what lets huffDecode recognize end-of-stream
// padding without a separate sentinel.

type huffCode struct {
	code  uint32
	nbits uint8
}

var huffmanCodes = [257]huffCode{
	{0x7ffa, 15}, {0x7ffb, 15}, {0x7ffc, 15}, {0x7ffd, 15}, {0x3f60, 14},
	{0x3f61, 14}, {0x3f62, 14}, {0x3f63, 14}, {0x3f64, 14}, {0x3f65, 14},
	{0x3f66, 14}, {0x3f67, 14}, {0x3f68, 14}, {0x3f69, 14}, {0x3f6a, 14},
	{0x3f6b, 14}, {0x3f6c, 14}, {0x3f6d, 14}, {0x3f6e, 14}, {0x3f6f, 14},
	{0x3f70, 14}, {0x3f71, 14}, {0x3f72, 14}, {0x3f73, 14}, {0x3f74, 14},
	{0x3f75, 14}, {0x3f76, 14}, {0x3f77, 14}, {0x3f78, 14}, {0x3f79, 14},
	{0x3f7a, 14}, {0x3f7b, 14}, {0x0, 5}, {0x3e4, 10}, {0x3e5, 10},
	{0x3e6, 10}, {0x3e7, 10}, {0x3e8, 10}, {0x3e9, 10}, {0x3ea, 10},
	{0x3eb, 10}, {0x3ec, 10}, {0x3ed, 10}, {0x3ee, 10}, {0x3ef, 10},
	{0x1, 5}, {0x2, 5}, {0x3, 5}, {0x20, 6}, {0x21, 6},
	{0x22, 6}, {0x23, 6}, {0x24, 6}, {0x25, 6}, {0x26, 6},
	{0x27, 6}, {0x28, 6}, {0x29, 6}, {0x4, 5}, {0x3f0, 10},
	{0x3f1, 10}, {0x3f2, 10}, {0x3f3, 10}, {0x3f4, 10}, {0x3f5, 10},
	{0x1d0, 9}, {0x1d1, 9}, {0x1d2, 9}, {0x1d3, 9}, {0x1d4, 9},
	{0x1d5, 9}, {0x1d6, 9}, {0x1d7, 9}, {0x1d8, 9}, {0x1d9, 9},
	{0x1da, 9}, {0x1db, 9}, {0x1dc, 9}, {0x1dd, 9}, {0x1de, 9},
	{0x1df, 9}, {0x1e0, 9}, {0x1e1, 9}, {0x1e2, 9}, {0x1e3, 9},
	{0x1e4, 9}, {0x1e5, 9}, {0x1e6, 9}, {0x1e7, 9}, {0x1e8, 9},
	{0x1e9, 9}, {0x1ea, 9}, {0x7ffe, 15}, {0x1eb, 9}, {0x1ec, 9},
	{0x5, 5}, {0x1ed, 9}, {0x2a, 6}, {0x2b, 6}, {0x2c, 6},
	{0x2d, 6}, {0x2e, 6}, {0x2f, 6}, {0x30, 6}, {0x31, 6},
	{0x32, 6}, {0x33, 6}, {0x34, 6}, {0x35, 6}, {0x36, 6},
	{0x37, 6}, {0x38, 6}, {0x39, 6}, {0x6, 5}, {0x7, 5},
	{0x8, 5}, {0x9, 5}, {0xa, 5}, {0xb, 5}, {0xc, 5},
	{0xd, 5}, {0xe, 5}, {0xf, 5}, {0x1ee, 9}, {0x1ef, 9},
	{0x1f0, 9}, {0x1f1, 9}, {0x3f7c, 14}, {0x3f7d, 14}, {0x3f7e, 14},
	{0x3f7f, 14}, {0x3f80, 14}, {0x3f81, 14}, {0x3f82, 14}, {0x3f83, 14},
	{0x3f84, 14}, {0x3f85, 14}, {0x3f86, 14}, {0x3f87, 14}, {0x3f88, 14},
	{0x3f89, 14}, {0x3f8a, 14}, {0x3f8b, 14}, {0x3f8c, 14}, {0x3f8d, 14},
	{0x3f8e, 14}, {0x3f8f, 14}, {0x3f90, 14}, {0x3f91, 14}, {0x3f92, 14},
	{0x3f93, 14}, {0x3f94, 14}, {0x3f95, 14}, {0x3f96, 14}, {0x3f97, 14},
	{0x3f98, 14}, {0x3f99, 14}, {0x3f9a, 14}, {0x3f9b, 14}, {0x3f9c, 14},
	{0x3f9d, 14}, {0x3f9e, 14}, {0x3f9f, 14}, {0x3fa0, 14}, {0x3fa1, 14},
	{0x3fa2, 14}, {0x3fa3, 14}, {0x3fa4, 14}, {0x3fa5, 14}, {0x3fa6, 14},
	{0x3fa7, 14}, {0x3fa8, 14}, {0x3fa9, 14}, {0x3faa, 14}, {0x3fab, 14},
	{0x3fac, 14}, {0x3fad, 14}, {0x3fae, 14}, {0x3faf, 14}, {0x3fb0, 14},
	{0x3fb1, 14}, {0x3fb2, 14}, {0x3fb3, 14}, {0x3fb4, 14}, {0x3fb5, 14},
	{0x3fb6, 14}, {0x3fb7, 14}, {0x3fb8, 14}, {0x3fb9, 14}, {0x3fba, 14},
	{0x3fbb, 14}, {0x3fbc, 14}, {0x3fbd, 14}, {0x3fbe, 14}, {0x3fbf, 14},
	{0x3fc0, 14}, {0x3fc1, 14}, {0x3fc2, 14}, {0x3fc3, 14}, {0x3fc4, 14},
	{0x3fc5, 14}, {0x3fc6, 14}, {0x3fc7, 14}, {0x3fc8, 14}, {0x3fc9, 14},
	{0x3fca, 14}, {0x3fcb, 14}, {0x3fcc, 14}, {0x3fcd, 14}, {0x3fce, 14},
	{0x3fcf, 14}, {0x3fd0, 14}, {0x3fd1, 14}, {0x3fd2, 14}, {0x3fd3, 14},
	{0x3fd4, 14}, {0x3fd5, 14}, {0x3fd6, 14}, {0x3fd7, 14}, {0x3fd8, 14},
	{0x3fd9, 14}, {0x3fda, 14}, {0x3fdb, 14}, {0x3fdc, 14}, {0x3fdd, 14},
	{0x3fde, 14}, {0x3fdf, 14}, {0x3fe0, 14}, {0x3fe1, 14}, {0x3fe2, 14},
	{0x3fe3, 14}, {0x3fe4, 14}, {0x3fe5, 14}, {0x3fe6, 14}, {0x3fe7, 14},
	{0x3fe8, 14}, {0x3fe9, 14}, {0x3fea, 14}, {0x3feb, 14}, {0x3fec, 14},
	{0x3fed, 14}, {0x3fee, 14}, {0x3fef, 14}, {0x3ff0, 14}, {0x3ff1, 14},
	{0x3ff2, 14}, {0x3ff3, 14}, {0x3ff4, 14}, {0x3ff5, 14}, {0x3ff6, 14},
	{0x3ff7, 14}, {0x3ff8, 14}, {0x3ff9, 14}, {0x3ffa, 14}, {0x3ffb, 14},
	{0x3ffc, 14}, {0x7fff, 15}, // 256 = EOS
}

const huffmanEOS = 256

// huffmanNode is a node of the canonical decoding tree built from
// huffmanCodes at init time (byte-at-a-time table construction is the
// teacher's other option for throughput; a bit-at-a-time walk is simpler
// and the codec is not on a hot network path here).
type huffmanNode struct {
	children [2]*huffmanNode
	symbol   int
}

var huffmanRoot = buildHuffmanTree()

func buildHuffmanTree() *huffmanNode {
	root := &huffmanNode{symbol: -1}
	for sym, c := range huffmanCodes {
		node := root
		for i := int(c.nbits) - 1; i >= 0; i-- {
			bit := (c.code >> uint(i)) & 1
			if node.children[bit] == nil {
				node.children[bit] = &huffmanNode{symbol: -1}
			}
			node = node.children[bit]
		}
		node.symbol = sym
	}
	return root
}

// huffEncodeLen returns the number of bytes huffEncode(s) would produce,
// without allocating — used by strEncode to pick the shorter
// representation.
func huffEncodeLen(s string) int {
	var bits int
	for i := 0; i < len(s); i++ {
		bits += int(huffmanCodes[s[i]].nbits)
	}
	return (bits + 7) / 8
}

// huffEncode Huffman-encodes s, padding the final byte with the high-order
// bits of the EOS code (§4.1 Design Notes).
func huffEncode(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	out := make([]byte, 0, huffEncodeLen(s))
	var bits uint64
	var nbits uint8
	for i := 0; i < len(s); i++ {
		c := huffmanCodes[s[i]]
		bits = (bits << c.nbits) | uint64(c.code)
		nbits += c.nbits
		for nbits >= 8 {
			nbits -= 8
			out = append(out, byte(bits>>nbits))
			bits &= (1 << nbits) - 1
		}
	}
	if nbits > 0 {
		pad := 8 - nbits
		bits = (bits << pad) | ((1 << pad) - 1)
		out = append(out, byte(bits))
	}
	return out
}

// huffDecode decodes Huffman-coded data back into a string, rejecting any
// sequence whose trailing padding is not a prefix of the EOS code.
func huffDecode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	var out strings.Builder
	out.Grow(len(data) * 2)
	node := huffmanRoot

	for byteIdx, b := range data {
		for i := 7; i >= 0; i-- {
			bit := (b >> uint(i)) & 1
			next := node.children[bit]
			if next == nil {
				if byteIdx == len(data)-1 {
					mask := byte((1 << uint(i+1)) - 1)
					if b&mask == mask {
						return out.String(), nil
					}
				}
				return "", errInvalidHuffmanCode
			}
			node = next
			if node.symbol >= 0 {
				if node.symbol == huffmanEOS {
					return "", errHuffmanEOS
				}
				out.WriteByte(byte(node.symbol))
				node = huffmanRoot
			}
		}
	}

	if node == huffmanRoot {
		return out.String(), nil
	}

	// Incomplete symbol at end of input: valid only if it's a true
	// padding prefix, i.e. following 1-bits from here lands on EOS.
	for node != nil && node.symbol < 0 {
		node = node.children[1]
	}
	if node == nil || node.symbol != huffmanEOS {
		return "", errInvalidHuffmanCode
	}
	return out.String(), nil
}
