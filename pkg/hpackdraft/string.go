package hpackdraft

// Length-prefixed string encoding with a Huffman flag, §4.2, built on top
// of the integer codec and the Huffman codec.

// strEncode Huffman-encodes s and keeps whichever of the Huffman or literal
// form is shorter, literal winning ties (§8 property 2).
func strEncode(s string) []byte {
	return appendString(nil, s)
}

// appendString appends str_encode(s) to dst, avoiding an intermediate
// allocation — the encoder's hot path uses this instead of strEncode.
func appendString(dst []byte, s string) []byte {
	huff := huffEncode(s)

	if len(huff) < len(s) {
		dst = appendInteger(dst, len(huff), 7, 0x80)
		return append(dst, huff...)
	}
	dst = appendInteger(dst, len(s), 7, 0x00)
	return append(dst, stringToBytes(s)...)
}

// strDecode reads a length-prefixed, possibly-Huffman-coded string from
// buf starting at offset 0. The Huffman flag is read from the raw first
// byte before the integer decode masks it away, per §4.2.
func strDecode(buf []byte) (consumed int, value string, err error) {
	if len(buf) < 1 {
		return 0, "", errTruncated
	}
	huffman := buf[0]&0x80 != 0

	lenConsumed, length, err := decodeInteger(buf, 7)
	if err != nil {
		return 0, "", err
	}

	if len(buf) < lenConsumed+length {
		return 0, "", errTruncated
	}
	payload := buf[lenConsumed : lenConsumed+length]
	total := lenConsumed + length

	if !huffman {
		return total, bytesToString(payload), nil
	}

	s, err := huffDecode(payload)
	if err != nil {
		return 0, "", err
	}
	return total, s, nil
}
