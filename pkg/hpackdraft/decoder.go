package hpackdraft

// headers_decode, §4.4. Decode consumes as much of buf as holds complete
// representations, appending decoded header fields to c.emitted, and
// returns the number of bytes consumed. A representation truncated
// mid-way is not an error (§7 TruncatedInput): Decode simply stops and
// reports the offset reached before it, leaving the context exactly as
// it was before that partial representation — every mutating primitive
// below only touches D/R after every sub-decode it depends on has
// already succeeded, so a truncation can never leave a half-applied
// representation behind.
//
// Drain decoded headers with Emitted/ResetEmitted between calls that
// complete a header block.
func (c *Context) Decode(buf []byte) (consumed int, err error) {
	if c.errored {
		return 0, ConnectionError{Code: ErrCodeCompression, Err: errUnknownOpcode}
	}

	pos := 0
	for pos < len(buf) {
		n, derr := c.decodeOne(buf[pos:])
		if derr != nil {
			if derr == errTruncated {
				return pos, nil
			}
			return pos, c.fail(derr)
		}
		pos += n
	}
	return pos, nil
}

// Emitted returns the header fields accumulated by Decode calls since the
// last ResetEmitted.
func (c *Context) Emitted() []HeaderField { return c.emitted }

// ResetEmitted clears the emitted-header buffer, keeping its backing
// array for reuse across header blocks.
func (c *Context) ResetEmitted() { c.emitted = c.emitted[:0] }

func (c *Context) emit(name, value string) {
	c.emitted = append(c.emitted, HeaderField{Name: name, Value: value})
}

// resolveIndex maps a combined-space index (§3) to its header field,
// distinguishing whether it resolved into D or S — callers need to know
// which, since only a D-hit participates in reference-set toggling.
func (c *Context) resolveIndex(index int) (hf HeaderField, id uint64, fromDynamic bool, err error) {
	if index == 0 {
		return HeaderField{}, 0, false, errZeroIndex
	}
	if index <= c.dyn.Len() {
		e, ok := c.dyn.get(index)
		if !ok {
			return HeaderField{}, 0, false, errInvalidIndex
		}
		return e.HeaderField, e.id, true, nil
	}
	e, ok := getStaticEntry(index - c.dyn.Len())
	if !ok {
		return HeaderField{}, 0, false, errInvalidIndex
	}
	return e, 0, false, nil
}

// decodeOne decodes a single representation from the front of buf,
// dispatching on the high bits of its first byte per the §4.4 table.
func (c *Context) decodeOne(buf []byte) (consumed int, err error) {
	if len(buf) < 1 {
		return 0, errTruncated
	}
	b := buf[0]

	switch {
	case b&0x80 != 0:
		return c.decodeIndexed(buf)
	case b == 0x40:
		return c.decodeLiteralNewName(buf, true)
	case b == 0x00:
		return c.decodeLiteralNewName(buf, false)
	case b == 0x10:
		return c.decodeLiteralNewName(buf, false)
	case b == 0x30:
		c.ref.empty()
		return 1, nil
	case b&0xc0 == 0x40:
		return c.decodeLiteralIndexedName(buf, 6, true)
	case b&0xf0 == 0x00:
		return c.decodeLiteralIndexedName(buf, 4, false)
	case b&0xf0 == 0x10:
		return c.decodeLiteralIndexedName(buf, 4, false)
	case b&0xf0 == 0x20:
		return c.decodeTableSizeUpdate(buf)
	default:
		return 0, errUnknownOpcode
	}
}

// decodeIndexed handles the `1xxxxxxx` indexed-header representation.
func (c *Context) decodeIndexed(buf []byte) (int, error) {
	n, index, err := decodeInteger(buf, 7)
	if err != nil {
		return 0, err
	}
	if index == 0 {
		return 0, errZeroIndex
	}

	hf, id, fromDynamic, err := c.resolveIndex(index)
	if err != nil {
		return 0, err
	}

	if !fromDynamic {
		// A static-table reference is unconditionally admitted to D
		// (§9 Open Question: the source does this regardless of
		// whether the draft's prose clearly calls for it; preserved
		// for wire agreement with the encoder, which relies on it).
		c.dyn.add(hf.Name, hf.Value, c.ref.remove)
		c.emit(hf.Name, hf.Value)
		return n, nil
	}

	if c.ref.has(id) {
		c.ref.remove(id)
		return n, nil
	}
	c.ref.add(id)
	c.emit(hf.Name, hf.Value)
	return n, nil
}

// decodeLiteralNewName handles the three full-byte "new name" opcodes
// (0x40 incremental, 0x00 no-indexing, 0x10 never-indexed). Only the
// incremental form mutates D/R.
func (c *Context) decodeLiteralNewName(buf []byte, incremental bool) (int, error) {
	pos := 1

	kn, key, err := strDecode(buf[pos:])
	if err != nil {
		return 0, err
	}
	if kn > c.maxStringLength {
		return 0, errStringTooLong
	}
	pos += kn

	vn, value, err := strDecode(buf[pos:])
	if err != nil {
		return 0, err
	}
	if vn > c.maxStringLength {
		return 0, errStringTooLong
	}
	pos += vn

	c.emit(key, value)
	if incremental {
		id, inserted := c.dyn.add(key, value, c.ref.remove)
		if inserted {
			c.ref.add(id)
		}
	}
	return pos, nil
}

// decodeLiteralIndexedName handles the indexed-name literal families:
// N=6 incremental (01xxxxxx) and N=4 no-indexing/never-indexed
// (0000xxxx / 0001xxxx). Only the incremental form mutates D/R.
func (c *Context) decodeLiteralIndexedName(buf []byte, n uint8, incremental bool) (int, error) {
	idxLen, index, err := decodeInteger(buf, n)
	if err != nil {
		return 0, err
	}
	pos := idxLen

	hf, _, _, err := c.resolveIndex(index)
	if err != nil {
		return 0, err
	}
	name := hf.Name

	vn, value, err := strDecode(buf[pos:])
	if err != nil {
		return 0, err
	}
	if vn > c.maxStringLength {
		return 0, errStringTooLong
	}
	pos += vn

	c.emit(name, value)
	if incremental {
		id, inserted := c.dyn.add(name, value, c.ref.remove)
		if inserted {
			c.ref.add(id)
		}
	}
	return pos, nil
}

// decodeTableSizeUpdate handles the `0010xxxx` family. The draft's own
// table lists this opcode with N=6, which is unreachable given its
// 4-fixed-bit prefix (6 free bits would collide with the reference-set
// emptying byte 0x30 and the never-indexed family); N=4 is what's
// actually addressable by this bit pattern and what encoder and decoder
// agree on here. See DESIGN.md.
func (c *Context) decodeTableSizeUpdate(buf []byte) (int, error) {
	n, newSize, err := decodeInteger(buf, 4)
	if err != nil {
		return 0, err
	}

	if c.host != nil && uint32(newSize) > c.host.Settings() {
		return 0, errOversizedTableUpdate
	}

	c.dyn.resize(uint32(newSize), c.ref.remove)
	return n, nil
}
