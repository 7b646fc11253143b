package hpackdraft

import (
	"strings"

	"github.com/valyala/bytebufferpool"
)

// headers_encode, §4.5. Encode lowercases names, coalesces repeated
// names, reconciles the reference set against the new header list, then
// picks among five representations per header in order of preference.
func (c *Context) Encode(headers []HeaderField) ([]byte, error) {
	if c.errored {
		return nil, ConnectionError{Code: ErrCodeCompression, Err: errUnknownOpcode}
	}

	order, hlist := coalesce(headers)

	out := bytebufferpool.Get()
	defer bytebufferpool.Put(out)

	exclude := c.reconcileReferenceSet(out, hlist)

	for _, name := range order {
		if exclude[name] {
			continue
		}
		c.encodeOne(out, name, hlist[name])
	}

	result := make([]byte, out.Len())
	copy(result, out.B)
	return result, nil
}

// coalesce lowercases names and merges repeated names' values with a NUL
// separator, preserving first-occurrence order (§4.5 "Pre-pass").
func coalesce(headers []HeaderField) (order []string, hlist map[string]string) {
	hlist = make(map[string]string, len(headers))
	order = make([]string, 0, len(headers))

	for _, h := range headers {
		name := strings.ToLower(h.Name)
		if existing, ok := hlist[name]; ok {
			hlist[name] = existing + "\x00" + h.Value
		} else {
			hlist[name] = h.Value
			order = append(order, name)
		}
	}
	return order, hlist
}

// reconcileReferenceSet walks R against the incoming header list. If any
// member's name has dropped out of hlist entirely, the header lists have
// diverged materially: emit the reference-set-emptying opcode, reset R,
// and return with no exclusions. Otherwise, every member whose (name,
// value) exactly matches what's about to be sent is excluded from
// emission — it's already implicitly present via R.
func (c *Context) reconcileReferenceSet(out *bytebufferpool.ByteBuffer, hlist map[string]string) map[string]bool {
	exclude := make(map[string]bool, len(hlist))
	diverged := false

	for id := range c.ref.members {
		hf, ok := c.dyn.findByID(id)
		if !ok {
			continue
		}
		value, present := hlist[hf.Name]
		if !present {
			diverged = true
			break
		}
		if value == hf.Value {
			exclude[hf.Name] = true
		}
	}

	if diverged {
		out.WriteByte(0x30)
		c.ref.empty()
		return map[string]bool{}
	}
	return exclude
}

// encodeOne picks one of the five representations in §4.5's preference
// order for a single (already-lowercased, already-coalesced) header.
func (c *Context) encodeOne(out *bytebufferpool.ByteBuffer, name, value string) {
	dIdx, dExact := c.dyn.find(name, value)
	sIdx, sExact := findStaticIndex(name, value)

	switch {
	case dExact:
		// 1. Exact match in D.
		out.B = appendInteger(out.B, dIdx, 7, 0x80)

	case dIdx > 0 && !sExact:
		// 2. Name match in D, pair absent from the static reverse
		// index (§9 Open Question: checked before the static-exact
		// branch below; because it requires !sExact, a D name-match
		// never takes the place of a static-exact encoding).
		out.B = appendInteger(out.B, dIdx, 6, 0x40)
		out.B = appendString(out.B, value)
		c.insertAndTrack(name, value)

	case sExact:
		// 3. Exact match in the static table.
		out.B = appendInteger(out.B, c.dyn.combinedSize()+sIdx, 7, 0x80)

	case sIdx > 0:
		// 4. Name-only match in the static table.
		out.B = appendInteger(out.B, c.dyn.combinedSize()+sIdx, 6, 0x40)
		out.B = appendString(out.B, value)
		c.insertAndTrack(name, value)

	default:
		// 5. Literal, new name.
		out.B = append(out.B, 0x40)
		out.B = appendString(out.B, name)
		out.B = appendString(out.B, value)
		c.insertAndTrack(name, value)
	}
}

// insertAndTrack adds an entry to D and, if admitted, to R — the
// add-and-index step shared by encoder branches 2, 4, and 5.
func (c *Context) insertAndTrack(name, value string) {
	id, inserted := c.dyn.add(name, value, c.ref.remove)
	if inserted {
		c.ref.add(id)
	}
}
