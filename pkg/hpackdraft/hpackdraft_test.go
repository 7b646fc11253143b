package hpackdraft

import (
	"testing"
)

// stubHost is a minimal Host for tests: a fixed negotiated table size and
// a recorder for raised connection errors.
type stubHost struct {
	maxSize uint32
	raised  []ConnectionError
}

func (h *stubHost) Settings() uint32 { return h.maxSize }
func (h *stubHost) Raise(e ConnectionError) {
	h.raised = append(h.raised, e)
}

func newTestContext() (*Context, *stubHost) {
	host := &stubHost{maxSize: 4096}
	return NewContext(4096, host), host
}

func decodeAll(t *testing.T, c *Context, buf []byte) []HeaderField {
	t.Helper()
	n, err := c.Decode(buf)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("decode consumed %d of %d bytes", n, len(buf))
	}
	out := append([]HeaderField(nil), c.Emitted()...)
	c.ResetEmitted()
	return out
}

// TestScenarioS2LiteralHeaderStaticExact covers S2: encoding
// [":method","GET"] on an empty context picks the static-exact
// representation and leaves D untouched.
func TestScenarioS2LiteralHeaderStaticExact(t *testing.T) {
	c, _ := newTestContext()

	out, err := c.Encode([]HeaderField{{Name: ":method", Value: "GET"}})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	if len(out) != 1 || out[0]&0x80 == 0 {
		t.Fatalf("expected a single indexed byte, got % x", out)
	}
	if c.dyn.Len() != 0 {
		t.Errorf("D should be unchanged by a static-exact encode, len=%d", c.dyn.Len())
	}
}

// TestScenarioS3LiteralNewName covers S3: a header absent from both
// tables is emitted as 0x40 + str_encode(name) + str_encode(value), and
// ends up in D and R.
func TestScenarioS3LiteralNewName(t *testing.T) {
	c, _ := newTestContext()

	out, err := c.Encode([]HeaderField{{Name: "x-custom", Value: "ab"}})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if out[0] != 0x40 {
		t.Fatalf("expected opcode 0x40, got %x", out[0])
	}

	if c.dyn.Len() != 1 {
		t.Fatalf("expected D to gain one entry, got %d", c.dyn.Len())
	}
	e, _ := c.dyn.get(1)
	if e.Name != "x-custom" || e.Value != "ab" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if !c.ref.has(e.id) {
		t.Errorf("expected new entry to be in R")
	}
}

// TestScenarioS4ReferenceSetReuse covers S4: re-encoding the same header
// after S3 yields the empty byte string.
func TestScenarioS4ReferenceSetReuse(t *testing.T) {
	c, _ := newTestContext()
	c.Encode([]HeaderField{{Name: "x-custom", Value: "ab"}})

	dLenBefore, rLenBefore := c.dyn.Len(), c.ref.len()

	out, err := c.Encode([]HeaderField{{Name: "x-custom", Value: "ab"}})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty output on reference-set reuse, got % x", out)
	}
	if c.dyn.Len() != dLenBefore || c.ref.len() != rLenBefore {
		t.Errorf("D/R should be unchanged: D %d->%d, R %d->%d", dLenBefore, c.dyn.Len(), rLenBefore, c.ref.len())
	}
}

// TestScenarioS5ReferenceSetExclusion covers S5: after S3, encoding both
// the already-referenced header and a new one only emits the new one.
func TestScenarioS5ReferenceSetExclusion(t *testing.T) {
	c, _ := newTestContext()
	c.Encode([]HeaderField{{Name: "x-custom", Value: "ab"}})

	out, err := c.Encode([]HeaderField{
		{Name: "x-custom", Value: "ab"},
		{Name: "x-other", Value: "z"},
	})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	d, _ := newTestContext()
	d.Encode([]HeaderField{{Name: "x-custom", Value: "ab"}})
	hf := decodeAll(t, d, out)
	if len(hf) != 1 || hf[0].Name != "x-other" || hf[0].Value != "z" {
		t.Errorf("expected only x-other to be emitted, got %+v", hf)
	}
}

// TestScenarioS6ReferenceSetDivergence covers S6: after S3, encoding an
// unrelated header first empties R via 0x30, then emits the literal.
func TestScenarioS6ReferenceSetDivergence(t *testing.T) {
	c, _ := newTestContext()
	c.Encode([]HeaderField{{Name: "x-custom", Value: "ab"}})

	out, err := c.Encode([]HeaderField{{Name: "y", Value: "1"}})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if out[0] != 0x30 {
		t.Fatalf("expected leading reference-set-emptying byte, got % x", out)
	}
	if c.ref.len() != 1 {
		// y/1 itself should now be the sole member.
		t.Errorf("expected R to contain exactly the new entry, len=%d", c.ref.len())
	}
}

// TestEncodeDecodeLockstep exercises property 3: independently
// initialized encoder/decoder contexts kept in lockstep reproduce the
// same (name, value) multiset across a sequence of header lists.
func TestEncodeDecodeLockstep(t *testing.T) {
	enc, _ := newTestContext()
	dec, _ := newTestContext()

	sequences := [][]HeaderField{
		{{Name: ":method", Value: "GET"}, {Name: ":path", Value: "/"}},
		{{Name: ":method", Value: "GET"}, {Name: "x-trace", Value: "abc"}},
		{{Name: "x-trace", Value: "abc"}, {Name: "x-new", Value: "1"}},
		{{Name: "cookie", Value: "a"}, {Name: "cookie", Value: "b"}},
	}

	for i, headers := range sequences {
		wire, err := enc.Encode(headers)
		if err != nil {
			t.Fatalf("seq %d encode error: %v", i, err)
		}
		got := decodeAll(t, dec, wire)

		want := coalesceForComparison(headers)
		gotSet := splitCoalesced(got)

		if !sameMultiset(gotSet, want) {
			t.Errorf("seq %d: got %+v, want %+v", i, gotSet, want)
		}
	}
}

func coalesceForComparison(headers []HeaderField) []HeaderField {
	_, hlist := coalesce(headers)
	out := make([]HeaderField, 0, len(hlist))
	for name, value := range hlist {
		out = append(out, HeaderField{Name: name, Value: value})
	}
	return splitCoalesced(out)
}

func splitCoalesced(headers []HeaderField) []HeaderField {
	out := make([]HeaderField, 0, len(headers))
	for _, h := range headers {
		start := 0
		v := h.Value
		for i := 0; i <= len(v); i++ {
			if i == len(v) || v[i] == 0 {
				out = append(out, HeaderField{Name: h.Name, Value: v[start:i]})
				start = i + 1
			}
		}
	}
	return out
}

func sameMultiset(a, b []HeaderField) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[HeaderField]int)
	for _, h := range a {
		count[h]++
	}
	for _, h := range b {
		count[h]--
	}
	for _, n := range count {
		if n != 0 {
			return false
		}
	}
	return true
}

// TestTableSizeUpdateExceedsSettings covers property 6: an inbound
// update above the negotiated maximum is fatal and leaves state
// otherwise unmodified.
func TestTableSizeUpdateExceedsSettings(t *testing.T) {
	c, host := newTestContext()
	host.maxSize = 100

	before := c.MaxTableSize()
	buf := appendInteger(nil, 4096, 4, 0x20)

	_, err := c.Decode(buf)
	if err == nil {
		t.Fatal("expected COMPRESSION_ERROR")
	}
	if _, ok := err.(ConnectionError); !ok {
		t.Errorf("expected ConnectionError, got %T", err)
	}
	if len(host.raised) != 1 {
		t.Errorf("expected host.Raise to be called once, got %d", len(host.raised))
	}
	if c.MaxTableSize() != before {
		t.Errorf("max table size should be unchanged after rejection: got %d, want %d", c.MaxTableSize(), before)
	}
}

func TestTableSizeUpdateWithinSettingsApplies(t *testing.T) {
	c, host := newTestContext()
	host.maxSize = 8192

	buf := appendInteger(nil, 2048, 4, 0x20)
	n, err := c.Decode(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if c.MaxTableSize() != 2048 {
		t.Errorf("max table size = %d, want 2048", c.MaxTableSize())
	}
}

// TestDecodeZeroIndexIsFatal covers InvalidIndex / zero index handling.
func TestDecodeZeroIndexIsFatal(t *testing.T) {
	c, _ := newTestContext()
	buf := []byte{0x80} // 1xxxxxxx with index 0
	if _, err := c.Decode(buf); err == nil {
		t.Fatal("expected COMPRESSION_ERROR for index 0")
	}
}

// TestDecodeUnknownOpcode covers the 0x31-0x3F unknown-opcode hole left
// by carving 0x30 out of the "0011xxxx" family.
func TestDecodeUnknownOpcode(t *testing.T) {
	c, _ := newTestContext()
	if _, err := c.Decode([]byte{0x31}); err == nil {
		t.Fatal("expected COMPRESSION_ERROR for unknown opcode")
	}
}

// TestDecodeTruncatedLeavesContextUnchanged covers the §4.4 truncation
// contract: a partial representation consumes nothing and is not an
// error.
func TestDecodeTruncatedLeavesContextUnchanged(t *testing.T) {
	c, _ := newTestContext()
	buf := []byte{0x40, 0x03, 'a', 'b'} // new-name literal: 3-byte name with only 2 bytes present, no value

	n, err := c.Decode(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("consumed %d, want 0 (representation incomplete)", n)
	}
	if c.dyn.Len() != 0 {
		t.Errorf("D should be untouched by a truncated representation")
	}
}

// TestReferenceSetEmptyingOpcode exercises the 0x30 decode path directly.
func TestReferenceSetEmptyingOpcode(t *testing.T) {
	c, _ := newTestContext()
	c.Encode([]HeaderField{{Name: "x", Value: "y"}})
	if c.ReferenceSetLen() == 0 {
		t.Fatal("expected reference set to be nonempty before reset")
	}

	n, err := c.Decode([]byte{0x30})
	if err != nil || n != 1 {
		t.Fatalf("decode(0x30) = (%d,%v)", n, err)
	}
	if c.ReferenceSetLen() != 0 {
		t.Errorf("expected reference set to be empty after 0x30, len=%d", c.ReferenceSetLen())
	}
}

// TestInvariantTableSizeTracksEntries covers property 4.
func TestInvariantTableSizeTracksEntries(t *testing.T) {
	c, _ := newTestContext()
	headers := []HeaderField{
		{Name: "a", Value: "1"}, {Name: "b", Value: "22"}, {Name: "c", Value: "333"},
	}
	c.Encode(headers)

	var sum uint32
	for i := 1; i <= c.dyn.Len(); i++ {
		e, _ := c.dyn.get(i)
		sum += entrySize(e.Name, e.Value)
	}
	if sum != c.TableSize() {
		t.Errorf("recomputed size %d != tracked size %d", sum, c.TableSize())
	}
	if c.TableSize() > c.MaxTableSize() {
		t.Errorf("ht_size %d exceeds max_ht_size %d", c.TableSize(), c.MaxTableSize())
	}
}
