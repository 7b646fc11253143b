package hpackdraft

// Host is the narrow set of collaborators this codec asks of its
// embedder (§6 "Contract consumed from the host"). Everything else —
// frame framing, stream/connection state, settings negotiation, TLS,
// priority/flow control, tracing — lives outside this package.
type Host interface {
	// Settings returns the peer-advertised SETTINGS_HEADER_TABLE_SIZE,
	// used to validate inbound table-size updates.
	Settings() uint32
	// Raise signals a connection-fatal error. The context must not be
	// used again afterward.
	Raise(ConnectionError)
}

// Context is one direction's codec state (§3 "Codec context"): the
// dynamic table, its reference-set overlay, and the transient output
// buffer a decode call appends into. A Context is strictly
// single-threaded (§5) and is mutated exclusively by either Decode or
// Encode calls on it, never both directions' worth of traffic.
type Context struct {
	dyn     *dynamicTable
	ref     *referenceSet
	host    Host
	emitted []HeaderField
	errored bool

	// maxStringLength bounds a single decoded string literal, guarding
	// against a malicious length field demanding an enormous allocation.
	// Not part of the draft's wire semantics; a conservative ambient
	// safeguard against a decompression-bomb-shaped length field.
	maxStringLength int
}

const defaultMaxStringLength = 16 * 1024 * 1024

// NewContext creates a codec context with the given initial dynamic
// table size budget (§6 `new_context`). D and R both start empty.
func NewContext(initialMaxSize uint32, host Host) *Context {
	return &Context{
		dyn:             newDynamicTable(initialMaxSize),
		ref:             newReferenceSet(),
		host:            host,
		emitted:         make([]HeaderField, 0, 32),
		maxStringLength: defaultMaxStringLength,
	}
}

// SetMaxStringLength overrides the default per-string decode guard.
func (c *Context) SetMaxStringLength(n int) { c.maxStringLength = n }

// TableSize reports the current ht_size, for tests and diagnostics.
func (c *Context) TableSize() uint32 { return c.dyn.Size() }

// MaxTableSize reports max_ht_size.
func (c *Context) MaxTableSize() uint32 { return c.dyn.MaxSize() }

// ReferenceSetLen reports |R|, for tests.
func (c *Context) ReferenceSetLen() int { return c.ref.len() }

// ResizeLocal applies a local SETTINGS_HEADER_TABLE_SIZE change (§6
// `resize_local`): it is never subject to the peer-settings ceiling that
// inbound table-size-update opcodes are, since it originates locally.
func (c *Context) ResizeLocal(newMax uint32) {
	c.dyn.resize(newMax, c.ref.remove)
}

// fail raises COMPRESSION_ERROR through the host and marks the context
// terminal (§7: "the codec MUST NOT be reused after raising it").
func (c *Context) fail(err error) error {
	c.errored = true
	cerr := ConnectionError{Code: ErrCodeCompression, Err: err}
	if c.host != nil {
		c.host.Raise(cerr)
	}
	return cerr
}
