package hpackdraft

// Dynamic header table, §4.3 and §9 Design Notes. Storage is a ring
// buffer indexed from the head (index 1 = most recently inserted, as in
// the draft) so insertion never shifts existing entries; eviction only
// ever touches the tail. Each entry additionally carries a monotonically
// increasing id, assigned once at insertion and never reused — that id,
// not the entry's shifting logical index, is what the reference set
// addresses (§9 "Entry identity in the reference set").

type dynEntry struct {
	HeaderField
	id uint64
}

// entrySize is the accounting unit from §3: name + value + 32 bytes of
// fixed per-entry overhead.
func entrySize(name, value string) uint32 {
	return uint32(len(name) + len(value) + 32)
}

type dynamicTable struct {
	entries []dynEntry // ring buffer
	head    int        // physical slot of logical index 1
	count   int
	size    uint32
	maxSize uint32
	nextID  uint64
}

func newDynamicTable(maxSize uint32) *dynamicTable {
	capacity := int(maxSize / 64)
	if capacity < 16 {
		capacity = 16
	}
	return &dynamicTable{
		entries: make([]dynEntry, capacity),
		maxSize: maxSize,
	}
}

func (dt *dynamicTable) Len() int        { return dt.count }
func (dt *dynamicTable) Size() uint32    { return dt.size }
func (dt *dynamicTable) MaxSize() uint32 { return dt.maxSize }

// get returns the entry at logical index (1 = newest).
func (dt *dynamicTable) get(index int) (dynEntry, bool) {
	if index < 1 || index > dt.count {
		return dynEntry{}, false
	}
	pos := (dt.head + index - 1) % len(dt.entries)
	return dt.entries[pos], true
}

// find returns the logical index of a matching entry, preferring an exact
// (name, value) match; falls back to the first name-only match.
func (dt *dynamicTable) find(name, value string) (index int, exact bool) {
	for i := 0; i < dt.count; i++ {
		pos := (dt.head + i) % len(dt.entries)
		e := dt.entries[pos]
		if e.Name == name {
			if e.Value == value {
				return i + 1, true
			}
			if index == 0 {
				index = i + 1
			}
		}
	}
	return index, false
}

// add inserts (name, value) at logical index 1, evicting from the tail as
// needed to stay within maxSize (§4.3 `add`/`evict`). onEvict is invoked
// with the stable id of every entry evicted to make room, so the
// reference set can drop its membership (§3 "R ⊆ D" invariant). Returns
// the new entry's id, or false if the entry was too large to admit
// (§4.3: "do nothing" — not an error, §7).
func (dt *dynamicTable) add(name, value string, onEvict func(id uint64)) (id uint64, inserted bool) {
	sz := entrySize(name, value)

	// Checked before evict: an oversized entry is a no-op (§4.3, §7), and
	// must leave every existing entry in place. Evicting first would have
	// emptied the whole table chasing room for an entry that's rejected
	// anyway, since need > maxSize holds even once size reaches 0.
	if sz > dt.maxSize {
		return 0, false
	}

	dt.evict(sz, onEvict)

	if dt.count == len(dt.entries) {
		dt.grow()
	}

	dt.head = (dt.head - 1 + len(dt.entries)) % len(dt.entries)
	dt.nextID++
	newID := dt.nextID
	dt.entries[dt.head] = dynEntry{HeaderField: HeaderField{Name: name, Value: value}, id: newID}
	dt.count++
	dt.size += sz

	return newID, true
}

// evict pops tail entries until ht_size + need <= max_ht_size, invoking
// onEvict per removed entry's id (§4.3 `evict`).
func (dt *dynamicTable) evict(need uint32, onEvict func(id uint64)) {
	for dt.size+need > dt.maxSize && dt.count > 0 {
		tail := (dt.head + dt.count - 1) % len(dt.entries)
		e := dt.entries[tail]
		dt.size -= entrySize(e.Name, e.Value)
		dt.count--
		dt.entries[tail] = dynEntry{}
		if onEvict != nil {
			onEvict(e.id)
		}
	}
}

// resize applies a new size budget, evicting as needed (§4.3 `resize`).
func (dt *dynamicTable) resize(newMax uint32, onEvict func(id uint64)) {
	dt.maxSize = newMax
	dt.evict(0, onEvict)
}

// grow doubles ring buffer capacity, linearizing existing entries.
func (dt *dynamicTable) grow() {
	next := make([]dynEntry, len(dt.entries)*2)
	for i := 0; i < dt.count; i++ {
		pos := (dt.head + i) % len(dt.entries)
		next[i] = dt.entries[pos]
	}
	dt.entries = next
	dt.head = 0
}

// combinedSize reports |D|, used to compute the combined index-space
// offset for static-table references (§3 "Combined index space").
func (dt *dynamicTable) combinedSize() int { return dt.count }

// findByID resolves a stable entry id back to its header field — used by
// the encoder's reference-set reconciliation pass, which only has ids to
// work from (§4.5).
func (dt *dynamicTable) findByID(id uint64) (HeaderField, bool) {
	for i := 0; i < dt.count; i++ {
		pos := (dt.head + i) % len(dt.entries)
		if dt.entries[pos].id == id {
			return dt.entries[pos].HeaderField, true
		}
	}
	return HeaderField{}, false
}
