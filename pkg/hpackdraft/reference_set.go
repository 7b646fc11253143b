package hpackdraft

// The reference set R, §3 and §9. Membership is keyed by the dynamic
// table entry's stable id (dynEntry.id), never by (name, value) content —
// two distinct entries with identical content must be addressable
// independently, which a content-keyed set could not do.
//
// There's no example in the pack that implements a reference set itself
// (RFC 7541's qpack/http2 packages both postdate and dropped this
// mechanism); the id-keyed-map shape here is modeled on the monotonic
// insertIndex/baseIndex bookkeeping in the qpack dynamic table, adapted
// from "absolute index" identity to a plain membership set. See
// DESIGN.md for why this one piece has no direct teacher analogue.
type referenceSet struct {
	members map[uint64]struct{}
}

func newReferenceSet() *referenceSet {
	return &referenceSet{members: make(map[uint64]struct{})}
}

func (r *referenceSet) has(id uint64) bool {
	_, ok := r.members[id]
	return ok
}

func (r *referenceSet) add(id uint64) {
	r.members[id] = struct{}{}
}

func (r *referenceSet) remove(id uint64) {
	delete(r.members, id)
}

// empty replaces R with ∅ (§4.4 reference-set-emptying opcode, §4.5
// reconciliation divergence branch).
func (r *referenceSet) empty() {
	r.members = make(map[uint64]struct{})
}

func (r *referenceSet) len() int { return len(r.members) }
