package obj

import "fmt"

// Handle is a borrowed, non-owning view of one foreign object: the runtime
// it belongs to plus its address. A Handle carries no reference count of
// its own and must not outlive the Ref it was borrowed from.
//
// Identity, hashing and type identity are all delegated to the foreign
// runtime. Equal in particular is never decided by address comparison:
// the runtime's equality may be value-based, so two distinct addresses can
// compare equal and must then hash alike.
type Handle struct {
	rt   Runtime
	addr Addr
}

// NewHandle builds a borrowed view of addr. The caller is responsible for
// keeping the address live for as long as the Handle is used - typically by
// holding an owning Ref, or by borrowing from foreign code that owns a
// reference for the duration of the call.
func NewHandle(rt Runtime, addr Addr) *Handle {
	if rt == nil {
		panic("obj: NewHandle with nil runtime")
	}
	if addr == 0 {
		panic("obj: NewHandle with null address")
	}
	return &Handle{rt: rt, addr: addr}
}

// Addr returns the object's foreign address.
func (h *Handle) Addr() Addr { return h.addr }

// Runtime returns the foreign runtime the object belongs to.
func (h *Handle) Runtime() Runtime { return h.rt }

// Equal reports whether the foreign runtime considers the two objects
// equal. Objects from different runtimes are never equal.
func (h *Handle) Equal(other *Handle) bool {
	if other == nil {
		return false
	}
	if h.rt != other.rt {
		return false
	}
	return h.rt.Equal(h.addr, other.addr)
}

// Hash returns the foreign hash surrogate, consistent with Equal: handles
// that compare equal hash alike.
func (h *Handle) Hash() uint64 {
	return h.rt.Hash(h.addr)
}

// TypeID returns the unique identifier of the opaque foreign type the
// object belongs to.
func (h *Handle) TypeID() TypeID {
	return h.rt.TypeID(h.addr)
}

// RetainCount returns the object's current reference count.
//
// Diagnostic only - useful when debugging ownership, never for correctness
// decisions. The count can change concurrently at any time.
func (h *Handle) RetainCount() int64 {
	return h.rt.RetainCount(h.addr)
}

// String formats the handle as its address. The object has no accessible
// layout, so the address is the only thing there is to print.
func (h *Handle) String() string {
	return fmt.Sprintf("obj@0x%x", uintptr(h.addr))
}
