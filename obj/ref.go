package obj

import "sync/atomic"

// Ref owns exactly one reference-count increment on a foreign object and
// gives it back exactly once, when Release is called. For an independently
// owned second reference use Clone, which performs a fresh increment.
//
// A Ref may be handed to another goroutine and used concurrently: retain,
// release, equality and hashing are synchronized inside the foreign
// runtime, and the wrapper adds no locking of its own. The only state it
// adds is an atomic released flag that turns double release and
// use-after-release into immediate panics instead of silent foreign-runtime
// corruption.
type Ref struct {
	h        Handle
	released atomic.Bool
}

// Retain takes a borrowed handle and returns a Ref owning a fresh
// increment. The handle must be live; retaining an already-destroyed object
// is undefined behavior in the foreign runtime.
func Retain(h *Handle) *Ref {
	h.rt.Retain(h.addr)
	return &Ref{h: Handle{rt: h.rt, addr: h.addr}}
}

// RetainAddr is Retain for callers holding a raw borrowed address rather
// than a Handle.
func RetainAddr(rt Runtime, addr Addr) *Ref {
	return Retain(NewHandle(rt, addr))
}

// Adopt wraps an address that already carries one increment nobody else
// accounts for - typically the return value of a foreign "create" or "copy"
// call. No increment is performed; ownership of the existing one transfers
// to the returned Ref.
//
// Adopting a borrowed address the caller does not own produces a double
// release later. That is a caller bug, not a detectable condition.
func Adopt(rt Runtime, addr Addr) *Ref {
	h := NewHandle(rt, addr)
	return &Ref{h: *h}
}

// Clone performs a fresh increment and returns a second, independently
// owned Ref. The receiver is unaffected and remains valid.
func (r *Ref) Clone() *Ref {
	return Retain(r.Borrow())
}

// Borrow returns a non-owning view of the object, valid only while at
// least one owning Ref remains live. The view must not outlive r.
func (r *Ref) Borrow() *Handle {
	if r.released.Load() {
		panic("obj: borrow after release of " + r.h.String())
	}
	return &r.h
}

// Release gives back the one increment this Ref owns, destroying the
// object if that was the last reference anywhere. It must be called exactly
// once; a second call panics, as does any later Borrow or Clone. Handles
// borrowed earlier become dangling - not outliving the Ref is the caller's
// contract.
func (r *Ref) Release() {
	if !r.released.CompareAndSwap(false, true) {
		panic("obj: double release of " + r.h.String())
	}
	r.h.rt.Release(r.h.addr)
}
