// Package obj provides the ownership primitives for objects that live in a
// foreign, manually-reference-counted object runtime.
//
// The foreign runtime allocates and destroys its own objects; this package
// never touches their memory. It sees an object only as an opaque address
// plus the narrow primitive surface declared by Runtime, and builds exactly
// two things on top: Handle, a borrowed non-owning view, and Ref, a smart
// handle that owns one reference-count increment and gives it back exactly
// once.
package obj

// Addr is the address of a foreign object. It is opaque to this package:
// never dereferenced, only handed back to the runtime that produced it.
// Addr(0) never refers to a live object.
type Addr uintptr

// TypeID is the unique constant integer the foreign runtime assigns to each
// of its opaque types.
type TypeID uint64

// Selector is an interned message identifier. Selectors are compared for
// identity only. Selector(0) is reserved and never names a message.
type Selector uint64

// Runtime is the foreign-function surface this module requires from the
// foreign object runtime. Every method operates on foreign addresses.
//
// All implementations must be internally synchronized: callers retain,
// release and send from multiple goroutines without any locking of their
// own. That is the runtime's contract, not this package's to re-implement.
type Runtime interface {
	// Retain increments the object's reference count and returns the same
	// address. The address must refer to a live object; retaining a
	// destroyed object is undefined behavior.
	Retain(addr Addr) Addr

	// Release decrements the reference count, destroying the object when
	// the count reaches zero. The address must refer to a live object.
	Release(addr Addr)

	// Equal reports whether the runtime considers the two objects equal.
	// Equality may be value-based: distinct addresses can compare equal,
	// and equal objects must yield equal Hash codes.
	Equal(a, b Addr) bool

	// Hash returns a code usable to identify the object in a hashing
	// structure, consistent with Equal.
	Hash(addr Addr) uint64

	// TypeID returns the unique identifier of the opaque type the object
	// belongs to.
	TypeID(addr Addr) TypeID

	// RetainCount returns the object's current reference count.
	//
	// Diagnostic only. The value may be stale the moment it is returned
	// and must never feed a correctness decision.
	RetainCount(addr Addr) int64

	// RespondsTo reports whether the object declares support for sel.
	// Pure query: no side effects, no error path.
	RespondsTo(addr Addr, sel Selector) bool

	// Send delivers sel to the object with a CBOR-encoded payload and
	// returns the raw result. Sending a selector the object does not
	// respond to is undefined behavior; callers must gate every Send on
	// RespondsTo.
	Send(addr Addr, sel Selector, payload []byte) ([]byte, error)

	// SendWithNotification is Send plus out-of-band completion: once the
	// operation finishes, the runtime delivers done to delegate, passing
	// context back unchanged. The notification may arrive on any goroutine
	// or thread the runtime chooses. The same RespondsTo gate applies.
	//
	// There is no way to revoke a registration: delegate and context must
	// stay valid until the runtime fires the completion.
	SendWithNotification(addr Addr, sel Selector, payload []byte, delegate Addr, done Selector, context []byte) error
}
