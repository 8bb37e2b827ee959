package inproc

import (
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/machinefabric/objbridge-go/obj"
)

// Method implements one selector on a class. It receives the instance and
// the raw CBOR payload of the send, and returns the raw result relayed to
// the caller unchanged.
type Method func(recv *Object, payload []byte) ([]byte, error)

// Class describes one opaque type hosted by the in-process runtime: its
// identity semantics and the selectors its instances respond to.
type Class struct {
	Name   string
	TypeID obj.TypeID

	// Equal reports value equality between two instances of this class.
	// nil means instance identity: an object equals only itself.
	Equal func(a, b *Object) bool

	// Hash must be consistent with Equal. nil derives a hash from the
	// instance's identity, which matches the nil Equal default.
	Hash func(o *Object) uint64

	// Methods maps each supported selector to its implementation. A
	// selector absent here makes RespondsTo answer false.
	Methods map[obj.Selector]Method
}

// respondsTo reports whether instances of the class support sel.
func (c *Class) respondsTo(sel obj.Selector) bool {
	_, ok := c.Methods[sel]
	return ok
}

// Object is one live instance inside the in-process runtime.
type Object struct {
	// ID is a per-instance debug identity, stable for the object's
	// lifetime and independent of its address.
	ID uuid.UUID

	// State is the instance's payload, owned and interpreted by the
	// class's methods.
	State any

	class *Class
	addr  obj.Addr
	refs  int64 // guarded by the runtime mutex
}

// Class returns the class the instance belongs to.
func (o *Object) Class() *Class { return o.class }

// Addr returns the instance's address in the hosting runtime.
func (o *Object) Addr() obj.Addr { return o.addr }

// identityHash is the default hash surrogate: derived from the instance's
// debug identity, so it is stable across the lifetime and consistent with
// the default identity Equal.
func (o *Object) identityHash() uint64 {
	h := fnv.New64a()
	h.Write(o.ID[:])
	return h.Sum64()
}
