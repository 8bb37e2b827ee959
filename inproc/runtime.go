// Package inproc hosts a foreign object model in-process: a real,
// internally synchronized implementation of obj.Runtime backed by Go maps
// and a class table instead of native memory.
//
// It exists so bridge code can run - and be tested - without a native
// runtime on the other side of the boundary: reference counts are live,
// objects are destroyed at zero, unguarded sends fail hard, and completion
// notifications are delivered out of band on their own goroutines.
package inproc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/machinefabric/objbridge-go/obj"
)

// Runtime is an in-process foreign object runtime. All bookkeeping that a
// native runtime would carry in its allocator lives here: the class table,
// the live-object table, and every object's reference count. It implements
// obj.Runtime and is safe for concurrent use from any number of
// goroutines.
type Runtime struct {
	mu      sync.RWMutex
	classes map[obj.TypeID]*Class
	objects map[obj.Addr]*Object
	next    obj.Addr

	log zerolog.Logger

	// Send/destroy counters. Tests assert on these to prove that a gated
	// dispatch really had zero foreign side effects.
	sends       atomic.Int64
	destroys    atomic.Int64
	completions atomic.Int64

	pending sync.WaitGroup // in-flight completion deliveries
}

// RuntimeOption is a functional option for configuring a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the logger for runtime diagnostics.
func WithLogger(log zerolog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		rt.log = log
	}
}

// New creates an empty in-process runtime.
func New(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		classes: make(map[obj.TypeID]*Class),
		objects: make(map[obj.Addr]*Object),
		next:    1,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// RegisterClass adds a class to the runtime's type table.
func (rt *Runtime) RegisterClass(c *Class) error {
	if c.Name == "" {
		return fmt.Errorf("class has no name")
	}
	if c.TypeID == 0 {
		return fmt.Errorf("class '%s' uses reserved type id 0", c.Name)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if prev, exists := rt.classes[c.TypeID]; exists {
		return fmt.Errorf("type id %d already taken by class '%s'", c.TypeID, prev.Name)
	}
	rt.classes[c.TypeID] = c
	return nil
}

// NewObject allocates an instance of the class named by typeID and returns
// its address, carrying a reference count of one. The caller owns that
// count - typically it is wrapped immediately with obj.Adopt.
func (rt *Runtime) NewObject(typeID obj.TypeID, state any) (obj.Addr, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	class, ok := rt.classes[typeID]
	if !ok {
		return 0, fmt.Errorf("no class registered for type id %d", typeID)
	}

	addr := rt.next
	rt.next++
	rt.objects[addr] = &Object{
		ID:    uuid.New(),
		State: state,
		class: class,
		addr:  addr,
		refs:  1,
	}
	return addr, nil
}

// Create is NewObject plus ownership transfer: the fresh increment is
// adopted into a Ref, the way foreign "create" results are wrapped.
func (rt *Runtime) Create(typeID obj.TypeID, state any) (*obj.Ref, error) {
	addr, err := rt.NewObject(typeID, state)
	if err != nil {
		return nil, err
	}
	return obj.Adopt(rt, addr), nil
}

// live resolves an address to its object under the read lock, failing hard
// on anything dead or unknown. A native runtime would corrupt memory here;
// the in-process one panics instead so bugs surface at the call site.
func (rt *Runtime) live(addr obj.Addr) *Object {
	rt.mu.RLock()
	o, ok := rt.objects[addr]
	rt.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("inproc: use of dead or unknown address obj@0x%x", uintptr(addr)))
	}
	return o
}

// Retain implements obj.Runtime.
func (rt *Runtime) Retain(addr obj.Addr) obj.Addr {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	o, ok := rt.objects[addr]
	if !ok {
		panic(fmt.Sprintf("inproc: retain of dead or unknown address obj@0x%x", uintptr(addr)))
	}
	o.refs++
	return addr
}

// Release implements obj.Runtime. The object is destroyed - removed from
// the live table - when its count reaches zero; any later use of the
// address panics.
func (rt *Runtime) Release(addr obj.Addr) {
	rt.mu.Lock()
	o, ok := rt.objects[addr]
	if !ok {
		rt.mu.Unlock()
		panic(fmt.Sprintf("inproc: release of dead or unknown address obj@0x%x", uintptr(addr)))
	}
	o.refs--
	destroyed := o.refs == 0
	if destroyed {
		delete(rt.objects, addr)
	}
	rt.mu.Unlock()

	if destroyed {
		rt.destroys.Add(1)
		rt.log.Debug().
			Str("object", o.ID.String()).
			Str("class", o.class.Name).
			Msg("destroyed at zero")
	}
}

// Equal implements obj.Runtime. Objects of different classes are never
// equal; within a class the class's Equal decides, defaulting to instance
// identity.
func (rt *Runtime) Equal(a, b obj.Addr) bool {
	oa := rt.live(a)
	ob := rt.live(b)
	if oa.class != ob.class {
		return false
	}
	if oa.class.Equal == nil {
		return oa == ob
	}
	return oa.class.Equal(oa, ob)
}

// Hash implements obj.Runtime, consistent with Equal.
func (rt *Runtime) Hash(addr obj.Addr) uint64 {
	o := rt.live(addr)
	if o.class.Hash == nil {
		return o.identityHash()
	}
	return o.class.Hash(o)
}

// TypeID implements obj.Runtime.
func (rt *Runtime) TypeID(addr obj.Addr) obj.TypeID {
	return rt.live(addr).class.TypeID
}

// RetainCount implements obj.Runtime. Diagnostic only.
func (rt *Runtime) RetainCount(addr obj.Addr) int64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	o, ok := rt.objects[addr]
	if !ok {
		return 0
	}
	return o.refs
}

// RespondsTo implements obj.Runtime.
func (rt *Runtime) RespondsTo(addr obj.Addr, sel obj.Selector) bool {
	return rt.live(addr).class.respondsTo(sel)
}

// Send implements obj.Runtime. Sending a selector the object does not
// respond to is the in-process rendition of undefined behavior: it panics.
// Callers are expected to gate on RespondsTo.
func (rt *Runtime) Send(addr obj.Addr, sel obj.Selector, payload []byte) ([]byte, error) {
	o := rt.live(addr)
	method, ok := o.class.Methods[sel]
	if !ok {
		panic(fmt.Sprintf("inproc: unguarded send of selector %d to class '%s'", uint64(sel), o.class.Name))
	}
	rt.sends.Add(1)
	return method(o, payload)
}

// SendWithNotification implements obj.Runtime. The message itself is
// delivered synchronously and its error relayed; on success the completion
// - done on delegate, with context byte-for-byte unchanged - is delivered
// out of band on its own goroutine.
func (rt *Runtime) SendWithNotification(addr obj.Addr, sel obj.Selector, payload []byte, delegate obj.Addr, done obj.Selector, context []byte) error {
	if _, err := rt.Send(addr, sel, payload); err != nil {
		return err
	}

	// Context is copied at registration: the caller's slice is free to be
	// reused the moment this returns.
	ctx := append([]byte(nil), context...)
	token := uuid.New()

	rt.pending.Add(1)
	go func() {
		defer rt.pending.Done()
		rt.deliver(token, delegate, done, ctx)
	}()
	return nil
}

// deliver hands a completion to the delegate. Delivery failures are logged
// and dropped: the completion contract belongs to the registering caller,
// and a dead delegate at delivery time is that caller's broken lifetime
// contract, not a runtime error.
func (rt *Runtime) deliver(token uuid.UUID, delegate obj.Addr, done obj.Selector, context []byte) {
	rt.mu.RLock()
	o, ok := rt.objects[delegate]
	rt.mu.RUnlock()
	if !ok {
		rt.log.Error().
			Str("token", token.String()).
			Msg("completion dropped: delegate destroyed before delivery")
		return
	}

	method, ok := o.class.Methods[done]
	if !ok {
		rt.log.Error().
			Str("token", token.String()).
			Str("class", o.class.Name).
			Uint64("done", uint64(done)).
			Msg("completion dropped: delegate does not respond to done selector")
		return
	}

	rt.sends.Add(1)
	if _, err := method(o, context); err != nil {
		rt.log.Error().
			Str("token", token.String()).
			Err(err).
			Msg("completion handler failed")
		return
	}
	rt.completions.Add(1)
}

// Drain blocks until every in-flight completion delivery has finished.
func (rt *Runtime) Drain() {
	rt.pending.Wait()
}

// LiveCount returns the number of live objects. Useful for leak checks.
func (rt *Runtime) LiveCount() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.objects)
}

// SendCount returns the total number of message deliveries performed,
// completions included.
func (rt *Runtime) SendCount() int64 {
	return rt.sends.Load()
}

// DestroyCount returns the number of objects destroyed at zero.
func (rt *Runtime) DestroyCount() int64 {
	return rt.destroys.Load()
}

// CompletionCount returns the number of completions delivered successfully.
func (rt *Runtime) CompletionCount() int64 {
	return rt.completions.Load()
}
