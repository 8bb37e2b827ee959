// Package dispatch performs guarded, runtime-resolved message sends on
// foreign objects.
//
// Concrete capabilities of a foreign object are not statically known, and
// sending a selector an object does not respond to is undefined behavior in
// the foreign runtime. Every send in this package is therefore gated on a
// capability probe: the runtime is asked whether the target declares
// support for the selector, and only on a positive answer is the message
// forwarded. An unsupported selector is a normal outcome, never an error.
package dispatch

import (
	"github.com/rs/zerolog"

	"github.com/machinefabric/objbridge-go/obj"
)

// Outcome is the result of one guarded dispatch.
type Outcome struct {
	// Supported is false when the target does not respond to the selector.
	// The send was then never attempted and Value holds the caller's
	// fallback.
	Supported bool
	// Value is the raw CBOR result of the foreign call, or the fallback
	// when Supported is false.
	Value []byte
}

// Notification names where a completion lands: once the operation finishes,
// the foreign runtime delivers Done to Delegate, handing Context back
// byte-for-byte unchanged.
//
// Delegate and Done are required together; Context is opaque and may be
// empty. A registration cannot be revoked, so Delegate and Context must
// stay valid until the runtime fires the completion.
type Notification struct {
	Delegate *obj.Handle
	Done     obj.Selector
	Context  []byte
}

// check fails hard on a partially specified triple - that is a programming
// error in the caller, not a runtime condition.
func (n Notification) check() {
	if n.Delegate == nil || n.Done == 0 {
		panic("dispatch: notification triple must be fully specified (delegate and done selector)")
	}
}

// Dispatcher issues capability-probed message sends. The zero value is not
// usable; construct with New.
type Dispatcher struct {
	log     zerolog.Logger
	catalog *Catalog
}

// Option is a functional option for configuring a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for dispatch diagnostics. Without it the
// dispatcher is silent.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// WithCatalog attaches a selector catalog. Payloads for selectors that
// declare a schema in the catalog are validated before any probe or send.
func WithCatalog(c *Catalog) Option {
	return func(d *Dispatcher) {
		d.catalog = c
	}
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Probe reports whether target declares support for sel. Pure query: no
// foreign state changes, and no error path - an object that does not
// support a selector is an answer, not a failure.
func (d *Dispatcher) Probe(target *obj.Handle, sel obj.Selector) bool {
	return target.Runtime().RespondsTo(target.Addr(), sel)
}

// Call probes target for sel and, if supported, forwards the message with
// the payload values CBOR-encoded, returning the foreign result unchanged.
//
// When the probe is negative the send is never attempted and the returned
// Outcome carries fallback with Supported false. The probe always happens
// before its paired send; no ordering is guaranteed relative to other
// concurrent calls, including ones against the same target.
//
// Foreign-call failures are relayed as-is; the dispatcher raises no errors
// of its own beyond payload encoding and schema validation.
func (d *Dispatcher) Call(target *obj.Handle, sel obj.Selector, payload []any, fallback []byte) (Outcome, error) {
	if err := d.validatePayload(sel, payload); err != nil {
		return Outcome{}, err
	}

	if !d.Probe(target, sel) {
		d.log.Debug().
			Stringer("target", target).
			Uint64("selector", uint64(sel)).
			Msg("selector unsupported, returning fallback")
		return Outcome{Supported: false, Value: fallback}, nil
	}

	raw, err := EncodePayload(payload)
	if err != nil {
		return Outcome{}, err
	}

	result, err := target.Runtime().Send(target.Addr(), sel, raw)
	if err != nil {
		return Outcome{Supported: true}, err
	}

	d.log.Debug().
		Stringer("target", target).
		Uint64("selector", uint64(sel)).
		Int("result_bytes", len(result)).
		Msg("dispatched")

	return Outcome{Supported: true, Value: result}, nil
}

// CallWithNotification probes target for sel and, if supported, forwards
// the message and registers note, so the foreign runtime delivers
// note.Done to note.Delegate - with note.Context unchanged - once the
// operation completes out of band. The completion may arrive on any
// goroutine or thread the runtime chooses; this package registers, it does
// not schedule.
//
// When the probe is negative nothing happens: no send, and no future
// notification. That silence matches the foreign convention that
// unsupported optional messages are no-ops. The return value reports
// whether the send was performed.
//
// The notification triple must be fully specified; a partial triple
// panics.
func (d *Dispatcher) CallWithNotification(target *obj.Handle, sel obj.Selector, payload []any, note Notification) (bool, error) {
	note.check()

	if err := d.validatePayload(sel, payload); err != nil {
		return false, err
	}

	if !d.Probe(target, sel) {
		d.log.Debug().
			Stringer("target", target).
			Uint64("selector", uint64(sel)).
			Msg("selector unsupported, skipping notified dispatch")
		return false, nil
	}

	raw, err := EncodePayload(payload)
	if err != nil {
		return false, err
	}

	err = target.Runtime().SendWithNotification(
		target.Addr(), sel, raw,
		note.Delegate.Addr(), note.Done, note.Context,
	)
	if err != nil {
		return true, err
	}

	d.log.Debug().
		Stringer("target", target).
		Uint64("selector", uint64(sel)).
		Stringer("delegate", note.Delegate).
		Uint64("done", uint64(note.Done)).
		Msg("dispatched with notification")

	return true, nil
}
