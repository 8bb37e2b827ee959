// Package objbridge provides flat re-exports of all submodules.
//
// objbridge bridges Go code to a foreign, manually-reference-counted object
// runtime: obj carries the ownership primitives (handles and
// reference-counted refs), dispatch performs capability-probed message
// sends, and inproc hosts a reference implementation of the foreign runtime
// in-process.
package objbridge

import (
	"github.com/machinefabric/objbridge-go/dispatch"
	"github.com/machinefabric/objbridge-go/inproc"
	"github.com/machinefabric/objbridge-go/obj"
)

// Ownership types and functions
type Addr = obj.Addr
type TypeID = obj.TypeID
type Selector = obj.Selector
type Runtime = obj.Runtime
type Handle = obj.Handle
type Ref = obj.Ref

var NewHandle = obj.NewHandle
var Retain = obj.Retain
var RetainAddr = obj.RetainAddr
var Adopt = obj.Adopt

// Dispatch types and functions
type Dispatcher = dispatch.Dispatcher
type Outcome = dispatch.Outcome
type Notification = dispatch.Notification
type Catalog = dispatch.Catalog
type SelectorDef = dispatch.SelectorDef
type SchemaValidationError = dispatch.SchemaValidationError

var NewDispatcher = dispatch.New
var WithLogger = dispatch.WithLogger
var WithCatalog = dispatch.WithCatalog
var NewCatalog = dispatch.NewCatalog
var LoadCatalog = dispatch.LoadCatalog
var ParseCatalog = dispatch.ParseCatalog
var EncodePayload = dispatch.EncodePayload
var DecodePayload = dispatch.DecodePayload
var EncodeResult = dispatch.EncodeResult
var DecodeResult = dispatch.DecodeResult

// In-process runtime types and functions
type InprocRuntime = inproc.Runtime
type Class = inproc.Class
type Object = inproc.Object
type Method = inproc.Method

var NewInprocRuntime = inproc.New
