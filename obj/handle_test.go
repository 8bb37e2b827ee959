package obj

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHandleContractChecks(t *testing.T) {
	rt := newFakeRuntime()

	assert.Panics(t, func() { NewHandle(nil, 1) })
	assert.Panics(t, func() { NewHandle(rt, 0) })
}

func TestHandleDelegatesTypeIDAndRetainCount(t *testing.T) {
	rt := newFakeRuntime()
	ref := Adopt(rt, rt.alloc("x", 42))
	defer ref.Release()

	h := ref.Borrow()
	assert.Equal(t, TypeID(42), h.TypeID())
	assert.Equal(t, int64(1), h.RetainCount())
}

func TestHandleStringFormatsAddress(t *testing.T) {
	rt := newFakeRuntime()
	ref := Adopt(rt, rt.alloc("x", 7))
	defer ref.Release()

	assert.Equal(t, "obj@0x1", ref.Borrow().String())
}

func TestHandleEqualAcrossRuntimesIsFalse(t *testing.T) {
	rtA := newFakeRuntime()
	rtB := newFakeRuntime()
	a := Adopt(rtA, rtA.alloc("same", 7))
	b := Adopt(rtB, rtB.alloc("same", 7))
	defer a.Release()
	defer b.Release()

	assert.False(t, a.Borrow().Equal(b.Borrow()))
	assert.False(t, a.Borrow().Equal(nil))
}
