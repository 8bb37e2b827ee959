package inproc

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machinefabric/objbridge-go/obj"
)

const (
	typeCounter obj.TypeID = 100
	typeLabel   obj.TypeID = 101

	selIncrement obj.Selector = 20
	selValue     obj.Selector = 21
	selFail      obj.Selector = 22
)

// counterClass is a mutable counter: State is *int64, guarded by its own
// mutex inside the methods (the runtime serializes nothing on State).
func counterClass() *Class {
	var mu sync.Mutex
	return &Class{
		Name:   "Counter",
		TypeID: typeCounter,
		Methods: map[obj.Selector]Method{
			selIncrement: func(recv *Object, _ []byte) ([]byte, error) {
				mu.Lock()
				defer mu.Unlock()
				*recv.State.(*int64)++
				return nil, nil
			},
			selValue: func(recv *Object, _ []byte) ([]byte, error) {
				mu.Lock()
				defer mu.Unlock()
				return []byte{byte(*recv.State.(*int64))}, nil
			},
			selFail: func(*Object, []byte) ([]byte, error) {
				return nil, errors.New("counter exploded")
			},
		},
	}
}

// labelClass has value-based identity: two labels are equal when their
// strings match, and hash by content.
func labelClass() *Class {
	return &Class{
		Name:   "Label",
		TypeID: typeLabel,
		Equal: func(a, b *Object) bool {
			return a.State.(string) == b.State.(string)
		},
		Hash: func(o *Object) uint64 {
			var h uint64 = 14695981039346656037
			for _, c := range []byte(o.State.(string)) {
				h = (h ^ uint64(c)) * 1099511628211
			}
			return h
		},
		Methods: map[obj.Selector]Method{},
	}
}

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt := New()
	require.NoError(t, rt.RegisterClass(counterClass()))
	require.NoError(t, rt.RegisterClass(labelClass()))
	return rt
}

func TestRegisterClassRejectsBadClasses(t *testing.T) {
	rt := newTestRuntime(t)

	assert.Error(t, rt.RegisterClass(&Class{Name: "", TypeID: 1}), "missing name")
	assert.Error(t, rt.RegisterClass(&Class{Name: "x", TypeID: 0}), "reserved type id")
	assert.Error(t, rt.RegisterClass(&Class{Name: "x", TypeID: typeCounter}), "duplicate type id")
}

func TestNewObjectUnknownClass(t *testing.T) {
	rt := New()
	_, err := rt.NewObject(typeCounter, nil)
	assert.Error(t, err)
}

func TestDestroyAtZero(t *testing.T) {
	rt := newTestRuntime(t)
	count := int64(0)
	addr, err := rt.NewObject(typeCounter, &count)
	require.NoError(t, err)

	// Fresh object: count 1, owned by the creator.
	assert.Equal(t, int64(1), rt.RetainCount(addr))
	assert.Equal(t, 1, rt.LiveCount())

	rt.Retain(addr)
	assert.Equal(t, int64(2), rt.RetainCount(addr))

	rt.Release(addr)
	assert.Equal(t, int64(1), rt.RetainCount(addr))
	assert.Zero(t, rt.DestroyCount())

	rt.Release(addr)
	assert.Zero(t, rt.LiveCount())
	assert.Equal(t, int64(1), rt.DestroyCount())
}

func TestUseAfterDestroyPanics(t *testing.T) {
	rt := newTestRuntime(t)
	count := int64(0)
	addr, err := rt.NewObject(typeCounter, &count)
	require.NoError(t, err)
	rt.Release(addr)

	assert.Panics(t, func() { rt.Retain(addr) })
	assert.Panics(t, func() { rt.Release(addr) })
	assert.Panics(t, func() { rt.Send(addr, selValue, nil) })
	// RetainCount stays a non-panicking diagnostic, reporting zero.
	assert.Zero(t, rt.RetainCount(addr))
}

func TestUnguardedSendPanics(t *testing.T) {
	rt := newTestRuntime(t)
	count := int64(0)
	addr, err := rt.NewObject(typeCounter, &count)
	require.NoError(t, err)
	defer rt.Release(addr)

	assert.False(t, rt.RespondsTo(addr, obj.Selector(999)))
	assert.Panics(t, func() { rt.Send(addr, obj.Selector(999), nil) })
}

func TestValueBasedEquality(t *testing.T) {
	rt := newTestRuntime(t)
	a, err := rt.NewObject(typeLabel, "blue")
	require.NoError(t, err)
	b, err := rt.NewObject(typeLabel, "blue")
	require.NoError(t, err)
	c, err := rt.NewObject(typeLabel, "red")
	require.NoError(t, err)
	defer rt.Release(a)
	defer rt.Release(b)
	defer rt.Release(c)

	assert.True(t, rt.Equal(a, b), "distinct addresses, equal values")
	assert.False(t, rt.Equal(a, c))
	assert.Equal(t, rt.Hash(a), rt.Hash(b), "equal objects must hash alike")
}

func TestIdentityEqualityAcrossClasses(t *testing.T) {
	rt := newTestRuntime(t)
	countA, countB := int64(0), int64(0)
	a, err := rt.NewObject(typeCounter, &countA)
	require.NoError(t, err)
	b, err := rt.NewObject(typeCounter, &countB)
	require.NoError(t, err)
	label, err := rt.NewObject(typeLabel, "a")
	require.NoError(t, err)
	defer rt.Release(a)
	defer rt.Release(b)
	defer rt.Release(label)

	assert.True(t, rt.Equal(a, a), "identity default: an object equals itself")
	assert.False(t, rt.Equal(a, b))
	assert.False(t, rt.Equal(a, label), "different classes never compare equal")
	assert.Equal(t, typeCounter, rt.TypeID(a))
	assert.Equal(t, typeLabel, rt.TypeID(label))
}

func TestSendInvokesMethod(t *testing.T) {
	rt := newTestRuntime(t)
	count := int64(0)
	addr, err := rt.NewObject(typeCounter, &count)
	require.NoError(t, err)
	defer rt.Release(addr)

	_, err = rt.Send(addr, selIncrement, nil)
	require.NoError(t, err)
	_, err = rt.Send(addr, selIncrement, nil)
	require.NoError(t, err)

	result, err := rt.Send(addr, selValue, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, result)
	assert.Equal(t, int64(3), rt.SendCount())
}

func TestConcurrentRetainRelease(t *testing.T) {
	rt := newTestRuntime(t)
	count := int64(0)
	addr, err := rt.NewObject(typeCounter, &count)
	require.NoError(t, err)

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rt.Retain(addr)
			rt.Release(addr)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), rt.RetainCount(addr))
	rt.Release(addr)
	assert.Zero(t, rt.LiveCount())
}
