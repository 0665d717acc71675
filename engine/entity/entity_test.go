package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stub struct {
	Base
	kind  Kind
	label string
}

func (p *stub) Kind() Kind { return p.kind }

var kindStub = NewKind("Stub")

func TestNewKindIsDistinct(t *testing.T) {
	other := NewKind("Other")
	assert.NotEqual(t, kindStub, other)
	assert.GreaterOrEqual(t, uint32(other), uint32(kindBuiltinCount))
	assert.Equal(t, "Stub", kindStub.String())
	assert.Equal(t, "Camera", KindCamera.String())
	assert.Equal(t, "Kind(4000000000)", Kind(4000000000).String())
}

func TestAddCapabilityBindsOwner(t *testing.T) {
	e := New("player")
	c := &stub{kind: kindStub}

	require.NoError(t, e.AddCapability(c))
	assert.Same(t, e, c.Owner())
	assert.True(t, e.HasCapability(kindStub))
}

func TestAddCapabilityRejectsDuplicateKind(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := New("player", WithLogger(zap.New(core)))
	first := &stub{kind: KindLight, label: "first"}
	second := &stub{kind: KindLight, label: "second"}

	require.NoError(t, e.AddCapability(first))
	err := e.AddCapability(second)

	assert.ErrorIs(t, err, ErrDuplicateCapability)
	assert.Len(t, e.Capabilities(), 1)
	assert.Nil(t, second.Owner())
	got, ok := Find[*stub](e, KindLight)
	require.True(t, ok)
	assert.Equal(t, "first", got.label)
	assert.Equal(t, 1, logs.FilterMessage("rejected duplicate capability").Len())
}

func TestAddCapabilityRejectsNilAndOwned(t *testing.T) {
	a := New("a")
	b := New("b")
	c := &stub{kind: kindStub}

	assert.ErrorIs(t, a.AddCapability(nil), ErrNilCapability)
	var typedNil *stub
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, a.AddCapability(typedNil), ErrNilCapability)
	})
	require.NoError(t, a.AddCapability(c))
	assert.ErrorIs(t, b.AddCapability(c), ErrCapabilityOwned)
	assert.Same(t, a, c.Owner())
	assert.Empty(t, b.Capabilities())
}

func TestCapabilitiesKeepAttachOrder(t *testing.T) {
	e := New("ordered", WithCapabilities(
		&stub{kind: KindTransform},
		&stub{kind: KindCamera},
		&stub{kind: KindLight},
	))

	kinds := make([]Kind, 0, 3)
	for _, c := range e.Capabilities() {
		kinds = append(kinds, c.Kind())
	}
	assert.Equal(t, []Kind{KindTransform, KindCamera, KindLight}, kinds)

	require.True(t, e.RemoveCapability(KindCamera))
	assert.False(t, e.RemoveCapability(KindCamera))
	assert.Len(t, e.Capabilities(), 2)
	assert.Equal(t, KindLight, e.Capabilities()[1].Kind())
}

func TestRemoveCapabilityClearsOwner(t *testing.T) {
	a := New("a")
	b := New("b")
	c := &stub{kind: kindStub}
	require.NoError(t, a.AddCapability(c))

	require.True(t, a.RemoveCapability(kindStub))
	assert.Nil(t, c.Owner())
	require.NoError(t, b.AddCapability(c))
	assert.Same(t, b, c.Owner())
}

func TestDestroyInvalidatesOwner(t *testing.T) {
	e := New("doomed")
	c := &stub{kind: kindStub}
	require.NoError(t, e.AddCapability(c))

	e.Destroy()
	assert.Nil(t, c.Owner())
}

func TestFindMissing(t *testing.T) {
	e := New("typed", WithCapabilities(&stub{kind: kindStub}))

	_, ok := Find[*stub](e, KindCamera)
	assert.False(t, ok)
	_, ok = Find[*stub](nil, kindStub)
	assert.False(t, ok)
}

func TestEnableFlagsAreIndependent(t *testing.T) {
	c := &stub{kind: kindStub}
	e := New("flags", WithEnabled(false), WithCapabilities(c))

	assert.False(t, e.Enabled())
	assert.True(t, c.Enabled())
	assert.True(t, e.Toggle())
	c.SetEnabled(false)
	assert.True(t, e.Enabled())
	assert.False(t, c.Enabled())
}
