package material

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/shader"
	"go.uber.org/zap"
)

var (
	// ErrUnknownParameter is returned by SetData for a name the bound shader does not declare.
	// It is informational: shaders may omit optional parameters.
	ErrUnknownParameter = errors.New("material: unknown parameter")

	// ErrParameterTypeMismatch is wrapped by every *TypeMismatchError.
	ErrParameterTypeMismatch = errors.New("material: parameter type mismatch")

	// ErrNoShader is returned by Apply when no shader is bound.
	ErrNoShader = errors.New("material: no shader bound")

	// ErrPassOutOfRange is returned by Apply for a pass the shader does not have.
	ErrPassOutOfRange = shader.ErrPassOutOfRange
)

// TypeMismatchError reports a write whose value kind differs from the slot's declared kind.
type TypeMismatchError struct {
	Name         string
	Declared     ParamKind
	DeclaredType string
	Got          ParamKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("material: parameter %q declared %s (%s), got %s", e.Name, e.Declared, e.DeclaredType, e.Got)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrParameterTypeMismatch
}

// material is the implementation of the Material interface.
type material struct {
	name   string
	shader shader.Shader
	slots  map[string]*Slot
	order  []string
	strict bool
	logger *zap.Logger

	pending []pendingData
}

type pendingData struct {
	name  string
	value Value
}

// Material is a typed parameter store bound to one shader. It owns one slot per
// parameter the shader declares and pushes them to the device on Apply.
//
// A Material is not safe for concurrent use.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Shader returns the bound shader, or nil.
	//
	// Returns:
	//   - shader.Shader: the bound shader
	Shader() shader.Shader

	// SetShader binds s and rebuilds every slot from s.Parameters(), each
	// initialized to its kind's zero value. Previous values are discarded.
	//
	// Parameters:
	//   - s: the shader to bind, nil clears every slot
	SetShader(s shader.Shader)

	// SetData writes v into the named slot.
	//
	// Parameters:
	//   - name: the declared parameter name
	//   - v: the value, whose kind must equal the slot's declared kind
	//
	// Returns:
	//   - error: ErrUnknownParameter for an undeclared name, *TypeMismatchError
	//     (wrapping ErrParameterTypeMismatch) when the kinds differ. The slot is
	//     unchanged on error.
	SetData(name string, v Value) error

	// GetData reads the named slot.
	//
	// Parameters:
	//   - name: the declared parameter name
	//
	// Returns:
	//   - Value: the current value
	//   - bool: false if the name is undeclared or its kind is unsupported
	GetData(name string) (Value, bool)

	// Slots returns a copy of every slot, sorted by name.
	//
	// Returns:
	//   - []Slot: the slots
	Slots() []Slot

	// Apply activates the shader program of pass and pushes every supported slot
	// to its uniform location by declared kind. ParamUnsupported slots and names
	// the pass does not declare are skipped.
	//
	// Parameters:
	//   - pass: the shader pass index
	//
	// Returns:
	//   - error: ErrNoShader or ErrPassOutOfRange
	Apply(pass int) error
}

var _ Material = &material{}

// NewMaterial creates a Material bound to s. Values queued with WithData are
// written after the slots are built.
//
// Parameters:
//   - s: the shader to bind, may be nil
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
//   - error: the first error from a WithData value
func NewMaterial(s shader.Shader, options ...MaterialBuilderOption) (Material, error) {
	m := &material{
		logger: common.Logger(),
	}
	for _, opt := range options {
		opt(m)
	}
	m.SetShader(s)

	var errs []error
	for _, p := range m.pending {
		if err := m.SetData(p.name, p.value); err != nil {
			errs = append(errs, err)
		}
	}
	m.pending = nil
	if len(errs) > 0 {
		return m, errs[0]
	}
	return m, nil
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Shader() shader.Shader {
	return m.shader
}

func (m *material) SetShader(s shader.Shader) {
	m.shader = s
	m.slots = make(map[string]*Slot)
	m.order = m.order[:0]
	if s == nil {
		return
	}
	for name, declared := range s.Parameters() {
		kind := ParseParamKind(declared)
		m.slots[name] = &Slot{
			Name:         name,
			Declared:     kind,
			DeclaredType: declared,
			Value:        ZeroValue(kind),
		}
		m.order = append(m.order, name)
	}
	slices.Sort(m.order)
	m.logger.Debug("material bound",
		zap.String("material", m.name),
		zap.String("shader", s.Key()),
		zap.Int("slots", len(m.order)),
	)
}

func (m *material) SetData(name string, v Value) error {
	slot, ok := m.slots[name]
	if !ok {
		m.logger.Debug("unknown material parameter", zap.String("material", m.name), zap.String("parameter", name))
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}

	got := ParamUnsupported
	if v != nil {
		got = v.Kind()
	}
	if slot.Declared == ParamUnsupported || got != slot.Declared {
		err := &TypeMismatchError{
			Name:         name,
			Declared:     slot.Declared,
			DeclaredType: slot.DeclaredType,
			Got:          got,
		}
		m.logger.Error("material parameter type mismatch",
			zap.String("material", m.name),
			zap.String("parameter", name),
			zap.String("declared", slot.DeclaredType),
			zap.Stringer("got", got),
		)
		if m.strict {
			panic(err)
		}
		return err
	}

	slot.Value = v
	return nil
}

func (m *material) GetData(name string) (Value, bool) {
	slot, ok := m.slots[name]
	if !ok || slot.Value == nil {
		return nil, false
	}
	return slot.Value, true
}

func (m *material) Slots() []Slot {
	out := make([]Slot, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, *m.slots[name])
	}
	return out
}

func (m *material) Apply(pass int) error {
	if m.shader == nil {
		return ErrNoShader
	}
	if err := m.shader.Use(pass); err != nil {
		return err
	}

	d := m.shader.Device()
	p := m.shader.Program(pass)
	for _, name := range m.order {
		loc := m.shader.Location(pass, name)
		if loc == renderer.NoLocation {
			continue
		}
		switch v := m.slots[name].Value.(type) {
		case BoolValue:
			d.SetBool(p, loc, bool(v))
		case IntValue:
			d.SetInt(p, loc, int32(v))
		case UintValue:
			d.SetUint(p, loc, uint32(v))
		case FloatValue:
			d.SetFloat(p, loc, float32(v))
		case DoubleValue:
			d.SetDouble(p, loc, float64(v))
		case Vec2Value:
			d.SetVec2(p, loc, v)
		case Vec3Value:
			d.SetVec3(p, loc, v)
		case Vec4Value:
			d.SetVec4(p, loc, v)
		case nil:
			// unsupported kinds are never pushed
		}
	}
	return nil
}
