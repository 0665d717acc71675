package material

import (
	"fmt"
	"strings"
)

// ParamKind is the declared kind of a shader parameter as far as a Material can
// push it. Declared types outside the supported set map to ParamUnsupported.
type ParamKind int

const (
	// ParamUnsupported marks declared types a Material holds a slot for but never pushes,
	// such as matrices and arrays.
	ParamUnsupported ParamKind = iota
	ParamBool
	ParamInt
	ParamUint
	ParamFloat
	ParamDouble
	ParamVec2
	ParamVec3
	ParamVec4
)

var paramKindNames = [...]string{
	ParamUnsupported: "unsupported",
	ParamBool:        "bool",
	ParamInt:         "int",
	ParamUint:        "uint",
	ParamFloat:       "float",
	ParamDouble:      "double",
	ParamVec2:        "vec2",
	ParamVec3:        "vec3",
	ParamVec4:        "vec4",
}

func (k ParamKind) String() string {
	if k < 0 || int(k) >= len(paramKindNames) {
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
	return paramKindNames[k]
}

// ParseParamKind maps a declared shader type to its ParamKind. Both WGSL names
// ("f32", "vec3<f32>", "vec3f") and GLSL-style names ("float", "vec3") are accepted.
//
// Parameters:
//   - declared: the declared type string from shader reflection
//
// Returns:
//   - ParamKind: the matching kind, or ParamUnsupported
func ParseParamKind(declared string) ParamKind {
	switch strings.ReplaceAll(strings.TrimSpace(declared), " ", "") {
	case "bool":
		return ParamBool
	case "i32", "int":
		return ParamInt
	case "u32", "uint":
		return ParamUint
	case "f32", "float":
		return ParamFloat
	case "f64", "double":
		return ParamDouble
	case "vec2<f32>", "vec2f", "vec2":
		return ParamVec2
	case "vec3<f32>", "vec3f", "vec3":
		return ParamVec3
	case "vec4<f32>", "vec4f", "vec4":
		return ParamVec4
	default:
		return ParamUnsupported
	}
}

// Value is a typed parameter value. The set of implementations is closed: one
// per supported ParamKind.
type Value interface {
	// Kind returns the kind of the value.
	Kind() ParamKind

	isValue()
}

type (
	// BoolValue is a ParamBool value.
	BoolValue bool
	// IntValue is a ParamInt value.
	IntValue int32
	// UintValue is a ParamUint value.
	UintValue uint32
	// FloatValue is a ParamFloat value.
	FloatValue float32
	// DoubleValue is a ParamDouble value.
	DoubleValue float64
	// Vec2Value is a ParamVec2 value.
	Vec2Value [2]float32
	// Vec3Value is a ParamVec3 value.
	Vec3Value [3]float32
	// Vec4Value is a ParamVec4 value.
	Vec4Value [4]float32
)

func (BoolValue) Kind() ParamKind   { return ParamBool }
func (IntValue) Kind() ParamKind    { return ParamInt }
func (UintValue) Kind() ParamKind   { return ParamUint }
func (FloatValue) Kind() ParamKind  { return ParamFloat }
func (DoubleValue) Kind() ParamKind { return ParamDouble }
func (Vec2Value) Kind() ParamKind   { return ParamVec2 }
func (Vec3Value) Kind() ParamKind   { return ParamVec3 }
func (Vec4Value) Kind() ParamKind   { return ParamVec4 }

func (BoolValue) isValue()   {}
func (IntValue) isValue()    {}
func (UintValue) isValue()   {}
func (FloatValue) isValue()  {}
func (DoubleValue) isValue() {}
func (Vec2Value) isValue()   {}
func (Vec3Value) isValue()   {}
func (Vec4Value) isValue()   {}

// ZeroValue returns the zero value of kind: false, 0, 0.0 or the zero vector.
//
// Parameters:
//   - kind: the parameter kind
//
// Returns:
//   - Value: the zero value, or nil for ParamUnsupported
func ZeroValue(kind ParamKind) Value {
	switch kind {
	case ParamBool:
		return BoolValue(false)
	case ParamInt:
		return IntValue(0)
	case ParamUint:
		return UintValue(0)
	case ParamFloat:
		return FloatValue(0)
	case ParamDouble:
		return DoubleValue(0)
	case ParamVec2:
		return Vec2Value{}
	case ParamVec3:
		return Vec3Value{}
	case ParamVec4:
		return Vec4Value{}
	default:
		return nil
	}
}

// Slot is one declared shader parameter and its current value.
type Slot struct {
	// Name is the declared parameter name.
	Name string

	// Declared is the kind writes must match.
	Declared ParamKind

	// DeclaredType is the raw declared type string from the shader.
	DeclaredType string

	// Value is the current value; nil for ParamUnsupported slots.
	Value Value
}
