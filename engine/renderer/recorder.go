package renderer

import "fmt"

// Call is one recorded Device or Renderer invocation.
type Call struct {
	// Op is the method name, e.g. "SetFloat" or "DrawElements".
	Op string

	// Program is the targeted program, if any.
	Program ProgramID

	// Location is the targeted uniform location, if any.
	Location Location

	// Name is the uniform name resolved from Location, if any.
	Name string

	// Value carries the pushed value, the draw count or the toggle state.
	Value any
}

// Recorder is a headless Renderer that records every call instead of talking
// to a GPU. Programs and vertex arrays are kept so uniform locations resolve
// back to names.
type Recorder struct {
	programs     []ProgramDesc
	vertexArrays []VertexArrayDesc
	calls        []Call
	values       map[ProgramID]map[string]any

	current   ProgramID
	bound     VertexArrayID
	wireframe bool
	inFrame   bool
	width     int
	height    int

	// RequireFrame makes draws outside BeginFrame/EndFrame fail with ErrNoFrame.
	RequireFrame bool
}

var _ Renderer = &Recorder{}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		values: make(map[ProgramID]map[string]any),
	}
}

// Calls returns every recorded call in order.
func (r *Recorder) Calls() []Call {
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsOf returns the recorded calls whose Op equals op.
func (r *Recorder) CallsOf(op string) []Call {
	var out []Call
	for _, c := range r.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Names returns the uniform names pushed to p, in push order, each name once.
func (r *Recorder) Names(p ProgramID) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range r.calls {
		if c.Program != p || c.Name == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, c.Name)
	}
	return out
}

// Value returns the last value pushed to the named uniform of p.
func (r *Recorder) Value(p ProgramID, name string) (any, bool) {
	v, ok := r.values[p][name]
	return v, ok
}

// Program returns the description p was created from.
func (r *Recorder) Program(p ProgramID) (ProgramDesc, bool) {
	if p == 0 || int(p) > len(r.programs) {
		return ProgramDesc{}, false
	}
	return r.programs[p-1], true
}

// Reset clears recorded calls and pushed values. Programs and vertex arrays survive.
func (r *Recorder) Reset() {
	r.calls = r.calls[:0]
	r.values = make(map[ProgramID]map[string]any)
}

// Size returns the drawable size last passed to Resize.
func (r *Recorder) Size() (width, height int) {
	return r.width, r.height
}

func (r *Recorder) CreateProgram(desc ProgramDesc) (ProgramID, error) {
	r.programs = append(r.programs, desc)
	id := ProgramID(len(r.programs))
	r.calls = append(r.calls, Call{Op: "CreateProgram", Program: id, Value: desc.Label})
	return id, nil
}

func (r *Recorder) CreateVertexArray(desc VertexArrayDesc) (VertexArrayID, error) {
	r.vertexArrays = append(r.vertexArrays, desc)
	id := VertexArrayID(len(r.vertexArrays))
	r.calls = append(r.calls, Call{Op: "CreateVertexArray", Value: id})
	return id, nil
}

func (r *Recorder) UseProgram(p ProgramID) {
	r.current = p
	r.calls = append(r.calls, Call{Op: "UseProgram", Program: p})
}

func (r *Recorder) push(op string, p ProgramID, loc Location, v any) {
	if loc == NoLocation {
		return
	}
	name := ""
	if desc, ok := r.Program(p); ok && int(loc) < len(desc.Uniforms) {
		name = desc.Uniforms[loc].Name
	}
	r.calls = append(r.calls, Call{Op: op, Program: p, Location: loc, Name: name, Value: v})
	if r.values[p] == nil {
		r.values[p] = make(map[string]any)
	}
	if name == "" {
		name = fmt.Sprintf("#%d", loc)
	}
	r.values[p][name] = v
}

func (r *Recorder) SetBool(p ProgramID, loc Location, v bool) {
	r.push("SetBool", p, loc, v)
}

func (r *Recorder) SetInt(p ProgramID, loc Location, v int32) {
	r.push("SetInt", p, loc, v)
}

func (r *Recorder) SetUint(p ProgramID, loc Location, v uint32) {
	r.push("SetUint", p, loc, v)
}

func (r *Recorder) SetFloat(p ProgramID, loc Location, v float32) {
	r.push("SetFloat", p, loc, v)
}

func (r *Recorder) SetDouble(p ProgramID, loc Location, v float64) {
	r.push("SetDouble", p, loc, v)
}

func (r *Recorder) SetVec2(p ProgramID, loc Location, v [2]float32) {
	r.push("SetVec2", p, loc, v)
}

func (r *Recorder) SetVec3(p ProgramID, loc Location, v [3]float32) {
	r.push("SetVec3", p, loc, v)
}

func (r *Recorder) SetVec4(p ProgramID, loc Location, v [4]float32) {
	r.push("SetVec4", p, loc, v)
}

func (r *Recorder) SetMat3(p ProgramID, loc Location, m [9]float32) {
	r.push("SetMat3", p, loc, m)
}

func (r *Recorder) SetMat4(p ProgramID, loc Location, m [16]float32) {
	r.push("SetMat4", p, loc, m)
}

func (r *Recorder) BindVertexArray(va VertexArrayID) {
	r.bound = va
	r.calls = append(r.calls, Call{Op: "BindVertexArray", Value: va})
}

func (r *Recorder) draw(op string, count int) error {
	switch {
	case r.RequireFrame && !r.inFrame:
		return ErrNoFrame
	case r.current == 0:
		return ErrNoProgram
	case r.bound == 0:
		return ErrNoVertexArray
	}
	r.calls = append(r.calls, Call{Op: op, Program: r.current, Value: count})
	return nil
}

func (r *Recorder) DrawArrays(count int) error {
	return r.draw("DrawArrays", count)
}

func (r *Recorder) DrawElements(count int) error {
	return r.draw("DrawElements", count)
}

func (r *Recorder) SetWireframe(enabled bool) {
	r.wireframe = enabled
	r.calls = append(r.calls, Call{Op: "SetWireframe", Value: enabled})
}

func (r *Recorder) Wireframe() bool {
	return r.wireframe
}

func (r *Recorder) BeginFrame(clear [4]float32) error {
	r.inFrame = true
	r.calls = append(r.calls, Call{Op: "BeginFrame", Value: clear})
	return nil
}

func (r *Recorder) EndFrame() error {
	r.inFrame = false
	r.calls = append(r.calls, Call{Op: "EndFrame"})
	return nil
}

func (r *Recorder) Present() {
	r.calls = append(r.calls, Call{Op: "Present"})
}

func (r *Recorder) Resize(width, height int) {
	r.width, r.height = width, height
	r.calls = append(r.calls, Call{Op: "Resize", Value: [2]int{width, height}})
}

func (r *Recorder) Release() {
	r.calls = append(r.calls, Call{Op: "Release"})
}
