// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @oxy: annotations and replaces them with registered WGSL
// snippets, so shared structs such as the light layout are written once.
package shader

import (
	"fmt"
	"maps"
	"strings"
	"sync"
)

var (
	includeMu       sync.RWMutex
	includeRegistry = map[string]string{}
)

// RegisterInclude registers WGSL source that shaders can inject with
// //@oxy:include <name>. Registering a name again replaces its source.
//
// Parameters:
//   - name: the include name
//   - source: the WGSL source to inject
func RegisterInclude(name, source string) {
	includeMu.Lock()
	defer includeMu.Unlock()
	includeRegistry[name] = source
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	includes     map[string]string
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations,
// replacing them with their registered WGSL output.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and replaces every @oxy:include
	// annotation with the registered source. Each name is injected at most once.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations replaced
	//   - error: an error if any annotation is malformed or references an unknown include
	Process(source string) (string, error)

	// Declarations returns the annotations handled during the most recent call
	// to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the annotations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor seeded with every include registered
// through RegisterInclude, overlaid with extra.
//
// Parameters:
//   - extra: additional includes that take precedence over registered ones (may be nil)
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(extra map[string]string) PreProcessor {
	includeMu.RLock()
	includes := maps.Clone(includeRegistry)
	includeMu.RUnlock()
	maps.Copy(includes, extra)
	return &preProcessor{includes: includes}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	injected := make(map[string]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			name := a.Args[0]
			src, ok := p.includes[name]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, name)
			}
			if !injected[name] {
				out = append(out, src)
				injected[name] = true
			}
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
		p.declarations = append(p.declarations, *a)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
