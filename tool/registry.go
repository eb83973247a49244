package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/assistant"
)

// Spec pairs a tool definition with the handler that executes it.
type Spec struct {
	Tool    ai.Tool
	Handler Handler
}

// Registry is an immutable table of tools keyed by exact name.
// It is safe for concurrent use because nothing mutates it after construction.
type Registry struct {
	specs  []Spec
	byName map[string]int
}

// NewRegistry builds a registry from specs, preserving their order.
// Returns an error if two specs share a name or a spec has no handler.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{
		specs:  make([]Spec, 0, len(specs)),
		byName: make(map[string]int, len(specs)),
	}
	for _, s := range specs {
		if s.Tool.Name == "" {
			return nil, fmt.Errorf("tool: spec has no name")
		}
		if s.Handler == nil {
			return nil, fmt.Errorf("tool: %s has no handler", s.Tool.Name)
		}
		if _, exists := r.byName[s.Tool.Name]; exists {
			return nil, &ErrToolAlreadyRegistered{Name: s.Tool.Name}
		}
		r.byName[s.Tool.Name] = len(r.specs)
		r.specs = append(r.specs, s)
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(specs ...Spec) *Registry {
	r, err := NewRegistry(specs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Spec{}, false
	}
	return r.specs[idx], true
}

// Tools returns all tool definitions in registration order.
// This is what gets advertised to the model.
func (r *Registry) Tools() []ai.Tool {
	tools := make([]ai.Tool, len(r.specs))
	for i, s := range r.specs {
		tools[i] = s.Tool
	}
	return tools
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, s := range r.specs {
		names[i] = s.Tool.Name
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.specs)
}

// Invoke resolves and executes a tool call.
//
// Unknown names return *ErrToolNotFound and arguments that are not a JSON
// object return *ErrInvalidArguments. Handler failures, including panics, are
// reported in the returned ToolResult with IsError set and a nil error, so the
// model can see what went wrong.
func (r *Registry) Invoke(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error) {
	spec, ok := r.Lookup(call.Name)
	if !ok {
		return ai.ToolResult{}, &ErrToolNotFound{Name: call.Name}
	}
	if _, err := call.ParseArguments(); err != nil {
		return ai.ToolResult{}, &ErrInvalidArguments{Name: call.Name, Err: err}
	}

	content, err := run(ctx, spec.Handler, call)
	if err != nil {
		return ai.ToolResult{
			ToolCallID: call.ID,
			Content:    err.Error(),
			IsError:    true,
		}, nil
	}
	return ai.ToolResult{ToolCallID: call.ID, Content: content}, nil
}

func run(ctx context.Context, h Handler, call ai.ToolCall) (content string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &ErrToolExecution{Name: call.Name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	return h(ctx, call)
}

// Func creates a Spec with a schema reflected from T. The handler decodes
// the call arguments into T before calling fn. Panics if T is not a struct.
//
// Example:
//
//	registry := tool.MustNewRegistry(
//	    tool.Func("calculator", "Evaluate arithmetic", calcFn),
//	    tool.Func("get_weather", "Get weather", weatherFn),
//	)
func Func[T any](name, description string, fn TypedHandler[T]) Spec {
	return Spec{
		Tool: ai.Tool{
			Name:        name,
			Description: description,
			Parameters:  MustSchemaFor[T](),
		},
		Handler: func(ctx context.Context, call ai.ToolCall) (string, error) {
			var args T
			raw := strings.TrimSpace(call.Arguments)
			if raw == "" {
				raw = "{}"
			}
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return "", err
			}
			return fn(ctx, args)
		},
	}
}
