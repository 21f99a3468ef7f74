// Package dispatch routes structured tool calls to registered typed tools.
//
// The registry is closed: every tool is registered with its input type
// fixed at compile time, unknown names fail with flights.ErrUnknownTool,
// and argument maps are validated against the tool's JSON Schema and
// decoded into the typed input before the tool runs. Malformed calls never
// reach an engine.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
	"github.com/radicalxdev/mission-gemini-flights-backend/schema"
)

// ToolInfo describes a registered tool for catalog purposes, e.g. for
// building model-facing function declarations.
type ToolInfo struct {
	Name        string
	Description string
	Schema      map[string]any
}

type handler struct {
	info     ToolInfo
	compiled *schema.Schema
	call     func(ctx context.Context, args map[string]any) (any, error)
}

// Registry maps tool names to typed handlers. Register tools with
// [Register]; Registry methods themselves are not generic.
//
// A Registry is immutable once populated and safe for concurrent Dispatch.
type Registry struct {
	order    []string
	handlers map[string]*handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]*handler)}
}

// Register adds a typed tool to the registry. The tool's parameter schema
// is compiled once for validation.
//
// Panics if the tool is nil, its schema does not compile, or a tool with
// the same name is already registered. Registration happens at setup time;
// a broken tool set is a programming error.
func Register[I, O any](r *Registry, tool flights.Tool[I, O]) {
	if tool == nil {
		panic("dispatch: cannot register nil tool")
	}
	name := tool.Name()
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("dispatch: tool %q already registered", name))
	}

	compiled, err := schema.Compile(tool.ParameterSchema())
	if err != nil {
		panic(fmt.Sprintf("dispatch: tool %q has invalid schema: %v", name, err))
	}

	r.order = append(r.order, name)
	r.handlers[name] = &handler{
		info: ToolInfo{
			Name:        name,
			Description: tool.Description(),
			Schema:      tool.ParameterSchema(),
		},
		compiled: compiled,
		call: func(ctx context.Context, args map[string]any) (any, error) {
			input, err := decodeArgs[I](args)
			if err != nil {
				return nil, err
			}
			return tool.Call(ctx, input)
		},
	}
}

// Tools returns the registered tools' catalog info, in registration order.
func (r *Registry) Tools() []ToolInfo {
	infos := make([]ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.handlers[name].info)
	}
	return infos
}

// Dispatch validates the call's arguments and executes the named tool,
// returning its JSON-serializable payload.
//
// Failures before the tool runs are flights.ErrUnknownTool and
// flights.ErrInvalidArguments; anything else comes from the tool itself.
func (r *Registry) Dispatch(ctx context.Context, call *flights.ToolCall) (any, error) {
	h, ok := r.handlers[call.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", flights.ErrUnknownTool, call.Name)
	}

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	if err := h.compiled.Validate(args); err != nil {
		return nil, fmt.Errorf("%w: %v", flights.ErrInvalidArguments, err)
	}

	return h.call(ctx, args)
}

// decodeArgs converts a validated argument map into the tool's input type
// via a JSON round trip. Type mismatches the schema could not express are
// still reported as invalid arguments.
func decodeArgs[I any](args map[string]any) (I, error) {
	var input I
	encoded, err := json.Marshal(args)
	if err != nil {
		return input, fmt.Errorf("%w: %v", flights.ErrInvalidArguments, err)
	}
	if err := json.Unmarshal(encoded, &input); err != nil {
		return input, fmt.Errorf("%w: %v", flights.ErrInvalidArguments, err)
	}
	return input, nil
}
