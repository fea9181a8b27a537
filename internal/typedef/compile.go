package typedef

import (
	"fmt"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/quark/internal/object"
	"github.com/roach88/quark/internal/value"
)

// Compile parses a CUE root value into registration-ready type
// definitions. Uses the CUE SDK's Go API directly (not CLI subprocess).
//
// The expected shape is a top-level "types" struct keyed by type name:
//
//	types: counter: {
//	    parent?: string
//	    properties: {
//	        value: {type: "int", default: 0}
//	        name:  {type: "string", nullable: true}
//	    }
//	    signals: ["reset"]
//	}
//
// Definitions are returned in registration order: parents before
// children, ties broken by name for determinism.
func Compile(root cue.Value) ([]object.TypeDef, error) {
	if err := root.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	typesVal := root.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, &CompileError{
			Field:   "types",
			Message: "no top-level types struct",
			Pos:     root.Pos(),
		}
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []object.TypeDef
	for iter.Next() {
		def, err := CompileType(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return orderByDependency(defs)
}

// CompileType parses a single CUE type struct into a TypeDef.
func CompileType(name string, v cue.Value) (object.TypeDef, error) {
	def := object.TypeDef{Name: name}

	if err := v.Err(); err != nil {
		return def, formatCUEError(err)
	}

	parentVal := v.LookupPath(cue.ParsePath("parent"))
	if parentVal.Exists() {
		parent, err := parentVal.String()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.Parent = parent
	}

	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if propsVal.Exists() {
		props, err := parseProps(propsVal)
		if err != nil {
			return def, err
		}
		def.Props = props
	}

	signalsVal := v.LookupPath(cue.ParsePath("signals"))
	if signalsVal.Exists() {
		sigIter, err := signalsVal.List()
		if err != nil {
			return def, formatCUEError(err)
		}
		for sigIter.Next() {
			sig, err := sigIter.Value().String()
			if err != nil {
				return def, formatCUEError(err)
			}
			def.Signals = append(def.Signals, sig)
		}
	}

	return def, nil
}

// parseProps parses the properties struct in declaration order.
func parseProps(v cue.Value) ([]object.PropSpec, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var props []object.PropSpec
	for iter.Next() {
		spec, err := parsePropSpec(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		props = append(props, spec)
	}
	return props, nil
}

func parsePropSpec(name string, v cue.Value) (object.PropSpec, error) {
	spec := object.PropSpec{Name: name}

	kindVal := v.LookupPath(cue.ParsePath("type"))
	if !kindVal.Exists() {
		return spec, &CompileError{
			Field:   name,
			Message: "property type is required",
			Pos:     v.Pos(),
		}
	}
	kindName, err := kindVal.String()
	if err != nil {
		return spec, formatCUEError(err)
	}
	kind, err := value.ParseKind(kindName)
	if err != nil {
		return spec, &CompileError{
			Field:   name,
			Message: err.Error(),
			Pos:     kindVal.Pos(),
		}
	}
	spec.Kind = kind

	nullableVal := v.LookupPath(cue.ParsePath("nullable"))
	if nullableVal.Exists() {
		nullable, err := nullableVal.Bool()
		if err != nil {
			return spec, formatCUEError(err)
		}
		spec.Nullable = nullable
	}

	accessVal := v.LookupPath(cue.ParsePath("access"))
	if accessVal.Exists() {
		accessName, err := accessVal.String()
		if err != nil {
			return spec, formatCUEError(err)
		}
		access, err := parseAccess(accessName)
		if err != nil {
			return spec, &CompileError{
				Field:   name,
				Message: err.Error(),
				Pos:     accessVal.Pos(),
			}
		}
		spec.Access = access
	}

	defaultVal := v.LookupPath(cue.ParsePath("default"))
	if defaultVal.Exists() {
		d, err := parseDefault(name, kind, defaultVal)
		if err != nil {
			return spec, err
		}
		spec.Default = d
	}

	return spec, nil
}

func parseAccess(name string) (object.Access, error) {
	switch name {
	case "read-write":
		return object.ReadWrite, nil
	case "read-only":
		return object.Readable, nil
	case "write-only":
		return object.Writable, nil
	default:
		return 0, fmt.Errorf("unknown access %q: must be read-write, read-only, or write-only", name)
	}
}

// parseDefault converts a CUE default to a Value of the declared kind.
// Composite defaults (array/object) are intentionally unsupported; those
// kinds default to empty containers.
func parseDefault(prop string, kind value.Kind, v cue.Value) (value.Value, error) {
	if v.Null() == nil {
		return value.Null{}, nil
	}

	switch kind {
	case value.KindInt:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Int(n), nil
	case value.KindString:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.String(s), nil
	case value.KindBool:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Bool(b), nil
	default:
		return nil, &CompileError{
			Field:   prop,
			Message: fmt.Sprintf("defaults are not supported for %s properties", kind),
			Pos:     v.Pos(),
		}
	}
}

// orderByDependency sorts definitions parents-first, ties by name.
// A parent outside the compiled set is assumed pre-registered and does
// not constrain the order. Cycles are reported as errors.
func orderByDependency(defs []object.TypeDef) ([]object.TypeDef, error) {
	byName := make(map[string]object.TypeDef, len(defs))
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
		names = append(names, def.Name)
	}

	emitted := make(map[string]bool, len(defs))
	ordered := make([]object.TypeDef, 0, len(defs))

	for len(ordered) < len(defs) {
		progressed := false
		for _, name := range names {
			if emitted[name] {
				continue
			}
			def := byName[name]
			if def.Parent != "" {
				if _, local := byName[def.Parent]; local && !emitted[def.Parent] {
					continue
				}
			}
			ordered = append(ordered, def)
			emitted[name] = true
			progressed = true
		}
		if !progressed {
			return nil, &CompileError{
				Field:   "types",
				Message: "parent cycle detected among type definitions",
			}
		}
	}

	return ordered, nil
}

// RegisterAll registers compiled definitions into a registry in order.
func RegisterAll(reg *object.Registry, defs []object.TypeDef) error {
	for _, def := range defs {
		if _, err := reg.Register(def); err != nil {
			return fmt.Errorf("register type %q: %w", def.Name, err)
		}
	}
	return nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
