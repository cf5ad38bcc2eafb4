package marshal

import (
	"strconv"
	"strings"

	"modelbridge/pkg/types"
)

// handleFields lists the accepted keys for a module handle. moduleId is the
// name used by the mobile plugins.
var handleFields = []string{"handle", "moduleId"}

// Parse converts a method name and argument bag into a typed Command.
// Unrecognized methods return an error for which IsNotImplemented is true.
func Parse(method string, args map[string]any) (Command, error) {
	switch method {
	case MethodLoad:
		return ParseLoad(args)
	case MethodForward:
		return ParseForward(args)
	case MethodDestroy:
		return ParseDestroy(args)
	default:
		return nil, notImplementedError{method: method}
	}
}

// ParseLoad validates a load payload.
func ParseLoad(args map[string]any) (LoadCommand, error) {
	raw, ok := args["filePath"]
	if !ok || raw == nil {
		return LoadCommand{}, missingField("filePath", "required")
	}
	path, ok := raw.(string)
	if !ok {
		return LoadCommand{}, missingField("filePath", "must be a string")
	}
	if strings.TrimSpace(path) == "" {
		return LoadCommand{}, missingField("filePath", "must not be empty")
	}
	return LoadCommand{FilePath: path}, nil
}

// ParseForward validates a forward payload. Inputs must be a non-empty list of
// well-formed tensor descriptors.
func ParseForward(args map[string]any) (ForwardCommand, error) {
	h, err := parseHandle(args)
	if err != nil {
		return ForwardCommand{}, err
	}
	raw, ok := args["inputs"]
	if !ok || raw == nil {
		return ForwardCommand{}, missingField("inputs", "required")
	}
	inputs, err := parseInputs(raw)
	if err != nil {
		return ForwardCommand{}, err
	}
	format, err := parseOutputFormat(args)
	if err != nil {
		return ForwardCommand{}, err
	}
	return ForwardCommand{Handle: h, Inputs: inputs, OutputFormat: format}, nil
}

func parseOutputFormat(args map[string]any) (string, error) {
	raw, ok := args["outputFormat"]
	if !ok || raw == nil {
		return OutputDescriptors, nil
	}
	switch s, _ := raw.(string); s {
	case OutputDescriptors, OutputTyped:
		return s, nil
	}
	return "", missingField("outputFormat", "must be \"descriptors\" or \"typed\"")
}

// ParseDestroy validates a destroy payload.
func ParseDestroy(args map[string]any) (DestroyCommand, error) {
	h, err := parseHandle(args)
	if err != nil {
		return DestroyCommand{}, err
	}
	return DestroyCommand{Handle: h}, nil
}

func parseHandle(args map[string]any) (types.Handle, error) {
	for _, f := range handleFields {
		raw, ok := args[f]
		if !ok || raw == nil {
			continue
		}
		n, ok := toInt64(raw)
		if !ok {
			return 0, missingField(f, "must be an integer")
		}
		return types.Handle(n), nil
	}
	return 0, missingField("handle", "required")
}

func parseInputs(raw any) ([]types.Tensor, error) {
	switch v := raw.(type) {
	case []types.Tensor:
		if len(v) == 0 {
			return nil, invalidShape("inputs", "must not be empty")
		}
		out := make([]types.Tensor, len(v))
		for i, t := range v {
			parsed, err := validateTensor(t)
			if err != nil {
				return nil, indexed(err, i)
			}
			out[i] = parsed
		}
		return out, nil
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return parseInputList(items)
	case []any:
		return parseInputList(v)
	default:
		return nil, invalidShape("inputs", "must be a list, got %T", raw)
	}
}

func parseInputList(items []any) ([]types.Tensor, error) {
	if len(items) == 0 {
		return nil, invalidShape("inputs", "must not be empty")
	}
	out := make([]types.Tensor, 0, len(items))
	for i, item := range items {
		ts, err := parseValues(item)
		if err != nil {
			return nil, indexed(err, i)
		}
		out = append(out, ts...)
	}
	return out, nil
}

// indexed prefixes a field error with the input position.
func indexed(err error, i int) error {
	return prefixField(err, "inputs["+strconv.Itoa(i)+"]")
}

func prefixField(err error, prefix string) error {
	fe, ok := err.(fieldError)
	if !ok {
		return err
	}
	if fe.field == "" {
		fe.field = prefix
	} else {
		fe.field = prefix + "." + fe.field
	}
	return fe
}
