package marshal

import (
	"strconv"

	"modelbridge/pkg/types"
)

// Type codes of the typed value envelope {"typeCode": N, "data": ...} used by
// the mobile plugins.
const (
	typeCodeNull          = 1
	typeCodeTensor        = 2
	typeCodeBool          = 3
	typeCodeLong          = 4
	typeCodeDouble        = 5
	typeCodeString        = 6
	typeCodeTuple         = 7
	typeCodeBoolList      = 8
	typeCodeLongList      = 9
	typeCodeDoubleList    = 10
	typeCodeTensorList    = 11
	typeCodeList          = 12
	typeCodeDictStringKey = 13
	typeCodeDictLongKey   = 14
)

// maxValueDepth bounds the nesting of tuple and list envelopes.
const maxValueDepth = 32

// Output encodings for forward results, selected by the outputFormat argument.
const (
	// OutputDescriptors returns a list of tensor descriptor maps.
	OutputDescriptors = "descriptors"
	// OutputTyped returns one typed value envelope: a tensor for a single
	// output, a tuple of tensors otherwise.
	OutputTyped = "typed"
)

// parseValues turns one element of the inputs list into engine inputs. A bare
// descriptor or a tensor envelope yields one tensor; scalars and number lists
// become 0-d and 1-D tensors; tuples, lists and tensor lists expand in order.
func parseValues(item any) ([]types.Tensor, error) {
	return parseValueAt(item, 0)
}

func parseValueAt(item any, depth int) ([]types.Tensor, error) {
	if t, ok := item.(types.Tensor); ok {
		return one(validateTensor(t))
	}
	m, ok := item.(map[string]any)
	if !ok {
		return nil, invalidShape("", "tensor descriptor must be an object, got %T", item)
	}
	rawCode, ok := m["typeCode"]
	if !ok {
		return one(parseTensor(m))
	}
	code, ok := toInt64(rawCode)
	if !ok {
		return nil, invalidShape("typeCode", "must be an integer")
	}
	if depth >= maxValueDepth {
		return nil, invalidShape("typeCode", "values nested deeper than %d", maxValueDepth)
	}

	switch code {
	case typeCodeNull, typeCodeString, typeCodeDictStringKey, typeCodeDictLongKey:
		return nil, invalidShape("typeCode", "type code %d has no tensor form", code)
	case typeCodeTensor, typeCodeBool, typeCodeLong, typeCodeDouble, typeCodeTuple,
		typeCodeBoolList, typeCodeLongList, typeCodeDoubleList, typeCodeTensorList, typeCodeList:
	default:
		return nil, invalidShape("typeCode", "unsupported type code %d", code)
	}
	data, ok := m["data"]
	if !ok || data == nil {
		return nil, invalidShape("data", "required")
	}

	switch code {
	case typeCodeTensor:
		inner, ok := data.(map[string]any)
		if !ok {
			return nil, invalidShape("data", "tensor value must wrap a descriptor object")
		}
		return one(parseTensor(inner))
	case typeCodeBool:
		b, ok := data.(bool)
		if !ok {
			return nil, invalidShape("data", "must be a bool")
		}
		return one(scalar(types.DTypeUint8, []uint8{boolByte(b)}))
	case typeCodeLong:
		n, ok := toInt64(data)
		if !ok {
			return nil, invalidShape("data", "must be an integer")
		}
		return one(scalar(types.DTypeInt64, []int64{n}))
	case typeCodeDouble:
		f, ok := toFloat64(data)
		if !ok {
			return nil, invalidShape("data", "must be a number")
		}
		return one(scalar(types.DTypeFloat64, []float64{f}))
	case typeCodeBoolList:
		bools, err := boolList(data)
		if err != nil {
			return nil, err
		}
		return one(validateTensor(types.Tensor{DType: types.DTypeUint8, Data: bools}))
	case typeCodeLongList:
		return one(validateTensor(types.Tensor{DType: types.DTypeInt64, Data: data}))
	case typeCodeDoubleList:
		return one(validateTensor(types.Tensor{DType: types.DTypeFloat64, Data: data}))
	case typeCodeTensorList:
		items, ok := valueList(data)
		if !ok {
			return nil, invalidShape("data", "tensor list must be a list")
		}
		return expand(items, func(el any) ([]types.Tensor, error) {
			if t, ok := el.(types.Tensor); ok {
				return one(validateTensor(t))
			}
			d, ok := el.(map[string]any)
			if !ok {
				return nil, invalidShape("", "tensor descriptor must be an object, got %T", el)
			}
			return one(parseTensor(d))
		})
	default: // tuple, list
		items, ok := valueList(data)
		if !ok {
			return nil, invalidShape("data", "must be a list of typed values")
		}
		return expand(items, func(el any) ([]types.Tensor, error) {
			return parseValueAt(el, depth+1)
		})
	}
}

func one(t types.Tensor, err error) ([]types.Tensor, error) {
	if err != nil {
		return nil, err
	}
	return []types.Tensor{t}, nil
}

func scalar(dt types.DType, data any) (types.Tensor, error) {
	return validateTensor(types.Tensor{DType: dt, Shape: []int64{}, Data: data})
}

// expand parses each element of a container value and concatenates the results.
func expand(items []any, parse func(any) ([]types.Tensor, error)) ([]types.Tensor, error) {
	if len(items) == 0 {
		return nil, invalidShape("data", "must not be empty")
	}
	var out []types.Tensor
	for i, el := range items {
		ts, err := parse(el)
		if err != nil {
			return nil, prefixField(err, "data["+strconv.Itoa(i)+"]")
		}
		out = append(out, ts...)
	}
	return out, nil
}

func valueList(data any) ([]any, bool) {
	switch v := data.(type) {
	case []any:
		return v, true
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, true
	case []types.Tensor:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, true
	}
	return nil, false
}

func boolList(data any) ([]uint8, error) {
	switch v := data.(type) {
	case []bool:
		out := make([]uint8, len(v))
		for i, b := range v {
			out[i] = boolByte(b)
		}
		return out, nil
	case []any:
		out := make([]uint8, len(v))
		for i, el := range v {
			b, ok := el.(bool)
			if !ok {
				return nil, invalidShape("data", "element %d is not a bool", i)
			}
			out[i] = boolByte(b)
		}
		return out, nil
	}
	return nil, invalidShape("data", "must be a list of bools")
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// EncodeTypedValue encodes forward outputs as one typed value envelope with
// numeric dtype and memory format codes.
func EncodeTypedValue(ts []types.Tensor) map[string]any {
	if len(ts) == 1 {
		return typedTensor(ts[0])
	}
	items := make([]map[string]any, len(ts))
	for i, t := range ts {
		items[i] = typedTensor(t)
	}
	return map[string]any{"typeCode": typeCodeTuple, "data": items}
}

func typedTensor(t types.Tensor) map[string]any {
	d := map[string]any{
		"shape":        t.Shape,
		"dtype":        t.DType.Code(),
		"memoryFormat": t.MemoryFormat.Code(),
		"data":         jsonData(t.Data),
	}
	if t.Name != "" {
		d["name"] = t.Name
	}
	return map[string]any{"typeCode": typeCodeTensor, "data": d}
}

// jsonData keeps uint8 buffers as number lists; encoding/json would write them
// as base64.
func jsonData(data any) any {
	b, ok := data.([]uint8)
	if !ok {
		return data
	}
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return ints
}
