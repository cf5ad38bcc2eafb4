package marshal

import (
	"encoding/json"
	"math"
	"reflect"

	"modelbridge/pkg/types"
)

func parseTensor(m map[string]any) (types.Tensor, error) {
	var t types.Tensor
	if raw, ok := m["name"]; ok && raw != nil {
		name, ok := raw.(string)
		if !ok {
			return types.Tensor{}, invalidShape("name", "must be a string")
		}
		t.Name = name
	}
	if raw, ok := m["dtype"]; ok && raw != nil {
		dt, err := parseDType(raw)
		if err != nil {
			return types.Tensor{}, err
		}
		t.DType = dt
	}
	if raw, ok := m["memoryFormat"]; ok && raw != nil {
		mf, err := parseMemoryFormat(raw)
		if err != nil {
			return types.Tensor{}, err
		}
		t.MemoryFormat = mf
	}
	if raw, ok := m["shape"]; ok && raw != nil {
		shape, err := parseShape(raw)
		if err != nil {
			return types.Tensor{}, err
		}
		t.Shape = shape
	}
	raw, ok := m["data"]
	if !ok || raw == nil {
		return types.Tensor{}, invalidShape("data", "required")
	}
	t.Data = raw
	return validateTensor(t)
}

// validateTensor applies defaults, converts Data to the slice type of DType and
// checks the element count against the shape.
func validateTensor(t types.Tensor) (types.Tensor, error) {
	if t.DType == "" {
		t.DType = types.DTypeFloat32
	}
	if !t.DType.Valid() {
		return types.Tensor{}, invalidShape("dtype", "unknown dtype %q", t.DType)
	}
	data, err := convertData(t.DType, t.Data)
	if err != nil {
		return types.Tensor{}, err
	}
	t.Data = data
	n := t.Len()
	if t.Shape == nil {
		t.Shape = []int64{int64(n)}
	}
	for _, d := range t.Shape {
		if d < 0 {
			return types.Tensor{}, invalidShape("shape", "negative dimension %d", d)
		}
	}
	want, ok := t.NumElements()
	if !ok {
		return types.Tensor{}, invalidShape("shape", "element count of %v overflows", t.Shape)
	}
	if want != int64(n) {
		return types.Tensor{}, invalidShape("data", "shape %v needs %d elements, got %d", t.Shape, want, n)
	}
	return t, nil
}

func parseDType(raw any) (types.DType, error) {
	if s, ok := raw.(string); ok {
		dt := types.DType(s)
		if !dt.Valid() {
			return "", invalidShape("dtype", "unknown dtype %q", s)
		}
		return dt, nil
	}
	code, ok := toInt64(raw)
	if !ok {
		return "", invalidShape("dtype", "must be a name or numeric code")
	}
	dt, ok := types.DTypeFromCode(int(code))
	if !ok {
		return "", invalidShape("dtype", "unknown dtype code %d", code)
	}
	return dt, nil
}

func parseMemoryFormat(raw any) (types.MemoryFormat, error) {
	if s, ok := raw.(string); ok {
		switch mf := types.MemoryFormat(s); mf {
		case types.MemoryFormatContiguous, types.MemoryFormatChannelsLast, types.MemoryFormatChannelsLast3D:
			return mf, nil
		}
		return "", invalidShape("memoryFormat", "unknown memory format %q", s)
	}
	code, ok := toInt64(raw)
	if !ok {
		return "", invalidShape("memoryFormat", "must be a name or numeric code")
	}
	mf, ok := types.MemoryFormatFromCode(int(code))
	if !ok {
		return "", invalidShape("memoryFormat", "unknown memory format code %d", code)
	}
	return mf, nil
}

func parseShape(raw any) ([]int64, error) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		return nil, invalidShape("shape", "must be a list of integers")
	}
	shape := make([]int64, rv.Len())
	for i := range shape {
		d, ok := toInt64(rv.Index(i).Interface())
		if !ok {
			return nil, invalidShape("shape", "dimension %d is not an integer", i)
		}
		shape[i] = d
	}
	return shape, nil
}

// convertData returns raw as the slice type that matches dt. Slices that
// already have the right element type are returned as is.
func convertData(dt types.DType, raw any) (any, error) {
	switch dt {
	case types.DTypeUint8:
		if v, ok := raw.([]uint8); ok {
			return v, nil
		}
		return convertInts(raw, 0, math.MaxUint8, func(n int64) uint8 { return uint8(n) })
	case types.DTypeInt8:
		if v, ok := raw.([]int8); ok {
			return v, nil
		}
		return convertInts(raw, math.MinInt8, math.MaxInt8, func(n int64) int8 { return int8(n) })
	case types.DTypeInt32:
		if v, ok := raw.([]int32); ok {
			return v, nil
		}
		return convertInts(raw, math.MinInt32, math.MaxInt32, func(n int64) int32 { return int32(n) })
	case types.DTypeInt64:
		if v, ok := raw.([]int64); ok {
			return v, nil
		}
		return convertInts(raw, math.MinInt64, math.MaxInt64, func(n int64) int64 { return n })
	case types.DTypeFloat32:
		if v, ok := raw.([]float32); ok {
			return v, nil
		}
		return convertFloats(raw, func(f float64) float32 { return float32(f) })
	case types.DTypeFloat64:
		if v, ok := raw.([]float64); ok {
			return v, nil
		}
		return convertFloats(raw, func(f float64) float64 { return f })
	}
	return nil, invalidShape("dtype", "unknown dtype %q", dt)
}

func convertInts[T any](raw any, lo, hi int64, conv func(int64) T) ([]T, error) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		return nil, invalidShape("data", "must be a list of numbers")
	}
	out := make([]T, rv.Len())
	for i := range out {
		n, ok := toInt64(rv.Index(i).Interface())
		if !ok {
			return nil, invalidShape("data", "element %d is not an integer", i)
		}
		if n < lo || n > hi {
			return nil, invalidShape("data", "element %d out of range: %d", i, n)
		}
		out[i] = conv(n)
	}
	return out, nil
}

func convertFloats[T any](raw any, conv func(float64) T) ([]T, error) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		return nil, invalidShape("data", "must be a list of numbers")
	}
	out := make([]T, rv.Len())
	for i := range out {
		f, ok := toFloat64(rv.Index(i).Interface())
		if !ok {
			return nil, invalidShape("data", "element %d is not a number", i)
		}
		out[i] = conv(f)
	}
	return out, nil
}

// toInt64 accepts Go integers, integral floats and json.Number.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt64(f)
		}
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
