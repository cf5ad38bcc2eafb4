package types

import "math"

// Handle identifies one loaded module. Handles are assigned by the manager and
// never reused within a process.
type Handle int64

// DType is the element type of a tensor buffer.
type DType string

const (
	DTypeUint8   DType = "uint8"
	DTypeInt8    DType = "int8"
	DTypeInt32   DType = "int32"
	DTypeFloat32 DType = "float32"
	DTypeInt64   DType = "int64"
	DTypeFloat64 DType = "float64"
)

// dtypeCodes are the numeric codes used by mobile runtimes for the same types.
var dtypeCodes = []DType{DTypeUint8, DTypeInt8, DTypeInt32, DTypeFloat32, DTypeInt64, DTypeFloat64}

// DTypeFromCode maps a numeric dtype code (1..6) to a DType.
func DTypeFromCode(code int) (DType, bool) {
	if code < 1 || code > len(dtypeCodes) {
		return "", false
	}
	return dtypeCodes[code-1], true
}

// Code returns the numeric code of d, or 0 if d is unknown.
func (d DType) Code() int {
	for i, k := range dtypeCodes {
		if d == k {
			return i + 1
		}
	}
	return 0
}

// Valid reports whether d is a known dtype.
func (d DType) Valid() bool {
	for _, k := range dtypeCodes {
		if d == k {
			return true
		}
	}
	return false
}

// MemoryFormat describes the layout of a tensor buffer.
type MemoryFormat string

const (
	MemoryFormatContiguous     MemoryFormat = "contiguous"
	MemoryFormatChannelsLast   MemoryFormat = "channels_last"
	MemoryFormatChannelsLast3D MemoryFormat = "channels_last_3d"
)

// Code returns the numeric code of f. An empty format is contiguous.
func (f MemoryFormat) Code() int {
	switch f {
	case MemoryFormatChannelsLast:
		return 2
	case MemoryFormatChannelsLast3D:
		return 3
	}
	return 1
}

// MemoryFormatFromCode maps a numeric memory format code (1..3).
func MemoryFormatFromCode(code int) (MemoryFormat, bool) {
	switch code {
	case 1:
		return MemoryFormatContiguous, true
	case 2:
		return MemoryFormatChannelsLast, true
	case 3:
		return MemoryFormatChannelsLast3D, true
	}
	return "", false
}

// Tensor is a named, shaped, typed numeric buffer used as model input or output.
// Data holds a Go slice whose element type matches DType ([]float32 for float32,
// []uint8 for uint8 and so on).
type Tensor struct {
	Name         string
	DType        DType
	Shape        []int64
	MemoryFormat MemoryFormat
	Data         any
}

// NumElements returns the product of the shape dimensions. ok is false when a
// dimension is negative or the product does not fit in an int64.
func (t Tensor) NumElements() (n int64, ok bool) {
	for _, d := range t.Shape {
		if d < 0 {
			return 0, false
		}
		if d == 0 {
			return 0, true
		}
	}
	n = 1
	for _, d := range t.Shape {
		if n > math.MaxInt64/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// Len returns the number of elements in Data, or -1 if Data is not a supported slice.
func (t Tensor) Len() int {
	switch v := t.Data.(type) {
	case []uint8:
		return len(v)
	case []int8:
		return len(v)
	case []int32:
		return len(v)
	case []float32:
		return len(v)
	case []int64:
		return len(v)
	case []float64:
		return len(v)
	}
	return -1
}

// ModelFile is a loadable model discovered on disk.
type ModelFile struct {
	// File name including extension.
	// example: mobilenet_v2.onnx
	Name string `json:"name" example:"mobilenet_v2.onnx"`
	// Absolute path, usable as filePath in a load call.
	// example: /home/user/models/mobilenet_v2.onnx
	Path string `json:"path" example:"/home/user/models/mobilenet_v2.onnx"`
	// Size in bytes.
	// example: 14000000
	SizeBytes int64 `json:"size_bytes" example:"14000000"`
}
