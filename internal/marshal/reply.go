package marshal

import "modelbridge/pkg/types"

// EncodeSuccess wraps a result value.
func EncodeSuccess(value any) types.Reply {
	return types.Reply{Status: types.ReplyOK, Value: value}
}

// EncodeError wraps a failure as a (kind, message) pair.
func EncodeError(kind types.ErrorKind, message string) types.Reply {
	return types.Reply{Status: types.ReplyFailed, Error: &types.ReplyError{Kind: kind, Message: message}}
}

// EncodeNotImplemented is the reply for an unrecognized method. It names the
// method and carries neither a value nor an error.
func EncodeNotImplemented(method string) types.Reply {
	return types.Reply{Status: types.ReplyNotImplemented, Method: method}
}

// EncodeTensors converts engine outputs into descriptor maps, preserving order.
func EncodeTensors(ts []types.Tensor) []map[string]any {
	out := make([]map[string]any, len(ts))
	for i, t := range ts {
		out[i] = EncodeTensor(t)
	}
	return out
}

// EncodeTensor converts a tensor into the descriptor map accepted by ParseForward.
func EncodeTensor(t types.Tensor) map[string]any {
	m := map[string]any{
		"dtype": string(t.DType),
		"shape": t.Shape,
	}
	if t.Name != "" {
		m["name"] = t.Name
	}
	if t.MemoryFormat != "" {
		m["memoryFormat"] = string(t.MemoryFormat)
	}
	m["data"] = jsonData(t.Data)
	return m
}
