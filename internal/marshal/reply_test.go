package marshal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelbridge/pkg/types"
)

func TestReplies_ExactlyOneMember(t *testing.T) {
	ok := EncodeSuccess(types.Handle(1))
	assert.Equal(t, types.ReplyOK, ok.Status)
	assert.Nil(t, ok.Error)

	bad := EncodeError(types.KindUnknownHandle, "unknown handle: 1")
	assert.Equal(t, types.ReplyFailed, bad.Status)
	assert.Nil(t, bad.Value)
	require.NotNil(t, bad.Error)
	assert.Equal(t, types.KindUnknownHandle, bad.Error.Kind)

	ni := EncodeNotImplemented("reset")
	assert.Equal(t, types.ReplyNotImplemented, ni.Status)
	assert.Equal(t, "reset", ni.Method)
	assert.Nil(t, ni.Value)
	assert.Nil(t, ni.Error)
}

func TestEncodeTensor_Uint8AsNumbers(t *testing.T) {
	m := EncodeTensor(types.Tensor{DType: types.DTypeUint8, Shape: []int64{2}, Data: []uint8{1, 200}})
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dtype":"uint8","shape":[2],"data":[1,200]}`, string(b))
}

func TestEncodeTensor_RoundTripsThroughParse(t *testing.T) {
	orig := types.Tensor{Name: "logits", DType: types.DTypeFloat32, Shape: []int64{1, 3}, MemoryFormat: types.MemoryFormatContiguous, Data: []float32{0.1, 0.2, 0.7}}
	b, err := json.Marshal(EncodeTensors([]types.Tensor{orig}))
	require.NoError(t, err)

	var decoded []any
	require.NoError(t, json.Unmarshal(b, &decoded))
	cmd, err := ParseForward(map[string]any{"handle": 1, "inputs": decoded})
	require.NoError(t, err)
	assert.Equal(t, orig, cmd.Inputs[0])
}

func TestEncodeTypedValue_SingleTensor(t *testing.T) {
	v := EncodeTypedValue([]types.Tensor{{DType: types.DTypeUint8, Shape: []int64{1, 2}, Data: []uint8{3, 250}}})
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"typeCode":2,"data":{"dtype":1,"memoryFormat":1,"shape":[1,2],"data":[3,250]}}`, string(b))
}

func TestEncodeTypedValue_TupleRoundTripsThroughParse(t *testing.T) {
	outs := []types.Tensor{
		{DType: types.DTypeFloat32, Shape: []int64{2}, MemoryFormat: types.MemoryFormatContiguous, Data: []float32{0.5, 1.5}},
		{Name: "ids", DType: types.DTypeInt64, Shape: []int64{1}, MemoryFormat: types.MemoryFormatChannelsLast, Data: []int64{7}},
	}
	b, err := json.Marshal(EncodeTypedValue(outs))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, float64(7), decoded["typeCode"])

	cmd, err := ParseForward(map[string]any{"handle": 1, "inputs": []any{decoded}})
	require.NoError(t, err)
	assert.Equal(t, outs, cmd.Inputs)
}
