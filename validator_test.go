package wasmvalidator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
)

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// module returns a module with one () -> () function whose body is code.
func module(code ...byte) []byte {
	body := append([]byte{0x00}, code...)
	out := append([]byte{}, header...)
	out = append(out, 0x01, 0x04, 0x01, 0x60, 0x00, 0x00)
	out = append(out, 0x03, 0x02, 0x01, 0x00)
	out = append(out, 0x0a, byte(len(body)+2), 0x01, byte(len(body)))
	return append(out, body...)
}

func TestCheckValid(t *testing.T) {
	rep, err := Check(context.Background(), module(0x0b), Config{Features: features.Default()})
	require.NoError(t, err)
	assert.True(t, rep.Valid)
	assert.Empty(t, rep.Errors)
	assert.Equal(t, 1, rep.Functions)
	assert.Nil(t, rep.Engine)
}

func TestCheckInvalidBody(t *testing.T) {
	rep, err := Check(context.Background(), module(0x41, 0x00, 0x0b), Config{Features: features.Default()})
	require.NoError(t, err)
	assert.False(t, rep.Valid)
	require.Len(t, rep.Errors, 1)

	e := rep.Errors[0]
	assert.Equal(t, []string{"function 0", "end"}, e.Path)
	assert.Equal(t, errors.KindTypeMismatch, e.Kind)
	assert.Equal(t, "expected empty stack, got [i32]", e.Detail)
	assert.True(t, e.HasOffset)
	assert.Equal(t, 25, e.Offset)
}

func TestCheckMalformed(t *testing.T) {
	rep, err := Check(context.Background(), header[:6], Config{Features: features.Default()})
	require.NoError(t, err)
	assert.False(t, rep.Valid)
	assert.Zero(t, rep.Functions)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, errors.KindTruncated, rep.Errors[0].Kind)
}

func TestCheckCrossCheck(t *testing.T) {
	cfg := Config{Features: features.Default(), CrossCheck: true}

	rep, err := Check(context.Background(), module(0x0b), cfg)
	require.NoError(t, err)
	require.NotNil(t, rep.Engine)
	assert.True(t, rep.Engine.Accepted())
	assert.NoError(t, rep.EngineErr)

	rep, err = Check(context.Background(), module(0x41, 0x00, 0x0b), cfg)
	require.NoError(t, err)
	assert.False(t, rep.Valid)
	assert.Error(t, rep.Engine.Err)
	assert.NoError(t, rep.EngineErr)
}

func TestCheckCrossCheckSkipsSIMD(t *testing.T) {
	// v128.const 0; drop
	code := append(append([]byte{0xfd, 0x02}, make([]byte, 16)...), 0x1a, 0x0b)
	rep, err := Check(context.Background(), module(code...),
		Config{Features: features.New(features.SIMD), CrossCheck: true})
	require.NoError(t, err)
	assert.True(t, rep.Valid)
	require.NotNil(t, rep.Engine)
	assert.True(t, rep.Engine.Skipped)
	assert.NoError(t, rep.EngineErr)
}

func TestCheckCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Check(ctx, module(0x0b), Config{})
	assert.ErrorIs(t, err, context.Canceled)
}
