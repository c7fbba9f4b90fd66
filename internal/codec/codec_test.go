package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: NameJSON},
		{in: "json", want: NameJSON},
		{in: " JSON ", want: NameJSON},
		{in: "cbor", want: NameCBOR},
		{in: "CBOR", want: NameCBOR},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ByName(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}
}

func TestByName_Unknown(t *testing.T) {
	_, err := ByName("msgpack")
	assert.True(t, errors.Is(err, ErrUnknownCodec))
}

func TestCBOR_CommandDecodesLikeJSON(t *testing.T) {
	c, err := NewCBOR()
	require.NoError(t, err)

	body := map[string]any{
		"pin":   3,
		"value": []any{1.5, 2},
		"sync":  "all",
	}
	data, err := c.Marshal(body)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, c.Unmarshal(data, &got))

	assert.Equal(t, uint64(3), got["pin"])
	assert.Equal(t, "all", got["sync"])
	assert.Equal(t, []any{1.5, uint64(2)}, got["value"])
}

func TestJSON_Unmarshal_Malformed(t *testing.T) {
	var got map[string]any
	err := JSON{}.Unmarshal([]byte(`{"pin":`), &got)
	assert.Error(t, err)
}
