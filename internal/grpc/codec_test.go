package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	c := jsonCodec{}
	in := CommandRequest{Method: "get_listing", Params: []byte(`{"listing_id":1}`)}

	data, err := c.Marshal(in)
	require.NoError(t, err)

	var out CommandRequest
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, in.Method, out.Method)
	assert.JSONEq(t, string(in.Params), string(out.Params))
}

func TestJSONCodecName(t *testing.T) {
	assert.Equal(t, "json", jsonCodec{}.Name())
}
