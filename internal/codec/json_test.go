package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"

	"github.com/oggyb/wandermatch/internal/codec"
)

func TestCodecIsRegistered(t *testing.T) {
	c := encoding.GetCodec(codec.Name)
	require.NotNil(t, c)

	type ping struct {
		RoomID string `json:"room_id"`
		Limit  int    `json:"limit"`
	}
	b, err := c.Marshal(&ping{RoomID: "r1", Limit: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"room_id":"r1","limit":3}`, string(b))

	var out ping
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, 3, out.Limit)
}
