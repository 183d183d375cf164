package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseHelpers(t *testing.T) {
	assert.Equal(t, uint32(200), OK().StatusCode)
	assert.Equal(t, uint32(404), NotFound().StatusCode)
	assert.Equal(t, uint32(400), BadRequest().StatusCode)

	resp := InternalServerError("boom")
	assert.Equal(t, uint32(500), resp.StatusCode)
	assert.Equal(t, []byte("boom"), resp.Body)
}

func TestJSONResponse(t *testing.T) {
	resp, err := JSON(map[string]int{"count": 3}, 200, "OK")
	require.NoError(t, err)
	assert.Equal(t, `{"count":3}`, string(resp.Body))
}
