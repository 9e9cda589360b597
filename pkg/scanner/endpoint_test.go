package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VaitaR/chainscan/pkg/common/types"
)

func TestBuildRequestRenamesParams(t *testing.T) {
	spec := EndpointSpec{
		HTTPMethod: "GET",
		Path:       "/api",
		Query:      map[string]string{"module": "account", "action": "txlist"},
		ParamMap: map[string]string{
			"address":     "address",
			"start_block": "startblock",
			"end_block":   "endblock",
		},
	}
	path, query, err := spec.BuildRequest(map[string]any{
		"address":     "0xabc",
		"start_block": uint64(100),
		"end_block":   uint64(200),
	})
	require.NoError(t, err)
	assert.Equal(t, "/api", path)
	assert.Equal(t, "account", query.Get("module"))
	assert.Equal(t, "txlist", query.Get("action"))
	assert.Equal(t, "0xabc", query.Get("address"))
	assert.Equal(t, "100", query.Get("startblock"))
	assert.Equal(t, "200", query.Get("endblock"))
	// Logical names must not leak onto the wire.
	assert.Empty(t, query.Get("start_block"))
	assert.Empty(t, query.Get("end_block"))
}

func TestBuildRequestForwardsUnknownParams(t *testing.T) {
	spec := EndpointSpec{
		Path:     "/api",
		ParamMap: map[string]string{"address": "address"},
	}
	_, query, err := spec.BuildRequest(map[string]any{
		"address":      "0xabc",
		"topic0":       "0xddf2",
		"topic0_1_opr": "and",
	})
	require.NoError(t, err)
	assert.Equal(t, "0xddf2", query.Get("topic0"))
	assert.Equal(t, "and", query.Get("topic0_1_opr"))
}

func TestBuildRequestSubstitutesPathParams(t *testing.T) {
	spec := EndpointSpec{
		Path:       "/{address}/balance",
		PathParams: []string{"address"},
	}
	path, query, err := spec.BuildRequest(map[string]any{"address": "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"})
	require.NoError(t, err)
	assert.Equal(t, "/0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045/balance", path)
	assert.Empty(t, query.Get("address"))
}

func TestBuildRequestMissingPathParam(t *testing.T) {
	spec := EndpointSpec{
		Path:       "/transaction/{txhash}",
		PathParams: []string{"txhash"},
	}
	_, _, err := spec.BuildRequest(map[string]any{})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindInvalidArgument))
	assert.Contains(t, err.Error(), "{txhash}")
}

func TestBuildRequestSkipsNilValues(t *testing.T) {
	spec := EndpointSpec{
		Path:     "/api",
		ParamMap: map[string]string{"page": "page"},
	}
	_, query, err := spec.BuildRequest(map[string]any{"page": nil})
	require.NoError(t, err)
	assert.Empty(t, query.Get("page"))
}

func TestBuildRequestCallerOverridesSkeleton(t *testing.T) {
	spec := EndpointSpec{
		Path:     "/api",
		Query:    map[string]string{"tag": "latest"},
		ParamMap: map[string]string{"tag": "tag"},
	}
	_, query, err := spec.BuildRequest(map[string]any{"tag": "pending"})
	require.NoError(t, err)
	assert.Equal(t, "pending", query.Get("tag"))
}

func TestHexNumTransform(t *testing.T) {
	spec := EndpointSpec{
		Path:       "/api",
		ParamMap:   map[string]string{"block_number": "tag"},
		Transforms: map[string]Transform{"block_number": TransformHexNum},
	}

	_, query, err := spec.BuildRequest(map[string]any{"block_number": uint64(19000000)})
	require.NoError(t, err)
	assert.Equal(t, "0x121eac0", query.Get("tag"))

	_, query, err = spec.BuildRequest(map[string]any{"block_number": "255"})
	require.NoError(t, err)
	assert.Equal(t, "0xff", query.Get("tag"))

	// Hex input and named tags pass through unchanged.
	_, query, err = spec.BuildRequest(map[string]any{"block_number": "0xff"})
	require.NoError(t, err)
	assert.Equal(t, "0xff", query.Get("tag"))

	_, query, err = spec.BuildRequest(map[string]any{"block_number": "latest"})
	require.NoError(t, err)
	assert.Equal(t, "latest", query.Get("tag"))
}
