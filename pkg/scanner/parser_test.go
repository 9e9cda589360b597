package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VaitaR/chainscan/pkg/common/types"
)

func TestEnvelopeOK(t *testing.T) {
	body := []byte(`{"status":"1","message":"OK","result":"4780000000000000000"}`)
	result, err := ParseEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, "4780000000000000000", result)
}

func TestEnvelopeEmptySuccess(t *testing.T) {
	for _, msg := range []string{"No transactions found", "No records found"} {
		body := []byte(`{"status":"0","message":"` + msg + `","result":[]}`)
		result, err := ParseEnvelope(body)
		require.NoError(t, err, msg)
		assert.Equal(t, []any{}, result, msg)
	}
}

func TestEnvelopeProviderError(t *testing.T) {
	body := []byte(`{"status":"0","message":"NOTOK","result":"Invalid API Key"}`)
	_, err := ParseEnvelope(body)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindProvider))
	assert.Contains(t, err.Error(), "Invalid API Key")
}

func TestEnvelopeProviderErrorWithoutResultDetail(t *testing.T) {
	body := []byte(`{"status":"0","message":"Max rate limit reached","result":null}`)
	_, err := ParseEnvelope(body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Max rate limit reached")
}

func TestEnvelopeProxyResult(t *testing.T) {
	// Proxy actions answer JSON-RPC style: no status field at all.
	body := []byte(`{"jsonrpc":"2.0","id":1,"result":"0x121eac0"}`)
	result, err := ParseEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, "0x121eac0", result)
}

func TestEnvelopeProxyError(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid argument"}}`)
	_, err := ParseEnvelope(body)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindProvider))
	assert.Contains(t, err.Error(), "-32602")
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestEnvelopeInvalidJSON(t *testing.T) {
	_, err := ParseEnvelope([]byte("<html>gateway timeout</html>"))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindParse))
}

func TestEnvelopeMissingResult(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"jsonrpc":"2.0","id":1}`))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindParse))
}

func TestParsersArePure(t *testing.T) {
	body := []byte(`{"status":"1","message":"OK","result":[{"hash":"0x1"}]}`)
	first, err1 := ParseEnvelope(body)
	second, err2 := ParseEnvelope(body)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestParseDirect(t *testing.T) {
	result, err := ParseDirect([]byte(`{"hash":"0xabc","value":"1"}`))
	require.NoError(t, err)
	obj, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0xabc", obj["hash"])
}

func TestParseField(t *testing.T) {
	result, err := ParseField("balance")([]byte(`{"balance":"4780000000000000000"}`))
	require.NoError(t, err)
	assert.Equal(t, "4780000000000000000", result)
}

func TestParseFieldMissing(t *testing.T) {
	_, err := ParseField("balance")([]byte(`{"value":"1"}`))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindParse))
}
