package scanner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/VaitaR/chainscan/pkg/common/types"
)

// Parser extracts the logical result from a provider response body. Parsers
// are pure: equal bytes in, equal value (or error) out.
type Parser func(body []byte) (any, error)

// emptyResultPrefixes are the Etherscan-family messages that accompany
// status "0" on a query that matched nothing. They signal an empty success,
// not a failure.
var emptyResultPrefixes = []string{
	"No transactions found",
	"No records found",
}

type envelope struct {
	Status  *string         `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ParseEnvelope handles the Etherscan-family {status, message, result} shape
// and the JSON-RPC {error: {code, message}} shape used by proxy actions.
func ParseEnvelope(body []byte) (any, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, parseError("invalid JSON envelope", err)
	}

	if env.Error != nil {
		return nil, &types.Error{
			Kind:    types.KindProvider,
			Message: fmt.Sprintf("[%d] %s", env.Error.Code, env.Error.Message),
		}
	}

	if env.Status != nil && *env.Status != "1" {
		for _, prefix := range emptyResultPrefixes {
			if strings.HasPrefix(env.Message, prefix) {
				return []any{}, nil
			}
		}
		return nil, &types.Error{
			Kind:    types.KindProvider,
			Message: providerMessage(env),
		}
	}

	if env.Result == nil {
		return nil, parseError("envelope has no result field", nil)
	}
	var result any
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return nil, parseError("invalid result payload", err)
	}
	return result, nil
}

// providerMessage prefers the result body when the provider stuffs the real
// reason there (message is often just "NOTOK").
func providerMessage(env envelope) string {
	var detail string
	if env.Result != nil {
		_ = json.Unmarshal(env.Result, &detail)
	}
	if detail != "" {
		return detail
	}
	return env.Message
}

// ParseDirect returns the decoded JSON payload as-is (REST-style providers).
func ParseDirect(body []byte) (any, error) {
	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, parseError("invalid JSON response", err)
	}
	return result, nil
}

// ParseField picks one field out of a JSON object response.
func ParseField(field string) Parser {
	return func(body []byte) (any, error) {
		var obj map[string]any
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, parseError("invalid JSON object", err)
		}
		v, ok := obj[field]
		if !ok {
			return nil, parseError(fmt.Sprintf("response has no %q field", field), nil)
		}
		return v, nil
	}
}

func parseError(msg string, err error) error {
	return &types.Error{Kind: types.KindParse, Message: msg, Err: err}
}
