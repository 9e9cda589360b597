package client

import (
	"context"
	"fmt"

	"github.com/VaitaR/chainscan/pkg/common/types"
	"github.com/VaitaR/chainscan/pkg/scanner"
)

// Balance returns the native-currency balance of an address in wei, as the
// provider's decimal string.
func (c *Client) Balance(ctx context.Context, address string) (string, error) {
	result, err := c.Call(ctx, scanner.AccountBalance, map[string]any{"address": address})
	if err != nil {
		return "", err
	}
	s, ok := result.(string)
	if !ok {
		return "", &types.Error{
			Kind:     types.KindParse,
			Provider: c.scanner.Name(),
			Method:   scanner.AccountBalance.String(),
			Message:  fmt.Sprintf("expected string balance, got %T", result),
		}
	}
	return s, nil
}

// LatestBlock resolves the chain head via the proxy block-number action.
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	result, err := c.Call(ctx, scanner.BlockNumber, nil)
	if err != nil {
		return 0, err
	}
	s, ok := result.(string)
	if !ok {
		return 0, &types.Error{
			Kind:     types.KindParse,
			Provider: c.scanner.Name(),
			Method:   scanner.BlockNumber.String(),
			Message:  fmt.Sprintf("expected hex block number, got %T", result),
		}
	}
	n, err := types.ParseUint(s)
	if err != nil {
		return 0, &types.Error{
			Kind:     types.KindParse,
			Provider: c.scanner.Name(),
			Method:   scanner.BlockNumber.String(),
			Err:      err,
		}
	}
	return n, nil
}

// Records coerces a list-returning call into records. Providers answer range
// methods with arrays of objects; anything else is a parse failure.
func Records(result any) ([]map[string]any, error) {
	items, ok := result.([]any)
	if !ok {
		return nil, &types.Error{
			Kind:    types.KindParse,
			Message: fmt.Sprintf("expected record list, got %T", result),
		}
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		rec, ok := it.(map[string]any)
		if !ok {
			return nil, &types.Error{
				Kind:    types.KindParse,
				Message: fmt.Sprintf("expected record object, got %T", it),
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
