// Package aggregator collects every record matching an address over a block
// interval, despite per-page ceilings the provider imposes. Ranges that
// saturate a page are bisected until they provably fit; a single block that
// still saturates falls back to page-based pagination, the only place
// pagination is used. Work is coordinated by a priority queue (largest range
// first) and a bounded worker pool behind the client's rate limiter.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/VaitaR/chainscan/pkg/common/types"
	"github.com/VaitaR/chainscan/pkg/infra"
	"github.com/VaitaR/chainscan/pkg/scanner"
)

// Caller abstracts the unified client so harvests are testable against
// synthetic providers.
type Caller interface {
	Call(ctx context.Context, m scanner.Method, params map[string]any) (any, error)
}

const (
	DefaultMaxConcurrent = 4
	DefaultPageSize      = 10_000
	DefaultLogsPageSize  = 1_000
)

// Options configures one harvest.
type Options struct {
	Method     scanner.Method // AccountTransactions, AccountInternalTxs, AccountERC20Transfers or EventLogs
	Address    string
	StartBlock uint64
	EndBlock   uint64 // 0 resolves the chain head first
	// MaxConcurrent bounds in-flight requests. Defaults to DefaultMaxConcurrent.
	MaxConcurrent int
	// PageSize is the provider's per-page ceiling. Defaults to
	// DefaultPageSize (DefaultLogsPageSize for EventLogs).
	PageSize int
	// Lenient records failed sub-ranges in the report and continues instead
	// of aborting the harvest.
	Lenient bool
	// Extra params forwarded on every underlying call (topics and such).
	Extra map[string]any

	Telemetry infra.Telemetry
}

// RangeFailure is a sub-range the harvest gave up on (lenient mode).
type RangeFailure struct {
	Range Range
	Err   error
}

// Stats counts what the harvest did.
type Stats struct {
	RangesProcessed  int
	RangesSplit      int
	RangesFailed     int
	SingleBlockPages int
	Requests         int
	Records          int
}

// Report is the harvest outcome. Records are deduplicated and sorted by
// (block number, transaction index, log index); records with no ordering key
// keep insertion order at the end.
type Report struct {
	Records   []map[string]any
	Completed []Range
	Failed    []RangeFailure
	Stats     Stats
}

var bulkMethods = map[scanner.Method]bool{
	scanner.AccountTransactions:   true,
	scanner.AccountInternalTxs:    true,
	scanner.AccountERC20Transfers: true,
	scanner.EventLogs:             true,
}

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// headResolver is satisfied by *client.Client; harvests with EndBlock 0 need
// it to resolve the chain head.
type headResolver interface {
	LatestBlock(ctx context.Context) (uint64, error)
}

// FetchAll harvests all records for the address over the interval. On
// cancellation it returns the partial report plus a Canceled error; in strict
// mode a hard sub-range failure returns the partial report plus a
// PartialHarvest error.
func FetchAll(ctx context.Context, caller Caller, opts Options) (*Report, error) {
	if !bulkMethods[opts.Method] {
		return nil, &types.Error{
			Kind:    types.KindInvalidArgument,
			Method:  opts.Method.String(),
			Message: "method does not return block-ranged records",
		}
	}
	if !addressPattern.MatchString(opts.Address) {
		return nil, &types.Error{
			Kind:    types.KindInvalidArgument,
			Method:  opts.Method.String(),
			Message: fmt.Sprintf("malformed address %q", opts.Address),
		}
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.PageSize <= 0 {
		if opts.Method == scanner.EventLogs {
			opts.PageSize = DefaultLogsPageSize
		} else {
			opts.PageSize = DefaultPageSize
		}
	}
	if opts.Telemetry == nil {
		opts.Telemetry = infra.NopTelemetry{}
	}

	if opts.EndBlock == 0 {
		hr, ok := caller.(headResolver)
		if !ok {
			return nil, &types.Error{
				Kind:    types.KindInvalidArgument,
				Method:  opts.Method.String(),
				Message: "end block is required when the caller cannot resolve the chain head",
			}
		}
		head, err := hr.LatestBlock(ctx)
		if err != nil {
			return nil, err
		}
		opts.EndBlock = head
	}
	if opts.StartBlock > opts.EndBlock {
		return nil, &types.Error{
			Kind:    types.KindInvalidArgument,
			Method:  opts.Method.String(),
			Message: fmt.Sprintf("start block %d after end block %d", opts.StartBlock, opts.EndBlock),
		}
	}

	h := &harvest{caller: caller, opts: opts, report: &Report{}}
	return h.run(ctx)
}

type harvest struct {
	caller  Caller
	opts    Options
	report  *Report
	statsMu sync.Mutex
}

type rangeResult struct {
	rng     Range
	state   rangeState
	records []map[string]any
	err     error
}

func (h *harvest) run(ctx context.Context) (*Report, error) {
	start := time.Now()
	q := newQueue()
	q.push(Range{Start: h.opts.StartBlock, End: h.opts.EndBlock})

	for q.len() > 0 {
		if ctx.Err() != nil {
			return h.finish(start), h.canceled(ctx)
		}

		batch := make([]Range, 0, h.opts.MaxConcurrent)
		for len(batch) < h.opts.MaxConcurrent {
			rng, ok := q.pop()
			if !ok {
				break
			}
			batch = append(batch, rng)
		}

		results := make([]rangeResult, len(batch))
		var wg sync.WaitGroup
		for i, rng := range batch {
			wg.Add(1)
			go func(i int, rng Range) {
				defer wg.Done()
				results[i] = h.processRange(ctx, rng)
			}(i, rng)
		}
		wg.Wait()

		for _, res := range results {
			switch res.state {
			case stateDone:
				h.report.Records = append(h.report.Records, res.records...)
				h.report.Completed = append(h.report.Completed, res.rng)
				h.report.Stats.RangesProcessed++
				h.emit("harvest.range_ok", map[string]any{
					"start": res.rng.Start, "end": res.rng.End, "items": len(res.records),
				})
			case stateSplit:
				mid := res.rng.Start + (res.rng.End-res.rng.Start)/2
				q.push(Range{Start: res.rng.Start, End: mid})
				q.push(Range{Start: mid + 1, End: res.rng.End})
				h.report.Stats.RangesSplit++
				h.emit("harvest.range_split", map[string]any{
					"start": res.rng.Start, "end": res.rng.End, "mid": mid,
				})
			case stateFailed:
				if ctx.Err() != nil {
					return h.finish(start), h.canceled(ctx)
				}
				h.report.Stats.RangesFailed++
				h.emit("harvest.range_failed", map[string]any{
					"start": res.rng.Start, "end": res.rng.End, "error": res.err.Error(),
				})
				if !h.opts.Lenient {
					h.finish(start)
					return h.report, &types.Error{
						Kind:   types.KindPartialHarvest,
						Method: h.opts.Method.String(),
						Message: fmt.Sprintf("range [%d, %d] failed after %d completed ranges",
							res.rng.Start, res.rng.End, len(h.report.Completed)),
						Err: res.err,
					}
				}
				h.report.Failed = append(h.report.Failed, RangeFailure{Range: res.rng, Err: res.err})
			}
		}
	}

	return h.finish(start), nil
}

// processRange fetches the first page of a sub-range and decides its fate:
// an unsaturated page completes the range; a saturated multi-block range
// splits; a saturated single block paginates to exhaustion.
func (h *harvest) processRange(ctx context.Context, rng Range) rangeResult {
	records, err := h.fetchPage(ctx, rng, 1)
	if err != nil {
		return rangeResult{rng: rng, state: stateFailed, err: err}
	}
	if len(records) < h.opts.PageSize {
		return rangeResult{rng: rng, state: stateDone, records: records}
	}
	if rng.Start < rng.End {
		// Saturated and splittable. The partial page is discarded: the
		// halves re-fetch it, which is what makes the split correct.
		return rangeResult{rng: rng, state: stateSplit}
	}
	// A single saturated block: pagination bounded by the block's own
	// record count.
	all := records
	for page := 2; ; page++ {
		pageRecords, err := h.fetchPage(ctx, rng, page)
		if err != nil {
			return rangeResult{rng: rng, state: stateFailed, err: err}
		}
		h.statsAddPage()
		all = append(all, pageRecords...)
		if len(pageRecords) < h.opts.PageSize {
			break
		}
	}
	return rangeResult{rng: rng, state: stateDone, records: all}
}

func (h *harvest) fetchPage(ctx context.Context, rng Range, page int) ([]map[string]any, error) {
	params := map[string]any{
		"address":     h.opts.Address,
		"start_block": rng.Start,
		"end_block":   rng.End,
		"page":        page,
		"offset":      h.opts.PageSize,
		"sort":        "asc",
	}
	for k, v := range h.opts.Extra {
		params[k] = v
	}
	h.statsAddRequest()

	result, err := h.caller.Call(ctx, h.opts.Method, params)
	if err != nil {
		return nil, err
	}
	return coerceRecords(result)
}

func (h *harvest) statsAddRequest() {
	h.statsMu.Lock()
	h.report.Stats.Requests++
	h.statsMu.Unlock()
}

func (h *harvest) statsAddPage() {
	h.statsMu.Lock()
	h.report.Stats.SingleBlockPages++
	h.statsMu.Unlock()
}

func (h *harvest) canceled(ctx context.Context) error {
	return &types.Error{
		Kind:   types.KindCanceled,
		Method: h.opts.Method.String(),
		Err:    ctx.Err(),
	}
}

func (h *harvest) finish(start time.Time) *Report {
	h.dedupAndSort()
	h.report.Stats.Records = len(h.report.Records)
	h.emit("harvest.done", map[string]any{
		"records":     len(h.report.Records),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return h.report
}

func (h *harvest) emit(name string, fields map[string]any) {
	h.opts.Telemetry.Emit(infra.Event{
		Name:   name,
		Method: h.opts.Method.String(),
		Fields: fields,
	})
}

func coerceRecords(result any) ([]map[string]any, error) {
	items, ok := result.([]any)
	if !ok {
		if rec, ok := result.([]map[string]any); ok {
			return rec, nil
		}
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

// dedupAndSort collapses records fetched more than once across overlapping
// work and establishes the deterministic output order.
func (h *harvest) dedupAndSort() {
	seen := make(map[string]bool, len(h.report.Records))
	unique := h.report.Records[:0]
	for _, rec := range h.report.Records {
		key := dedupKey(h.opts.Method, rec)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, rec)
	}
	h.report.Records = unique

	type sortKey struct {
		ok       bool
		block    uint64
		txIndex  uint64
		logIndex uint64
	}
	keys := make([]sortKey, len(unique))
	for i, rec := range unique {
		block, ok := types.FieldUint(rec, "blockNumber")
		if !ok {
			block, ok = types.FieldUint(rec, "block_number")
		}
		if !ok {
			continue
		}
		keys[i].ok = true
		keys[i].block = block
		keys[i].txIndex, _ = types.FieldUint(rec, "transactionIndex")
		keys[i].logIndex, _ = types.FieldUint(rec, "logIndex")
	}

	indices := make([]int, len(unique))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		ka, kb := keys[indices[a]], keys[indices[b]]
		if ka.ok != kb.ok {
			return ka.ok // keyless records go last, insertion order preserved
		}
		if !ka.ok {
			return false
		}
		if ka.block != kb.block {
			return ka.block < kb.block
		}
		if ka.txIndex != kb.txIndex {
			return ka.txIndex < kb.txIndex
		}
		return ka.logIndex < kb.logIndex
	})

	sorted := make([]map[string]any, len(unique))
	for i, idx := range indices {
		sorted[i] = unique[idx]
	}
	h.report.Records = sorted
}

// dedupKey fingerprints a record per method: transactions by hash, internal
// transactions by hash plus trace position, logs (and log-derived transfers)
// by hash plus log index. Records missing the fields degrade to their exact
// JSON content.
func dedupKey(m scanner.Method, rec map[string]any) string {
	hash, _ := types.FieldString(rec, "transactionHash")
	if hash == "" {
		hash, _ = types.FieldString(rec, "hash")
	}
	if hash == "" {
		data, _ := json.Marshal(rec)
		return string(data)
	}
	switch m {
	case scanner.AccountTransactions:
		return hash
	case scanner.AccountInternalTxs:
		if trace, ok := types.FieldString(rec, "traceId"); ok && trace != "" {
			return hash + ":" + trace
		}
		if idx, ok := types.FieldUint(rec, "index"); ok {
			return fmt.Sprintf("%s:%d", hash, idx)
		}
		// Several internal calls can share one transaction; without a trace
		// position, only exact duplicates are safe to collapse.
		data, _ := json.Marshal(rec)
		return string(data)
	default: // EventLogs, AccountERC20Transfers
		if idx, ok := types.FieldUint(rec, "logIndex"); ok {
			return fmt.Sprintf("%s:%d", hash, idx)
		}
		data, _ := json.Marshal(rec)
		return string(data)
	}
}
