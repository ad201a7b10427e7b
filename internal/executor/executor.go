// Package executor invokes the external execution collaborators (withdraw,
// supply, swap) as named operations with an argument object and parses the
// JSON payloads of their result envelopes into typed records. All payload
// validation happens here, at the boundary: a malformed or missing payload
// is a parse error, never a silent pass-through.
package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourdevkalki/arbitrum-vibekit-sub001/internal/model"
)

// Operation names understood by the execution collaborator.
const (
	OpWithdraw = "withdrawLiquidity"
	OpSupply   = "supplyLiquidity"
	OpSwap     = "swapTokens"
)

// UnknownPositionID is reported when a minted position id cannot be decoded.
// That is acceptable and not an error.
const UnknownPositionID = "unknown"

// Payload is one content item of a collaborator result envelope.
type Payload struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope is the structured result of one collaborator call.
type Envelope struct {
	Content []Payload `json:"content"`
}

// Caller invokes a named operation with an argument object.
type Caller interface {
	Call(ctx context.Context, operation string, args map[string]any) (Envelope, error)
}

// TxResult is the typed outcome of a withdraw or swap operation.
type TxResult struct {
	Success  bool     `json:"success"`
	TxHashes []string `json:"tx_hashes"`
	Error    string   `json:"error,omitempty"`
}

// MintResult extends TxResult with the best-effort minted position id.
type MintResult struct {
	TxResult
	PositionID string `json:"position_id"`
}

// ParseTxResult extracts and validates the first JSON payload of an
// envelope against the transaction-result contract.
func ParseTxResult(env Envelope) (TxResult, error) {
	fields, err := payloadFields(env)
	if err != nil {
		return TxResult{}, err
	}
	return txResultFromFields(fields)
}

// ParseMintResult parses a supply result. The position id is best-effort:
// a missing or malformed id degrades to UnknownPositionID.
func ParseMintResult(env Envelope) (MintResult, error) {
	fields, err := payloadFields(env)
	if err != nil {
		return MintResult{}, err
	}
	tx, err := txResultFromFields(fields)
	if err != nil {
		return MintResult{}, err
	}

	result := MintResult{TxResult: tx, PositionID: UnknownPositionID}
	if raw, ok := fields["position_id"]; ok {
		var id string
		if err := json.Unmarshal(raw, &id); err == nil && id != "" {
			result.PositionID = id
		}
	}
	return result, nil
}

func payloadFields(env Envelope) (map[string]json.RawMessage, error) {
	if len(env.Content) == 0 {
		return nil, fmt.Errorf("%w: empty result envelope", model.ErrParse)
	}

	var payload *Payload
	for i := range env.Content {
		if env.Content[i].Type == "" || env.Content[i].Type == "text" {
			payload = &env.Content[i]
			break
		}
	}
	if payload == nil || payload.Text == "" {
		return nil, fmt.Errorf("%w: envelope has no JSON payload", model.ErrParse)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload.Text), &fields); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", model.ErrParse, err)
	}
	return fields, nil
}

func txResultFromFields(fields map[string]json.RawMessage) (TxResult, error) {
	raw, ok := fields["success"]
	if !ok {
		return TxResult{}, fmt.Errorf("%w: payload missing field %q", model.ErrParse, "success")
	}

	var result TxResult
	if err := json.Unmarshal(raw, &result.Success); err != nil {
		return TxResult{}, fmt.Errorf("%w: field %q: %v", model.ErrParse, "success", err)
	}
	if raw, ok := fields["tx_hashes"]; ok {
		if err := json.Unmarshal(raw, &result.TxHashes); err != nil {
			return TxResult{}, fmt.Errorf("%w: field %q: %v", model.ErrParse, "tx_hashes", err)
		}
	}
	if raw, ok := fields["error"]; ok {
		if err := json.Unmarshal(raw, &result.Error); err != nil {
			return TxResult{}, fmt.Errorf("%w: field %q: %v", model.ErrParse, "error", err)
		}
	}
	return result, nil
}
