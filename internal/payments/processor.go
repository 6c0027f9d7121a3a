// Package payments wraps the external payment-authorization gateway. The
// reconciliation flow may call it before committing a paid status; a
// declined or failed authorization aborts the whole update.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Hecoloko/procurement-app-sub000/config"
)

// Result is the outcome of a payment authorization attempt
type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Processor authorizes payments against an external gateway
type Processor interface {
	ProcessPayment(ctx context.Context, referenceID, token string, amount float64, metadata map[string]string) (*Result, error)
}

// GatewayClient implements Processor over the gateway's HTTP API
type GatewayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGatewayClient creates a new payment gateway client
func NewGatewayClient(cfg config.GatewayConfig) *GatewayClient {
	return &GatewayClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type chargeRequest struct {
	ReferenceID string            `json:"reference_id"`
	Token       string            `json:"token"`
	Amount      float64           `json:"amount"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ProcessPayment submits a charge to the gateway. A transport or gateway
// error is returned as err; a clean decline comes back as a Result with
// Success false.
func (c *GatewayClient) ProcessPayment(ctx context.Context, referenceID, token string, amount float64, metadata map[string]string) (*Result, error) {
	body, err := json.Marshal(chargeRequest{
		ReferenceID: referenceID,
		Token:       token,
		Amount:      amount,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal charge request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build charge request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "payment gateway request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "failed to decode gateway response")
	}

	if !result.Success {
		log.Warn().
			Str("reference_id", referenceID).
			Str("gateway_error", result.Error).
			Msg("Payment authorization declined")
	}

	return &result, nil
}
