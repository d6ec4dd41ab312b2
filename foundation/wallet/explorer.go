package wallet

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
)

// Explorer queries an Etherscan style block explorer API.
type Explorer struct {
	client *resty.Client
	apiKey string
}

// explorerResponse is the envelope every explorer response comes in. On
// failure the result carries the error text.
type explorerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// NewExplorer constructs an explorer client for the api at baseURL.
func NewExplorer(baseURL string, apiKey string, timeout time.Duration) *Explorer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Explorer{
		client: client,
		apiKey: apiKey,
	}
}

// Balance returns the balance in wei for the address as reported by the
// explorer.
func (e *Explorer) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address %q", address)
	}

	var result explorerResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"module":  "account",
			"action":  "balance",
			"address": address,
			"tag":     "latest",
			"apikey":  e.apiKey,
		}).
		SetResult(&result).
		Get("/api")
	if err != nil {
		return nil, fmt.Errorf("explorer request: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("explorer request: status %d", resp.StatusCode())
	}

	if result.Status != "1" {
		return nil, fmt.Errorf("explorer: %s: %s", result.Message, result.Result)
	}

	balance, ok := new(big.Int).SetString(result.Result, 10)
	if !ok {
		return nil, fmt.Errorf("explorer: invalid balance %q", result.Result)
	}

	return balance, nil
}
