package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// RPC provides access to an Ethereum JSON-RPC node.
type RPC struct {
	client *ethclient.Client
}

// Network represents the current view of the network from the node.
type Network struct {
	ChainID     *big.Int
	BlockNumber uint64
	GasPrice    *big.Int
}

// Estimate represents the gas required to submit a transfer.
type Estimate struct {
	Gas      uint64
	GasPrice *big.Int
	Cost     *big.Int
}

// Dial connects to the JSON-RPC node at the specified url.
func Dial(ctx context.Context, url string) (*RPC, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	return &RPC{client: client}, nil
}

// Close releases the connection to the node.
func (r *RPC) Close() {
	r.client.Close()
}

// Network returns the chain id, latest block number and suggested gas price.
func (r *RPC) Network(ctx context.Context) (Network, error) {
	chainID, err := r.client.ChainID(ctx)
	if err != nil {
		return Network{}, fmt.Errorf("chain id: %w", err)
	}

	blockNumber, err := r.client.BlockNumber(ctx)
	if err != nil {
		return Network{}, fmt.Errorf("block number: %w", err)
	}

	gasPrice, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return Network{}, fmt.Errorf("gas price: %w", err)
	}

	nw := Network{
		ChainID:     chainID,
		BlockNumber: blockNumber,
		GasPrice:    gasPrice,
	}

	return nw, nil
}

// Balance returns the balance in wei for the address at the latest block.
func (r *RPC) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address %q", address)
	}

	balance, err := r.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}

	return balance, nil
}

// EstimateTransfer estimates the gas and cost in wei of sending value from
// one address to another.
func (r *RPC) EstimateTransfer(ctx context.Context, from string, to string, value *big.Int) (Estimate, error) {
	for _, addr := range []string{from, to} {
		if !common.IsHexAddress(addr) {
			return Estimate{}, fmt.Errorf("invalid address %q", addr)
		}
	}

	toAddr := common.HexToAddress(to)
	msg := ethereum.CallMsg{
		From:  common.HexToAddress(from),
		To:    &toAddr,
		Value: value,
	}

	gas, err := r.client.EstimateGas(ctx, msg)
	if err != nil {
		return Estimate{}, fmt.Errorf("estimate gas: %w", err)
	}

	gasPrice, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		return Estimate{}, fmt.Errorf("gas price: %w", err)
	}

	est := Estimate{
		Gas:      gas,
		GasPrice: gasPrice,
		Cost:     new(big.Int).Mul(new(big.Int).SetUint64(gas), gasPrice),
	}

	return est, nil
}
