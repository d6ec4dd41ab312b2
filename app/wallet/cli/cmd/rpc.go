package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/wallet"
	"github.com/spf13/cobra"
)

var (
	rpcURL string
	to     string
	value  string
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Print the network status and your balance from a JSON-RPC node.",
	RunE:  rpcRun,
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the gas cost of sending ether.",
	RunE:  estimateRun,
}

func init() {
	rootCmd.AddCommand(rpcCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.PersistentFlags().StringVarP(&rpcURL, "rpc-url", "r", "http://localhost:8545", "Url of the JSON-RPC node.")
	estimateCmd.Flags().StringVarP(&to, "to", "t", "", "Address to send to.")
	estimateCmd.Flags().StringVarP(&value, "value", "v", "0", "Amount of ether to send.")
	estimateCmd.MarkFlagRequired("to")
}

func rpcRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	rpc, err := wallet.Dial(ctx, rpcURL)
	if err != nil {
		return err
	}
	defer rpc.Close()

	nw, err := rpc.Network(ctx)
	if err != nil {
		return err
	}

	gwei, err := wallet.FromWei(nw.GasPrice, "gwei")
	if err != nil {
		return err
	}

	fmt.Println("Chain ID:", nw.ChainID)
	fmt.Println("Latest Block:", nw.BlockNumber)
	fmt.Println("Gas Price:", gwei, "gwei")

	// Without an address or a wallet key there is no balance to show.
	account, err := resolveAddress()
	if err != nil {
		return nil
	}

	balance, err := rpc.Balance(ctx, account)
	if err != nil {
		return err
	}

	ether, err := wallet.FromWei(balance, "ether")
	if err != nil {
		return err
	}

	fmt.Println("Account:", account)
	fmt.Println("Balance:", ether, "ether")
	return nil
}

func estimateRun(cmd *cobra.Command, args []string) error {
	wei, err := wallet.ToWei(value, "ether")
	if err != nil {
		return err
	}

	account, err := resolveAddress()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	rpc, err := wallet.Dial(ctx, rpcURL)
	if err != nil {
		return err
	}
	defer rpc.Close()

	est, err := rpc.EstimateTransfer(ctx, account, to, wei)
	if err != nil {
		return err
	}

	cost, err := wallet.FromWei(est.Cost, "ether")
	if err != nil {
		return err
	}

	fmt.Println("Gas:", est.Gas)
	fmt.Println("Cost:", cost, "ether")
	return nil
}
