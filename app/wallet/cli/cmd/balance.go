package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/gossipchain/foundation/wallet"
	"github.com/spf13/cobra"
)

var (
	explorerURL string
	apiKey      string
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance from the block explorer.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&explorerURL, "explorer-url", "e", "https://api.etherscan.io", "Url of the block explorer api.")
	balanceCmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "Block explorer api key.")
}

func balanceRun(cmd *cobra.Command, args []string) error {
	account, err := resolveAddress()
	if err != nil {
		return err
	}
	fmt.Println("For Account:", account)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	explorer := wallet.NewExplorer(explorerURL, apiKey, 10*time.Second)
	balance, err := explorer.Balance(ctx, account)
	if err != nil {
		return err
	}

	ether, err := wallet.FromWei(balance, "ether")
	if err != nil {
		return err
	}

	fmt.Println("Balance:", ether, "ether")
	return nil
}

// resolveAddress returns the address flag when set, otherwise the address of
// the wallet account.
func resolveAddress() (string, error) {
	if address != "" {
		return address, nil
	}

	privateKey, err := wallet.LoadKey(getPrivateKeyPath())
	if err != nil {
		return "", err
	}

	return wallet.Address(privateKey), nil
}
