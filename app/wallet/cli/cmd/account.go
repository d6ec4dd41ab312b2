package cmd

import (
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/nameservice"
	"github.com/ardanlabs/gossipchain/foundation/wallet"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print account for the specific wallet",
	RunE:  accountRun,
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Print the named accounts in the key folder",
	RunE:  accountsRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(accountsCmd)
}

func accountRun(cmd *cobra.Command, args []string) error {
	privateKey, err := wallet.LoadKey(getPrivateKeyPath())
	if err != nil {
		return err
	}

	fmt.Println(wallet.Address(privateKey))
	return nil
}

func accountsRun(cmd *cobra.Command, args []string) error {
	ns, err := nameservice.New(accountPath)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	for _, account := range ns.Accounts() {
		fmt.Printf("%-20s %s\n", account.Name, account.Address.Hex())
	}

	return nil
}
