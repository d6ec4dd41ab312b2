// Package cmd contains wallet app
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/gossipchain/foundation/wallet"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	address     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Name of the private key file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&address, "address", "d", "", "Address to query instead of the wallet account.")
}

var rootCmd = &cobra.Command{
	Use:          "wallet",
	Short:        "Simple Ethereum wallet",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	name := accountName
	if !strings.HasSuffix(name, wallet.KeyExtension) {
		name += wallet.KeyExtension
	}

	return filepath.Join(accountPath, name)
}
