package cmd

import (
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/wallet"
	"github.com/spf13/cobra"
)

var showKey bool

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().BoolVarP(&showKey, "show-key", "s", false, "Print the private key.")
}

func generateRun(cmd *cobra.Command, args []string) error {
	privateKey, err := wallet.GenerateKey(getPrivateKeyPath())
	if err != nil {
		return err
	}

	fmt.Println("Wallet created successfully!")
	fmt.Println("Address:", wallet.Address(privateKey))
	if showKey {
		fmt.Println("Private Key:", wallet.PrivateKeyHex(privateKey))
	}

	return nil
}
