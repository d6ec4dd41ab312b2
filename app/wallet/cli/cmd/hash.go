package cmd

import (
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/wallet"
	"github.com/spf13/cobra"
)

var algorithm string

var hashCmd = &cobra.Command{
	Use:   "hash <text>",
	Short: "Hash text with sha256 or keccak256",
	Args:  cobra.ExactArgs(1),
	RunE:  hashRun,
}

func init() {
	rootCmd.AddCommand(hashCmd)
	hashCmd.Flags().StringVarP(&algorithm, "algorithm", "g", "keccak256", "Hash algorithm: sha256 or keccak256.")
}

func hashRun(cmd *cobra.Command, args []string) error {
	switch algorithm {
	case "sha256":
		fmt.Println(wallet.SHA256([]byte(args[0])))
	case "keccak256":
		fmt.Println(wallet.Keccak256([]byte(args[0])))
	default:
		return fmt.Errorf("unknown algorithm %q", algorithm)
	}

	return nil
}
