package cmd

import (
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/wallet"
	"github.com/spf13/cobra"
)

var (
	fromUnit string
	toUnit   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount>",
	Short: "Convert an amount between wei, gwei and ether",
	Args:  cobra.ExactArgs(1),
	RunE:  convertRun,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&fromUnit, "from", "f", "ether", "Unit of the amount.")
	convertCmd.Flags().StringVarP(&toUnit, "to", "t", "wei", "Unit to convert into.")
}

func convertRun(cmd *cobra.Command, args []string) error {
	amount, err := wallet.Convert(args[0], fromUnit, toUnit)
	if err != nil {
		return err
	}

	fmt.Println(amount, toUnit)
	return nil
}
