package cmd

import (
	"fmt"

	"github.com/ardanlabs/gossipchain/foundation/wallet"
	"github.com/spf13/cobra"
)

var (
	signature string
	signer    string
)

var signCmd = &cobra.Command{
	Use:   "sign <message>",
	Short: "Sign a message with the wallet key",
	Args:  cobra.ExactArgs(1),
	RunE:  signRun,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <message>",
	Short: "Verify a message signature",
	Args:  cobra.ExactArgs(1),
	RunE:  verifyRun,
}

func init() {
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&signature, "signature", "s", "", "Hex signature to verify.")
	verifyCmd.Flags().StringVarP(&signer, "signer", "n", "", "Address expected to have signed.")
	verifyCmd.MarkFlagRequired("signature")
}

func signRun(cmd *cobra.Command, args []string) error {
	privateKey, err := wallet.LoadKey(getPrivateKeyPath())
	if err != nil {
		return err
	}

	sig, err := wallet.SignMessage([]byte(args[0]), privateKey)
	if err != nil {
		return err
	}

	fmt.Println("Address:", wallet.Address(privateKey))
	fmt.Println("Signature:", sig)
	return nil
}

func verifyRun(cmd *cobra.Command, args []string) error {
	recovered, err := wallet.RecoverAddress([]byte(args[0]), signature)
	if err != nil {
		return err
	}
	fmt.Println("Signer:", recovered)

	if signer == "" {
		return nil
	}

	valid, err := wallet.VerifyMessage([]byte(args[0]), signature, signer)
	if err != nil {
		return err
	}
	fmt.Println("Valid:", valid)

	if !valid {
		return fmt.Errorf("signature was not produced by %s", signer)
	}

	return nil
}
