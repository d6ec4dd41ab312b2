package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidSignature is returned when a signature can't be decoded or
// doesn't carry a valid recovery id.
var ErrInvalidSignature = errors.New("invalid signature")

// ethID is added to the recovery id of a signature. Wallets that implement
// personal_sign expect the value 27.
const ethID = 27

// SignMessage signs the message using the Ethereum signed message format
// and returns the 65 byte [R|S|V] signature as a hex string.
func SignMessage(message []byte, privateKey *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), privateKey)
	if err != nil {
		return "", fmt.Errorf("signing message: %w", err)
	}

	sig[crypto.RecoveryIDOffset] += ethID

	return hexutil.Encode(sig), nil
}

// RecoverAddress extracts the address of the account that signed the
// message.
func RecoverAddress(message []byte, sigHex string) (string, error) {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}

	// Convert the recovery id back into the 0 or 1 crypto expects.
	if sig[crypto.RecoveryIDOffset] >= ethID {
		sig[crypto.RecoveryIDOffset] -= ethID
	}
	if v := sig[crypto.RecoveryIDOffset]; v != 0 && v != 1 {
		return "", fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, v)
	}

	publicKey, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*publicKey).Hex(), nil
}

// VerifyMessage reports whether the signature over the message was produced
// by the specified address.
func VerifyMessage(message []byte, sigHex string, address string) (bool, error) {
	if !common.IsHexAddress(address) {
		return false, fmt.Errorf("invalid address %q", address)
	}

	signer, err := RecoverAddress(message, sigHex)
	if err != nil {
		return false, err
	}

	return common.HexToAddress(signer) == common.HexToAddress(address), nil
}
