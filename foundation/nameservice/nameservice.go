// Package nameservice reads a folder of private key files and creates a name
// service lookup for the wallet accounts.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ardanlabs/gossipchain/foundation/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// Account represents a named wallet account.
type Account struct {
	Name    string
	Address common.Address
}

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[common.Address]string
}

// New constructs a name service with the accounts from the key folder. The
// name of an account is its key file name without the extension.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[common.Address]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != wallet.KeyExtension {
			return nil
		}

		privateKey, err := wallet.LoadKey(fileName)
		if err != nil {
			return err
		}

		address := common.HexToAddress(wallet.Address(privateKey))
		ns.accounts[address] = strings.TrimSuffix(path.Base(fileName), wallet.KeyExtension)

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address.
func (ns *NameService) Lookup(address common.Address) string {
	name, exists := ns.accounts[address]
	if !exists {
		return address.Hex()
	}
	return name
}

// Accounts returns the named accounts sorted by name.
func (ns *NameService) Accounts() []Account {
	accounts := make([]Account, 0, len(ns.accounts))
	for address, name := range ns.accounts {
		accounts = append(accounts, Account{Name: name, Address: address})
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})

	return accounts
}
