package entities

import (
	"strconv"
	"strings"
)

// Network is a chain a wallet can be registered on
type Network struct {
	Name         string `json:"name"`
	ChainID      int64  `json:"chainId"`
	ShortName    string `json:"shortName"` // EIP-3770 prefix, empty if none is registered
	Testnet      bool   `json:"testnet"`
	AACompatible bool   `json:"aaCompatible"`
}

var supportedNetworks = []Network{
	{Name: "homestead", ChainID: 1, ShortName: "eth"},
	{Name: "optimism", ChainID: 10, ShortName: "oeth", AACompatible: true},
	{Name: "base", ChainID: 8453, ShortName: "base", AACompatible: true},
	{Name: "optimism-goerli", ChainID: 420, ShortName: "ogor", Testnet: true, AACompatible: true},
	{Name: "base-goerli", ChainID: 84531, ShortName: "base-gor", Testnet: true, AACompatible: true},
	{Name: "arbitrum-goerli", ChainID: 421613, ShortName: "arb-goerli", Testnet: true},
	{Name: "mode-testnet", ChainID: 919, Testnet: true, AACompatible: true},
	{Name: "zksync-era-testnet", ChainID: 280, ShortName: "zksync-goerli", Testnet: true, AACompatible: true},
	{Name: "linea-testnet", ChainID: 59140, ShortName: "linea-testnet", Testnet: true, AACompatible: true},
	{Name: "zora-testnet", ChainID: 999, Testnet: true, AACompatible: true},
}

// LookupNetwork finds a supported network by name, case-insensitively
func LookupNetwork(name string) (Network, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range supportedNetworks {
		if n.Name == name {
			return n, true
		}
	}
	return Network{}, false
}

// SupportedNetworks returns a copy of the network registry
func SupportedNetworks() []Network {
	out := make([]Network, len(supportedNetworks))
	copy(out, supportedNetworks)
	return out
}

// GetCAIP2ID returns the CAIP-2 formatted chain ID
func (n Network) GetCAIP2ID() string {
	return "eip155:" + strconv.FormatInt(n.ChainID, 10)
}

// PrefixedAddress formats address as an EIP-3770 chain-specific address.
// Networks without a registered short name fall back to their name.
func (n Network) PrefixedAddress(address string) string {
	prefix := n.ShortName
	if prefix == "" {
		prefix = n.Name
	}
	return prefix + ":" + address
}
