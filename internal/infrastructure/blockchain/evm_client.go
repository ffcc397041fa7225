package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	dialEVMClient    = ethclient.Dial
	getClientChainID = func(client *ethclient.Client, ctx context.Context) (*big.Int, error) {
		return client.ChainID(ctx)
	}
	closeDialedClient = func(client *ethclient.Client) {
		client.Close()
	}
)

// CodeAtFunc returns the contract bytecode stored at an address
type CodeAtFunc func(ctx context.Context, address common.Address) ([]byte, error)

// EVMClient provides EVM blockchain interaction
type EVMClient struct {
	client  *ethclient.Client
	chainID *big.Int
	// testCodeAt allows deterministic unit tests without network sockets.
	testCodeAt CodeAtFunc
}

// NewEVMClient dials rpcURL and reads the chain ID once
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := getClientChainID(client, context.Background())
	if err != nil {
		closeDialedClient(client)
		return nil, err
	}

	return &EVMClient{
		client:  client,
		chainID: chainID,
	}, nil
}

// NewEVMClientWithCodeAt creates an EVM client that uses an injected code lookup.
// This is intended for unit tests where RPC sockets are unavailable.
func NewEVMClientWithCodeAt(chainID *big.Int, codeAt CodeAtFunc) *EVMClient {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &EVMClient{
		chainID:    chainID,
		testCodeAt: codeAt,
	}
}

// ChainID returns the chain ID
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// GetCode returns the bytecode at address on the latest block
func (c *EVMClient) GetCode(ctx context.Context, address string) ([]byte, error) {
	addr := common.HexToAddress(address)
	if c.testCodeAt != nil {
		return c.testCodeAt(ctx, addr)
	}
	return c.client.CodeAt(ctx, addr, nil)
}

// IsContractDeployed reports whether any bytecode lives at address
func (c *EVMClient) IsContractDeployed(ctx context.Context, address string) (bool, error) {
	code, err := c.GetCode(ctx, address)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

// Close closes the client connection
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
