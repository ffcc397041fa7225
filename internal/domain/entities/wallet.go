package entities

import (
	"fmt"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"
	domainerrors "payflow.backend/internal/domain/errors"
)

// describeNull is printed for unset optional values in Describe output
const describeNull = "null"

// Wallet represents one blockchain address tracked under a network.
// It always belongs to a Flow and is optionally owned by a master Account.
type Wallet struct {
	ID            int64       `json:"id"`
	Address       string      `json:"address"`
	Network       string      `json:"network"`
	Smart         bool        `json:"smart"`
	Safe          bool        `json:"safe"`
	SafeVersion   null.String `json:"safeVersion"`
	SafeSaltNonce null.String `json:"safeSaltNonce"`
	SafeDeployed  bool        `json:"safeDeployed"`
	FlowID        int64       `json:"flowId"`
	MasterID      null.Int64  `json:"masterId"`
	Version       int64       `json:"version"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`

	// Resolved on demand by the store, never persisted through the wallet
	Flow   *Flow    `json:"-"`
	Master *Account `json:"-"`
}

// NewWallet builds an unsaved wallet. The flow is attached separately with
// AttachFlow before the wallet is handed to the store.
func NewWallet(address, network string, smart, safe bool, safeVersion, safeSaltNonce null.String, safeDeployed bool) *Wallet {
	return &Wallet{
		Address:       address,
		Network:       network,
		Smart:         smart,
		Safe:          safe,
		SafeVersion:   safeVersion,
		SafeSaltNonce: safeSaltNonce,
		SafeDeployed:  safeDeployed,
	}
}

// AttachFlow points the wallet at its parent flow
func (w *Wallet) AttachFlow(flow *Flow) {
	w.Flow = flow
	if flow != nil {
		w.FlowID = flow.ID
	}
}

// Describe renders a one-line summary of the wallet. The flow must be
// resolved; a set master must be resolved too.
func (w *Wallet) Describe() (string, error) {
	if w.Flow == nil {
		return "", domainerrors.ReferenceError(fmt.Sprintf("wallet %d: flow %d not resolved", w.ID, w.FlowID))
	}

	master := describeNull
	if w.MasterID.Valid {
		if w.Master == nil {
			return "", domainerrors.ReferenceError(fmt.Sprintf("wallet %d: account %d not resolved", w.ID, w.MasterID.Int64))
		}
		master = w.Master.Address
	}

	safeVersion := describeNull
	if w.SafeVersion.Valid {
		safeVersion = w.SafeVersion.String
	}

	return "Wallet [id=" + strconv.FormatInt(w.ID, 10) +
		", address=" + w.Address +
		", network=" + w.Network +
		", smart=" + strconv.FormatBool(w.Smart) +
		", safe=" + strconv.FormatBool(w.Safe) +
		", safeVersion=" + safeVersion +
		", safeDeployed=" + strconv.FormatBool(w.SafeDeployed) +
		", flow=" + w.Flow.UUID.String() +
		", master=" + master + "]", nil
}

// RegisterWalletInput represents input for registering a wallet under a flow
type RegisterWalletInput struct {
	Address       string      `json:"address"`
	Network       string      `json:"network"`
	Smart         bool        `json:"smart"`
	Safe          bool        `json:"safe"`
	SafeVersion   null.String `json:"safeVersion"`
	SafeSaltNonce null.String `json:"safeSaltNonce"`
	SafeDeployed  bool        `json:"safeDeployed"`
}

// UpdateSafeMetadataInput represents a change of Safe contract metadata
type UpdateSafeMetadataInput struct {
	SafeVersion   null.String `json:"safeVersion"`
	SafeSaltNonce null.String `json:"safeSaltNonce"`
	SafeDeployed  bool        `json:"safeDeployed"`
}
