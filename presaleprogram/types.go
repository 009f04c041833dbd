package presaleprogram

import (
	"github.com/gagliardetto/solana-go"
)

// PhaseStatus - lifecycle state of a presale phase
type PhaseStatus uint8

const (
	PhaseUpcoming PhaseStatus = 0
	PhaseActive   PhaseStatus = 1
	PhaseEnded    PhaseStatus = 2
)

func (s PhaseStatus) String() string {
	switch s {
	case PhaseUpcoming:
		return "upcoming"
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Phase - one pricing/allocation tier of the presale
type Phase struct {
	PhaseNumber     uint8       `json:"phase_number"`
	Amount          uint64      `json:"amount"`
	Price           uint64      `json:"price"` // lamports per whole token
	Percentage      uint8       `json:"percentage"`
	TokensSold      uint64      `json:"tokens_sold"`
	TokensAvailable uint64      `json:"tokens_available"`
	Status          PhaseStatus `json:"status"`
	Softcap         uint64      `json:"softcap"`
	Hardcap         uint64      `json:"hardcap"`
}

// PresaleInfo - main presale account structure
type PresaleInfo struct {
	TokenMintAddress         solana.PublicKey  `json:"token_mint_address"`
	TotalTokenSupply         uint64            `json:"total_token_supply"`
	RemainingTokens          uint64            `json:"remaining_tokens"`
	CurrentPhase             uint8             `json:"current_phase"` // 1-based
	Phases                   [PhaseCount]Phase `json:"phases"`
	TotalTokensSold          uint64            `json:"total_tokens_sold"`
	TotalTokensDeposited     uint64            `json:"total_tokens_deposited"`
	MaxTokenAmountPerAddress uint64            `json:"max_token_amount_per_address"`
	Authority                solana.PublicKey  `json:"authority"`
	IsInitialized            bool              `json:"is_initialized"`
	IsActive                 bool              `json:"is_active"`
	IsEnded                  bool              `json:"is_ended"`
	IsPaused                 bool              `json:"is_paused"`
	DisplayEndTime           int64             `json:"display_end_time"` // unix seconds
}

// ActivePhase returns the current phase record, or nil if the index is out of range.
func (p *PresaleInfo) ActivePhase() *Phase {
	if p.CurrentPhase < 1 || int(p.CurrentPhase) > PhaseCount {
		return nil
	}
	return &p.Phases[p.CurrentPhase-1]
}

// UserInfo - per-wallet purchase record
type UserInfo struct {
	TokensBought     uint64             `json:"tokens_bought"`
	PhasePurchases   [PhaseCount]uint64 `json:"phase_purchases"`
	LastPurchaseTime int64              `json:"last_purchase_time"`
	PhaseClaims      [PhaseCount]bool   `json:"phase_claims"`
	Wallet           solana.PublicKey   `json:"wallet"`
	TotalPaid        uint64             `json:"total_paid"`
}

// ResolvedAccounts - every program-controlled account a presale operation
// touches, derived from a single presale address. The presale address is
// derived exactly once and threaded into the dependent derivations; the
// dependent addresses in this struct are guaranteed consistent with it.
type ResolvedAccounts struct {
	Presale     solana.PublicKey `json:"presale"`
	PresaleBump uint8            `json:"presale_bump"`
	Vault       solana.PublicKey `json:"vault"`
	VaultBump   uint8            `json:"vault_bump"`
	UserInfo    solana.PublicKey `json:"user_info"`
	BuyerATA    solana.PublicKey `json:"buyer_token_account"`
	PresaleATA  solana.PublicKey `json:"presale_token_account"`
}

// UnsignedTransaction - base64 transaction handed to the wallet for signing
type UnsignedTransaction struct {
	Transaction     string `json:"transaction"` // base64 encoded unsigned tx
	RecentBlockhash string `json:"recent_blockhash"`
	ExpiresAt       int64  `json:"expires_at"` // blockhash valid ~60s
}

// TransactionStatus - status of a submitted transaction
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusFinalized TransactionStatus = "finalized"
	StatusFailed    TransactionStatus = "failed"
)

// TransactionResult - result of a signed-transaction submission
type TransactionResult struct {
	Signature   string            `json:"signature"`
	Status      TransactionStatus `json:"status"`
	Error       *string           `json:"error,omitempty"`
	ExplorerURL string            `json:"explorer_url"`
}
