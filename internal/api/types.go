package api

import (
	"presale-backend/presaleprogram"
)

// Response - standard envelope for every endpoint
type Response struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	ErrorCode   *int        `json:"error_code,omitempty"`
	ProgramLogs []string    `json:"program_logs,omitempty"`
}

// PhaseSummary - one phase the way the sale page renders it
type PhaseSummary struct {
	PhaseNumber     uint8  `json:"phase_number"`
	Status          string `json:"status"`
	PriceSOL        string `json:"price_sol"`
	Allocation      string `json:"allocation"`
	TokensSold      string `json:"tokens_sold"`
	TokensAvailable string `json:"tokens_available"`
}

// PresaleSnapshot - decoded presale state plus display fields
type PresaleSnapshot struct {
	TokenMint       string         `json:"token_mint"`
	Authority       string         `json:"authority"`
	CurrentPhase    uint8          `json:"current_phase"`
	TotalSupply     string         `json:"total_supply"`
	RemainingTokens string         `json:"remaining_tokens"`
	TotalSold       string         `json:"total_sold"`
	TotalDeposited  string         `json:"total_deposited"`
	MaxPerAddress   string         `json:"max_per_address"`
	IsInitialized   bool           `json:"is_initialized"`
	IsActive        bool           `json:"is_active"`
	IsEnded         bool           `json:"is_ended"`
	IsPaused        bool           `json:"is_paused"`
	DisplayEndTime  int64          `json:"display_end_time"`
	Phases          []PhaseSummary `json:"phases"`
}

// UserSnapshot - one buyer's dashboard
type UserSnapshot struct {
	Wallet             string   `json:"wallet"`
	TokensBought       string   `json:"tokens_bought"`
	RemainingAllowance string   `json:"remaining_allowance"`
	TotalPaidSOL       string   `json:"total_paid_sol"`
	LastPurchaseTime   int64    `json:"last_purchase_time"`
	PhasePurchases     []string `json:"phase_purchases"`
	PhaseClaims        []bool   `json:"phase_claims"`
}

// QuoteRequest - purchase validation input
type QuoteRequest struct {
	Buyer  string `json:"buyer"`
	Amount string `json:"amount" binding:"required"`
}

// QuoteResponse - accepted quote in both base and display units
type QuoteResponse struct {
	PaymentLamports uint64 `json:"payment_lamports"`
	PaymentSOL      string `json:"payment_sol"`
	TokensQuoted    uint64 `json:"tokens_quoted"`
	TokenBaseAmount uint64 `json:"token_base_amount"`
	RemainingAfter  string `json:"remaining_after"`
}

// BuyRequest - quote + unsigned buy transaction
type BuyRequest struct {
	Buyer  string `json:"buyer" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// ClaimRequest - unsigned claim transaction for one ended phase
type ClaimRequest struct {
	Buyer       string `json:"buyer" binding:"required"`
	PhaseNumber uint8  `json:"phase_number" binding:"required"`
}

// SendRequest - signed transaction submission. The idempotency key burns on
// the first terminal outcome; omitted keys get a server-generated one.
type SendRequest struct {
	SignedTransaction string `json:"signed_transaction" binding:"required"`
	IdempotencyKey    string `json:"idempotency_key"`
	Action            string `json:"action"`
	Buyer             string `json:"buyer"`
	LamportsPaid      uint64 `json:"lamports_paid"`
	TokenBaseAmount   uint64 `json:"token_base_amount"`
}

// LoginRequest - admin session request
type LoginRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

// CreatePresaleRequest - admin: initialize the presale
type CreatePresaleRequest struct {
	MaxPerAddressTokens uint64 `json:"max_per_address_tokens" binding:"required"`
	DisplayEndTime      int64  `json:"display_end_time" binding:"required"`
}

// DepositRequest - admin: fund the presale token account
type DepositRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// ResumeRequest - admin: reopen the sale with a new end time
type ResumeRequest struct {
	DisplayEndTime int64 `json:"display_end_time" binding:"required"`
}

func newPresaleSnapshot(info *presaleprogram.PresaleInfo) *PresaleSnapshot {
	snapshot := &PresaleSnapshot{
		TokenMint:       info.TokenMintAddress.String(),
		Authority:       info.Authority.String(),
		CurrentPhase:    info.CurrentPhase,
		TotalSupply:     presaleprogram.FormatTokens(info.TotalTokenSupply),
		RemainingTokens: presaleprogram.FormatTokens(info.RemainingTokens),
		TotalSold:       presaleprogram.FormatTokens(info.TotalTokensSold),
		TotalDeposited:  presaleprogram.FormatTokens(info.TotalTokensDeposited),
		MaxPerAddress:   presaleprogram.FormatTokens(info.MaxTokenAmountPerAddress),
		IsInitialized:   info.IsInitialized,
		IsActive:        info.IsActive,
		IsEnded:         info.IsEnded,
		IsPaused:        info.IsPaused,
		DisplayEndTime:  info.DisplayEndTime,
		Phases:          make([]PhaseSummary, 0, presaleprogram.PhaseCount),
	}

	for _, phase := range info.Phases {
		snapshot.Phases = append(snapshot.Phases, PhaseSummary{
			PhaseNumber:     phase.PhaseNumber,
			Status:          phase.Status.String(),
			PriceSOL:        presaleprogram.FormatSOL(phase.Price),
			Allocation:      presaleprogram.FormatTokens(phase.Amount),
			TokensSold:      presaleprogram.FormatTokens(phase.TokensSold),
			TokensAvailable: presaleprogram.FormatTokens(phase.TokensAvailable),
		})
	}

	return snapshot
}

func newUserSnapshot(wallet string, user *presaleprogram.UserInfo, maxPerAddress uint64) *UserSnapshot {
	snapshot := &UserSnapshot{
		Wallet:             wallet,
		TokensBought:       "0",
		RemainingAllowance: presaleprogram.FormatTokens(maxPerAddress),
		TotalPaidSOL:       "0",
		PhasePurchases:     make([]string, presaleprogram.PhaseCount),
		PhaseClaims:        make([]bool, presaleprogram.PhaseCount),
	}
	for i := range snapshot.PhasePurchases {
		snapshot.PhasePurchases[i] = "0"
	}
	if user == nil {
		return snapshot
	}

	remaining := uint64(0)
	if maxPerAddress > user.TokensBought {
		remaining = maxPerAddress - user.TokensBought
	}

	snapshot.TokensBought = presaleprogram.FormatTokens(user.TokensBought)
	snapshot.RemainingAllowance = presaleprogram.FormatTokens(remaining)
	snapshot.TotalPaidSOL = presaleprogram.FormatSOL(user.TotalPaid)
	snapshot.LastPurchaseTime = user.LastPurchaseTime
	for i, purchased := range user.PhasePurchases {
		snapshot.PhasePurchases[i] = presaleprogram.FormatTokens(purchased)
	}
	for i, claimed := range user.PhaseClaims {
		snapshot.PhaseClaims[i] = claimed
	}

	return snapshot
}
