package presaleprogram

import (
	"errors"
	"fmt"
)

// Local validation failures. These are raised before any network call and
// are never submitted on-chain.
var (
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrInvalidPrice       = errors.New("phase price is not set")
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrNoActivePhase      = errors.New("no active presale phase")
)

// ExceedsUserLimitError - the requested quantity breaches the wallet's
// lifetime cap. Carries the exact remaining allowance in both units.
type ExceedsUserLimitError struct {
	RemainingTokenBase uint64 // token base units still purchasable
	RemainingLamports  uint64 // same allowance priced in lamports
}

func (e *ExceedsUserLimitError) Error() string {
	return fmt.Sprintf("cannot exceed your maximum limit of %s SOL (%s tokens)",
		FormatSOL(e.RemainingLamports), FormatBaseUnits(e.RemainingTokenBase, TokenDecimals))
}

// ExceedsPhaseCapacityError - the requested quantity breaches what is left in
// the current phase. A distinct ceiling from the per-user cap; the lower of
// the two governs what can be submitted.
type ExceedsPhaseCapacityError struct {
	PhaseNumber        uint8
	AvailableTokenBase uint64
	AvailableLamports  uint64
}

func (e *ExceedsPhaseCapacityError) Error() string {
	return fmt.Sprintf("only %s tokens (~%s SOL) are available to buy in phase %d",
		FormatBaseUnits(e.AvailableTokenBase, TokenDecimals), FormatSOL(e.AvailableLamports), e.PhaseNumber)
}

// QuoteParams - inputs to a purchase quote, all in integer base units except
// the user-entered payment amount.
type QuoteParams struct {
	PaymentAmount    string // decimal SOL as entered
	Price            uint64 // lamports per whole token
	PhaseNumber      uint8
	PhaseAvailable   uint64 // token base units left in the phase
	UserTokensBought uint64 // lifetime token base units bought by this wallet
	WalletCap        uint64 // lifetime cap, token base units
}

// Quote - an accepted purchase, ready to package into a buy_token call.
// Ephemeral: recomputed on every input change, never persisted.
type Quote struct {
	PaymentLamports uint64 `json:"payment_lamports"`
	TokensQuoted    uint64 `json:"tokens_quoted"`     // whole tokens
	TokenBaseAmount uint64 `json:"token_base_amount"` // instruction argument
	RemainingAfter  uint64 `json:"remaining_after"`   // wallet allowance left, base units
}

// ComputeQuote converts a user-entered payment amount into a token quote and
// validates it against the per-user and per-phase ceilings. The token
// quantity is truncated toward zero at the smallest representable unit; the
// quote never promises more tokens than the payment strictly buys.
func ComputeQuote(p QuoteParams) (*Quote, error) {
	paymentLamports, err := ParseDecimalToBase(p.PaymentAmount, TokenDecimals)
	if err != nil || paymentLamports == 0 {
		return nil, ErrInvalidAmount
	}
	if p.Price == 0 {
		return nil, ErrInvalidPrice
	}

	tokensWhole := paymentLamports / p.Price
	if tokensWhole > ^uint64(0)/DecimalsMultiplier {
		return nil, ErrInvalidAmount
	}
	quotedBase := tokensWhole * DecimalsMultiplier

	var remaining uint64
	if p.WalletCap > p.UserTokensBought {
		remaining = p.WalletCap - p.UserTokensBought
	}
	if quotedBase > remaining {
		return nil, &ExceedsUserLimitError{
			RemainingTokenBase: remaining,
			RemainingLamports:  LamportsForTokenBase(remaining, p.Price),
		}
	}

	if quotedBase > p.PhaseAvailable {
		return nil, &ExceedsPhaseCapacityError{
			PhaseNumber:        p.PhaseNumber,
			AvailableTokenBase: p.PhaseAvailable,
			AvailableLamports:  LamportsForTokenBase(p.PhaseAvailable, p.Price),
		}
	}

	return &Quote{
		PaymentLamports: paymentLamports,
		TokensQuoted:    tokensWhole,
		TokenBaseAmount: quotedBase,
		RemainingAfter:  remaining - quotedBase,
	}, nil
}

// QuoteForPresale runs ComputeQuote against live presale and user snapshots.
// A nil user record means the wallet has not bought anything yet.
func QuoteForPresale(presale *PresaleInfo, user *UserInfo, paymentAmount string) (*Quote, error) {
	phase := presale.ActivePhase()
	if phase == nil {
		return nil, ErrNoActivePhase
	}

	var bought uint64
	if user != nil {
		bought = user.TokensBought
	}

	return ComputeQuote(QuoteParams{
		PaymentAmount:    paymentAmount,
		Price:            phase.Price,
		PhaseNumber:      phase.PhaseNumber,
		PhaseAvailable:   phase.TokensAvailable,
		UserTokensBought: bought,
		WalletCap:        presale.MaxTokenAmountPerAddress,
	})
}
