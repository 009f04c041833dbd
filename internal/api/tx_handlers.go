package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"presale-backend/internal/submit"
	"presale-backend/presaleprogram"
)

func (s *Server) quoteFor(ctx context.Context, buyer string, amount string) (*presaleprogram.Quote, error) {
	info, err := s.client.GetPresaleInfo(ctx)
	if err != nil {
		return nil, err
	}

	var user *presaleprogram.UserInfo
	if buyer != "" {
		wallet, err := solana.PublicKeyFromBase58(buyer)
		if err != nil {
			return nil, presaleprogram.ErrWalletNotConnected
		}
		if user, err = s.client.GetUserInfo(ctx, wallet); err != nil {
			// Missing record means first purchase, other failures only cost
			// the cap pre-check which the program enforces anyway.
			log.Warn().Err(err).Msg("Failed to fetch user info for quote")
			user = nil
		}
	}

	return presaleprogram.QuoteForPresale(info, user, amount)
}

// writeQuoteError maps quoter rejections onto HTTP statuses
func writeQuoteError(c *gin.Context, err error) {
	var limitErr *presaleprogram.ExceedsUserLimitError
	var phaseErr *presaleprogram.ExceedsPhaseCapacityError

	switch {
	case errors.Is(err, presaleprogram.ErrInvalidAmount),
		errors.Is(err, presaleprogram.ErrWalletNotConnected):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, presaleprogram.ErrNoActivePhase),
		errors.Is(err, presaleprogram.ErrInvalidPrice):
		fail(c, http.StatusConflict, err.Error())
	case errors.As(err, &limitErr), errors.As(err, &phaseErr):
		fail(c, http.StatusUnprocessableEntity, err.Error())
	default:
		fail(c, http.StatusBadGateway, presaleprogram.ParseProgramError(err))
	}
}

// handleQuote validates a purchase amount without building a transaction
func (s *Server) handleQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	quote, err := s.quoteFor(c.Request.Context(), req.Buyer, req.Amount)
	if err != nil {
		writeQuoteError(c, err)
		return
	}

	ok(c, newQuoteResponse(quote))
}

func newQuoteResponse(quote *presaleprogram.Quote) *QuoteResponse {
	return &QuoteResponse{
		PaymentLamports: quote.PaymentLamports,
		PaymentSOL:      presaleprogram.FormatSOL(quote.PaymentLamports),
		TokensQuoted:    quote.TokensQuoted,
		TokenBaseAmount: quote.TokenBaseAmount,
		RemainingAfter:  presaleprogram.FormatTokens(quote.RemainingAfter),
	}
}

// handleBuy re-runs the quote, then returns the unsigned buy transaction for
// wallet-side signing
func (s *Server) handleBuy(c *gin.Context) {
	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	buyer, err := solana.PublicKeyFromBase58(req.Buyer)
	if err != nil {
		fail(c, http.StatusBadRequest, presaleprogram.ErrWalletNotConnected.Error())
		return
	}

	ctx := c.Request.Context()

	quote, err := s.quoteFor(ctx, req.Buyer, req.Amount)
	if err != nil {
		writeQuoteError(c, err)
		return
	}

	unsigned, err := s.client.UnsignedBuyTx(ctx, buyer, quote.TokenBaseAmount)
	if err != nil {
		fail(c, http.StatusBadGateway, presaleprogram.ParseProgramError(err))
		return
	}

	ok(c, gin.H{
		"quote":       newQuoteResponse(quote),
		"transaction": unsigned,
	})
}

// handleClaim returns the unsigned claim transaction for one ended phase
func (s *Server) handleClaim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if req.PhaseNumber < 1 || req.PhaseNumber > presaleprogram.PhaseCount {
		fail(c, http.StatusBadRequest, "Invalid phase number")
		return
	}

	buyer, err := solana.PublicKeyFromBase58(req.Buyer)
	if err != nil {
		fail(c, http.StatusBadRequest, presaleprogram.ErrWalletNotConnected.Error())
		return
	}

	unsigned, err := s.client.UnsignedClaimTx(c.Request.Context(), buyer, req.PhaseNumber)
	if err != nil {
		fail(c, http.StatusBadGateway, presaleprogram.ParseProgramError(err))
		return
	}

	ok(c, gin.H{"transaction": unsigned})
}

// handleSend submits a wallet-signed transaction exactly once per
// idempotency key. One user action is one submission, retries need a new key.
func (s *Server) handleSend(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	action := req.Action
	if action == "" {
		action = "buy_token"
	}

	prior, err := s.guard.Begin(key)
	switch {
	case errors.Is(err, submit.ErrInFlight):
		fail(c, http.StatusConflict, "Submission with this key is already in flight")
		return
	case errors.Is(err, submit.ErrDuplicate):
		c.JSON(http.StatusOK, Response{
			Success: true,
			Message: "Duplicate submission, returning prior result",
			Data:    prior,
		})
		return
	case err != nil:
		log.Error().Err(err).Msg("Ledger check failed")
		fail(c, http.StatusInternalServerError, "Submission guard unavailable")
		return
	}

	result, sendErr := s.client.SendSignedTransaction(c.Request.Context(), req.SignedTransaction)
	if sendErr != nil {
		record := &submit.Record{
			IdempotencyKey:  key,
			Action:          action,
			Buyer:           req.Buyer,
			LamportsPaid:    req.LamportsPaid,
			TokenBaseAmount: req.TokenBaseAmount,
			Status:          string(presaleprogram.StatusFailed),
			ErrorMessage:    presaleprogram.ParseProgramError(sendErr),
		}
		if err := s.guard.Complete(record); err != nil {
			log.Error().Err(err).Msg("Failed to record failed submission")
		}

		c.JSON(http.StatusBadGateway, Response{
			Success:     false,
			Message:     record.ErrorMessage,
			ErrorCode:   presaleprogram.ExtractErrorCode(sendErr),
			ProgramLogs: presaleprogram.ExtractLogMessages(sendErr),
		})
		return
	}

	record := &submit.Record{
		IdempotencyKey:  key,
		Action:          action,
		Buyer:           req.Buyer,
		Signature:       result.Signature,
		LamportsPaid:    req.LamportsPaid,
		TokenBaseAmount: req.TokenBaseAmount,
		Status:          string(result.Status),
	}
	if err := s.guard.Complete(record); err != nil {
		log.Error().Err(err).Msg("Failed to record submission")
	}

	ok(c, gin.H{
		"idempotency_key": key,
		"result":          result,
	})
}

// handleTransactionStatus checks a submitted transaction via RPC
func (s *Server) handleTransactionStatus(c *gin.Context) {
	result, err := s.client.GetTransactionStatus(c.Request.Context(), c.Param("signature"))
	if err != nil {
		fail(c, http.StatusBadRequest, presaleprogram.ParseProgramError(err))
		return
	}

	ok(c, result)
}
