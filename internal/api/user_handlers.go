package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"presale-backend/presaleprogram"
)

// handleUser returns a buyer's dashboard snapshot. A wallet with no record
// yet gets the zero snapshot, not an error.
func (s *Server) handleUser(c *gin.Context) {
	wallet, valid := parseWalletParam(c)
	if !valid {
		return
	}

	ctx := c.Request.Context()

	maxPerAddress := uint64(presaleprogram.MaxPerAddressTokens) * presaleprogram.DecimalsMultiplier
	if info, err := s.client.GetPresaleInfo(ctx); err == nil {
		maxPerAddress = info.MaxTokenAmountPerAddress
	}

	user, err := s.client.GetUserInfo(ctx, wallet)
	if err != nil {
		log.Warn().Err(err).Str("wallet", wallet.String()).Msg("Failed to fetch user info")
		fail(c, http.StatusBadGateway, presaleprogram.ParseProgramError(err))
		return
	}

	ok(c, newUserSnapshot(wallet.String(), user, maxPerAddress))
}

// handleUserBalance returns the wallet's lamport balance. Fetch failures
// answer with zero display values instead of breaking the page.
func (s *Server) handleUserBalance(c *gin.Context) {
	wallet, valid := parseWalletParam(c)
	if !valid {
		return
	}

	lamports, err := s.client.GetWalletBalance(c.Request.Context(), wallet)
	if err != nil {
		log.Warn().Err(err).Str("wallet", wallet.String()).Msg("Failed to fetch wallet balance")
		lamports = 0
	}

	ok(c, gin.H{
		"lamports": lamports,
		"sol":      presaleprogram.FormatSOL(lamports),
	})
}

// handleUserHistory reads the buyer's submissions back from the ledger
func (s *Server) handleUserHistory(c *gin.Context) {
	wallet, valid := parseWalletParam(c)
	if !valid {
		return
	}

	records, err := s.guard.History(wallet.String(), 50)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read submission history")
		fail(c, http.StatusInternalServerError, "Failed to read history")
		return
	}

	ok(c, records)
}
