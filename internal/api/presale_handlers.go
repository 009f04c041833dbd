package api

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"presale-backend/presaleprogram"
)

// handlePresale returns the decoded presale snapshot
func (s *Server) handlePresale(c *gin.Context) {
	info, err := s.client.GetPresaleInfo(c.Request.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch presale info")
		fail(c, http.StatusBadGateway, presaleprogram.ParseProgramError(err))
		return
	}

	ok(c, newPresaleSnapshot(info))
}

// handleVaultBalance serves the polled vault balance. Fetch failures upstream
// leave the last applied value in place, zero before the first success.
func (s *Server) handleVaultBalance(c *gin.Context) {
	lamports, updatedAt := s.vault.Latest()

	ok(c, gin.H{
		"lamports":    lamports,
		"sol":         presaleprogram.FormatSOL(lamports),
		"updated_at":  updatedAt.Unix(),
		"has_reading": !updatedAt.IsZero(),
	})
}

func parseWalletParam(c *gin.Context) (solana.PublicKey, bool) {
	wallet, err := solana.PublicKeyFromBase58(c.Param("address"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid wallet address")
		return solana.PublicKey{}, false
	}
	return wallet, true
}
