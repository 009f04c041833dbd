package api

import (
	"net/http"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"presale-backend/presaleprogram"
)

// verifyAuthority checks a wallet against the on-chain presale authority.
// Before initialization the configured authority is the only reference.
func (s *Server) verifyAuthority(c *gin.Context, wallet solana.PublicKey) bool {
	if info, err := s.client.GetPresaleInfo(c.Request.Context()); err == nil {
		return wallet.Equals(info.Authority)
	}
	return wallet.Equals(s.client.Authority())
}

// handleAdminLogin issues a session token after verifying the wallet is the
// presale authority. The token is only a handle; authority is re-checked on
// every privileged action.
func (s *Server) handleAdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	wallet, err := solana.PublicKeyFromBase58(req.Wallet)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid wallet address")
		return
	}

	if !s.verifyAuthority(c, wallet) {
		log.Warn().Str("wallet", wallet.String()).Msg("Admin login rejected")
		fail(c, http.StatusForbidden, "Wallet is not the presale authority")
		return
	}

	token, expiresAt := s.sessions.Create(wallet.String())
	ok(c, gin.H{
		"token":      token,
		"expires_at": expiresAt.Unix(),
	})
}

// requireAdmin gates privileged routes. The session maps the token to a
// wallet; the wallet is then re-verified against the on-chain authority so a
// stale session cannot outlive an authority change.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			fail(c, http.StatusUnauthorized, "Missing session token")
			c.Abort()
			return
		}

		walletStr, found := s.sessions.Wallet(token)
		if !found {
			fail(c, http.StatusUnauthorized, "Session expired or unknown")
			c.Abort()
			return
		}

		wallet, err := solana.PublicKeyFromBase58(walletStr)
		if err != nil || !s.verifyAuthority(c, wallet) {
			s.sessions.Revoke(token)
			fail(c, http.StatusForbidden, "Wallet is no longer the presale authority")
			c.Abort()
			return
		}

		c.Set("admin_wallet", wallet)
		c.Next()
	}
}

func adminWallet(c *gin.Context) solana.PublicKey {
	wallet, _ := c.Get("admin_wallet")
	return wallet.(solana.PublicKey)
}

// handleCreatePresale builds the unsigned create_presale transaction
func (s *Server) handleCreatePresale(c *gin.Context) {
	var req CreatePresaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	maxPerAddress := req.MaxPerAddressTokens * presaleprogram.DecimalsMultiplier
	unsigned, err := s.client.UnsignedCreatePresaleTx(c.Request.Context(), maxPerAddress, req.DisplayEndTime)
	if err != nil {
		fail(c, http.StatusBadGateway, presaleprogram.ParseProgramError(err))
		return
	}

	ok(c, gin.H{"transaction": unsigned})
}

// handleDeposit builds the unsigned deposit_token transaction
func (s *Server) handleDeposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	tokenBase, err := presaleprogram.ParseDecimalToBase(req.Amount, presaleprogram.TokenDecimals)
	if err != nil || tokenBase == 0 {
		fail(c, http.StatusBadRequest, "Invalid deposit amount")
		return
	}

	unsigned, err := s.client.UnsignedDepositTx(c.Request.Context(), adminWallet(c), tokenBase)
	if err != nil {
		fail(c, http.StatusBadGateway, presaleprogram.ParseProgramError(err))
		return
	}

	ok(c, gin.H{"transaction": unsigned})
}

// handleWithdraw builds the unsigned withdraw_sol transaction
func (s *Server) handleWithdraw(c *gin.Context) {
	unsigned, err := s.client.UnsignedWithdrawTx(c.Request.Context(), adminWallet(c))
	if err != nil {
		fail(c, http.StatusBadGateway, presaleprogram.ParseProgramError(err))
		return
	}

	ok(c, gin.H{"transaction": unsigned})
}

// handleEmergencyStop builds the unsigned emergency_stop transaction
func (s *Server) handleEmergencyStop(c *gin.Context) {
	unsigned, err := s.client.UnsignedEmergencyStopTx(c.Request.Context())
	if err != nil {
		fail(c, http.StatusBadGateway, presaleprogram.ParseProgramError(err))
		return
	}

	ok(c, gin.H{"transaction": unsigned})
}

// handleResume builds the unsigned resume_presale transaction
func (s *Server) handleResume(c *gin.Context) {
	var req ResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	unsigned, err := s.client.UnsignedResumeTx(c.Request.Context(), req.DisplayEndTime)
	if err != nil {
		fail(c, http.StatusBadGateway, presaleprogram.ParseProgramError(err))
		return
	}

	ok(c, gin.H{"transaction": unsigned})
}
