package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"presale-backend/internal/session"
	"presale-backend/internal/submit"
	"presale-backend/internal/watcher"
	"presale-backend/presaleprogram"
)

// ProgramClient - the slice of the program client the API needs. Narrowed to
// an interface so handlers test against a fake instead of a live RPC node.
type ProgramClient interface {
	Authority() solana.PublicKey
	GetPresaleInfo(ctx context.Context) (*presaleprogram.PresaleInfo, error)
	GetUserInfo(ctx context.Context, buyer solana.PublicKey) (*presaleprogram.UserInfo, error)
	GetWalletBalance(ctx context.Context, wallet solana.PublicKey) (uint64, error)
	UnsignedBuyTx(ctx context.Context, buyer solana.PublicKey, tokenBaseAmount uint64) (*presaleprogram.UnsignedTransaction, error)
	UnsignedClaimTx(ctx context.Context, buyer solana.PublicKey, phaseNumber uint8) (*presaleprogram.UnsignedTransaction, error)
	UnsignedCreatePresaleTx(ctx context.Context, maxTokenAmountPerAddress uint64, displayEndTime int64) (*presaleprogram.UnsignedTransaction, error)
	UnsignedDepositTx(ctx context.Context, admin solana.PublicKey, tokenBaseAmount uint64) (*presaleprogram.UnsignedTransaction, error)
	UnsignedWithdrawTx(ctx context.Context, admin solana.PublicKey) (*presaleprogram.UnsignedTransaction, error)
	UnsignedEmergencyStopTx(ctx context.Context) (*presaleprogram.UnsignedTransaction, error)
	UnsignedResumeTx(ctx context.Context, displayEndTime int64) (*presaleprogram.UnsignedTransaction, error)
	SendSignedTransaction(ctx context.Context, signedTxBase64 string) (*presaleprogram.TransactionResult, error)
	GetTransactionStatus(ctx context.Context, signature string) (*presaleprogram.TransactionResult, error)
}

// Server wires the program client, session manager, submission guard and
// vault poller into the HTTP surface.
type Server struct {
	client   ProgramClient
	sessions *session.Manager
	guard    *submit.Guard
	vault    *watcher.Poller
	origin   string
}

func NewServer(client ProgramClient, sessions *session.Manager, guard *submit.Guard, vault *watcher.Poller, origin string) *Server {
	return &Server{
		client:   client,
		sessions: sessions,
		guard:    guard,
		vault:    vault,
		origin:   origin,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{s.origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/presale", s.handlePresale)
		v1.GET("/presale/vault-balance", s.handleVaultBalance)

		v1.GET("/users/:address", s.handleUser)
		v1.GET("/users/:address/balance", s.handleUserBalance)
		v1.GET("/users/:address/history", s.handleUserHistory)

		v1.POST("/quote", s.handleQuote)

		v1.POST("/transactions/buy", s.handleBuy)
		v1.POST("/transactions/claim", s.handleClaim)
		v1.POST("/transactions/send", s.handleSend)
		v1.GET("/transactions/:signature", s.handleTransactionStatus)

		admin := v1.Group("/admin")
		admin.POST("/login", s.handleAdminLogin)

		protected := admin.Group("")
		protected.Use(s.requireAdmin())
		{
			protected.POST("/create-presale", s.handleCreatePresale)
			protected.POST("/deposit", s.handleDeposit)
			protected.POST("/withdraw", s.handleWithdraw)
			protected.POST("/emergency-stop", s.handleEmergencyStop)
			protected.POST("/resume", s.handleResume)
		}
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "presale-backend",
	})
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}
