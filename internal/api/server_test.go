package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presale-backend/internal/session"
	"presale-backend/internal/submit"
	"presale-backend/internal/watcher"
	"presale-backend/presaleprogram"
)

var testAuthority = solana.MustPublicKeyFromBase58(presaleprogram.DefaultAuthority)

// fakeClient satisfies ProgramClient without touching the network
type fakeClient struct {
	presale    *presaleprogram.PresaleInfo
	presaleErr error
	user       *presaleprogram.UserInfo
	balance    uint64
	balanceErr error
	sendResult *presaleprogram.TransactionResult
	sendErr    error
	sendCalls  int
}

func (f *fakeClient) Authority() solana.PublicKey { return testAuthority }

func (f *fakeClient) GetPresaleInfo(ctx context.Context) (*presaleprogram.PresaleInfo, error) {
	return f.presale, f.presaleErr
}

func (f *fakeClient) GetUserInfo(ctx context.Context, buyer solana.PublicKey) (*presaleprogram.UserInfo, error) {
	return f.user, nil
}

func (f *fakeClient) GetWalletBalance(ctx context.Context, wallet solana.PublicKey) (uint64, error) {
	return f.balance, f.balanceErr
}

func unsignedStub() *presaleprogram.UnsignedTransaction {
	return &presaleprogram.UnsignedTransaction{
		Transaction:     "dHg=",
		RecentBlockhash: "hash",
		ExpiresAt:       time.Now().Add(time.Minute).Unix(),
	}
}

func (f *fakeClient) UnsignedBuyTx(ctx context.Context, buyer solana.PublicKey, tokenBaseAmount uint64) (*presaleprogram.UnsignedTransaction, error) {
	return unsignedStub(), nil
}

func (f *fakeClient) UnsignedClaimTx(ctx context.Context, buyer solana.PublicKey, phaseNumber uint8) (*presaleprogram.UnsignedTransaction, error) {
	return unsignedStub(), nil
}

func (f *fakeClient) UnsignedCreatePresaleTx(ctx context.Context, maxTokenAmountPerAddress uint64, displayEndTime int64) (*presaleprogram.UnsignedTransaction, error) {
	return unsignedStub(), nil
}

func (f *fakeClient) UnsignedDepositTx(ctx context.Context, admin solana.PublicKey, tokenBaseAmount uint64) (*presaleprogram.UnsignedTransaction, error) {
	return unsignedStub(), nil
}

func (f *fakeClient) UnsignedWithdrawTx(ctx context.Context, admin solana.PublicKey) (*presaleprogram.UnsignedTransaction, error) {
	return unsignedStub(), nil
}

func (f *fakeClient) UnsignedEmergencyStopTx(ctx context.Context) (*presaleprogram.UnsignedTransaction, error) {
	return unsignedStub(), nil
}

func (f *fakeClient) UnsignedResumeTx(ctx context.Context, displayEndTime int64) (*presaleprogram.UnsignedTransaction, error) {
	return unsignedStub(), nil
}

func (f *fakeClient) SendSignedTransaction(ctx context.Context, signedTxBase64 string) (*presaleprogram.TransactionResult, error) {
	f.sendCalls++
	return f.sendResult, f.sendErr
}

func (f *fakeClient) GetTransactionStatus(ctx context.Context, signature string) (*presaleprogram.TransactionResult, error) {
	return &presaleprogram.TransactionResult{
		Signature: signature,
		Status:    presaleprogram.StatusConfirmed,
	}, nil
}

func activePresale() *presaleprogram.PresaleInfo {
	info := &presaleprogram.PresaleInfo{
		TokenMintAddress:         solana.MustPublicKeyFromBase58(presaleprogram.TokenMintDevnet),
		TotalTokenSupply:         1_000_000 * presaleprogram.DecimalsMultiplier,
		RemainingTokens:          950_000 * presaleprogram.DecimalsMultiplier,
		CurrentPhase:             2,
		TotalTokensSold:          50_000 * presaleprogram.DecimalsMultiplier,
		MaxTokenAmountPerAddress: 10_000 * presaleprogram.DecimalsMultiplier,
		Authority:                testAuthority,
		IsInitialized:            true,
		IsActive:                 true,
		DisplayEndTime:           time.Now().Add(24 * time.Hour).Unix(),
	}
	for i := 0; i < presaleprogram.PhaseCount; i++ {
		info.Phases[i] = presaleprogram.Phase{
			PhaseNumber:     uint8(i + 1),
			Amount:          presaleprogram.PhaseAllocations[i],
			Price:           presaleprogram.PhasePrices[i],
			TokensAvailable: presaleprogram.PhaseAllocations[i],
			Status:          presaleprogram.PhaseUpcoming,
		}
	}
	info.Phases[0].Status = presaleprogram.PhaseEnded
	info.Phases[1].Status = presaleprogram.PhaseActive
	return info
}

func newTestServer(t *testing.T, client *fakeClient) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	guard, err := submit.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)

	vault := watcher.NewPoller("vault", time.Minute, func(ctx context.Context) (uint64, error) {
		return 5 * presaleprogram.LamportsPerSOL, nil
	})
	vault.Refresh(context.Background())

	server := NewServer(client, session.NewManager(30*time.Minute), guard, vault, "http://localhost:3000")
	return server, server.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp Response
	if len(w.Body.Bytes()) > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func TestHealth(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale()})

	w, _ := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPresaleSnapshot(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale()})

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/presale", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["current_phase"])
	assert.Equal(t, true, data["is_active"])

	phases := data["phases"].([]interface{})
	require.Len(t, phases, 5)
	first := phases[0].(map[string]interface{})
	assert.Equal(t, "ended", first["status"])
	second := phases[1].(map[string]interface{})
	assert.Equal(t, "active", second["status"])
	assert.Equal(t, "0.001", second["price_sol"])
}

func TestPresaleSnapshot_RPCDown(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presaleErr: errors.New("rpc: connection refused")})

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/presale", nil, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, resp.Success)
}

func TestVaultBalance(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale()})

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/presale/vault-balance", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(5_000_000_000), data["lamports"])
	assert.Equal(t, "5", data["sol"])
}

func TestUserSnapshot_NoRecord(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale()})

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/users/"+presaleprogram.DefaultAuthority, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "0", data["tokens_bought"])
	assert.Equal(t, "10000", data["remaining_allowance"])
}

func TestUserSnapshot_BadAddress(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale()})

	w, _ := doJSON(t, router, http.MethodGet, "/api/v1/users/not-base58!!", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserBalance_ZeroOnError(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale(), balanceErr: errors.New("rpc down")})

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/users/"+presaleprogram.DefaultAuthority+"/balance", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["lamports"])
	assert.Equal(t, "0", data["sol"])
}

func TestQuote_Accepted(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale()})

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/quote", QuoteRequest{Amount: "1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	// phase 2 price 0.001 SOL/token
	assert.Equal(t, float64(1000), data["tokens_quoted"])
}

func TestQuote_InvalidAmount(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale()})

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/quote", QuoteRequest{Amount: "abc"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuote_ExceedsUserLimit(t *testing.T) {
	client := &fakeClient{
		presale: activePresale(),
		user:    &presaleprogram.UserInfo{TokensBought: 9_999 * presaleprogram.DecimalsMultiplier},
	}
	buyer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	_, router := newTestServer(t, client)
	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/quote",
		QuoteRequest{Buyer: buyer.PublicKey().String(), Amount: "100"}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, resp.Message, "1 tokens")
}

func TestBuy_ReturnsUnsignedTx(t *testing.T) {
	buyer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	_, router := newTestServer(t, &fakeClient{presale: activePresale()})
	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/transactions/buy",
		BuyRequest{Buyer: buyer.PublicKey().String(), Amount: "0.5"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.NotNil(t, data["quote"])
	tx := data["transaction"].(map[string]interface{})
	assert.NotEmpty(t, tx["transaction"])
}

func TestClaim_InvalidPhase(t *testing.T) {
	buyer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	_, router := newTestServer(t, &fakeClient{presale: activePresale()})
	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/transactions/claim",
		ClaimRequest{Buyer: buyer.PublicKey().String(), PhaseNumber: 6}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSend_IdempotencyKeyBurns(t *testing.T) {
	client := &fakeClient{
		presale: activePresale(),
		sendResult: &presaleprogram.TransactionResult{
			Signature: "sig-1",
			Status:    presaleprogram.StatusPending,
		},
	}
	_, router := newTestServer(t, client)

	req := SendRequest{
		SignedTransaction: "c2lnbmVk",
		IdempotencyKey:    "key-1",
		Action:            "buy_token",
	}

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/transactions/send", req, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	assert.Equal(t, 1, client.sendCalls)

	// Same key again: prior result comes back, nothing reaches the network.
	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/transactions/send", req, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, resp.Message, "Duplicate")
	assert.Equal(t, 1, client.sendCalls)

	prior := resp.Data.(map[string]interface{})
	assert.Equal(t, "sig-1", prior["signature"])
}

func TestSend_ProgramErrorRecorded(t *testing.T) {
	client := &fakeClient{
		presale: activePresale(),
		sendErr: errors.New(`{"err": {"InstructionError": [0, {"Custom": 6010}]}}`),
	}
	server, router := newTestServer(t, client)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/transactions/send", SendRequest{
		SignedTransaction: "c2lnbmVk",
		IdempotencyKey:    "key-err",
		Buyer:             presaleprogram.DefaultAuthority,
	}, nil)

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Exceeds maximum tokens per address", resp.Message)
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, 6010, *resp.ErrorCode)

	// The failure is terminal, the key stays burned.
	record, err := server.guard.Lookup("key-err")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "failed", record.Status)
}

func TestTransactionStatus(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale()})

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/transactions/some-sig", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "confirmed", data["status"])
}

func TestAdminLogin_RejectsNonAuthority(t *testing.T) {
	other, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	_, router := newTestServer(t, &fakeClient{presale: activePresale()})
	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/admin/login",
		LoginRequest{Wallet: other.PublicKey().String()}, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminFlow(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale()})

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/admin/login",
		LoginRequest{Wallet: presaleprogram.DefaultAuthority}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	token := resp.Data.(map[string]interface{})["token"].(string)
	require.NotEmpty(t, token)
	auth := map[string]string{"Authorization": "Bearer " + token}

	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/admin/deposit",
		DepositRequest{Amount: "1000000"}, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, resp.Data.(map[string]interface{})["transaction"])

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/admin/emergency-stop", nil, auth)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/admin/resume",
		ResumeRequest{DisplayEndTime: time.Now().Add(48 * time.Hour).Unix()}, auth)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmin_RequiresToken(t *testing.T) {
	_, router := newTestServer(t, &fakeClient{presale: activePresale()})

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/admin/withdraw", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_StaleSessionLosesAuthority(t *testing.T) {
	client := &fakeClient{presale: activePresale()}
	_, router := newTestServer(t, client)

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/admin/login",
		LoginRequest{Wallet: presaleprogram.DefaultAuthority}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := resp.Data.(map[string]interface{})["token"].(string)

	// Authority rotates on-chain after login.
	other, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	client.presale.Authority = other.PublicKey()

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/admin/withdraw", nil,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
