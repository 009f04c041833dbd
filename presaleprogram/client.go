package presaleprogram

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client - wraps the Solana RPC client for the presale program. Holds no
// presale state of its own; everything durable lives on-chain.
type Client struct {
	rpcClient *rpc.Client
	programID solana.PublicKey
	tokenMint solana.PublicKey
	authority solana.PublicKey
	network   string // "devnet", "mainnet", "localhost"
}

// Config - client construction parameters
type Config struct {
	RPCURL    string
	Network   string
	ProgramID string
	TokenMint string
	Authority string
}

// NewClient creates a presale program client
func NewClient(cfg Config) (*Client, error) {
	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program ID: %w", err)
	}

	tokenMint, err := solana.PublicKeyFromBase58(cfg.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint: %w", err)
	}

	authority, err := solana.PublicKeyFromBase58(cfg.Authority)
	if err != nil {
		return nil, fmt.Errorf("invalid authority: %w", err)
	}

	return &Client{
		rpcClient: rpc.New(cfg.RPCURL),
		programID: programID,
		tokenMint: tokenMint,
		authority: authority,
		network:   cfg.Network,
	}, nil
}

// ProgramID - configured program ID
func (c *Client) ProgramID() solana.PublicKey {
	return c.programID
}

// TokenMint - configured token mint
func (c *Client) TokenMint() solana.PublicKey {
	return c.tokenMint
}

// Authority - configured presale authority wallet
func (c *Client) Authority() solana.PublicKey {
	return c.authority
}

// Resolve derives the full account set for an operation touching the given
// buyer. Pass the zero key for admin-only operations with no buyer account.
func (c *Client) Resolve(buyer solana.PublicKey) (*ResolvedAccounts, error) {
	return ResolveAccounts(c.programID, c.tokenMint, c.authority, buyer)
}

// GetPresaleInfo fetches and decodes the presale account
func (c *Client) GetPresaleInfo(ctx context.Context) (*PresaleInfo, error) {
	accounts, err := c.Resolve(solana.PublicKey{})
	if err != nil {
		return nil, err
	}

	accountInfo, err := c.rpcClient.GetAccountInfo(ctx, accounts.Presale)
	if err != nil {
		return nil, fmt.Errorf("failed to get presale info: %w", err)
	}
	if accountInfo.Value == nil {
		return nil, fmt.Errorf("presale not found - not initialized yet")
	}

	info, err := parsePresaleInfoData(accountInfo.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse presale info: %w", err)
	}
	return info, nil
}

// GetUserInfo fetches and decodes a buyer's record. Returns (nil, nil) when
// the wallet has no record yet (first purchase creates it).
func (c *Client) GetUserInfo(ctx context.Context, buyer solana.PublicKey) (*UserInfo, error) {
	accounts, err := c.Resolve(buyer)
	if err != nil {
		return nil, err
	}

	accountInfo, err := c.rpcClient.GetAccountInfo(ctx, accounts.UserInfo)
	if err != nil || accountInfo == nil || accountInfo.Value == nil {
		return nil, nil
	}

	user, err := parseUserInfoData(accountInfo.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return user, nil
}

// GetVaultBalance returns the vault's lamport balance
func (c *Client) GetVaultBalance(ctx context.Context) (uint64, error) {
	vault, _, err := DeriveVaultAddress(c.programID)
	if err != nil {
		return 0, err
	}

	balance, err := c.rpcClient.GetBalance(ctx, vault, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get vault balance: %w", err)
	}
	return balance.Value, nil
}

// GetWalletBalance returns a wallet's lamport balance
func (c *Client) GetWalletBalance(ctx context.Context, wallet solana.PublicKey) (uint64, error) {
	balance, err := c.rpcClient.GetBalance(ctx, wallet, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet balance: %w", err)
	}
	return balance.Value, nil
}

// buildUnsigned assembles instructions into an unsigned base64 transaction
// for wallet-side signing
func (c *Client) buildUnsigned(ctx context.Context, instructions []solana.Instruction, payer solana.PublicKey) (*UnsignedTransaction, error) {
	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return &UnsignedTransaction{
		Transaction:     base64.StdEncoding.EncodeToString(txBytes),
		RecentBlockhash: recent.Value.Blockhash.String(),
		ExpiresAt:       time.Now().Add(60 * time.Second).Unix(),
	}, nil
}

// UnsignedBuyTx builds the buy_token transaction for a validated quote
func (c *Client) UnsignedBuyTx(ctx context.Context, buyer solana.PublicKey, tokenBaseAmount uint64) (*UnsignedTransaction, error) {
	if buyer.IsZero() {
		return nil, ErrWalletNotConnected
	}

	accounts, err := c.Resolve(buyer)
	if err != nil {
		return nil, err
	}

	instruction := BuildBuyTokenInstruction(c.programID, accounts, buyer, tokenBaseAmount)
	return c.buildUnsigned(ctx, []solana.Instruction{instruction}, buyer)
}

// UnsignedClaimTx builds the claim_token transaction for one ended phase
func (c *Client) UnsignedClaimTx(ctx context.Context, buyer solana.PublicKey, phaseNumber uint8) (*UnsignedTransaction, error) {
	if buyer.IsZero() {
		return nil, ErrWalletNotConnected
	}

	accounts, err := c.Resolve(buyer)
	if err != nil {
		return nil, err
	}

	instruction := BuildClaimTokenInstruction(c.programID, accounts, buyer, c.tokenMint, phaseNumber)
	return c.buildUnsigned(ctx, []solana.Instruction{instruction}, buyer)
}

// UnsignedCreatePresaleTx builds create_presale signed by the authority
func (c *Client) UnsignedCreatePresaleTx(ctx context.Context, maxTokenAmountPerAddress uint64, displayEndTime int64) (*UnsignedTransaction, error) {
	accounts, err := c.Resolve(solana.PublicKey{})
	if err != nil {
		return nil, err
	}

	instruction := BuildCreatePresaleInstruction(c.programID, accounts, c.authority, c.tokenMint, maxTokenAmountPerAddress, displayEndTime)
	return c.buildUnsigned(ctx, []solana.Instruction{instruction}, c.authority)
}

// UnsignedDepositTx builds deposit_token signed by the admin
func (c *Client) UnsignedDepositTx(ctx context.Context, admin solana.PublicKey, tokenBaseAmount uint64) (*UnsignedTransaction, error) {
	if admin.IsZero() {
		return nil, ErrWalletNotConnected
	}

	accounts, err := c.Resolve(solana.PublicKey{})
	if err != nil {
		return nil, err
	}

	adminTokenAccount, err := DeriveAssociatedTokenAddress(admin, c.tokenMint)
	if err != nil {
		return nil, err
	}

	instruction := BuildDepositTokenInstruction(c.programID, accounts, admin, adminTokenAccount, c.tokenMint, tokenBaseAmount)
	return c.buildUnsigned(ctx, []solana.Instruction{instruction}, admin)
}

// UnsignedWithdrawTx builds withdraw_sol signed by the admin
func (c *Client) UnsignedWithdrawTx(ctx context.Context, admin solana.PublicKey) (*UnsignedTransaction, error) {
	if admin.IsZero() {
		return nil, ErrWalletNotConnected
	}

	accounts, err := c.Resolve(solana.PublicKey{})
	if err != nil {
		return nil, err
	}

	instruction := BuildWithdrawSolInstruction(c.programID, accounts, admin)
	return c.buildUnsigned(ctx, []solana.Instruction{instruction}, admin)
}

// UnsignedEmergencyStopTx builds emergency_stop signed by the authority
func (c *Client) UnsignedEmergencyStopTx(ctx context.Context) (*UnsignedTransaction, error) {
	accounts, err := c.Resolve(solana.PublicKey{})
	if err != nil {
		return nil, err
	}

	instruction := BuildEmergencyStopInstruction(c.programID, accounts, c.authority)
	return c.buildUnsigned(ctx, []solana.Instruction{instruction}, c.authority)
}

// UnsignedResumeTx builds resume_presale signed by the authority
func (c *Client) UnsignedResumeTx(ctx context.Context, displayEndTime int64) (*UnsignedTransaction, error) {
	accounts, err := c.Resolve(solana.PublicKey{})
	if err != nil {
		return nil, err
	}

	instruction := BuildResumePresaleInstruction(c.programID, accounts, c.authority, displayEndTime)
	return c.buildUnsigned(ctx, []solana.Instruction{instruction}, c.authority)
}

// SendSignedTransaction submits a wallet-signed transaction. One attempt, no
// automatic retries.
func (c *Client) SendSignedTransaction(ctx context.Context, signedTxBase64 string) (*TransactionResult, error) {
	txBytes, err := base64.StdEncoding.DecodeString(signedTxBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(txBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}

	if len(tx.Signatures) == 0 {
		return nil, fmt.Errorf("transaction is not signed")
	}

	sig, err := c.rpcClient.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to send: %w", err)
	}

	return &TransactionResult{
		Signature:   sig.String(),
		Status:      StatusPending,
		ExplorerURL: c.getExplorerURL(sig.String()),
	}, nil
}

// GetTransactionStatus checks the status of a submitted transaction
func (c *Client) GetTransactionStatus(ctx context.Context, signature string) (*TransactionResult, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}

	status, err := c.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to get signature status: %w", err)
	}

	result := &TransactionResult{
		Signature:   signature,
		Status:      StatusPending,
		ExplorerURL: c.getExplorerURL(signature),
	}

	if status == nil || len(status.Value) == 0 || status.Value[0] == nil {
		return result, nil
	}

	txStatus := status.Value[0]
	if txStatus.Err != nil {
		errMsg := fmt.Sprintf("%v", txStatus.Err)
		result.Status = StatusFailed
		result.Error = &errMsg
	} else if txStatus.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
		result.Status = StatusFinalized
	} else if txStatus.ConfirmationStatus == rpc.ConfirmationStatusConfirmed {
		result.Status = StatusConfirmed
	}

	return result, nil
}

// WaitForConfirmation polls until the transaction confirms or the timeout hits
func (c *Client) WaitForConfirmation(ctx context.Context, signature string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		result, err := c.GetTransactionStatus(ctx, signature)
		if err == nil {
			switch result.Status {
			case StatusConfirmed, StatusFinalized:
				return nil
			case StatusFailed:
				return fmt.Errorf("transaction failed: %s", *result.Error)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return fmt.Errorf("timeout waiting for confirmation after %s", timeout)
}

// getExplorerURL - Generate explorer URL
func (c *Client) getExplorerURL(signature string) string {
	if c.network == "mainnet" {
		return fmt.Sprintf(ExplorerURLMainnet, signature)
	}
	return fmt.Sprintf(ExplorerURLDevnet, signature)
}
