package presaleprogram

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Anchor derives instruction discriminators as sha256("global:<name>")[:8]
// and account discriminators as sha256("account:<Name>")[:8].
func anchorDiscriminator(name string) [8]byte {
	hash := sha256.Sum256([]byte(name))
	var disc [8]byte
	copy(disc[:], hash[:8])
	return disc
}

var (
	CreatePresaleDisc = anchorDiscriminator("global:create_presale")
	BuyTokenDisc      = anchorDiscriminator("global:buy_token")
	ClaimTokenDisc    = anchorDiscriminator("global:claim_token")
	DepositTokenDisc  = anchorDiscriminator("global:deposit_token")
	WithdrawSolDisc   = anchorDiscriminator("global:withdraw_sol")
	EmergencyStopDisc = anchorDiscriminator("global:emergency_stop")
	ResumePresaleDisc = anchorDiscriminator("global:resume_presale")

	PresaleInfoAccountDisc = anchorDiscriminator("account:PresaleInfo")
	UserInfoAccountDisc    = anchorDiscriminator("account:UserInfo")
)

func appendUint64(data []byte, v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return append(data, b...)
}

func appendInt64(data []byte, v int64) []byte {
	return appendUint64(data, uint64(v))
}

// BuildCreatePresaleInstruction builds create_presale
func BuildCreatePresaleInstruction(
	programID solana.PublicKey,
	accounts *ResolvedAccounts,
	authority solana.PublicKey,
	tokenMint solana.PublicKey,
	maxTokenAmountPerAddress uint64,
	displayEndTime int64,
) solana.Instruction {
	data := append([]byte{}, CreatePresaleDisc[:]...)
	data = append(data, tokenMint.Bytes()...)
	data = appendUint64(data, maxTokenAmountPerAddress)
	data = appendInt64(data, displayEndTime)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(accounts.Presale).WRITE(),
			solana.Meta(authority).WRITE().SIGNER(),
			solana.Meta(SystemProgramID),
		},
		data,
	)
}

// BuildBuyTokenInstruction builds buy_token. The amount is the token
// quantity in base units, already scaled by the decimal multiplier.
func BuildBuyTokenInstruction(
	programID solana.PublicKey,
	accounts *ResolvedAccounts,
	buyer solana.PublicKey,
	tokenBaseAmount uint64,
) solana.Instruction {
	data := append([]byte{}, BuyTokenDisc[:]...)
	data = appendUint64(data, tokenBaseAmount)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(accounts.Presale).WRITE(),
			solana.Meta(accounts.UserInfo).WRITE(),
			solana.Meta(accounts.Vault).WRITE(),
			solana.Meta(buyer).WRITE().SIGNER(),
			solana.Meta(accounts.BuyerATA).WRITE(),
			solana.Meta(accounts.PresaleATA).WRITE(),
			solana.Meta(SysVarRentID),
			solana.Meta(SystemProgramID),
			solana.Meta(TokenProgramID),
			solana.Meta(AssociatedTokenProgID),
		},
		data,
	)
}

// BuildClaimTokenInstruction builds claim_token for one ended phase
func BuildClaimTokenInstruction(
	programID solana.PublicKey,
	accounts *ResolvedAccounts,
	buyer solana.PublicKey,
	tokenMint solana.PublicKey,
	phaseNumber uint8,
) solana.Instruction {
	data := append([]byte{}, ClaimTokenDisc[:]...)
	data = append(data, phaseNumber)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(tokenMint),
			solana.Meta(accounts.BuyerATA).WRITE(),
			solana.Meta(accounts.PresaleATA).WRITE(),
			solana.Meta(accounts.UserInfo).WRITE(),
			solana.Meta(accounts.Presale).WRITE(),
			solana.Meta(buyer).WRITE().SIGNER(),
			solana.Meta(SysVarRentID),
			solana.Meta(SystemProgramID),
			solana.Meta(TokenProgramID),
			solana.Meta(AssociatedTokenProgID),
		},
		data,
	)
}

// BuildDepositTokenInstruction builds deposit_token (admin funds the presale
// token account before the sale opens)
func BuildDepositTokenInstruction(
	programID solana.PublicKey,
	accounts *ResolvedAccounts,
	admin solana.PublicKey,
	adminTokenAccount solana.PublicKey,
	tokenMint solana.PublicKey,
	tokenBaseAmount uint64,
) solana.Instruction {
	data := append([]byte{}, DepositTokenDisc[:]...)
	data = appendUint64(data, tokenBaseAmount)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(tokenMint),
			solana.Meta(adminTokenAccount).WRITE(),
			solana.Meta(admin).WRITE().SIGNER(),
			solana.Meta(accounts.PresaleATA).WRITE(),
			solana.Meta(accounts.Vault).WRITE(),
			solana.Meta(accounts.Presale).WRITE(),
			solana.Meta(SysVarRentID),
			solana.Meta(SystemProgramID),
			solana.Meta(TokenProgramID),
			solana.Meta(AssociatedTokenProgID),
		},
		data,
	)
}

// BuildWithdrawSolInstruction builds withdraw_sol. Takes the vault bump from
// the same resolution pass that produced the vault address.
func BuildWithdrawSolInstruction(
	programID solana.PublicKey,
	accounts *ResolvedAccounts,
	admin solana.PublicKey,
) solana.Instruction {
	data := append([]byte{}, WithdrawSolDisc[:]...)
	data = append(data, accounts.VaultBump)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(accounts.Presale).WRITE(),
			solana.Meta(accounts.Vault).WRITE(),
			solana.Meta(admin).WRITE().SIGNER(),
			solana.Meta(SystemProgramID),
		},
		data,
	)
}

// BuildEmergencyStopInstruction builds emergency_stop
func BuildEmergencyStopInstruction(
	programID solana.PublicKey,
	accounts *ResolvedAccounts,
	authority solana.PublicKey,
) solana.Instruction {
	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(accounts.Presale).WRITE(),
			solana.Meta(authority).SIGNER(),
		},
		EmergencyStopDisc[:],
	)
}

// BuildResumePresaleInstruction builds resume_presale with a new end time
func BuildResumePresaleInstruction(
	programID solana.PublicKey,
	accounts *ResolvedAccounts,
	authority solana.PublicKey,
	displayEndTime int64,
) solana.Instruction {
	data := append([]byte{}, ResumePresaleDisc[:]...)
	data = appendInt64(data, displayEndTime)

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(accounts.Presale).WRITE(),
			solana.Meta(authority).SIGNER(),
		},
		data,
	)
}
