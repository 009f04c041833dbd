package presaleprogram

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Discriminator bytes as published in the program IDL.
func TestAnchorDiscriminators(t *testing.T) {
	assert.Equal(t, [8]byte{176, 144, 197, 158, 61, 119, 75, 135}, CreatePresaleDisc)
	assert.Equal(t, [8]byte{138, 127, 14, 91, 38, 87, 115, 105}, BuyTokenDisc)

	assert.Equal(t, [8]byte{11, 19, 36, 47, 79, 104, 214, 40}, PresaleInfoAccountDisc)
	assert.Equal(t, [8]byte{83, 134, 200, 56, 144, 56, 10, 62}, UserInfoAccountDisc)
}

func resolvedForTest(t *testing.T, buyer solana.PublicKey) *ResolvedAccounts {
	t.Helper()

	resolved, err := ResolveAccounts(testProgramID, testMint, testAuthority, buyer)
	require.NoError(t, err)
	return resolved
}

func TestBuildBuyTokenInstruction(t *testing.T) {
	buyer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	accounts := resolvedForTest(t, buyer.PublicKey())

	ix := BuildBuyTokenInstruction(testProgramID, accounts, buyer.PublicKey(), 1000*DecimalsMultiplier)

	assert.Equal(t, testProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 16)
	assert.Equal(t, BuyTokenDisc[:], data[:8])
	assert.Equal(t, 1000*DecimalsMultiplier, binary.LittleEndian.Uint64(data[8:]))

	metas := ix.Accounts()
	require.Len(t, metas, 10)

	assert.Equal(t, accounts.Presale, metas[0].PublicKey)
	assert.True(t, metas[0].IsWritable)
	assert.False(t, metas[0].IsSigner)

	assert.Equal(t, accounts.UserInfo, metas[1].PublicKey)
	assert.Equal(t, accounts.Vault, metas[2].PublicKey)

	assert.Equal(t, buyer.PublicKey(), metas[3].PublicKey)
	assert.True(t, metas[3].IsWritable)
	assert.True(t, metas[3].IsSigner)

	assert.Equal(t, accounts.BuyerATA, metas[4].PublicKey)
	assert.Equal(t, accounts.PresaleATA, metas[5].PublicKey)
	assert.Equal(t, SysVarRentID, metas[6].PublicKey)
	assert.Equal(t, SystemProgramID, metas[7].PublicKey)
	assert.Equal(t, TokenProgramID, metas[8].PublicKey)
	assert.Equal(t, AssociatedTokenProgID, metas[9].PublicKey)
}

func TestBuildClaimTokenInstruction(t *testing.T) {
	buyer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	accounts := resolvedForTest(t, buyer.PublicKey())

	ix := BuildClaimTokenInstruction(testProgramID, accounts, buyer.PublicKey(), testMint, 3)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 9)
	assert.Equal(t, ClaimTokenDisc[:], data[:8])
	assert.Equal(t, uint8(3), data[8])

	metas := ix.Accounts()
	require.Len(t, metas, 10)
	assert.Equal(t, testMint, metas[0].PublicKey)
	assert.False(t, metas[0].IsWritable)
	assert.Equal(t, accounts.BuyerATA, metas[1].PublicKey)
	assert.Equal(t, buyer.PublicKey(), metas[5].PublicKey)
	assert.True(t, metas[5].IsSigner)
}

func TestBuildCreatePresaleInstruction(t *testing.T) {
	accounts := resolvedForTest(t, solana.PublicKey{})

	ix := BuildCreatePresaleInstruction(testProgramID, accounts, testAuthority, testMint,
		10_000*DecimalsMultiplier, 1767225600)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 8+32+8+8)
	assert.Equal(t, CreatePresaleDisc[:], data[:8])
	assert.Equal(t, testMint.Bytes(), data[8:40])
	assert.Equal(t, 10_000*DecimalsMultiplier, binary.LittleEndian.Uint64(data[40:48]))
	assert.Equal(t, uint64(1767225600), binary.LittleEndian.Uint64(data[48:56]))

	metas := ix.Accounts()
	require.Len(t, metas, 3)
	assert.Equal(t, accounts.Presale, metas[0].PublicKey)
	assert.Equal(t, testAuthority, metas[1].PublicKey)
	assert.True(t, metas[1].IsSigner)
	assert.Equal(t, SystemProgramID, metas[2].PublicKey)
}

func TestBuildWithdrawSolInstruction_CarriesVaultBump(t *testing.T) {
	accounts := resolvedForTest(t, solana.PublicKey{})

	ix := BuildWithdrawSolInstruction(testProgramID, accounts, testAuthority)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 9)
	assert.Equal(t, WithdrawSolDisc[:], data[:8])
	assert.Equal(t, accounts.VaultBump, data[8])

	metas := ix.Accounts()
	require.Len(t, metas, 4)
	assert.Equal(t, accounts.Vault, metas[1].PublicKey)
}

func TestBuildEmergencyStopAndResume(t *testing.T) {
	accounts := resolvedForTest(t, solana.PublicKey{})

	stop := BuildEmergencyStopInstruction(testProgramID, accounts, testAuthority)
	data, err := stop.Data()
	require.NoError(t, err)
	assert.Equal(t, EmergencyStopDisc[:], data)

	resume := BuildResumePresaleInstruction(testProgramID, accounts, testAuthority, 1770000000)
	data, err = resume.Data()
	require.NoError(t, err)
	require.Len(t, data, 16)
	assert.Equal(t, ResumePresaleDisc[:], data[:8])
	assert.Equal(t, uint64(1770000000), binary.LittleEndian.Uint64(data[8:]))

	for _, ix := range []solana.Instruction{stop, resume} {
		metas := ix.Accounts()
		require.Len(t, metas, 2)
		assert.Equal(t, accounts.Presale, metas[0].PublicKey)
		assert.Equal(t, testAuthority, metas[1].PublicKey)
		assert.True(t, metas[1].IsSigner)
		assert.False(t, metas[1].IsWritable)
	}
}

func TestBuildDepositTokenInstruction(t *testing.T) {
	accounts := resolvedForTest(t, solana.PublicKey{})
	adminATA, err := DeriveAssociatedTokenAddress(testAuthority, testMint)
	require.NoError(t, err)

	ix := BuildDepositTokenInstruction(testProgramID, accounts, testAuthority, adminATA, testMint,
		1_000_000*DecimalsMultiplier)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 16)
	assert.Equal(t, DepositTokenDisc[:], data[:8])
	assert.Equal(t, 1_000_000*DecimalsMultiplier, binary.LittleEndian.Uint64(data[8:]))

	metas := ix.Accounts()
	require.Len(t, metas, 10)
	assert.Equal(t, testMint, metas[0].PublicKey)
	assert.Equal(t, adminATA, metas[1].PublicKey)
	assert.Equal(t, testAuthority, metas[2].PublicKey)
	assert.True(t, metas[2].IsSigner)
	assert.Equal(t, accounts.PresaleATA, metas[3].PublicKey)
	assert.Equal(t, accounts.Vault, metas[4].PublicKey)
	assert.Equal(t, accounts.Presale, metas[5].PublicKey)
}
