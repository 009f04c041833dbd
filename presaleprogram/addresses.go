package presaleprogram

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DerivePresaleAddress derives the presale account PDA
func DerivePresaleAddress(programID, authority solana.PublicKey) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(
		[][]byte{
			SeedPresale,
			authority.Bytes(),
		},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive presale PDA: %w", err)
	}
	return pda, bump, nil
}

// DeriveVaultAddress derives the singleton vault PDA (one per program deployment)
func DeriveVaultAddress(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(
		[][]byte{
			SeedVault,
		},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive vault PDA: %w", err)
	}
	return pda, bump, nil
}

// DeriveUserInfoAddress derives the per-buyer record PDA. The presale address
// is taken as a parameter instead of being re-derived here: every dependent
// derivation within one operation must consume the same upstream presale
// address, or the on-chain seeds constraint fails.
func DeriveUserInfoAddress(programID, presale, buyer solana.PublicKey) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(
		[][]byte{
			SeedUser,
			presale.Bytes(),
			buyer.Bytes(),
		},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive user info PDA: %w", err)
	}
	return pda, bump, nil
}

// DeriveAssociatedTokenAddress derives the ATA for a wallet and mint.
// Works for off-curve owners (the presale PDA holds its own token account).
func DeriveAssociatedTokenAddress(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindProgramAddress(
		[][]byte{
			wallet.Bytes(),
			TokenProgramID.Bytes(),
			mint.Bytes(),
		},
		AssociatedTokenProgID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive ATA: %w", err)
	}
	return ata, nil
}

// ResolveAccounts derives the full account set for a presale operation.
// The presale address is derived once; the vault, user record and token
// accounts all descend from that single value.
func ResolveAccounts(programID, tokenMint, authority, buyer solana.PublicKey) (*ResolvedAccounts, error) {
	presale, presaleBump, err := DerivePresaleAddress(programID, authority)
	if err != nil {
		return nil, err
	}

	vault, vaultBump, err := DeriveVaultAddress(programID)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedAccounts{
		Presale:     presale,
		PresaleBump: presaleBump,
		Vault:       vault,
		VaultBump:   vaultBump,
	}

	presaleATA, err := DeriveAssociatedTokenAddress(presale, tokenMint)
	if err != nil {
		return nil, err
	}
	resolved.PresaleATA = presaleATA

	if !buyer.IsZero() {
		userInfo, _, err := DeriveUserInfoAddress(programID, presale, buyer)
		if err != nil {
			return nil, err
		}
		resolved.UserInfo = userInfo

		buyerATA, err := DeriveAssociatedTokenAddress(buyer, tokenMint)
		if err != nil {
			return nil, err
		}
		resolved.BuyerATA = buyerATA
	}

	return resolved, nil
}
