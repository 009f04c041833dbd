package presaleprogram

import "github.com/gagliardetto/solana-go"

// Program IDs
const (
	// Presale program ID (from declare_id in the on-chain program)
	PresaleProgramID = "88uaiF6Lqq3id6idy6zMv8Pfc4sXb3gvQNLCMWWQHHCL"

	// ZEXX token mint (Devnet)
	TokenMintDevnet = "Ah1hf7NZgBhgnhFsrXLoj7czMMiVwUaCHnc5bP9wB6Ge"

	// Presale authority wallet
	DefaultAuthority = "94N4YzP2ihmdXNe3SgXJiBjymyBrS73VSz6QwX5QPSor"
)

// PDA Seeds
var (
	SeedPresale = []byte("presale")
	SeedVault   = []byte("vault")
	SeedUser    = []byte("user")
)

// Token units
const (
	TokenDecimals      = 9
	DecimalsMultiplier = uint64(1_000_000_000) // 10^TokenDecimals

	LamportsPerSOL = uint64(1_000_000_000)
)

// Fixed five-phase schedule (token base units / lamports per token)
const (
	PhaseCount = 5

	TotalSupplyTokens   = 1_000_000
	MaxPerAddressTokens = 10_000
)

var (
	PhaseAllocations = [PhaseCount]uint64{
		50_000 * DecimalsMultiplier,
		100_000 * DecimalsMultiplier,
		350_000 * DecimalsMultiplier,
		400_000 * DecimalsMultiplier,
		100_000 * DecimalsMultiplier,
	}

	PhasePrices = [PhaseCount]uint64{
		500_000,   // 0.0005 SOL
		1_000_000, // 0.001 SOL
		1_500_000, // 0.0015 SOL
		2_000_000, // 0.002 SOL
		2_500_000, // 0.0025 SOL
	}
)

// System Program IDs
var (
	SystemProgramID       = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	TokenProgramID        = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SysVarRentID          = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
)

// Explorer URLs
const (
	ExplorerURLDevnet  = "https://explorer.solana.com/tx/%s?cluster=devnet"
	ExplorerURLMainnet = "https://explorer.solana.com/tx/%s"
)

// RPC URLs
const (
	RPCURLDevnet    = "https://api.devnet.solana.com"
	RPCURLMainnet   = "https://api.mainnet-beta.solana.com"
	RPCURLLocalhost = "http://localhost:8899"
)
