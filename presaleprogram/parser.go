package presaleprogram

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	presaleInfoDataLen = 8 + 32 + 8 + 8 + 1 + PhaseCount*phaseDataLen + 8 + 8 + 8 + 32 + 4 + 8
	phaseDataLen       = 1 + 8 + 8 + 1 + 8 + 8 + 1 + 8 + 8
	userInfoDataLen    = 8 + 8 + PhaseCount*8 + 8 + PhaseCount + 32 + 8
)

// parsePresaleInfoData - Parse presale account data
// Layout: discriminator(8) + token_mint(32) + total_supply(8) + remaining(8)
// + current_phase(1) + phases([5]Phase) + total_sold(8) + total_deposited(8)
// + max_per_address(8) + authority(32) + flags(4) + display_end_time(8)
func parsePresaleInfoData(data []byte) (*PresaleInfo, error) {
	if len(data) < presaleInfoDataLen {
		return nil, fmt.Errorf("invalid presale info data length: %d", len(data))
	}
	if !bytes.Equal(data[:8], PresaleInfoAccountDisc[:]) {
		return nil, fmt.Errorf("not a presale info account")
	}

	info := &PresaleInfo{}
	offset := 8

	info.TokenMintAddress = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32

	info.TotalTokenSupply = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	info.RemainingTokens = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	info.CurrentPhase = data[offset]
	offset++

	for i := 0; i < PhaseCount; i++ {
		phase, n, err := parsePhaseData(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("phase %d: %w", i+1, err)
		}
		info.Phases[i] = *phase
		offset += n
	}

	info.TotalTokensSold = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	info.TotalTokensDeposited = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	info.MaxTokenAmountPerAddress = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	info.Authority = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32

	info.IsInitialized = data[offset] != 0
	info.IsActive = data[offset+1] != 0
	info.IsEnded = data[offset+2] != 0
	info.IsPaused = data[offset+3] != 0
	offset += 4

	info.DisplayEndTime = int64(binary.LittleEndian.Uint64(data[offset : offset+8]))

	return info, nil
}

// parsePhaseData - Parse one phase record, returns bytes consumed
func parsePhaseData(data []byte) (*Phase, int, error) {
	if len(data) < phaseDataLen {
		return nil, 0, fmt.Errorf("invalid phase data length: %d", len(data))
	}

	phase := &Phase{}
	offset := 0

	phase.PhaseNumber = data[offset]
	offset++

	phase.Amount = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	phase.Price = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	phase.Percentage = data[offset]
	offset++

	phase.TokensSold = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	phase.TokensAvailable = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	// Borsh enum: single variant byte, no payload
	status := data[offset]
	offset++
	if status > uint8(PhaseEnded) {
		return nil, 0, fmt.Errorf("unknown phase status: %d", status)
	}
	phase.Status = PhaseStatus(status)

	phase.Softcap = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	phase.Hardcap = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	if phase.TokensSold+phase.TokensAvailable > phase.Amount {
		return nil, 0, fmt.Errorf("phase %d accounting mismatch: sold %d + available %d > allocation %d",
			phase.PhaseNumber, phase.TokensSold, phase.TokensAvailable, phase.Amount)
	}

	return phase, offset, nil
}

// parseUserInfoData - Parse user record account data
// Layout: discriminator(8) + tokens_bought(8) + phase_purchases([5]u64)
// + last_purchase_time(8) + phase_claims([5]bool) + wallet(32) + total_paid(8)
func parseUserInfoData(data []byte) (*UserInfo, error) {
	if len(data) < userInfoDataLen {
		return nil, fmt.Errorf("invalid user info data length: %d", len(data))
	}
	if !bytes.Equal(data[:8], UserInfoAccountDisc[:]) {
		return nil, fmt.Errorf("not a user info account")
	}

	user := &UserInfo{}
	offset := 8

	user.TokensBought = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	var sum uint64
	for i := 0; i < PhaseCount; i++ {
		user.PhasePurchases[i] = binary.LittleEndian.Uint64(data[offset : offset+8])
		sum += user.PhasePurchases[i]
		offset += 8
	}
	if sum != user.TokensBought {
		return nil, fmt.Errorf("user accounting mismatch: phase purchases sum %d != tokens bought %d",
			sum, user.TokensBought)
	}

	user.LastPurchaseTime = int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
	offset += 8

	for i := 0; i < PhaseCount; i++ {
		user.PhaseClaims[i] = data[offset] != 0
		offset++
	}

	user.Wallet = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32

	user.TotalPaid = binary.LittleEndian.Uint64(data[offset : offset+8])

	return user, nil
}
