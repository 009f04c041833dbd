package presaleprogram

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ProgramErrors - custom error codes declared by the presale program
var ProgramErrors = map[int]string{
	6000: "Amount below soft cap",
	6001: "Amount above hard cap",
	6002: "Invalid price",
	6003: "Insufficient funds",
	6004: "Presale not initialized",
	6005: "Presale not active",
	6006: "Presale has ended",
	6007: "Invalid phase",
	6008: "Phase not active",
	6009: "Insufficient tokens in current phase",
	6010: "Exceeds maximum tokens per address",
	6011: "Arithmetic overflow",
	6012: "Invalid phase allocation",
	6013: "You have already claimed tokens for this phase",
	6014: "Only the presale authority can perform this action",
	6015: "Invalid token account",
	6016: "The vault is empty. No SOL to withdraw",
	6017: "Insufficient deposited tokens",
	6018: "Invalid amount",
	6019: "Presale is paused",
	6020: "Presale time window has expired",
}

// ExtractErrorCode tries multiple methods to extract a custom program error code
func ExtractErrorCode(err error) *int {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Method 1: Parse the JSON structure
	// Format: "err": {"InstructionError": [0, {"Custom": 6010}]}
	type instructionErrorData struct {
		InstructionError []interface{} `json:"InstructionError"`
	}
	type errorWrapper struct {
		Err instructionErrorData `json:"err"`
	}

	if jsonStart := strings.Index(errStr, `"err":`); jsonStart != -1 {
		jsonStr := errStr[jsonStart-1:]
		braceCount := 0
		endPos := -1

		for i, ch := range jsonStr {
			if ch == '{' {
				braceCount++
			} else if ch == '}' {
				braceCount--
				if braceCount == 0 {
					endPos = i + 1
					break
				}
			}
		}

		if endPos > 0 {
			jsonStr = "{" + jsonStr[:endPos]

			var wrapper errorWrapper
			if err := json.Unmarshal([]byte(jsonStr), &wrapper); err == nil {
				if len(wrapper.Err.InstructionError) >= 2 {
					if customMap, ok := wrapper.Err.InstructionError[1].(map[string]interface{}); ok {
						if customVal, ok := customMap["Custom"]; ok {
							switch v := customVal.(type) {
							case float64:
								code := int(v)
								return &code
							case string:
								if code, err := strconv.Atoi(v); err == nil {
									return &code
								}
							}
						}
					}
				}
			}
		}
	}

	// Method 2: Regex patterns for "Custom": 6010
	patterns := []string{
		`"Custom":\s*(\d+)`,     // "Custom": 6010
		`"Custom":\s*"(\d+)"`,   // "Custom": "6010"
		`Custom:\s*(\d+)`,       // Custom: 6010
		`error code:\s*(\d+)`,   // error code: 6010
		`Error Number:\s*(\d+)`, // Error Number: 6010 (from Anchor logs)
	}

	for _, pattern := range patterns {
		if matches := regexp.MustCompile(pattern).FindStringSubmatch(errStr); len(matches) > 1 {
			if code, err := strconv.Atoi(matches[1]); err == nil {
				return &code
			}
		}
	}

	// Method 3: Hex format - custom program error: 0x1772
	if matches := regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`).FindStringSubmatch(errStr); len(matches) > 1 {
		if code, err := strconv.ParseInt(matches[1], 16, 64); err == nil {
			intCode := int(code)
			return &intCode
		}
	}

	return nil
}

// ParseProgramError extracts a user-facing message from an RPC error
func ParseProgramError(err error) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()

	// Transaction expired before landing
	if strings.Contains(errStr, "BlockhashNotFound") ||
		strings.Contains(errStr, "Blockhash not found") {
		return "Transaction expired. Please request a new transaction and try again."
	}

	if code := ExtractErrorCode(err); code != nil {
		if msg, ok := ProgramErrors[*code]; ok {
			return msg
		}
		return fmt.Sprintf("Custom program error code: %d", *code)
	}

	if strings.Contains(errStr, "seeds constraint was violated") ||
		strings.Contains(errStr, "ConstraintSeeds") {
		return "Derived account mismatch. Please refresh and try again."
	}

	if regexp.MustCompile(`simulation failed`).MatchString(errStr) {
		return "Transaction simulation failed. Check program logs for details."
	}

	if regexp.MustCompile(`insufficient funds`).MatchString(errStr) {
		return "Insufficient SOL balance to pay for transaction"
	}

	if len(errStr) > 300 {
		return errStr[:300] + "..."
	}
	return errStr
}

// ExtractLogMessages extracts "Program log:" lines from an RPC error
func ExtractLogMessages(err error) []string {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	logs := []string{}

	// Stop each entry at a quote, backslash, bracket or newline so both
	// plain and JSON-escaped log arrays split cleanly.
	pattern := regexp.MustCompile(`Program log: ([^"\\\]\n]+)`)

	for _, match := range pattern.FindAllStringSubmatch(errStr, -1) {
		entry := strings.TrimSpace(match[1])
		if entry != "" && !containsString(logs, entry) {
			logs = append(logs, entry)
		}
	}

	return logs
}

func containsString(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
