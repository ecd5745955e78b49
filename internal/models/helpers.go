package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateRoundID(game GameType) string {
	return fmt.Sprintf("%s_%s_%s",
		game,
		time.Now().Format("20060102"),
		uuid.NewString())
}

func GenerateTransactionID() string {
	return fmt.Sprintf("tx_%s_%s",
		time.Now().Format("20060102"),
		uuid.NewString())
}

func GenerateClientSeed() (string, error) {
	bytes := make([]byte, 16) // 128 bits of entropy
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate client seed: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// AutoCashOutHundredths converts a requested multiplier like 2.5 into 250.
// Zero stays zero.
func AutoCashOutHundredths(m float64) int64 {
	if m <= 0 {
		return 0
	}
	return int64(m*100 + 0.5)
}

// FormatUnits renders an amount with thousands separators, e.g. $1,000.
func FormatUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String()
}
