package mines

import (
	"errors"
	"fmt"
)

const Cells = 25

var (
	ErrInvalidMineCount = errors.New("mine count must be between 1 and 24")
	ErrRevealOutOfRange = errors.New("revealed count exceeds safe cells")
)

// Binomial computes C(n, k) with the multiplicative formula so intermediate
// values never approach factorial size.
func Binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}

	res := 1.0
	for i := 1; i <= k; i++ {
		res = res * float64(n-k+i) / float64(i)
	}
	return res
}

// Multiplier is the fair payout after revealing k safe cells on a board with
// m mines: C(25, k) / C(25-m, k), the inverse of the chance of surviving k
// picks.
func Multiplier(mineCount, revealed int) (float64, error) {
	if err := validateMineCount(mineCount); err != nil {
		return 0, err
	}
	safe := Cells - mineCount
	if revealed < 0 || revealed > safe {
		return 0, fmt.Errorf("%w: %d of %d", ErrRevealOutOfRange, revealed, safe)
	}
	if revealed == 0 {
		return 1, nil
	}

	return Binomial(Cells, revealed) / Binomial(safe, revealed), nil
}

func validateMineCount(m int) error {
	if m < 1 || m >= Cells {
		return fmt.Errorf("%w: got %d", ErrInvalidMineCount, m)
	}
	return nil
}
