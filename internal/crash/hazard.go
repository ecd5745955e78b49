package crash

import (
	"errors"
	"fmt"
)

var ErrInvalidBands = errors.New("invalid hazard bands")

// Band applies Hazard to every multiplier below Below (in hundredths).
// The last band has Below == 0 and covers everything above the previous one.
type Band struct {
	Below  int64   `json:"below" yaml:"below"`
	Hazard float64 `json:"hazard" yaml:"hazard"`
}

// Bands is a per-tick crash probability as a decreasing step function of the
// multiplier.
type Bands []Band

func DefaultBands() Bands {
	return Bands{
		{Below: 120, Hazard: 0.02},
		{Below: 200, Hazard: 0.005},
		{Below: 400, Hazard: 0.002},
		{Below: 1000, Hazard: 0.0008},
		{Below: 5000, Hazard: 0.0002},
		{Below: 0, Hazard: 0.00005},
	}
}

func (b Bands) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidBands)
	}

	prev := int64(0)
	for i, band := range b {
		if band.Hazard < 0 || band.Hazard > 1 {
			return fmt.Errorf("%w: band %d hazard %v outside [0,1]", ErrInvalidBands, i, band.Hazard)
		}

		last := i == len(b)-1
		switch {
		case last && band.Below != 0:
			return fmt.Errorf("%w: last band must be open-ended", ErrInvalidBands)
		case !last && band.Below <= prev:
			return fmt.Errorf("%w: band %d bound %d not increasing", ErrInvalidBands, i, band.Below)
		}
		prev = band.Below
	}
	return nil
}

// Hazard returns the crash probability for the next tick at multiplier m.
func (b Bands) Hazard(m int64) float64 {
	for _, band := range b {
		if band.Below == 0 || m < band.Below {
			return band.Hazard
		}
	}
	return 0
}
