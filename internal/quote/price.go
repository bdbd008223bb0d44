package quote

import (
	"fmt"
	"math"

	"github.com/eyss21/projekt/internal/models"
)

// sizeMultipliers is the tiered price multiplier by declared parcel size.
var sizeMultipliers = map[models.ParcelSize]float64{
	models.SizeS: 1,
	models.SizeM: 2,
	models.SizeL: 3,
}

// ComputeFinalPrice applies the size multiplier to a course's base price and
// rounds to two decimal places. The base price is fixed at quote time; only
// the multiplier varies when the user edits the size afterwards.
//
// A base price that is not a positive finite number fails with
// ErrInvalidPrice and the caller must not proceed to booking.
func ComputeFinalPrice(basePrice float64, size models.ParcelSize) (float64, error) {
	if math.IsNaN(basePrice) || math.IsInf(basePrice, 0) || basePrice <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, basePrice)
	}
	mult, ok := sizeMultipliers[size]
	if !ok {
		return 0, fmt.Errorf("%w: unknown size %q", ErrInvalidPrice, size)
	}
	return math.Round(basePrice*mult*100) / 100, nil
}
