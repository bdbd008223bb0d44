package quote

import (
	"errors"
	"math"
	"testing"

	"github.com/eyss21/projekt/internal/models"
)

func TestComputeFinalPrice_Multipliers(t *testing.T) {
	cases := []struct {
		name string
		base float64
		size models.ParcelSize
		want float64
	}{
		{"small keeps base", 20.00, models.SizeS, 20.00},
		{"medium doubles", 20.00, models.SizeM, 40.00},
		{"large triples", 20.00, models.SizeL, 60.00},
		{"rounds to two decimals", 10.333, models.SizeM, 20.67},
		{"rounds half up", 0.005, models.SizeS, 0.01},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeFinalPrice(tc.base, tc.size)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ComputeFinalPrice(%v, %s) = %v, want %v", tc.base, tc.size, got, tc.want)
			}
		})
	}
}

func TestComputeFinalPrice_InvalidBase(t *testing.T) {
	for _, base := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := ComputeFinalPrice(base, models.SizeS); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("ComputeFinalPrice(%v) error = %v, want ErrInvalidPrice", base, err)
		}
	}
}

func TestComputeFinalPrice_UnknownSize(t *testing.T) {
	if _, err := ComputeFinalPrice(10, models.ParcelSize("XL")); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice for unknown size, got %v", err)
	}
}
