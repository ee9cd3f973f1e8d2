package healthrecord

import (
	"errors"
	"math"
)

var ErrInvalidMeasurement = errors.New("height and weight must be positive")

type BMICategory string

const (
	Underweight BMICategory = "Underweight"
	Normal      BMICategory = "Normal"
	Overweight  BMICategory = "Overweight"
	Obese       BMICategory = "Obese"
)

// ComputeBMI returns weight / height² rounded to one decimal.
func ComputeBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 || math.IsNaN(heightCm) || math.IsNaN(weightKg) {
		return 0, ErrInvalidMeasurement
	}
	m := heightCm / 100
	bmi := weightKg / (m * m)
	return math.Round(bmi*10) / 10, nil
}

func Category(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return Normal
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}
