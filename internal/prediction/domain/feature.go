package prediction

import "time"

// Covariate names in the order the classifier expects them.
const (
	CovariateHoursUsed          = "HoursUsed"
	CovariateHours7dMean        = "Hours_7d_mean"
	CovariateTemperature        = "Temperature"
	CovariateVibration          = "Vibration"
	CovariateDaysSinceLastMaint = "DaysSinceLastMaint"
)

// CovariateNames lists the model inputs in matrix column order.
var CovariateNames = []string{
	CovariateHoursUsed,
	CovariateHours7dMean,
	CovariateTemperature,
	CovariateVibration,
	CovariateDaysSinceLastMaint,
}

// FeatureRow is one device-date observation of model covariates.
// Nil covariates are missing values.
type FeatureRow struct {
	DeviceID           string
	Date               time.Time
	HoursUsed          *float64
	Hours7dMean        *float64
	Temperature        *float64
	Vibration          *float64
	DaysSinceLastMaint *float64
}

// Covariates returns the model input vector with missing values set to 0.
func (r FeatureRow) Covariates() []float64 {
	return []float64{
		valueOrZero(r.HoursUsed),
		valueOrZero(r.Hours7dMean),
		valueOrZero(r.Temperature),
		valueOrZero(r.Vibration),
		valueOrZero(r.DaysSinceLastMaint),
	}
}

// Float returns a pointer to v, for building rows in code.
func Float(v float64) *float64 { return &v }

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
