package services

import (
	"fmt"
	"math"
	"net/mail"
	"slices"
	"strings"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
)

const (
	minPasswordLen = 6
	minUsernameLen = 3
)

// ValidationError maps field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

type validator struct {
	fields map[string]string
}

func (v *validator) fail(field, msg string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, ok := v.fields[field]; !ok {
		v.fields[field] = msg
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func (v *validator) email(field, s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		v.fail(field, "is required")
		return
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@"):], ".") {
		v.fail(field, "must be a valid email address")
	}
}

func (v *validator) required(field, s string) {
	if strings.TrimSpace(s) == "" {
		v.fail(field, "is required")
	}
}

func (v *validator) positive(field string, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		v.fail(field, "must be a positive number")
	}
}

func (v *validator) nonNegative(field string, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		v.fail(field, "must be zero or greater")
	}
}

func (v *validator) finite(field string, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		v.fail(field, "must be a finite number")
	}
}

func ValidateLogin(email, password string) error {
	var v validator
	v.email("email", email)
	if password == "" {
		v.fail("password", "is required")
	}
	return v.err()
}

func ValidateSignup(username, email, password string) error {
	var v validator
	if len(strings.TrimSpace(username)) < minUsernameLen {
		v.fail("username", fmt.Sprintf("must be at least %d characters", minUsernameLen))
	}
	v.email("email", email)
	if len(password) < minPasswordLen {
		v.fail("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	return v.err()
}

var datasetTypes = []string{"kepler", "tess"}

func ValidateAnnotation(in models.AnnotationInput) error {
	var v validator
	v.required("dataset_id", in.DatasetID)
	if !slices.Contains(datasetTypes, in.DatasetType) {
		v.fail("dataset_type", "must be one of "+strings.Join(datasetTypes, ", "))
	}
	return v.err()
}

// ValidatePrediction requires an identifier and physically plausible
// measurements. Impact parameter may be zero.
func ValidatePrediction(r models.PredictionRequest) error {
	var v validator
	v.required("customIdentifier", r.CustomIdentifier)
	v.positive("koi_period", r.Period)
	v.positive("koi_time0bk", r.Time0BK)
	v.nonNegative("koi_impact", r.Impact)
	v.positive("koi_duration", r.Duration)
	v.positive("koi_depth", r.Depth)
	v.positive("koi_prad", r.Radius)
	v.positive("koi_teq", r.EqTemp)
	v.positive("koi_insol", r.Insolation)
	v.positive("koi_model_snr", r.ModelSNR)
	v.positive("koi_steff", r.StellarTemp)
	v.positive("koi_slogg", r.StellarLogG)
	v.positive("koi_srad", r.StellarRadius)
	if math.IsNaN(r.RA) || r.RA < 0 || r.RA >= 360 {
		v.fail("ra", "must be in [0, 360)")
	}
	if math.IsNaN(r.Dec) || r.Dec < -90 || r.Dec > 90 {
		v.fail("dec", "must be in [-90, 90]")
	}
	v.finite("koi_kepmag", r.KepMag)
	return v.err()
}
