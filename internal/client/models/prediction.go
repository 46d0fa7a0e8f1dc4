package models

// PredictionRequest is the candidate signal submitted to /predictions/predict.
type PredictionRequest struct {
	CustomIdentifier string  `json:"customIdentifier"`
	Period           float64 `json:"koi_period"`
	Time0BK          float64 `json:"koi_time0bk"`
	Impact           float64 `json:"koi_impact"`
	Duration         float64 `json:"koi_duration"`
	Depth            float64 `json:"koi_depth"`
	Radius           float64 `json:"koi_prad"`
	EqTemp           float64 `json:"koi_teq"`
	Insolation       float64 `json:"koi_insol"`
	ModelSNR         float64 `json:"koi_model_snr"`
	StellarTemp      float64 `json:"koi_steff"`
	StellarLogG      float64 `json:"koi_slogg"`
	StellarRadius    float64 `json:"koi_srad"`
	RA               float64 `json:"ra"`
	Dec              float64 `json:"dec"`
	KepMag           float64 `json:"koi_kepmag"`
}

// PredictionDetails is the model's physical interpretation of a candidate.
type PredictionDetails struct {
	EquilibriumTempKelvin *float64 `json:"equilibriumTempKelvin"`
	OrbitalPeriodDays     *float64 `json:"orbitalPeriodDays"`
	PlanetName            *string  `json:"planetName"`
	PlanetType            string   `json:"planetType"`
	RadiusEarth           *float64 `json:"radiusEarth"`
}

// PredictionResult is the classifier output.
type PredictionResult struct {
	CandidateIdentifier string            `json:"candidateIdentifier"`
	Confidence          float64           `json:"confidence"`
	IsExoplanet         bool              `json:"isExoplanet"`
	Details             PredictionDetails `json:"details"`
	Note                string            `json:"note,omitempty"`
}

// PredictResponse is the body of /predictions/predict.
type PredictResponse struct {
	Message      string           `json:"message"`
	Prediction   PredictionResult `json:"prediction"`
	PredictionID string           `json:"prediction_id,omitempty"`
}

// PredictionRecord is one stored prediction in the user's history.
type PredictionRecord struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	RequestData  PredictionRequest `json:"request_data"`
	ResponseData PredictionResult  `json:"response_data"`
	CreatedAt    string            `json:"created_at"`
}

// PredictionHistory is the body of /predictions/history.
type PredictionHistory struct {
	Predictions []PredictionRecord `json:"predictions"`
	Pagination  struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
		Pages int `json:"pages"`
	} `json:"pagination"`
}

// PredictionStats is the body of /predictions/stats.
type PredictionStats struct {
	TotalPredictions       int            `json:"total_predictions"`
	ConfirmedExoplanets    int            `json:"confirmed_exoplanets"`
	AverageConfidence      float64        `json:"average_confidence"`
	PlanetTypeDistribution map[string]int `json:"planet_type_distribution"`
}
