package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Pagination is the paging block the API attaches to list responses.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Listing is a page of records. It decodes both a bare JSON array and the
// {"data": [...], "pagination": {...}} envelope.
type Listing[T any] struct {
	Items      []T
	Pagination *Pagination
}

func (l *Listing[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &l.Items)
	}

	var env struct {
		Data       *[]T        `json:"data"`
		Pagination *Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	if env.Data == nil {
		return errors.New("listing: neither an array nor a data envelope")
	}
	l.Items = *env.Data
	l.Pagination = env.Pagination
	return nil
}

// Detail is a single record that may or may not be wrapped in {"data": ...}.
type Detail[T any] struct {
	Item T
}

func (d *Detail[T]) UnmarshalJSON(b []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if inner, ok := probe["data"]; ok {
		return json.Unmarshal(inner, &d.Item)
	}
	return json.Unmarshal(b, &d.Item)
}

// ListFilter carries the optional query filters of the dataset endpoints.
// Zero values are omitted from the query string.
type ListFilter struct {
	Limit       int
	Page        int
	Disposition string
	MinPeriod   float64
}

// KeplerPlanet is one Kepler Object of Interest. Numeric measurements are
// pointers because the archive leaves many of them null.
type KeplerPlanet struct {
	ID          string   `json:"id,omitempty"`
	MongoID     string   `json:"_id,omitempty"`
	KepID       *int64   `json:"kepid,omitempty"`
	KOIName     string   `json:"koi_name,omitempty"`
	KepOIName   string   `json:"kepoi_name,omitempty"`
	KeplerName  string   `json:"kepler_name,omitempty"`
	Disposition string   `json:"koi_disposition,omitempty"`
	Period      *float64 `json:"koi_period,omitempty"`
	Radius      *float64 `json:"koi_prad,omitempty"`
	EqTemp      *float64 `json:"koi_teq,omitempty"`
	Insolation  *float64 `json:"koi_insol,omitempty"`
	Depth       *float64 `json:"koi_depth,omitempty"`
	Duration    *float64 `json:"koi_duration,omitempty"`
	StellarTemp *float64 `json:"koi_steff,omitempty"`
	KepMag      *float64 `json:"koi_kepmag,omitempty"`
}

// Key is the record id, whichever spelling the server used.
func (k KeplerPlanet) Key() string {
	if k.ID != "" {
		return k.ID
	}
	return k.MongoID
}

// Name is the KOI designation.
func (k KeplerPlanet) Name() string {
	if k.KOIName != "" {
		return k.KOIName
	}
	return k.KepOIName
}

// TessObject is one TESS Object of Interest.
type TessObject struct {
	ID            string     `json:"id,omitempty"`
	MongoID       string     `json:"_id,omitempty"`
	TICID         FlexString `json:"tic_id,omitempty"`
	TID           FlexString `json:"tid,omitempty"`
	TOI           FlexString `json:"toi,omitempty"`
	Disposition   string     `json:"disposition,omitempty"`
	TFOPWGDisp    string     `json:"tfopwg_disp,omitempty"`
	OrbitalPeriod *float64   `json:"orbital_period,omitempty"`
	PlanetRadius  *float64   `json:"planet_radius,omitempty"`
}

func (t TessObject) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return t.MongoID
}

// TIC is the TESS Input Catalog id under either field name.
func (t TessObject) TIC() string {
	if t.TICID != "" {
		return t.TICID.String()
	}
	return t.TID.String()
}

// Status is the disposition, falling back to the TFOPWG column the raw
// archive import uses.
func (t TessObject) Status() string {
	if t.Disposition != "" {
		return t.Disposition
	}
	return t.TFOPWGDisp
}

// DatasetStats is the body of /datasets/stats.
type DatasetStats struct {
	Kepler struct {
		TotalObjects         int            `json:"total_objects"`
		ConfirmedPlanets     int            `json:"confirmed_planets"`
		Candidates           int            `json:"candidates"`
		FalsePositives       int            `json:"false_positives"`
		DispositionBreakdown map[string]int `json:"disposition_breakdown"`
	} `json:"kepler_dataset"`
	Tess struct {
		TotalObjects         int            `json:"total_objects"`
		PlanetCandidates     int            `json:"planet_candidates"`
		FalsePositives       int            `json:"false_positives"`
		DispositionBreakdown map[string]int `json:"disposition_breakdown"`
	} `json:"tess_dataset"`
	Combined struct {
		TotalObjects          int `json:"total_objects"`
		TotalConfirmedPlanets int `json:"total_confirmed_planets"`
		TotalCandidates       int `json:"total_candidates"`
	} `json:"combined_stats"`
}

// SearchResponse is the body of /datasets/search.
type SearchResponse struct {
	Query   string `json:"query"`
	Results struct {
		Kepler []KeplerPlanet `json:"kepler"`
		Tess   []TessObject   `json:"tess"`
	} `json:"results"`
	TotalFound struct {
		Combined int `json:"combined"`
		Kepler   int `json:"kepler"`
		Tess     int `json:"tess"`
	} `json:"total_found"`
}
