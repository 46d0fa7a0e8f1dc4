package view

import (
	"strings"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
)

// Field names shared by the listings and the sort command.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldKeplerName  = "kepler_name"
	FieldDisposition = "disposition"
	FieldPeriod      = "period"
	FieldRadius      = "radius"
	FieldTemp        = "temp"
	FieldInsolation  = "insolation"
	FieldTIC         = "tic"
	FieldTOI         = "toi"
	FieldDataset     = "dataset"
	FieldType        = "type"
	FieldNotes       = "notes"
	FieldTags        = "tags"
	FieldCreated     = "created"
	FieldConfidence  = "confidence"
	FieldVerdict     = "verdict"
)

// KeplerSchema filters on the KOI and Kepler names, like the archive page.
var KeplerSchema = NewSchema(
	Field[models.KeplerPlanet]{Name: FieldID, Value: func(k models.KeplerPlanet) Value { return TextOrAbsent(k.Key()) }},
	Field[models.KeplerPlanet]{Name: FieldName, Value: func(k models.KeplerPlanet) Value { return TextOrAbsent(k.Name()) }, Searchable: true},
	Field[models.KeplerPlanet]{Name: FieldKeplerName, Value: func(k models.KeplerPlanet) Value { return TextOrAbsent(k.KeplerName) }, Searchable: true},
	Field[models.KeplerPlanet]{Name: FieldDisposition, Value: func(k models.KeplerPlanet) Value { return TextOrAbsent(k.Disposition) }},
	Field[models.KeplerPlanet]{Name: FieldPeriod, Value: func(k models.KeplerPlanet) Value { return NumberPtr(k.Period) }},
	Field[models.KeplerPlanet]{Name: FieldRadius, Value: func(k models.KeplerPlanet) Value { return NumberPtr(k.Radius) }},
	Field[models.KeplerPlanet]{Name: FieldTemp, Value: func(k models.KeplerPlanet) Value { return NumberPtr(k.EqTemp) }},
	Field[models.KeplerPlanet]{Name: FieldInsolation, Value: func(k models.KeplerPlanet) Value { return NumberPtr(k.Insolation) }},
)

var TessSchema = NewSchema(
	Field[models.TessObject]{Name: FieldID, Value: func(t models.TessObject) Value { return TextOrAbsent(t.Key()) }},
	Field[models.TessObject]{Name: FieldTIC, Value: func(t models.TessObject) Value { return TextOrAbsent(t.TIC()) }, Searchable: true},
	Field[models.TessObject]{Name: FieldTOI, Value: func(t models.TessObject) Value { return TextOrAbsent(t.TOI.String()) }, Searchable: true},
	Field[models.TessObject]{Name: FieldDisposition, Value: func(t models.TessObject) Value { return TextOrAbsent(t.Status()) }, Searchable: true},
	Field[models.TessObject]{Name: FieldPeriod, Value: func(t models.TessObject) Value { return NumberPtr(t.OrbitalPeriod) }},
	Field[models.TessObject]{Name: FieldRadius, Value: func(t models.TessObject) Value { return NumberPtr(t.PlanetRadius) }},
)

var AnnotationSchema = NewSchema(
	Field[models.Annotation]{Name: FieldID, Value: func(a models.Annotation) Value { return TextOrAbsent(a.ID) }},
	Field[models.Annotation]{Name: FieldDataset, Value: func(a models.Annotation) Value { return TextOrAbsent(a.DatasetID) }, Searchable: true},
	Field[models.Annotation]{Name: FieldType, Value: func(a models.Annotation) Value { return TextOrAbsent(a.DatasetType) }},
	Field[models.Annotation]{Name: FieldNotes, Value: func(a models.Annotation) Value { return TextOrAbsent(a.Notes) }, Searchable: true},
	Field[models.Annotation]{
		Name:       FieldTags,
		Value:      func(a models.Annotation) Value { return TextOrAbsent(strings.Join(a.Tags, ", ")) },
		Searchable: true,
	},
)

var PredictionSchema = NewSchema(
	Field[models.PredictionRecord]{Name: FieldID, Value: func(p models.PredictionRecord) Value { return TextOrAbsent(p.ID) }},
	Field[models.PredictionRecord]{
		Name:       FieldName,
		Value:      func(p models.PredictionRecord) Value { return TextOrAbsent(p.ResponseData.CandidateIdentifier) },
		Searchable: true,
	},
	Field[models.PredictionRecord]{
		Name:       FieldType,
		Value:      func(p models.PredictionRecord) Value { return TextOrAbsent(p.ResponseData.Details.PlanetType) },
		Searchable: true,
	},
	Field[models.PredictionRecord]{Name: FieldConfidence, Value: func(p models.PredictionRecord) Value { return Number(p.ResponseData.Confidence) }},
	Field[models.PredictionRecord]{Name: FieldVerdict, Value: func(p models.PredictionRecord) Value {
		if p.ResponseData.IsExoplanet {
			return Text("exoplanet")
		}
		return Text("false positive")
	}},
	// RFC 3339 timestamps sort correctly as text.
	Field[models.PredictionRecord]{Name: FieldCreated, Value: func(p models.PredictionRecord) Value { return TextOrAbsent(p.CreatedAt) }},
)
