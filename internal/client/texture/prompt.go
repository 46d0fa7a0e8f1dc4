package texture

import "strings"

// PlanetTraits are the measurements the prompt depends on. Nil means the
// archive has no value.
type PlanetTraits struct {
	EquilibriumTempK *float64
	RadiusEarth      *float64
}

// Prompt is the request text sent to the image model.
type Prompt struct {
	Prompt         string
	NegativePrompt string
}

type PlanetClass string

const (
	ClassRocky       PlanetClass = "rocky"
	ClassMiniNeptune PlanetClass = "mini-neptune"
	ClassNeptuneLike PlanetClass = "neptune-like"
)

const negativePrompt = "seam, visible edge, border, abrupt change, stars, galaxy, nebula, space background, " +
	"unrealistic, 3d render, text, watermark, signature, ugly, blurry, cartoony, earth"

// Classify sizes a planet by radius in Earth radii. Unknown radius is rocky.
func Classify(radius *float64) PlanetClass {
	switch {
	case radius == nil:
		return ClassRocky
	case *radius > 4:
		return ClassNeptuneLike
	case *radius > 1.7:
		return ClassMiniNeptune
	default:
		return ClassRocky
	}
}

func (c PlanetClass) gaseous() bool { return c != ClassRocky }

// below reports t < limit. An unknown temperature is below no limit, so it
// falls through to the hottest band.
func below(t *float64, limit float64) bool {
	return t != nil && *t < limit
}

// BuildPrompt describes an equirectangular, horizontally tileable surface
// map for the planet.
func BuildPrompt(p PlanetTraits) Prompt {
	var b strings.Builder
	b.WriteString("Create a 2D image that will be used as a texture map on a 3D sphere. " +
		"The left and right edges MUST be perfectly identical to create a seamless, horizontally tileable texture. " +
		"This is an equirectangular projection of a planet's surface. ")
	b.WriteString("STYLE: Photorealistic, high-resolution satellite imagery, NASA scientific visualization style, hyper-detailed. ")

	t := p.EquilibriumTempK
	if Classify(p.RadiusEarth).gaseous() {
		b.WriteString("SUBJECT: The swirling cloud tops of a gas giant planet. ")
		if below(t, 200) {
			b.WriteString("FEATURES: Calm, parallel bands of frozen ammonia and methane clouds in white, pale blue, and light grey. ")
		} else {
			b.WriteString("FEATURES: Dynamic, turbulent bands of colored gas in orange, brown, cream, and white. Massive hurricane-like storm systems. ")
		}
	} else {
		b.WriteString("SUBJECT: The solid, rocky surface of a terrestrial planet as seen from orbit. ")
		switch {
		case below(t, 150):
			b.WriteString("FEATURES: A deep-freeze iceball world. The entire surface is thick, cracked glaciers of white and blue water ice. ")
		case below(t, 273):
			b.WriteString("FEATURES: A frigid world with large polar ice caps, continents of barren frost-covered rock, and dark frozen oceans. ")
		case below(t, 373):
			b.WriteString("FEATURES: A temperate world with liquid water, green forests, yellow deserts, and snow-capped mountains, separated by deep blue oceans. ")
		case below(t, 600):
			b.WriteString("FEATURES: A hot, arid desert planet. The surface is a vast, dry expanse of red and orange rock and sand dunes. ")
		case below(t, 900):
			b.WriteString("FEATURES: A scorching hot volcanic world with black volcanic rock and glowing orange rivers of molten lava. ")
		default:
			b.WriteString("FEATURES: An extreme, molten-surface planet. The entire surface is a glowing, churning ocean of red and yellow magma. ")
		}
	}
	b.WriteString("Include a few scattered, ancient impact craters for realism. ")

	return Prompt{Prompt: b.String(), NegativePrompt: negativePrompt}
}
