// Package texture turns a planet's physical traits into an AI generated
// surface texture.
//
// BuildPrompt maps equilibrium temperature and radius to a text prompt.
// StabilityClient sends it to the image-generation endpoint. ObjectURLs
// keeps the returned bytes as revocable local file URLs, and Loader ties the
// whole flow to the lifetime of one detail view: a new request cancels the
// previous one, and a superseded result is revoked without being shown.
// Exporter optionally copies a texture to an S3 compatible bucket.
package texture
