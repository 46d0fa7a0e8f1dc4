package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/exoscope/internal/client/texture"
)

// Texture renders a surface texture for a record of the active archive
// (Kepler unless TESS is open) and optionally exports it.
func (a *App) Texture(ctx context.Context, id string, export bool) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	traits, name, err := a.traitsFor(ctx, id)
	if err != nil {
		return a.report(err)
	}

	p := texture.BuildPrompt(traits)
	a.logger.Debug(ctx, "texture requested", "record", id, "class", string(texture.Classify(traits.RadiusEarth)))
	if err := a.textures.Request(ctx, traits); err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Generating a texture for %s...\n", name)
	fmt.Fprintln(a.out, mutedStyle.Render(p.Prompt))

	wctx, cancel := context.WithTimeout(ctx, textureTimeout)
	defer cancel()
	if err := a.textures.Wait(wctx); err != nil {
		return a.report(fmt.Errorf("texture generation: %w", err))
	}

	snap := a.textures.Snapshot()
	if snap.Status != texture.StatusSuccess {
		if snap.Err != nil {
			return a.report(snap.Err)
		}
		return nil
	}
	path, err := a.urls.Path(snap.URL)
	if err != nil {
		return a.report(err)
	}
	renderPairs(a.out, [][2]string{{"Texture", snap.URL}, {"File", path}})

	if export {
		return a.exportTexture(ctx, path)
	}
	return nil
}

func (a *App) traitsFor(ctx context.Context, id string) (texture.PlanetTraits, string, error) {
	if a.active == viewTess {
		t, err := a.datasets.TessGet(ctx, id)
		if err != nil {
			return texture.PlanetTraits{}, "", err
		}
		return texture.PlanetTraits{RadiusEarth: t.PlanetRadius}, "TOI " + text(t.TOI.String()), nil
	}
	k, err := a.datasets.KeplerGet(ctx, id)
	if err != nil {
		return texture.PlanetTraits{}, "", err
	}
	return texture.PlanetTraits{EquilibriumTempK: k.EqTemp, RadiusEarth: k.Radius}, text(k.Name()), nil
}

func (a *App) exportTexture(ctx context.Context, path string) error {
	if a.exporter == nil {
		fmt.Fprintln(a.out, warnStyle.Render("Texture export is not configured (set EXOSCOPE_S3_BUCKET)."))
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return a.report(err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = "application/octet-stream"
	}
	key, err := a.exporter.Export(ctx, texture.Image{Data: data, ContentType: ct})
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Exported to s3://%s/%s\n", a.config.S3Bucket, key)
	return nil
}
