package render

import (
	"context"
	"html/template"

	"termcolor/internal/hooks"
	id "termcolor/pkg/domain"
)

// ColorPickerHandle is the host's bundled color picker, used for both the
// stylesheet and the script.
const ColorPickerHandle = "wp-color-picker"

const (
	headStyles template.HTML = `<style type="text/css">
	.column-color { width: 50px; }
	.column-color .color-block { display: inline-block; width: 28px; height: 28px; border: 1px solid #ddd; border-radius: 50%; }
</style>`

	footerScript template.HTML = `<script type="text/javascript">
	jQuery( document ).ready( function( $ ) {
		$( '.color-picker' ).wpColorPicker();
	} );
</script>`
)

// AssetLoader enqueues the color picker on the term screens of one taxonomy.
type AssetLoader struct {
	taxonomy id.Taxonomy
}

func NewAssetLoader(taxonomy id.Taxonomy) AssetLoader {
	return AssetLoader{taxonomy: taxonomy}
}

// Enqueue adds the picker assets when screen lists or edits terms of the
// loader's taxonomy. Any other screen is left alone.
func (l AssetLoader) Enqueue(_ context.Context, screen hooks.Screen, assets *hooks.Assets) {
	if assets == nil || !screen.IsTermScreen(l.taxonomy) {
		return
	}
	assets.EnqueueStyle(ColorPickerHandle)
	assets.EnqueueScript(ColorPickerHandle)
	assets.AddHead(headStyles)
	assets.AddFooter(footerScript)
}
