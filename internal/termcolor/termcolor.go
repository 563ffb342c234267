// Package termcolor attaches a hex color to taxonomy terms of a host CMS.
//
// Subpackages split the work: color validates values, store persists them as
// term metadata, service reads and saves them, render produces the admin
// markup and extension binds everything to the host's hooks.
package termcolor

// Form names shared by the renderer that emits the fields and the service
// that reads them back.
const (
	// ColorField is the name of the posted color input.
	ColorField = "mg_term_color"
	// ColorInputID is the DOM id of the color input.
	ColorInputID = "mg-term-color"
	// NonceField is the name of the posted CSRF token.
	NonceField = "mg_term_color_nonce"
	// NonceAction binds CSRF tokens to this form.
	NonceAction = "term_color"
	// ColumnKey is the list table column owned by the extension.
	ColumnKey = "color"
	// TextDomain scopes translatable labels.
	TextDomain = "mg"
)
