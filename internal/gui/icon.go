package gui

import (
	_ "embed"
	"strings"

	. "modernc.org/tk9.0"
)

//go:embed assets/appicon.svg
var appIconSVG string

// applyAppIcon sets the window icon. Tk may lack SVG support, in which case
// the default icon stays.
func applyAppIcon() {
	if strings.TrimSpace(appIconSVG) == "" {
		return
	}
	img := NewPhoto(Data(appIconSVG))
	if img == nil {
		return
	}
	App.IconPhoto(img)
}
