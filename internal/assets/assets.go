// Package assets holds the font the framebuffer overlay draws with.
package assets

import "golang.org/x/image/font/gofont/gomono"

// MonoTTF is used for numeric readouts so they do not jitter.
var MonoTTF = gomono.TTF
