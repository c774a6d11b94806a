package scene

import (
	_ "embed"

	"github.com/taigrr/diorama/pkg/render"
)

//go:embed default.yaml
var defaultScene []byte

// Default returns the built-in diorama.
func Default(store *render.TextureStore, log Logger) (*Scene, error) {
	return Parse(defaultScene, ".", store, log)
}
