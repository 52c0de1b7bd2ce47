package ebitenrender

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/scenecore/assets"
	"github.com/milk9111/scenecore/render"
)

// Textures caches images by texture id. Ids resolve against the embedded
// assets first, then the filesystem.
type Textures struct {
	images map[render.TextureID]*ebiten.Image
	failed map[render.TextureID]bool
}

func NewTextures() *Textures {
	return &Textures{
		images: map[render.TextureID]*ebiten.Image{},
		failed: map[render.TextureID]bool{},
	}
}

// Register stores an image by id.
func (t *Textures) Register(id render.TextureID, img *ebiten.Image) {
	if id == "" || img == nil {
		return
	}
	t.images[id] = img
	delete(t.failed, id)
}

// Get returns a cached image, loading it on first use. Ids that failed to
// load are not retried.
func (t *Textures) Get(id render.TextureID) (*ebiten.Image, error) {
	if id == "" {
		return nil, fmt.Errorf("ebitenrender: empty texture id")
	}
	if img, ok := t.images[id]; ok {
		return img, nil
	}
	if t.failed[id] {
		return nil, fmt.Errorf("ebitenrender: texture %s unavailable", id)
	}
	img, err := loadImage(textureFile(id))
	if err != nil {
		t.failed[id] = true
		return nil, err
	}
	t.images[id] = img
	return img, nil
}

// textureFile maps a bare id such as "hero" to "hero.png".
func textureFile(id render.TextureID) string {
	s := string(id)
	if filepath.Ext(s) == "" {
		s += ".png"
	}
	return s
}

func loadImage(path string) (*ebiten.Image, error) {
	if img, err := assets.LoadImage(path); err == nil {
		return img, nil
	}
	tried := []string{path, filepath.Join("assets", path), filepath.Base(path)}
	for _, p := range tried {
		if b, err := os.ReadFile(p); err == nil {
			if im, _, err := image.Decode(bytes.NewReader(b)); err == nil {
				return ebiten.NewImageFromImage(im), nil
			}
		}
	}
	return nil, fmt.Errorf("ebitenrender: failed to load image %s", path)
}
