package sapling

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrAtlasFormat is returned by LoadAtlas for data that is not a TexturePacker
// atlas it understands.
var ErrAtlasFormat = errors.New("sapling: invalid atlas format")

// AtlasFrame is the packing metadata of one named frame.
type AtlasFrame struct {
	Page    int
	Rect    image.Rectangle // packed rect on the page; width and height are swapped when Rotated
	Rotated bool            // stored 90 degrees clockwise
	Trimmed bool
	OffsetX int // trim offset within the untrimmed sprite
	OffsetY int
	SourceW int // untrimmed size as authored
	SourceH int
}

// Atlas holds page textures and their named frames.
type Atlas struct {
	// Pages are the page textures indexed by page number. Every frame texture
	// is a SubTexture of one of them.
	Pages []*Texture

	frames   map[string]AtlasFrame
	textures map[string]*Texture
}

// Texture returns the texture for the named frame. A missing name yields a
// 1x1 magenta placeholder, logged at warn level in debug mode.
func (a *Atlas) Texture(name string) *Texture {
	if t, ok := a.textures[name]; ok {
		return t
	}
	if globalDebug {
		Logger().Warn("atlas frame not found, using magenta placeholder", "frame", name)
	}
	return magentaTexture()
}

// Frame returns the packing metadata for name.
func (a *Atlas) Frame(name string) (AtlasFrame, bool) {
	f, ok := a.frames[name]
	return f, ok
}

// Names returns the frame names in sorted order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.frames))
	for name := range a.frames {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of frames.
func (a *Atlas) Len() int {
	return len(a.frames)
}

// magenta placeholder singleton (no sync.Once, sapling is single-threaded)
var magentaTex *Texture

func magentaTexture() *Texture {
	if magentaTex == nil {
		img := ebiten.NewImage(1, 1)
		img.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
		magentaTex = NewTexture(img)
	}
	return magentaTex
}

// LoadAtlas parses TexturePacker JSON and wraps pages as textures. Pages may
// be any image.Image; *ebiten.Image pages are drawn directly. Both the hash
// format (a single "frames" object) and the array format (a "textures" array
// with per-page frame lists) are supported.
func LoadAtlas(jsonData []byte, pages []image.Image) (*Atlas, error) {
	var keys struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &keys); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAtlasFormat, err)
	}

	atlas := &Atlas{
		Pages:    make([]*Texture, len(pages)),
		frames:   make(map[string]AtlasFrame),
		textures: make(map[string]*Texture),
	}
	for i, p := range pages {
		if p == nil {
			return nil, fmt.Errorf("sapling: atlas page %d is nil", i)
		}
		atlas.Pages[i] = NewTexture(p)
	}

	switch {
	case keys.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(keys.Textures, &textures); err != nil {
			return nil, fmt.Errorf("%w: textures: %w", ErrAtlasFormat, err)
		}
		for i, tex := range textures {
			if err := atlas.addFrames(tex.Frames, i); err != nil {
				return nil, err
			}
		}
	case keys.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(keys.Frames, &frames); err != nil {
			return nil, fmt.Errorf("%w: frames: %w", ErrAtlasFormat, err)
		}
		if err := atlas.addFrames(frames, 0); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: neither \"frames\" nor \"textures\" key", ErrAtlasFormat)
	}

	Logger().Info("atlas loaded", "pages", len(pages), "frames", len(atlas.frames))
	return atlas, nil
}

func (a *Atlas) addFrames(frames map[string]jsonFrame, page int) error {
	if page >= len(a.Pages) {
		return fmt.Errorf("sapling: atlas references page %d but %d pages were given", page, len(a.Pages))
	}
	for name, f := range frames {
		af := AtlasFrame{
			Page:    page,
			Rect:    image.Rect(f.Frame.X, f.Frame.Y, f.Frame.X+f.Frame.W, f.Frame.Y+f.Frame.H),
			Rotated: f.Rotated,
			Trimmed: f.Trimmed,
			OffsetX: f.SpriteSourceSize.X,
			OffsetY: f.SpriteSourceSize.Y,
			SourceW: f.SourceSize.W,
			SourceH: f.SourceSize.H,
		}
		if f.Rotated {
			af.Rect.Max = image.Pt(f.Frame.X+f.Frame.H, f.Frame.Y+f.Frame.W)
		}
		a.frames[name] = af
		a.textures[name] = a.Pages[page].SubTexture(af.Rect)
	}
	return nil
}

// findAtlasPages claims *Atlas items for Prepare and queues their pages.
func findAtlasPages(item any, queue []any) ([]any, bool) {
	a, ok := item.(*Atlas)
	if !ok {
		return queue, false
	}
	for _, p := range a.Pages {
		queue = appendTexture(queue, p)
	}
	return queue, true
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}
