package sapling

import (
	"errors"
	"image"
	"strings"
	"testing"
)

// --- Test JSON fixtures ---

const singlePageJSON = `{
  "frames": {
    "hero.png": {
      "frame": {"x": 0, "y": 0, "w": 64, "h": 64},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 64, "h": 64},
      "sourceSize": {"w": 64, "h": 64}
    },
    "enemy.png": {
      "frame": {"x": 64, "y": 0, "w": 32, "h": 48},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 32, "h": 48},
      "sourceSize": {"w": 32, "h": 48}
    },
    "trimmed.png": {
      "frame": {"x": 100, "y": 50, "w": 60, "h": 58},
      "rotated": false,
      "trimmed": true,
      "spriteSourceSize": {"x": 2, "y": 3, "w": 60, "h": 58},
      "sourceSize": {"w": 64, "h": 64}
    },
    "rotated.png": {
      "frame": {"x": 200, "y": 0, "w": 48, "h": 32},
      "rotated": true,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 48, "h": 32},
      "sourceSize": {"w": 32, "h": 48}
    }
  },
  "meta": {
    "image": "atlas.png",
    "size": {"w": 1024, "h": 1024}
  }
}`

const multiPageJSON = `{
  "textures": [
    {
      "image": "atlas-0.png",
      "frames": {
        "page0_sprite.png": {
          "frame": {"x": 0, "y": 0, "w": 64, "h": 64},
          "rotated": false,
          "trimmed": false,
          "spriteSourceSize": {"x": 0, "y": 0, "w": 64, "h": 64},
          "sourceSize": {"w": 64, "h": 64}
        }
      }
    },
    {
      "image": "atlas-1.png",
      "frames": {
        "page1_sprite.png": {
          "frame": {"x": 10, "y": 20, "w": 50, "h": 50},
          "rotated": false,
          "trimmed": false,
          "spriteSourceSize": {"x": 0, "y": 0, "w": 50, "h": 50},
          "sourceSize": {"w": 50, "h": 50}
        }
      }
    }
  ]
}`

// --- LoadAtlas tests ---

func rgbaPage(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func loadSinglePage(t testing.TB) *Atlas {
	t.Helper()
	atlas, err := LoadAtlas([]byte(singlePageJSON), []image.Image{rgbaPage(1024, 1024)})
	if err != nil {
		t.Fatalf("LoadAtlas: %v", err)
	}
	return atlas
}

func TestLoadAtlas_SinglePage_FrameCount(t *testing.T) {
	atlas := loadSinglePage(t)
	if got := atlas.Len(); got != 4 {
		t.Errorf("frame count = %d, want 4", got)
	}
	want := []string{"enemy.png", "hero.png", "rotated.png", "trimmed.png"}
	if got := strings.Join(atlas.Names(), ","); got != strings.Join(want, ",") {
		t.Errorf("Names = %s, want %v", got, want)
	}
}

func TestLoadAtlas_TextureLookup_Exists(t *testing.T) {
	atlas := loadSinglePage(t)

	hero := atlas.Texture("hero.png")
	if hero.Frame != image.Rect(0, 0, 64, 64) {
		t.Errorf("hero.png frame = %v, want (0,0)-(64,64)", hero.Frame)
	}
	if hero.Source() != atlas.Pages[0].Source() {
		t.Error("frame texture should share the page image")
	}

	enemy := atlas.Texture("enemy.png")
	if enemy.Frame != image.Rect(64, 0, 96, 48) {
		t.Errorf("enemy.png frame = %v, want (64,0)-(96,48)", enemy.Frame)
	}
	if enemy.Width() != 32 || enemy.Height() != 48 {
		t.Errorf("enemy.png size = %dx%d, want 32x48", enemy.Width(), enemy.Height())
	}
}

func TestLoadAtlas_TextureLookup_Missing_ReturnsMagenta(t *testing.T) {
	atlas := loadSinglePage(t)

	tex := atlas.Texture("nonexistent.png")
	if tex != magentaTexture() {
		t.Error("missing frame should return the magenta placeholder")
	}
	if tex.Width() != 1 || tex.Height() != 1 {
		t.Errorf("placeholder size = %dx%d, want 1x1", tex.Width(), tex.Height())
	}
	if _, ok := atlas.Frame("nonexistent.png"); ok {
		t.Error("Frame should report false for a missing name")
	}
}

func TestLoadAtlas_TrimmedFrame(t *testing.T) {
	atlas := loadSinglePage(t)

	f, ok := atlas.Frame("trimmed.png")
	if !ok {
		t.Fatal("trimmed.png not found")
	}
	if !f.Trimmed || f.OffsetX != 2 || f.OffsetY != 3 {
		t.Errorf("trim = %v %d/%d, want true 2/3", f.Trimmed, f.OffsetX, f.OffsetY)
	}
	if f.SourceW != 64 || f.SourceH != 64 {
		t.Errorf("source size = %d/%d, want 64/64", f.SourceW, f.SourceH)
	}
	if f.Rect.Dx() != 60 || f.Rect.Dy() != 58 {
		t.Errorf("packed size = %d/%d, want 60/58", f.Rect.Dx(), f.Rect.Dy())
	}
}

func TestLoadAtlas_RotatedFrame(t *testing.T) {
	atlas := loadSinglePage(t)

	f, _ := atlas.Frame("rotated.png")
	if !f.Rotated {
		t.Error("rotated.png Rotated = false, want true")
	}
	// The packed rect holds the sprite turned on its side.
	if f.Rect != image.Rect(200, 0, 232, 48) {
		t.Errorf("rotated rect = %v, want (200,0)-(232,48)", f.Rect)
	}
}

func TestLoadAtlas_MultiPage(t *testing.T) {
	pages := []image.Image{rgbaPage(512, 512), rgbaPage(512, 512)}
	atlas, err := LoadAtlas([]byte(multiPageJSON), pages)
	if err != nil {
		t.Fatalf("LoadAtlas: %v", err)
	}

	if got := atlas.Len(); got != 2 {
		t.Errorf("frame count = %d, want 2", got)
	}
	f0, _ := atlas.Frame("page0_sprite.png")
	if f0.Page != 0 {
		t.Errorf("page0_sprite Page = %d, want 0", f0.Page)
	}
	f1, _ := atlas.Frame("page1_sprite.png")
	if f1.Page != 1 {
		t.Errorf("page1_sprite Page = %d, want 1", f1.Page)
	}
	tex := atlas.Texture("page1_sprite.png")
	if tex.Source() != pages[1] || tex.Frame.Min != image.Pt(10, 20) {
		t.Errorf("page1_sprite texture = %v on wrong page or origin", tex.Frame)
	}
}

func TestLoadAtlas_MissingPage(t *testing.T) {
	_, err := LoadAtlas([]byte(multiPageJSON), []image.Image{rgbaPage(64, 64)})
	if err == nil || !strings.Contains(err.Error(), "page 1") {
		t.Errorf("err = %v, want a missing page error", err)
	}
}

func TestLoadAtlas_NilPage(t *testing.T) {
	if _, err := LoadAtlas([]byte(singlePageJSON), []image.Image{nil}); err == nil {
		t.Error("expected error for nil page")
	}
}

func TestLoadAtlas_InvalidJSON(t *testing.T) {
	_, err := LoadAtlas([]byte(`{invalid`), nil)
	if !errors.Is(err, ErrAtlasFormat) {
		t.Errorf("err = %v, want ErrAtlasFormat", err)
	}
}

func TestLoadAtlas_BadFramesShape(t *testing.T) {
	_, err := LoadAtlas([]byte(`{"frames": [1, 2, 3]}`), []image.Image{rgbaPage(4, 4)})
	if !errors.Is(err, ErrAtlasFormat) {
		t.Errorf("err = %v, want ErrAtlasFormat", err)
	}
}

func TestLoadAtlas_NoFramesOrTextures(t *testing.T) {
	_, err := LoadAtlas([]byte(`{"meta":{}}`), nil)
	if !errors.Is(err, ErrAtlasFormat) {
		t.Fatalf("err = %v, want ErrAtlasFormat", err)
	}
	if !strings.Contains(err.Error(), "neither") {
		t.Errorf("error message = %q, want mention of neither", err.Error())
	}
}

func TestPrepareAddAtlasQueuesPages(t *testing.T) {
	pages := []image.Image{rgbaPage(32, 32), rgbaPage(32, 32)}
	atlas, err := LoadAtlas([]byte(multiPageJSON), pages)
	if err != nil {
		t.Fatalf("LoadAtlas: %v", err)
	}
	p, s := newTestPrepare()
	p.Add(atlas)
	p.Add(atlas.Texture("page0_sprite.png"))
	if p.Len() != 2 {
		t.Fatalf("Len = %d, want 2 pages", p.Len())
	}
	p.Tick()
	if len(s.crops) != 2 {
		t.Errorf("draws = %d, want 2", len(s.crops))
	}
}

func TestMagentaTexture_Singleton(t *testing.T) {
	if magentaTexture() != magentaTexture() {
		t.Error("magentaTexture returned different textures")
	}
}

// --- Benchmarks ---

func BenchmarkLoadAtlas_SinglePage(b *testing.B) {
	data := []byte(singlePageJSON)
	pages := []image.Image{rgbaPage(1024, 1024)}
	for b.Loop() {
		_, _ = LoadAtlas(data, pages)
	}
}

func BenchmarkAtlas_Texture_Hit(b *testing.B) {
	atlas := loadSinglePage(b)
	for b.Loop() {
		_ = atlas.Texture("hero.png")
	}
}
