package gallery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const productHtml = `<html><body>
<img class="main-image" src="/img/main.jpg" srcset="/img/main.jpg 1x">
<div class="collection-list-thumb">
  <img class="thumb" src="/img/small-1.jpg" data-src="/img/1.jpg">
  <img class="thumb" src="/img/main.jpg">
  <img class="thumb" src="/img/2.jpg">
</div>
</body></html>`

func TestParseInsertsMainThumb(t *testing.T) {
	g, err := Parse(strings.NewReader(productHtml))
	if err != nil {
		t.Fatal(err)
	}
	if g == nil || len(g.Thumbs) != 4 {
		t.Fatalf("Expected 4 thumbs, got %v", g)
	}
	if g.Thumbs[0].Src != "/img/main.jpg" || !g.Thumbs[0].Active || g.Active() != 0 {
		t.Errorf("Expected main image as active first thumb, got %+v", g.Thumbs[0])
	}
	if g.Thumbs[1].Src != "/img/1.jpg" {
		t.Errorf("Expected data-src to win, got %s", g.Thumbs[1].Src)
	}
}

func TestSelect(t *testing.T) {
	g, _ := Parse(strings.NewReader(productHtml))

	if swap := g.Select(0); swap.Changed {
		t.Errorf("Expected no change for active thumb")
	}
	if swap := g.Select(2); swap.Changed {
		t.Errorf("Expected no change for thumb equal to main image")
	}
	if swap := g.Select(9); swap.Changed {
		t.Errorf("Expected no change for unknown thumb")
	}

	swap := g.Select(3)
	if !swap.Changed || swap.Src != "/img/2.jpg" || swap.Srcset != "/img/2.jpg" || swap.Fade != FadeDuration {
		t.Errorf("Expected swap to 2.jpg, got %+v", swap)
	}
	if g.Active() != 3 || g.Thumbs[0].Active || !g.Thumbs[3].Active {
		t.Errorf("Expected thumb 3 active, got %+v", g.Thumbs)
	}

	swap = g.Select(0)
	if !swap.Changed || g.MainSrc != "/img/main.jpg" {
		t.Errorf("Expected swap back to main, got %+v", swap)
	}
}

func TestMissingGallery(t *testing.T) {
	g, err := Parse(strings.NewReader(`<img class="main-image" src="/a.jpg"><div class="collection-list-thumb"></div>`))
	if err != nil {
		t.Fatal(err)
	}
	if g != nil {
		t.Errorf("Expected nil gallery, got %+v", g)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g, _ := Parse(strings.NewReader(productHtml))
	c := g.Clone()
	c.Select(1)
	if g.Active() != 0 || g.Thumbs[1].Active {
		t.Errorf("Expected original to be untouched")
	}
}

func TestLoaderReadsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "xt-100.html"), []byte(productHtml), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plain.html"), []byte(`<p>no images</p>`), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(dir, 0)

	first, err := l.Load(context.Background(), "xt-100")
	if err != nil {
		t.Fatal(err)
	}
	first.Select(3)
	second, err := l.Load(context.Background(), "xt-100")
	if err != nil {
		t.Fatal(err)
	}
	if second.Active() != 0 {
		t.Errorf("Expected a fresh gallery, got active %d", second.Active())
	}

	if _, err := l.Load(context.Background(), "plain"); !errors.Is(err, ErrNoGallery) {
		t.Errorf("Expected ErrNoGallery, got %v", err)
	}
	if _, err := l.Load(context.Background(), "../secret"); err == nil {
		t.Errorf("Expected error for path slug")
	}
}
