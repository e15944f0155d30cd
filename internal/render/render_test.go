package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/diogo/finassist/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != StyleDark {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji || !opts.PreserveNewLines || !opts.TableWrap {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.InlineTableLinks {
		t.Error("expected InlineTableLinks=false")
	}
}

func TestOptionsWith(t *testing.T) {
	opts := DefaultOptions().WithWidth(120).WithStyle(StyleLight)

	if opts.Width != 120 {
		t.Errorf("expected Width=120, got %d", opts.Width)
	}
	if opts.Style != StyleLight {
		t.Errorf("expected Style='light', got %s", opts.Style)
	}

	if got := opts.WithWidth(0).Width; got != 120 {
		t.Errorf("non-positive width should be ignored, got %d", got)
	}
}

func TestLoadOptions(t *testing.T) {
	t.Setenv(EnvGlamourStyle, "")

	cfg := config.DefaultConfig()
	cfg.Markdown.Style = StyleDracula
	cfg.Markdown.EnableEmoji = false
	cfg.Markdown.InlineTableLinks = true

	opts := LoadOptions(cfg)
	if opts.Style != StyleDracula {
		t.Errorf("Style = %s, want dracula", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("EnableEmoji should follow config")
	}
	if !opts.InlineTableLinks {
		t.Error("InlineTableLinks should follow config")
	}

	cfg.Markdown.Style = ""
	if got := LoadOptions(cfg).Style; got != StyleDark {
		t.Errorf("empty style should keep default, got %s", got)
	}
}

func TestLoadOptions_EnvOverride(t *testing.T) {
	t.Setenv(EnvGlamourStyle, StyleNoTTY)

	cfg := config.DefaultConfig()
	cfg.Markdown.Style = StyleLight

	if got := LoadOptions(cfg).Style; got != StyleNoTTY {
		t.Errorf("Style = %s, want %s from env", got, StyleNoTTY)
	}
}

func TestMarkdown(t *testing.T) {
	ClearCache()

	content := "## Asset Allocation\n\n- **Equity**: 60%\n- **Debt**: 40%\n"
	out, err := Markdown(content, DefaultOptions().WithStyle(StyleNoTTY))
	if err != nil {
		t.Fatalf("Markdown() error: %v", err)
	}

	for _, want := range []string{"Asset Allocation", "Equity", "60%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdown_PoolsPerOptionSet(t *testing.T) {
	ClearCache()

	opts := DefaultOptions().WithStyle(StyleNoTTY)
	for i := 0; i < 3; i++ {
		if _, err := Markdown("hello", opts); err != nil {
			t.Fatalf("Markdown() error: %v", err)
		}
	}
	if CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1", CacheSize())
	}

	if _, err := MarkdownWithWidth("hello", 40); err != nil {
		t.Fatalf("MarkdownWithWidth() error: %v", err)
	}
	if CacheSize() != 2 {
		t.Errorf("CacheSize() = %d, want 2", CacheSize())
	}

	ClearCache()
	if CacheSize() != 0 {
		t.Errorf("CacheSize() after clear = %d", CacheSize())
	}
}

func TestMarkdown_Concurrent(t *testing.T) {
	opts := DefaultOptions().WithStyle(StyleNoTTY)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Markdown("# Title\n\nBody", opts); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render failed: %v", err)
	}
}

func TestMarkdown_InvalidStyle(t *testing.T) {
	opts := DefaultOptions().WithStyle("/nonexistent/style.json")

	if _, err := Markdown("x", opts); err == nil {
		t.Error("expected error for missing style file")
	}
	if got := MarkdownOrPlain("raw text", opts); got != "raw text" {
		t.Errorf("MarkdownOrPlain() = %q, want raw text", got)
	}
}
