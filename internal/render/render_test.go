package render

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bilgisen/repurpose/internal/models"
)

func content() *models.Content {
	c := &models.Content{OriginalScript: "Original **script** text"}
	c.SetVariant(models.VariantTikTok, json.RawMessage(`{"hook":"Stop scrolling","script":"Here is the trick","trendSuggestion":"fast cuts","hashtags":["#ai","#tips"]}`))
	c.SetVariant(models.VariantThread, json.RawMessage(`{"hook":"A thread","tweets":["one","two"],"cta":"Follow"}`))
	c.SetVariant(models.VariantBlog, json.RawMessage(`{"title":"Learn AI","content":"Intro paragraph.\n\n## Step one\n\nDo it.","keyPoints":["a","b"]}`))
	c.SetVariant(models.VariantCarousel, json.RawMessage(`{}`))
	return c
}

func TestTextOriginal(t *testing.T) {
	for _, v := range []string{"", models.VariantOriginal} {
		got, err := Text(content(), v)
		if err != nil || got != "Original **script** text" {
			t.Errorf("Text(%q) = %q, %v", v, got, err)
		}
	}
}

func TestTextVariants(t *testing.T) {
	tests := []struct {
		variant string
		want    string
	}{
		{models.VariantTikTok, "Stop scrolling\n\nHere is the trick\n\nTrend: fast cuts\n\n#ai #tips"},
		{models.VariantThread, "A thread\n\n1/ one\n\n2/ two\n\nFollow"},
		{models.VariantBlog, "# Learn AI\n\nIntro paragraph.\n\n## Step one\n\nDo it.\n\n- a\n- b"},
	}
	for _, tt := range tests {
		got, err := Text(content(), tt.variant)
		if err != nil {
			t.Fatalf("Text(%s): %v", tt.variant, err)
		}
		if got != tt.want {
			t.Errorf("Text(%s) = %q, want %q", tt.variant, got, tt.want)
		}
	}
}

func TestTextMissingVariant(t *testing.T) {
	for _, v := range []string{models.VariantYouTube, models.VariantCarousel, "myspace"} {
		if _, err := Text(content(), v); !errors.Is(err, ErrVariantNotFound) {
			t.Errorf("Text(%s) error = %v, want ErrVariantNotFound", v, err)
		}
	}
}

func TestCopyHTML(t *testing.T) {
	got, err := Copy(content(), models.VariantBlog, FormatHTML)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	for _, want := range []string{"<h1>Learn AI</h1>", "<h2>Step one</h2>", "<li>a</li>"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %s", want, got)
		}
	}

	got, err = Copy(content(), models.VariantOriginal, FormatHTML)
	if err != nil || !strings.Contains(got, "<strong>script</strong>") {
		t.Errorf("unexpected original html %q, %v", got, err)
	}
}

func TestCopyUnknownFormat(t *testing.T) {
	if _, err := Copy(content(), models.VariantOriginal, "pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestHTMLDropsRawHTML(t *testing.T) {
	got, err := HTML("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw html was not dropped: %s", got)
	}
}
