package cascade_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"cascadelog/internal/cascade"
	"cascadelog/internal/testutil"
)

func galleryFixture() *testutil.ServiceFixture {
	f := testutil.NewServiceFixture()
	f.LogIn()
	f.Backend.GalleryItems = []cascade.GalleryItem{
		{
			ID:        "sub-10",
			HTMLFile:  "https://files/10/index.html",
			CSSFile:   "https://files/10/style.css",
			CreatedAt: time.Date(2024, time.January, 10, 18, 0, 0, 0, time.Local),
		},
		{
			ID:        "sub-12",
			JSFile:    "https://files/12/script.js",
			CreatedAt: time.Date(2024, time.January, 12, 9, 30, 0, 0, time.Local),
		},
	}
	f.Backend.Files = map[string][]byte{
		"https://files/10/index.html": []byte("<h1>day ten</h1>"),
		"https://files/10/style.css":  []byte("h1 { color: teal; }"),
		"https://files/12/script.js":  []byte("console.log('twelve')"),
	}
	return f
}

func TestService_GalleryMonth(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		if _, err := f.Service.GalleryMonth(ctx, 2024, time.January); err == nil {
			t.Error("GalleryMonth() error = nil, want ErrNoSession")
		}
	})

	t.Run("pairs submissions with their days", func(t *testing.T) {
		f := galleryFixture()

		days, err := f.Service.GalleryMonth(ctx, 2024, time.January)
		if err != nil {
			t.Fatalf("GalleryMonth() error = %v", err)
		}
		// January has 31 valid days, none empty.
		if len(days) != 31 {
			t.Fatalf("len(days) = %d, want 31", len(days))
		}

		byDate := make(map[string]cascade.GalleryDay, len(days))
		for _, d := range days {
			byDate[d.Date] = d
		}

		if d := byDate["2024-01-10"]; d.Class != cascade.ClassCompleted || d.Item == nil || d.Item.ID != "sub-10" {
			t.Errorf("Jan 10 = %+v, want completed with sub-10", d)
		}
		if d := byDate["2024-01-11"]; d.Class != cascade.ClassMissed || d.Item != nil {
			t.Errorf("Jan 11 = %+v, want missed with no item", d)
		}
		if d := byDate["2024-01-20"]; d.Class != cascade.ClassLocked {
			t.Errorf("Jan 20 = %+v, want locked", d)
		}
	})
}

func TestService_SyncGallery(t *testing.T) {
	ctx := context.Background()

	t.Run("archives slot files and a composed preview", func(t *testing.T) {
		f := galleryFixture()

		result, err := f.Service.SyncGallery(ctx, 2024, time.January)
		if err != nil {
			t.Fatalf("SyncGallery() error = %v", err)
		}
		if result.Days != 2 {
			t.Errorf("Days = %d, want 2", result.Days)
		}
		// Three slot files plus one preview per day.
		if result.Files != 5 {
			t.Errorf("Files = %d, want 5", result.Files)
		}

		for _, key := range []string{
			"2024-01-10/index.fragment.html",
			"2024-01-10/style.css",
			"2024-01-10/index.html",
			"2024-01-12/script.js",
			"2024-01-12/index.html",
		} {
			if _, ok := f.Mirror.Object(key); !ok {
				t.Errorf("mirror missing %s", key)
			}
		}

		page, _ := f.Mirror.Object("2024-01-10/index.html")
		if !bytes.Contains(page, []byte("<h1>day ten</h1>")) {
			t.Error("preview missing the html fragment")
		}
		if !bytes.Contains(page, []byte("color: teal")) {
			t.Error("preview missing the css")
		}
	})

	t.Run("fails when a slot download fails", func(t *testing.T) {
		f := galleryFixture()
		delete(f.Backend.Files, "https://files/10/style.css")

		if _, err := f.Service.SyncGallery(ctx, 2024, time.January); err == nil {
			t.Error("SyncGallery() error = nil, want download failure")
		}
	})
}

func TestComposePreview(t *testing.T) {
	page, err := cascade.ComposePreview("2024-01-10",
		[]byte("<h1>hello</h1>"),
		[]byte("h1 { margin: 0; }"),
		[]byte("console.log('hi')"))
	if err != nil {
		t.Fatalf("ComposePreview() error = %v", err)
	}

	doc := string(page)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Masterpiece - 2024-01-10",
		"<h1>hello</h1>",
		"h1 { margin: 0; }",
		"console.log('hi')",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("preview missing %q", want)
		}
	}
}
