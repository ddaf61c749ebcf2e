package cascade

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

// GalleryDay is one calendar day of the gallery view.
type GalleryDay struct {
	Date  string
	Class DayClass
	Item  *GalleryItem // nil unless Class is ClassCompleted
}

// GalleryMonth returns the classified days of a month, pairing completed
// days with their persisted submissions.
func (s *Service) GalleryMonth(ctx context.Context, year int, month time.Month) ([]GalleryDay, error) {
	sess, err := s.CurrentSession()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	items, err := s.backend.GalleryMonth(ctx, sess.Token, year, month)
	if err != nil {
		return nil, fmt.Errorf("fetching gallery: %w", err)
	}

	byDate := make(map[string]*GalleryItem, len(items))
	submitted := make(map[string]bool, len(items))
	for i := range items {
		item := &items[i]
		if item.Date == "" {
			item.Date = Day(item.CreatedAt)
		}
		byDate[item.Date] = item
		submitted[item.Date] = true
	}

	classes := ClassifyMonth(year, month, submitted, s.clock.Now())
	days := make([]GalleryDay, 0, DaysIn(year, month))
	for i, class := range classes {
		if class == ClassEmpty {
			continue
		}
		date := DayOf(year, month, i+1)
		days = append(days, GalleryDay{Date: date, Class: class, Item: byDate[date]})
	}
	return days, nil
}

// SyncResult summarizes a gallery sync run.
type SyncResult struct {
	Days  int // submissions archived
	Files int // individual objects written
}

// SyncGallery archives one month of submissions into the configured mirror.
// For each completed day it stores the raw slot files under
// "<date>/<name>" plus a composed standalone preview page "<date>/index.html".
func (s *Service) SyncGallery(ctx context.Context, year int, month time.Month) (*SyncResult, error) {
	if s.mirror == nil {
		return nil, fmt.Errorf("no mirror configured")
	}
	if err := s.mirror.ValidateSetup(); err != nil {
		return nil, fmt.Errorf("validating mirror: %w", err)
	}

	days, err := s.GalleryMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	for _, day := range days {
		if day.Item == nil {
			continue
		}

		var parts struct{ html, css, js []byte }
		slots := []struct {
			url  string
			name string
			dest *[]byte
		}{
			{day.Item.HTMLFile, "index.fragment.html", &parts.html},
			{day.Item.CSSFile, "style.css", &parts.css},
			{day.Item.JSFile, "script.js", &parts.js},
		}
		for _, slot := range slots {
			if slot.url == "" {
				continue
			}
			var buf bytes.Buffer
			if err := s.backend.FetchFile(ctx, slot.url, &buf); err != nil {
				return result, fmt.Errorf("downloading %s for %s: %w", slot.name, day.Date, err)
			}
			*slot.dest = buf.Bytes()
			key := day.Date + "/" + slot.name
			if err := s.mirror.PutObject(key, bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
				return result, fmt.Errorf("storing %s: %w", key, err)
			}
			result.Files++
		}

		page, err := ComposePreview(day.Date, parts.html, parts.css, parts.js)
		if err != nil {
			return result, fmt.Errorf("composing preview for %s: %w", day.Date, err)
		}
		key := day.Date + "/index.html"
		if err := s.mirror.PutObject(key, bytes.NewReader(page), int64(len(page))); err != nil {
			return result, fmt.Errorf("storing %s: %w", key, err)
		}
		result.Files++
		result.Days++
		s.logger.Debug("archived submission", "date", day.Date)
	}

	s.logger.Info("gallery sync complete", "days", result.Days, "files", result.Files)
	return result, nil
}

// previewTemplate composes the three slots into one standalone document,
// the same shape the web client builds for previews and downloads.
var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Masterpiece - {{.Date}}</title>
    <style>{{.CSS}}</style>
</head>
<body>
    {{.HTML}}
    <script>{{.JS}}</script>
</body>
</html>
`))

// ComposePreview renders a standalone preview page for one day's files.
// The html fragment is trusted as-is — it is the user's own submission.
func ComposePreview(date string, htmlPart, cssPart, jsPart []byte) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Date string
		HTML template.HTML
		CSS  template.CSS
		JS   template.JS
	}{
		Date: date,
		HTML: template.HTML(htmlPart),
		CSS:  template.CSS(cssPart),
		JS:   template.JS(jsPart),
	}
	if err := previewTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
