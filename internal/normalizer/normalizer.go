// Package normalizer maps raw collector records onto the canonical Alert
// schema. Absent keys map to zero values; only wrong-typed or unparseable
// values reject a record, and a rejected record never aborts its siblings.
package normalizer

import (
	"fmt"
	"time"

	"github.com/vigiasalud/alert-ingestor/internal/models"
)

// Error describes a raw record that could not be mapped to the canonical
// schema. The offending record is dropped; processing continues.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("normalize field %q: %s", e.Field, e.Reason)
}

// dateLayouts are tried in order for string-typed presentation dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
}

// Normalize maps a raw record from the named source onto an Alert. Recognized
// keys: title, description, source_type, category, country, source_url,
// institution, presentation_date, and metadata. The metadata value is either a
// mapping with optional nota_url/publicacion_url keys or a bare string treated
// as nota_url. When source_type is absent the source name is used.
func Normalize(source string, raw models.RawRecord) (*models.Alert, error) {
	if raw == nil {
		return nil, &Error{Field: "record", Reason: "record is nil"}
	}

	title, err := stringValue(raw, "title")
	if err != nil {
		return nil, err
	}
	description, err := stringValue(raw, "description")
	if err != nil {
		return nil, err
	}
	sourceType, err := stringValue(raw, "source_type")
	if err != nil {
		return nil, err
	}
	if sourceType == "" {
		sourceType = source
	}
	category, err := stringValue(raw, "category")
	if err != nil {
		return nil, err
	}
	country, err := stringValue(raw, "country")
	if err != nil {
		return nil, err
	}
	sourceURL, err := optionalString(raw, "source_url")
	if err != nil {
		return nil, err
	}
	institution, err := optionalString(raw, "institution")
	if err != nil {
		return nil, err
	}
	presented, err := presentationDate(raw)
	if err != nil {
		return nil, err
	}
	notaURL, publicacionURL, err := metadataURLs(raw)
	if err != nil {
		return nil, err
	}

	return &models.Alert{
		Title:                  title,
		Description:            description,
		SourceType:             sourceType,
		Category:               category,
		Country:                country,
		SourceURL:              sourceURL,
		Institution:            institution,
		PresentationDate:       presented,
		MetadataNotaURL:        notaURL,
		MetadataPublicacionURL: publicacionURL,
	}, nil
}

func stringValue(raw models.RawRecord, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &Error{Field: key, Reason: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

func optionalString(raw models.RawRecord, key string) (*string, error) {
	s, err := stringValue(raw, key)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func presentationDate(raw models.RawRecord) (*time.Time, error) {
	v, ok := raw["presentation_date"]
	if !ok || v == nil {
		return nil, nil
	}

	switch d := v.(type) {
	case time.Time:
		return &d, nil
	case *time.Time:
		return d, nil
	case string:
		if d == "" {
			return nil, nil
		}
		for _, layout := range dateLayouts {
			if parsed, parseErr := time.Parse(layout, d); parseErr == nil {
				return &parsed, nil
			}
		}
		return nil, &Error{Field: "presentation_date", Reason: fmt.Sprintf("unparseable date %q", d)}
	default:
		return nil, &Error{Field: "presentation_date", Reason: fmt.Sprintf("expected time or string, got %T", v)}
	}
}

func metadataURLs(raw models.RawRecord) (notaURL, publicacionURL *string, err error) {
	v, ok := raw["metadata"]
	if !ok || v == nil {
		return nil, nil, nil
	}

	switch m := v.(type) {
	case map[string]any:
		meta := models.RawRecord(m)
		notaURL, err = optionalString(meta, "nota_url")
		if err != nil {
			return nil, nil, &Error{Field: "metadata.nota_url", Reason: "expected string"}
		}
		publicacionURL, err = optionalString(meta, "publicacion_url")
		if err != nil {
			return nil, nil, &Error{Field: "metadata.publicacion_url", Reason: "expected string"}
		}
		return notaURL, publicacionURL, nil
	case string:
		// Bare metadata value is treated as the secondary note link.
		if m == "" {
			return nil, nil, nil
		}
		return &m, nil, nil
	default:
		return nil, nil, &Error{Field: "metadata", Reason: fmt.Sprintf("expected mapping or string, got %T", v)}
	}
}
