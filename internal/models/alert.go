// Package models defines the canonical alert entity and the run reporting
// types shared by the collector, normalizer, repository, and orchestrator.
package models

import "time"

// Alert is the canonical normalized record persisted to the alertas table.
// ID, CreatedAt, and UpdatedAt are assigned by the store on insert.
type Alert struct {
	ID                     int64      `json:"id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	SourceType             string     `json:"source_type"`
	Category               string     `json:"category"`
	Country                string     `json:"country"`
	SourceURL              *string    `json:"source_url,omitempty"`
	Institution            *string    `json:"institution,omitempty"`
	PresentationDate       *time.Time `json:"presentation_date,omitempty"`
	MetadataNotaURL        *string    `json:"metadata_nota_url,omitempty"`
	MetadataPublicacionURL *string    `json:"metadata_publicacion_url,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// RawRecord is the loosely-typed key/value output of a collector. Recognized
// keys are documented on normalizer.Normalize; unrecognized keys are ignored.
type RawRecord map[string]any
