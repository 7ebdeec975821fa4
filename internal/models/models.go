// Package models defines data structures used throughout the visitor
// profiling application.
package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Visitor represents one tracked visitor, keyed by the opaque fingerprint the
// client reports. The fingerprint is self-supplied and not verified.
type Visitor struct {
	ID          int            `json:"id"`
	Fingerprint string         `json:"fingerprint"`
	UserAgent   sql.NullString `json:"user_agent"`
	IPAddress   sql.NullString `json:"ip_address"`
	VisitCount  int            `json:"visit_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// MarshalJSON customizes JSON marshaling for Visitor to render sql.NullString fields as nullable strings
func (v Visitor) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID          int       `json:"id"`
		Fingerprint string    `json:"fingerprint"`
		UserAgent   *string   `json:"user_agent"`
		IPAddress   *string   `json:"ip_address"`
		VisitCount  int       `json:"visit_count"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}{
		ID:          v.ID,
		Fingerprint: v.Fingerprint,
		UserAgent:   nullStringToPointer(v.UserAgent),
		IPAddress:   nullStringToPointer(v.IPAddress),
		VisitCount:  v.VisitCount,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	})
}

// Response represents one recorded question/answer pair. Rows are append-only
// and ordered by ID; the greatest ID for a fingerprint is the most recent
// response.
type Response struct {
	ID          int       `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	CreatedAt   time.Time `json:"created_at"`
}

// Question is the transient multiple-choice question returned to the caller.
// Options holds three substantive choices followed by the fixed "other"
// catch-all, four entries total. It is never persisted.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

func nullStringToPointer(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}
