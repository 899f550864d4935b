package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TriState encodes a yes/no/unknown attribute such as vaccination status.
// The numeric values are the stored representation.
type TriState int

const (
	TriYes     TriState = 0
	TriNo      TriState = 1
	TriUnknown TriState = 2
)

func (t TriState) Valid() bool {
	return t == TriYes || t == TriNo || t == TriUnknown
}

func (t TriState) String() string {
	switch t {
	case TriYes:
		return "yes"
	case TriNo:
		return "no"
	default:
		return "unknown"
	}
}

// ParseTriState parses a user-supplied tri-state value. It accepts English
// and Portuguese words as well as the numeric codes. Anything else returns
// nil, which callers treat as "no filter" rather than an error.
func ParseTriState(raw string) *TriState {
	var t TriState
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "sim", "0":
		t = TriYes
	case "no", "nao", "não", "1":
		t = TriNo
	case "unknown", "nao sei", "não sei", "2":
		t = TriUnknown
	default:
		return nil
	}
	return &t
}

// Listing is a pet adoption advertisement. Location is denormalized from the
// owner's profile at save time so browse filters never join on users.
type Listing struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	OwnerID    uuid.UUID  `json:"owner_id" db:"owner_id"`
	Name       string     `json:"name" db:"name"`
	Species    string     `json:"species" db:"species"`
	Breed      *string    `json:"breed" db:"breed"`
	Color      *string    `json:"color" db:"color"`
	Sex        *string    `json:"sex" db:"sex"`
	ApproxAge  *string    `json:"approx_age" db:"approx_age"`
	Vaccinated TriState   `json:"vaccinated" db:"vaccinated"`
	Neutered   TriState   `json:"neutered" db:"neutered"`
	PhotoPath  *string    `json:"photo_path" db:"photo_path"`
	StateCode  string     `json:"state_code" db:"state_code"`
	CityName   string     `json:"city_name" db:"city_name"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	Active     bool       `json:"active" db:"active"`
	ExpiresAt  *time.Time `json:"expires_at" db:"expires_at"`
}

// ListingFilter describes a conjunctive listing search. Zero-valued fields
// apply no predicate.
type ListingFilter struct {
	Species    string
	Breed      string
	Sex        string
	Vaccinated *TriState
	Neutered   *TriState
	StateCode  string
	CityName   string
	OwnerID    *uuid.UUID
	ActiveOnly bool
}

// LocationOption is a (state, city) pair that currently has at least one
// active listing.
type LocationOption struct {
	StateCode string `json:"state_code"`
	CityName  string `json:"city_name"`
}
