package flora

import (
	"net/url"
	"strings"
	"time"
)

// Session is the authenticated identity for this install: the bearer token
// plus the backend's user id and username. Exactly one session exists at a
// time; a successful login or register fully replaces the previous one.
type Session struct {
	Token    string
	UserID   string
	Username string
}

// Prediction is a single candidate species with its confidence, as returned
// by the identification backend. Confidence values lie in [0,1].
type Prediction struct {
	Type       string  `json:"plant_type"`
	Confidence float64 `json:"confidence"`
}

// CareInfo is advisory care text for a species. All fields are free-form
// backend strings; any of them may be empty.
type CareInfo struct {
	Instructions  string `json:"instructions"`
	Watering      string `json:"watering"`
	Sunlight      string `json:"sunlight"`
	Humidity      string `json:"humidity"`
	Temperature   string `json:"temperature"`
	Fertilization string `json:"fertilization"`
}

// Plant is a saved entry in the user's collection. The ID is assigned by the
// backend on save. Plants are never partially updated; the only mutation is
// deletion. ImageURL, once served by the backend, is distinct from the local
// image reference used before the save.
type Plant struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	DateAdded   time.Time    `json:"date_added"`
	ImageURL    string       `json:"image_url,omitempty"`
	Confidence  float64      `json:"confidence"`
	Predictions []Prediction `json:"all_predictions,omitempty"`
}

// IdentificationResult is the transient outcome of one identification call.
// It lives only in memory between identify and save/discard; only its derived
// fields are persisted, as a Plant, via CollectionService.Save.
//
// LocalImageRef always points at the image the user submitted, never at
// whatever reference the backend echoed back: the backend's copy may not be
// resolvable client-side before a save, and the preview must show exactly
// what was uploaded.
type IdentificationResult struct {
	PrimaryType   string
	Confidence    float64
	Predictions   []Prediction // ordered by descending confidence, as returned
	LocalImageRef string
	CareInfo      *CareInfo // nil when the care lookup failed or returned nothing
}

// Image is a locally acquired image, ready for upload or embedding.
type Image struct {
	Ref  string // absolute path of the source file
	MIME string
	Data []byte
}

// Endpoints holds the backend paths per logical operation. List and delete
// carry ordered candidate lists: the backend renamed those routes across
// revisions, and probing the candidates in order tolerates any of them
// without version negotiation. The current backend needs only the canonical
// path, so the defaults are single-element lists.
type Endpoints struct {
	Login    string
	Register string
	Identify string
	AddPlant string
	Species  string // contains the {type} placeholder
	Account  string

	ListPlants   []string
	DeletePlants []string // each contains the {id} placeholder
}

// DefaultEndpoints returns the canonical paths of the current backend
// revision.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:        "/api/auth/login",
		Register:     "/api/auth/register",
		Identify:     "/api/identify/",
		AddPlant:     "/api/plants/",
		Species:      "/api/plant-species/{type}",
		Account:      "/api/users/me",
		ListPlants:   []string{"/api/plants/"},
		DeletePlants: []string{"/api/plants/{id}"},
	}
}

// joinURL joins a base URL and an absolute path without doubling slashes.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// ResolveImageURL resolves a backend-served image URL against the configured
// base URL. Paths beginning with "/" are relative to the backend; URLs that
// are already absolute pass through unchanged. Empty input stays empty.
func ResolveImageURL(base, imageURL string) string {
	if imageURL == "" {
		return ""
	}
	if u, err := url.Parse(imageURL); err == nil && u.IsAbs() {
		return imageURL
	}
	if strings.HasPrefix(imageURL, "/") {
		return joinURL(base, imageURL)
	}
	return imageURL
}
