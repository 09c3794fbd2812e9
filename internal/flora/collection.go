package flora

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CollectionService orchestrates listing, adding, and removing plants in the
// user's collection. It does not own the in-memory list: after Save or Remove
// the caller patches (or re-lists) its own copy, and when two list calls
// overlap the later response wins.
type CollectionService struct {
	store     SessionStore
	resolver  *EndpointResolver
	client    Doer
	baseURL   string
	endpoints Endpoints
	clock     Clock
	logger    Logger
}

// NewCollectionService creates a CollectionService with the provided dependencies.
func NewCollectionService(store SessionStore, resolver *EndpointResolver, client Doer, baseURL string, endpoints Endpoints, clock Clock, logger Logger) *CollectionService {
	return &CollectionService{
		store:     store,
		resolver:  resolver,
		client:    client,
		baseURL:   baseURL,
		endpoints: endpoints,
		clock:     clock,
		logger:    logger,
	}
}

// List fetches the saved collection. The token gate fires before any HTTP
// request; resolution failures come back as a retryable FetchError. Relative
// image URLs in the response are resolved against the base URL.
func (s *CollectionService) List(ctx context.Context) ([]Plant, error) {
	sess, err := requireSession(s.store, "list plants")
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+sess.Token)

	res, err := s.resolver.Resolve(ctx, http.MethodGet, s.endpoints.ListPlants, header)
	if err != nil {
		return nil, &FetchError{Operation: "plant collection", Err: err}
	}
	defer res.Response.Body.Close()

	raw, err := io.ReadAll(res.Response.Body)
	if err != nil {
		return nil, &FetchError{Operation: "plant collection", Err: err}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &DataFormatError{Operation: "list plants", Expected: "array body"}
	}

	var plants []Plant
	if err := json.Unmarshal(trimmed, &plants); err != nil {
		return nil, &DataFormatError{Operation: "list plants", Expected: "array of plants", Err: err}
	}

	for i := range plants {
		plants[i].ImageURL = ResolveImageURL(s.baseURL, plants[i].ImageURL)
	}

	s.logger.Debug("collection listed", "path", res.Path, "count", len(plants))
	return plants, nil
}

// addPlantRequest is the JSON save payload. The image travels as base64 here,
// unlike the multipart identify upload; the backend contract has kept both
// shapes and they are deliberately not unified.
type addPlantRequest struct {
	Type           string       `json:"type"`
	UserID         string       `json:"user_id"`
	DateAdded      string       `json:"date_added"`
	Name           string       `json:"name"`
	Confidence     float64      `json:"confidence"`
	AllPredictions []Prediction `json:"all_predictions"`
	ImageData      string       `json:"image_data,omitempty"` // base64, no data-URI prefix
}

// Save persists an identification result as a Plant and returns the
// server-assigned record. A missing or empty image is tolerated: the plant is
// saved without image data rather than aborting. The caller appends the
// returned Plant to its own list or re-lists.
func (s *CollectionService) Save(ctx context.Context, result *IdentificationResult, img *Image, name string) (*Plant, error) {
	if result == nil {
		return nil, &ValidationError{Field: "result", Reason: "no identification result to save"}
	}

	sess, err := requireSession(s.store, "save plant")
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = result.PrimaryType
	}

	var imageData string
	if img != nil && len(img.Data) > 0 {
		imageData = base64.StdEncoding.EncodeToString(img.Data)
	} else {
		s.logger.Warn("saving plant without image data", "type", result.PrimaryType)
	}

	payload := addPlantRequest{
		Type:           result.PrimaryType,
		UserID:         sess.UserID,
		DateAdded:      s.clock.Now().UTC().Format(time.RFC3339),
		Name:           name,
		Confidence:     result.Confidence,
		AllPredictions: result.Predictions,
		ImageData:      imageData,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding plant payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(s.baseURL, s.endpoints.AddPlant), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SaveError{Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading save response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("plant save rejected", "status", resp.StatusCode, "detail", string(raw))
		return nil, &SaveError{Status: resp.StatusCode, Body: string(raw)}
	}

	var plant Plant
	if err := json.Unmarshal(raw, &plant); err != nil {
		return nil, &DataFormatError{Operation: "save plant", Expected: "plant object", Err: err}
	}
	plant.ImageURL = ResolveImageURL(s.baseURL, plant.ImageURL)

	s.logger.Info("plant saved", "id", plant.ID, "name", plant.Name)
	return &plant, nil
}

// Remove deletes a plant by id, probing the delete candidate paths. On
// success the caller drops the id from its in-memory list.
func (s *CollectionService) Remove(ctx context.Context, plantID string) error {
	if strings.TrimSpace(plantID) == "" {
		return &ValidationError{Field: "plant id", Reason: "must not be empty"}
	}

	sess, err := requireSession(s.store, "remove plant")
	if err != nil {
		return err
	}

	paths := make([]string, len(s.endpoints.DeletePlants))
	for i, tpl := range s.endpoints.DeletePlants {
		paths[i] = strings.ReplaceAll(tpl, "{id}", url.PathEscape(plantID))
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+sess.Token)

	res, err := s.resolver.Resolve(ctx, http.MethodDelete, paths, header)
	if err != nil {
		return &DeleteError{PlantID: plantID, Err: err}
	}
	io.Copy(io.Discard, res.Response.Body)
	res.Response.Body.Close()

	s.logger.Info("plant removed", "id", plantID, "path", res.Path)
	return nil
}
