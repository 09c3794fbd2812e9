package flora

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
)

// Identifier submits an acquired image to the identification endpoint and
// normalizes the response into an IdentificationResult.
type Identifier struct {
	store     SessionStore
	client    Doer
	baseURL   string
	endpoints Endpoints
	logger    Logger
}

// NewIdentifier creates an Identifier with the provided dependencies.
func NewIdentifier(store SessionStore, client Doer, baseURL string, endpoints Endpoints, logger Logger) *Identifier {
	return &Identifier{
		store:     store,
		client:    client,
		baseURL:   baseURL,
		endpoints: endpoints,
		logger:    logger,
	}
}

// identifyResponse is the backend's identification body. The echoed image
// reference is decoded but never used; see Identify.
type identifyResponse struct {
	PlantType      string       `json:"plant_type"`
	Confidence     float64      `json:"confidence"`
	AllPredictions []Prediction `json:"all_predictions"`
	ImageURL       string       `json:"image_url"`
}

// Identify uploads the image as a multipart form and returns the normalized
// result. The result's LocalImageRef is always the submitted image's path;
// the backend's echoed reference is discarded, so the preview shows exactly
// what the user uploaded. A failed care-info lookup does not fail the
// identification; the result simply carries no CareInfo.
func (s *Identifier) Identify(ctx context.Context, img *Image) (*IdentificationResult, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, &ValidationError{Field: "image", Reason: "no image data"}
	}

	sess, err := requireSession(s.store, "identify")
	if err != nil {
		return nil, err
	}

	body, contentType, err := buildUploadForm(img)
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(s.baseURL, s.endpoints.Identify), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &IdentificationError{Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading identification response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("identification rejected", "status", resp.StatusCode, "detail", string(raw))
		return nil, &IdentificationError{Status: resp.StatusCode, Body: string(raw)}
	}

	var ir identifyResponse
	if err := json.Unmarshal(raw, &ir); err != nil {
		return nil, &DataFormatError{Operation: "identify", Expected: "identification object", Err: err}
	}

	result := &IdentificationResult{
		PrimaryType:   ir.PlantType,
		Confidence:    ir.Confidence,
		Predictions:   ir.AllPredictions,
		LocalImageRef: img.Ref,
	}

	care, err := s.CareInfo(ctx, result.PrimaryType)
	if err != nil {
		// Identification succeeded; care text is advisory.
		s.logger.Warn("care info unavailable", "type", result.PrimaryType, "error", err)
	} else {
		result.CareInfo = care
	}

	s.logger.Info("image identified", "type", result.PrimaryType, "confidence", result.Confidence)
	return result, nil
}

// CareInfo fetches care instructions for a species type.
func (s *Identifier) CareInfo(ctx context.Context, plantType string) (*CareInfo, error) {
	if strings.TrimSpace(plantType) == "" {
		return nil, &ValidationError{Field: "type", Reason: "must not be empty"}
	}

	sess, err := requireSession(s.store, "care info")
	if err != nil {
		return nil, err
	}

	path := strings.ReplaceAll(s.endpoints.Species, "{type}", url.PathEscape(plantType))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(s.baseURL, path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Operation: "care info", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Operation: "care info", Err: fmt.Errorf("backend returned %d", resp.StatusCode)}
	}

	var care CareInfo
	if err := json.NewDecoder(resp.Body).Decode(&care); err != nil {
		return nil, &DataFormatError{Operation: "care info", Expected: "care object", Err: err}
	}
	return &care, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildUploadForm packs the image into a multipart body under the "file"
// field, carrying the sniffed content type instead of octet-stream.
func buildUploadForm(img *Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`,
		quoteEscaper.Replace(filepath.Base(img.Ref))))
	if img.MIME != "" {
		h.Set("Content-Type", img.MIME)
	}

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
