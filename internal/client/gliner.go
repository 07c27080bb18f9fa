// Package client holds the HTTP clients for the external collaborators: the
// entity extraction model, the Nominatim geocoder, and the Overpass POI
// source.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vietnam-explorer/api/internal/entity"
)

const (
	extractorTimeout = 30 * time.Second
	// Delay before the single retry when the hosted model reports it is
	// still loading.
	modelLoadingDelay = 2 * time.Second
)

// Entity labels requested from the model.
var glinerLabels = []string{"location", "place", "distance", "radius", "food", "service", "amenity"}

// GlinerClient calls the hosted Gliner NER model. Extraction never fails
// outwards: any error degrades to an empty entity list so the rule-based
// parser can operate alone.
type GlinerClient struct {
	httpClient *http.Client
	apiURL     string
	token      string
	retryDelay time.Duration
	log        *zap.Logger
}

// NewGlinerClient builds the extractor client. A nil httpClient gets a
// default with the extractor timeout.
func NewGlinerClient(httpClient *http.Client, apiURL, token string, log *zap.Logger) *GlinerClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: extractorTimeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GlinerClient{
		httpClient: httpClient,
		apiURL:     apiURL,
		token:      token,
		retryDelay: modelLoadingDelay,
		log:        log,
	}
}

type glinerRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters glinerParameters `json:"parameters"`
}

type glinerParameters struct {
	Labels []string `json:"labels"`
}

type glinerEntity struct {
	EntityGroup string `json:"entity_group"`
	Label       string `json:"label"`
	Word        string `json:"word"`
}

// Extract returns the labeled spans the model found in text, or nil when the
// model is unreachable, errors, or returns a payload we cannot read. A
// "model loading" response is retried exactly once after a fixed delay.
func (c *GlinerClient) Extract(ctx context.Context, text string) []entity.NamedEntity {
	status, body, err := c.post(ctx, text)
	if err != nil {
		c.log.Warn("entity extraction request failed", zap.Error(err))
		return nil
	}

	if status == http.StatusServiceUnavailable {
		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			return nil
		}
		status, body, err = c.post(ctx, text)
		if err != nil {
			c.log.Warn("entity extraction retry failed", zap.Error(err))
			return nil
		}
	}

	if status != http.StatusOK {
		c.log.Warn("entity extraction returned non-200", zap.Int("status", status))
		return nil
	}

	var raw []glinerEntity
	if err := json.Unmarshal(body, &raw); err != nil {
		c.log.Warn("entity extraction payload malformed", zap.Error(err))
		return nil
	}

	entities := make([]entity.NamedEntity, 0, len(raw))
	for _, e := range raw {
		label := e.EntityGroup
		if label == "" {
			label = e.Label
		}
		if label == "" || e.Word == "" {
			continue
		}
		entities = append(entities, entity.NamedEntity{Label: label, Word: e.Word})
	}
	return entities
}

func (c *GlinerClient) post(ctx context.Context, text string) (int, []byte, error) {
	payload, err := json.Marshal(glinerRequest{
		Inputs:     text,
		Parameters: glinerParameters{Labels: glinerLabels},
	})
	if err != nil {
		return 0, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, extractorTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}
