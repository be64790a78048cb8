package yield

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"farmgrid/internal/httputil"
)

// Request is the prediction service input.
type Request struct {
	Humidity    float64  `json:"humidity"`
	Temperature float64  `json:"temperature"`
	Nutrient    Nutrient `json:"nutrient"`
}

// Ranked is one (crop, value) pair. Predictors return them best first.
type Ranked struct {
	Crop  string
	Value float64
}

// Predictor returns the ranked crops for a request.
type Predictor interface {
	Predict(ctx context.Context, req Request) ([]Ranked, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, req Request) ([]Ranked, error)

// Predict calls f.
func (f PredictorFunc) Predict(ctx context.Context, req Request) ([]Ranked, error) {
	return f(ctx, req)
}

// Response is the wire form returned by the prediction service.
type Response struct {
	Yields [][]json.RawMessage `json:"yields"`
}

// HTTPPredictor posts requests to a prediction endpoint.
type HTTPPredictor struct {
	Client   httputil.HTTPClient
	Endpoint string
}

// Predict posts req as JSON and decodes the ranked list.
func (p *HTTPPredictor) Predict(ctx context.Context, req Request) ([]Ranked, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build prediction request: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	data, err := httputil.ReadOK(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return DecodeRanked(data)
}

// DecodeRanked parses a {"yields": [[name, value], ...]} payload. Only the
// top entry must carry a string name and a numeric value; malformed entries
// after it are dropped.
func DecodeRanked(data []byte) ([]Ranked, error) {
	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(r.Yields) == 0 {
		return nil, fmt.Errorf("%w: empty yields", ErrBadResponse)
	}
	top, err := decodeEntry(r.Yields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: top entry: %v", ErrBadResponse, err)
	}
	out := make([]Ranked, 1, len(r.Yields))
	out[0] = top
	for _, entry := range r.Yields[1:] {
		if rk, err := decodeEntry(entry); err == nil {
			out = append(out, rk)
		}
	}
	return out, nil
}

func decodeEntry(entry []json.RawMessage) (Ranked, error) {
	var rk Ranked
	if len(entry) < 2 || isNull(entry[0]) || isNull(entry[1]) {
		return rk, errors.New("incomplete entry")
	}
	if err := json.Unmarshal(entry[0], &rk.Crop); err != nil {
		return rk, fmt.Errorf("name: %v", err)
	}
	if err := json.Unmarshal(entry[1], &rk.Value); err != nil {
		return rk, fmt.Errorf("value: %v", err)
	}
	return rk, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// EncodeRanked builds the wire form of ranked.
func EncodeRanked(ranked []Ranked) Response {
	r := Response{Yields: make([][]json.RawMessage, 0, len(ranked))}
	for _, rk := range ranked {
		name, _ := json.Marshal(rk.Crop)
		val, _ := json.Marshal(rk.Value)
		r.Yields = append(r.Yields, []json.RawMessage{name, val})
	}
	return r
}
