package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/knitli/codeweaver/internal/types"
)

// httpEmbeddingProvider is the shared base client backing the `local`
// and `openai-compatible` embedding backends: both speak the same
// OpenAI-shaped `/embeddings` request/response with an optional bearer
// token, differing only in the configured endpoint and their default
// dimensions (384 and 1536). Grounded on the teacher's
// internal/embed.localProvider HTTP-client shape (SPEC_FULL.md §4.2),
// generalized from the teacher's fixed cortex-embed process-management
// wrapper to a plain remote HTTP client, since CodeWeaver's embedding
// backends are always already-running services, never a locally
// spawned subprocess.
type httpEmbeddingProvider struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	model      string
	dimensions int
}

type openAIEmbeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model,omitempty"`
}

type openAIEmbeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func newHTTPEmbeddingProvider(cfg ProviderConfig, defaultDimensions int) (*httpEmbeddingProvider, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: embedding provider %q requires an endpoint", types.ErrConfiguration, cfg.ProviderID)
	}
	return &httpEmbeddingProvider{
		client:     &http.Client{Timeout: 60 * time.Second},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: defaultDimensions,
	}, nil
}

func (p *httpEmbeddingProvider) Embed(ctx context.Context, texts []string, query bool) ([][]float32, error) {
	body, err := json.Marshal(openAIEmbeddingsRequest{Input: texts, Model: p.model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server returned status %d", resp.StatusCode)
	}

	var parsed openAIEmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}

	out := make([][]float32, len(parsed.Data))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(out) {
			continue
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (p *httpEmbeddingProvider) Dimensions() int { return p.dimensions }

func (p *httpEmbeddingProvider) Close() error { return nil }

// azureEmbeddingProvider wraps httpEmbeddingProvider with Azure OpenAI's
// two-stage construction: a resource name and deployment resolve to an
// endpoint URL qualified with an api-version query parameter. cfg.APIKey
// is not passed on, so requests carry no api-key or Authorization
// header. This is the concrete
// type behind the registry's azureFactory (Open Question 3,
// SPEC_FULL.md §4.2.1) — never a string sentinel checked at call sites.
type azureEmbeddingProvider struct {
	inner      *httpEmbeddingProvider
	apiVersion string
}

func newAzureEmbeddingProvider(cfg ProviderConfig) (*azureEmbeddingProvider, error) {
	resource := cfg.Extra["resource_name"]
	deployment := cfg.Extra["deployment"]
	if resource == "" || deployment == "" {
		return nil, fmt.Errorf("%w: azure embedding provider requires resource_name and deployment", types.ErrConfiguration)
	}
	apiVersion := cfg.Extra["api_version"]
	if apiVersion == "" {
		apiVersion = "2024-02-01"
	}
	endpoint := fmt.Sprintf("https://%s.openai.azure.com/openai/deployments/%s/embeddings?api-version=%s",
		resource, deployment, apiVersion)

	inner, err := newHTTPEmbeddingProvider(ProviderConfig{
		ProviderID: cfg.ProviderID,
		Endpoint:   endpoint,
		Model:      cfg.Model,
	}, 1536)
	if err != nil {
		return nil, err
	}
	return &azureEmbeddingProvider{inner: inner, apiVersion: apiVersion}, nil
}

func (p *azureEmbeddingProvider) Embed(ctx context.Context, texts []string, query bool) ([][]float32, error) {
	return p.inner.Embed(ctx, texts, query)
}

func (p *azureEmbeddingProvider) Dimensions() int { return p.inner.Dimensions() }

func (p *azureEmbeddingProvider) Close() error { return p.inner.Close() }
