package relay

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Client configuration
type ClientConfig struct {
	Timeout         time.Duration
	ZstdCompression bool
}

type Client struct {
	config      *ClientConfig
	restyClient *resty.Client
}

// NewClient creates a relay client. A nil config uses the default timeout
// with compression off.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = &ClientConfig{}
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout * time.Second
	}

	restyClient := resty.New().
		SetTimeout(config.Timeout).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	log.Debug().
		Str("timeout", config.Timeout.String()).
		Bool("zstd", config.ZstdCompression).
		Msg("relay client initialized")

	return &Client{
		config:      config,
		restyClient: restyClient,
	}
}

func (c *Client) buildHeaders() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	if c.config.ZstdCompression {
		headers["Accept-Encoding"] = zstdEncoding
		headers["Content-Encoding"] = zstdEncoding
	}
	return headers
}

// Send posts request to baseURL/<name of Req> and unwraps the StdResponse
// body into a Resp. A non-nil StdResponse error is returned as an error.
func Send[Req, Resp any](ctx context.Context, c *Client, baseURL string, request Req) (Resp, error) {
	var out Resp
	endpoint := strings.TrimSuffix(baseURL, "/") + RouteName[Req]()

	body, err := sonic.Marshal(request)
	if err != nil {
		return out, fmt.Errorf("failed to marshal request: %w", err)
	}
	if c.config.ZstdCompression {
		body = zstdEncoder.EncodeAll(body, nil)
	}

	headers := c.buildHeaders()
	log.Trace().
		Interface("headers", headers).
		Str("endpoint", endpoint).
		Int("body_size", len(body)).
		Msg("sending request")

	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return out, fmt.Errorf("failed to make request: %w", err)
	}

	// decompress before error checking so error bodies are readable
	responseBody := resp.Body()
	if resp.Header().Get("Content-Encoding") == zstdEncoding {
		decompressed, err := zstdDecoder.DecodeAll(responseBody, nil)
		if err != nil {
			return out, fmt.Errorf("failed to decompress response: %w", err)
		}
		responseBody = decompressed
	}

	var std StdResponse[Resp]
	if err := sonic.Unmarshal(responseBody, &std); err != nil {
		if resp.IsError() {
			return out, fmt.Errorf("HTTP error %d: %s", resp.StatusCode(), string(responseBody))
		}
		return out, fmt.Errorf("failed to unmarshal StdResponse: %w", err)
	}
	if std.Error != nil {
		return out, fmt.Errorf("server error (HTTP %d): %s", resp.StatusCode(), *std.Error)
	}
	if resp.IsError() {
		return out, fmt.Errorf("HTTP error %d: %s", resp.StatusCode(), string(responseBody))
	}
	return std.Body, nil
}

// SendMany sends requests[i] to baseURLs[i] concurrently. Results and errors
// line up with the inputs.
func SendMany[Req, Resp any](ctx context.Context, c *Client, baseURLs []string, requests []Req) ([]Resp, []error) {
	if len(baseURLs) != len(requests) {
		log.Error().Msg("baseURLs and requests must have the same length")
		return nil, []error{fmt.Errorf("baseURLs and requests must have the same length")}
	}

	responses := make([]Resp, len(baseURLs))
	errs := make([]error, len(baseURLs))
	var wg sync.WaitGroup
	wg.Add(len(baseURLs))

	for i := range baseURLs {
		go func(index int) {
			defer wg.Done()
			resp, err := Send[Req, Resp](ctx, c, baseURLs[index], requests[index])
			if err != nil {
				errs[index] = fmt.Errorf("error in request %d: %w", index, err)
				return
			}
			responses[index] = resp
		}(i)
	}

	wg.Wait()
	return responses, errs
}
