package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/companion-engine/pkg/composer"
)

// Default txt2img parameters. Image generation is slow; the long client
// timeout covers cold model loads on the backend.
const (
	sdDefaultSteps    = 28
	sdDefaultWidth    = 832
	sdDefaultHeight   = 1216
	sdDefaultCFGScale = 6.0
	sdDefaultSampler  = "Euler a"
)

// SDWebUIService implements ImageService against an AUTOMATIC1111
// compatible /sdapi/v1/txt2img endpoint.
type SDWebUIService struct {
	baseURL    string
	httpClient *http.Client
}

// SDTxt2ImgRequest is the txt2img request body.
type SDTxt2ImgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Steps          int     `json:"steps"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	CFGScale       float64 `json:"cfg_scale"`
	SamplerName    string  `json:"sampler_name"`
}

// SDTxt2ImgResponse is the txt2img response body.
type SDTxt2ImgResponse struct {
	Images []string `json:"images"`
	Detail string   `json:"detail,omitempty"`
}

// NewSDWebUIService creates a new image service against baseURL.
func NewSDWebUIService(baseURL string, timeout time.Duration) *SDWebUIService {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &SDWebUIService{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate renders the prompt pair and returns decoded PNG bytes.
func (s *SDWebUIService) Generate(ctx context.Context, prompt composer.Prompt) ([]byte, error) {
	req := SDTxt2ImgRequest{
		Prompt:         prompt.Positive,
		NegativePrompt: prompt.Negative,
		Steps:          sdDefaultSteps,
		Width:          sdDefaultWidth,
		Height:         sdDefaultHeight,
		CFGScale:       sdDefaultCFGScale,
		SamplerName:    sdDefaultSampler,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal txt2img request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create txt2img request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("txt2img request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read txt2img response: %w", err)
	}

	var sdResp SDTxt2ImgResponse
	if err := json.Unmarshal(respBody, &sdResp); err != nil {
		return nil, fmt.Errorf("failed to parse txt2img response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := sdResp.Detail
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("txt2img returned status %d: %s", resp.StatusCode, detail)
	}
	if len(sdResp.Images) == 0 {
		return nil, fmt.Errorf("txt2img returned no images")
	}

	img, err := base64.StdEncoding.DecodeString(sdResp.Images[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode txt2img image: %w", err)
	}
	return img, nil
}
