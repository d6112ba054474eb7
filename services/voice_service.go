package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"santavideo/pipeline"
	"santavideo/utils"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

// VoiceService synthesizes Santa narration through the ElevenLabs
// text-to-speech API, rotating API keys across requests
type VoiceService struct {
	pool       *utils.APIKeyPool
	httpClient *http.Client
	voiceID    string
	baseURL    string
	log        *zap.Logger
}

// NewVoiceService creates a voice service; it is disabled (Enabled returns
// false) when no API keys are configured
func NewVoiceService(keys []string, voiceID string, log *zap.Logger) *VoiceService {
	return &VoiceService{
		pool: utils.NewAPIKeyPool(keys),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		voiceID: voiceID,
		baseURL: elevenLabsBaseURL,
		log:     log,
	}
}

// Enabled reports whether synthesis is configured
func (vs *VoiceService) Enabled() bool {
	return vs.pool != nil
}

type ttsRequest struct {
	Text          string      `json:"text"`
	ModelID       string      `json:"model_id"`
	VoiceSettings ttsSettings `json:"voice_settings"`
}

type ttsSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// SynthesizeNarration renders the personalized script text as speech and
// writes the audio to outPath
func (vs *VoiceService) SynthesizeNarration(text, subjectName, outPath string) error {
	if !vs.Enabled() {
		return fmt.Errorf("voice synthesis is not configured")
	}

	personalized := pipeline.PersonalizeText(text, subjectName)

	maxRetries := 3
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		apiKey, err := vs.pool.Pick()
		if err != nil {
			return fmt.Errorf("no available API keys: %w", err)
		}

		audio, err := vs.callTTS(personalized, apiKey)
		if err != nil {
			vs.pool.MarkFailed(apiKey, 60*time.Second)
			vs.log.Warn("TTS request failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * time.Second)
			continue
		}

		return vs.saveAudio(audio, outPath)
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (vs *VoiceService) callTTS(text, apiKey string) ([]byte, error) {
	url := fmt.Sprintf("%s/text-to-speech/%s", vs.baseURL, vs.voiceID)

	reqBody := ttsRequest{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
		VoiceSettings: ttsSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", apiKey)

	resp, err := vs.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS API returned status %d: %s", resp.StatusCode, body)
	}

	return body, nil
}

func (vs *VoiceService) saveAudio(data []byte, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return nil
}
