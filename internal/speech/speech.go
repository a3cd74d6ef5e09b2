// Package speech proxies speech-to-text and text-to-speech through the
// OpenAI audio API.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Service performs transcription and synthesis.
type Service struct {
	client       oai.Client
	defaultVoice string
}

// New constructs a Service. voice is the default TTS voice used when a
// request does not name one.
func New(apiKey, voice string, opts ...option.RequestOption) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("speech: API key must not be empty")
	}
	if voice == "" {
		voice = "alloy"
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Service{client: oai.NewClient(reqOpts...), defaultVoice: voice}, nil
}

// Transcribe converts raw audio into text. An empty transcript is not
// an error; callers treat it as "nothing was said".
func (s *Service) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	file := oai.File(bytes.NewReader(audio), fileName(contentType), contentType)
	resp, err := s.client.Audio.Transcriptions.New(ctx, oai.AudioTranscriptionNewParams{
		Model: oai.AudioModelWhisper1,
		File:  file,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return resp.Text, nil
}

// Synthesize converts text into MP3 audio. An empty voice selects the
// service default.
func (s *Service) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text must not be empty")
	}
	if voice == "" {
		voice = s.defaultVoice
	}

	resp, err := s.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model:          oai.SpeechModelTTS1,
		Input:          text,
		Voice:          oai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}
	return audio, nil
}

// DefaultVoice returns the voice used when requests omit one.
func (s *Service) DefaultVoice() string {
	return s.defaultVoice
}

// fileName picks a filename extension the transcription endpoint
// accepts for the given content type.
func fileName(contentType string) string {
	switch contentType {
	case "audio/wav", "audio/x-wav":
		return "audio.wav"
	case "audio/webm":
		return "audio.webm"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "audio.m4a"
	case "audio/ogg":
		return "audio.ogg"
	default:
		return "audio.mp3"
	}
}
