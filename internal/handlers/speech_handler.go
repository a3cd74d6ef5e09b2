package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"wordtrail/internal/cache"
	"wordtrail/internal/speech"
	"wordtrail/internal/validation"
)

// maxAudioUploadBytes caps transcription uploads at 25 MB, the API limit
const maxAudioUploadBytes = 25 << 20

// SpeechHandler handles speech-to-text and text-to-speech
type SpeechHandler struct {
	speechService *speech.Service
	audioCache    *cache.AudioCache
}

// NewSpeechHandler creates a new speech handler. The speech service may
// be nil when no API key is configured; requests then fail with 503.
func NewSpeechHandler(speechService *speech.Service, audioCache *cache.AudioCache) *SpeechHandler {
	return &SpeechHandler{speechService: speechService, audioCache: audioCache}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe converts uploaded audio to text
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.speechService == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Speech is not configured", "", nil)
		return
	}

	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioUploadBytes+1))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read audio", "", err)
		return
	}
	if len(audio) == 0 {
		respondWithError(w, http.StatusBadRequest, "Audio body is required", "", nil)
		return
	}
	if len(audio) > maxAudioUploadBytes {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Audio exceeds the 25MB limit", "", nil)
		return
	}

	text, err := h.speechService.Transcribe(r.Context(), audio, r.Header.Get("Content-Type"))
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Transcription failed, please try again", "Transcription failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, transcriptionResponse{Text: text})
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Synthesize converts text to MP3 audio, serving from the blob cache
// when the same text and voice were synthesized before
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	if h.speechService == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Speech is not configured", "", nil)
		return
	}

	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.Text == "" {
		respondWithError(w, http.StatusBadRequest, "Text is required", "", nil)
		return
	}
	if err := validation.ValidateVoice(req.Voice); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	voice := req.Voice
	if voice == "" {
		voice = h.speechService.DefaultVoice()
	}

	key := audioCacheKey(voice, req.Text)
	if data, err := h.audioCache.Get(key); err != nil {
		log.Printf("Audio cache read failed for %s: %v", key, err)
	} else if data != nil {
		writeAudio(w, data)
		return
	}

	data, err := h.speechService.Synthesize(r.Context(), req.Text, voice)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Speech synthesis failed, please try again", "Synthesis failed", err)
		return
	}

	if err := h.audioCache.Put(key, data); err != nil {
		log.Printf("Audio cache write failed for %s: %v", key, err)
	}

	writeAudio(w, data)
}

func writeAudio(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("Failed to write audio response: %v", err)
	}
}

// audioCacheKey derives a stable cache key from the voice and text
func audioCacheKey(voice, text string) string {
	sum := sha256.Sum256([]byte(voice + "|" + text))
	return hex.EncodeToString(sum[:])
}
