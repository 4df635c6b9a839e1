package speech

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/clients/redis"
	speechclient "github.com/OMEGACYBER/zoxaa-aicompanion/pkg/clients/speech"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/metrics"
	log "github.com/sirupsen/logrus"
)

var (
	serviceOnce sync.Once
	instance    *Service
	instanceErr error
)

// audioCache is the slice of the redis client the synthesis path needs.
type audioCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Service relays text-to-speech synthesis, caching audio by input so repeated
// phrases (greetings, give-up lines) skip the upstream round trip.
type Service struct {
	speechClient *speechclient.Client
	cache        audioCache
	cacheTTL     time.Duration
}

// NewService builds the shared speech service. Synthesis requires the
// upstream credential; the audio cache is optional.
func NewService() (*Service, error) {
	serviceOnce.Do(func() {
		speechClient, err := speechclient.GetInstance()
		if err != nil {
			instanceErr = fmt.Errorf("create speech client: %w", err)
			return
		}
		instance = NewServiceWithClient(speechClient, redis.GetInstance())
	})
	return instance, instanceErr
}

// NewServiceWithClient wires a service instance directly, bypassing the
// singleton.
func NewServiceWithClient(speechClient *speechclient.Client, redisClient *redis.RedisClient) *Service {
	ttl := config.GetInstance().GetIntOrDefault(config.TTSCacheTTLSeconds, config.DefaultTTSCacheTTL)
	s := &Service{
		speechClient: speechClient,
		cacheTTL:     time.Duration(ttl) * time.Second,
	}
	if redisClient != nil {
		s.cache = redisClient
	}
	return s
}

// Synthesize turns text into base64 MP3. Voice and speed are normalized into
// the supported set rather than rejected; only the text itself is validated.
func (s *Service) Synthesize(ctx context.Context, req *model.SpeakRequest) (*model.SpeakResponse, *model.Error) {
	if req == nil {
		return nil, model.NewError(model.ErrorSpeechInput, fmt.Errorf("text is required"))
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, model.NewError(model.ErrorSpeechInput, fmt.Errorf("text is required"))
	}
	if utf8.RuneCountInString(text) > constant.MaxSpeechInputLength {
		return nil, model.NewError(model.ErrorSpeechInput,
			fmt.Errorf("text length %d exceeds the %d character limit", utf8.RuneCountInString(text), constant.MaxSpeechInputLength))
	}

	voice := constant.Voice(req.Voice).OrDefault()
	speed := constant.ClampSpeed(req.Speed)

	audio, svcErr := s.synthesize(ctx, text, voice, speed)
	if svcErr != nil {
		return nil, svcErr
	}

	return &model.SpeakResponse{
		Audio:    base64.StdEncoding.EncodeToString(audio),
		Format:   "mp3",
		Size:     len(audio),
		Duration: speechclient.EstimateDuration(text, speed),
		Voice:    voice.String(),
		Speed:    speed,
	}, nil
}

// synthesize checks the audio cache before calling upstream and refreshes it
// after a successful call. Cache failures degrade to a plain upstream call.
func (s *Service) synthesize(ctx context.Context, text string, voice constant.Voice, speed float64) ([]byte, *model.Error) {
	key := cacheKey(text, voice, speed)
	if s.cache != nil {
		cached, ok, err := s.cache.GetBytes(ctx, key)
		if err != nil {
			log.Warnf("audio cache read failed: %s", err.Error())
		}
		if ok {
			metrics.GetInstance().RecordSpeechCache(true)
			return cached, nil
		}
		metrics.GetInstance().RecordSpeechCache(false)
	}

	audio, err := s.speechClient.CreateSpeech(ctx, text, voice, speed)
	if err != nil {
		var modelErr *model.Error
		if errors.As(err, &modelErr) {
			return nil, modelErr
		}
		return nil, model.NewError(model.ErrorSpeechSynthesis, err)
	}

	if s.cache != nil {
		if err := s.cache.SetBytes(ctx, key, audio, s.cacheTTL); err != nil {
			log.Warnf("audio cache write failed: %s", err.Error())
		}
	}
	return audio, nil
}

func cacheKey(text string, voice constant.Voice, speed float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.2f", text, voice, speed)))
	return "tts:audio:" + hex.EncodeToString(sum[:])
}
