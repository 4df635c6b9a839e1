// Package factory hands out service singletons wired to the configured
// storage backend.
package factory

import (
	"sync"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/factory"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/memimplement"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/xormimplement"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/chat"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/conversation"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/memory"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/plan"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/speech"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/voice"
	log "github.com/sirupsen/logrus"
)

var instance *Factory
var once sync.Once

// Factory builds services over the repository backend picked by
// storage.backend: postgres for the hosted store, memory for development.
type Factory struct {
	repositoryFactory factory.Factory
}

// GetServiceFactory returns the shared service factory.
func GetServiceFactory() *Factory {
	once.Do(func() {
		backend := constant.StorageBackend(config.GetInstance().GetStringOrDefault(
			config.StorageBackend, constant.StorageBackendPostgres.String()))
		if !backend.IsValid() {
			log.Warnf("unknown storage backend %q, falling back to %s", backend, constant.StorageBackendPostgres)
			backend = constant.StorageBackendPostgres
		}

		var repositoryFactory factory.Factory
		switch backend {
		case constant.StorageBackendMemory:
			repositoryFactory = memimplement.GetRepositoryFactoryInstance()
		default:
			repositoryFactory = xormimplement.GetRepositoryFactoryInstance()
		}

		instance = &Factory{repositoryFactory: repositoryFactory}
		log.Infof("service factory ready, storage backend %s", backend)
	})
	return instance
}

// NewChatService returns the chat relay service.
func (f *Factory) NewChatService() (*chat.Service, error) {
	return chat.NewService(f.repositoryFactory)
}

// NewMemoryService returns the memory store service.
func (f *Factory) NewMemoryService() (*memory.Service, error) {
	return memory.NewService(f.repositoryFactory)
}

// NewSpeechService returns the speech synthesis service.
func (f *Factory) NewSpeechService() (*speech.Service, error) {
	return speech.NewService()
}

// NewVoiceService returns the voice session bridge.
func (f *Factory) NewVoiceService() (*voice.Service, error) {
	return voice.NewService(f.repositoryFactory)
}

// NewPlanService returns the plan tracker service.
func (f *Factory) NewPlanService() *plan.Service {
	return plan.NewService(f.repositoryFactory)
}

// NewConversationService returns the conversation history service.
func (f *Factory) NewConversationService() *conversation.Service {
	return conversation.NewService(f.repositoryFactory)
}
