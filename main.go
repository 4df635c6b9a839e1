package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/projectlog"
	"github.com/OMEGACYBER/zoxaa-aicompanion/router"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/factory"
	"github.com/sirupsen/logrus"
)

func main() {
	defer func() {
		if serviceErr := recover(); serviceErr != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)
			log.Println("The service exits abnormally, error message: [", serviceErr, "]")
			log.Println("Stack info: ")
			fmt.Printf("==> %s\n", string(buf[:n]))

			os.Exit(1)
		}
	}()

	projectlog.Init()

	// A missing upstream credential must stop the process here, before any
	// request can reach the relay.
	if _, err := config.GetInstance().GetOpenAIKey(); err != nil {
		logrus.Fatalf("refusing to start: %v", err)
	}
	if _, err := factory.GetServiceFactory().NewChatService(); err != nil {
		logrus.Fatalf("failed to initialize services: %v", err)
	}

	go startServer()
	waitStop()
}

func startServer() {
	addr := config.GetInstance().GetHost()
	logrus.Infof("%s %s listening on %s (%s)", constant.AppName, constant.AppVersion, addr, config.GetInstance().GetEnv())
	if err := http.ListenAndServe(addr, router.GetInstance()); err != nil {
		logrus.Errorf("Failed to ListenAndServer at %v, err = %v", addr, err)
		os.Exit(1)
	}
}

func waitStop() {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	sig := <-sc
	log.Printf("exit: signal=<%d>.\n", sig)

	flushServices()

	switch sig {
	case syscall.SIGTERM:
		log.Println("exit: bye :-).")
		os.Exit(0)
	default:
		log.Println("exit: bye :-(.")
		os.Exit(1)
	}
}

// flushServices drains queued background work: memories extracted from
// exchanges and conversation summaries that have not been persisted yet.
func flushServices() {
	if memoryService, err := factory.GetServiceFactory().NewMemoryService(); err == nil {
		memoryService.Stop()
	}
	factory.GetServiceFactory().NewConversationService().Stop()
}
