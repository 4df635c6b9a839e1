package tools

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	MaxThread                int
	CacheNum                 int
	TimeIntervalMilliSeconds int64
}

func GetDefaultConfig() *Config {
	return &Config{
		MaxThread:                100,
		CacheNum:                 200,
		TimeIntervalMilliSeconds: 500,
	}
}

// Processor batches messages and hands them to the handler either when the
// cache fills or when the flush interval elapses, whichever comes first.
type Processor struct {
	Name          string
	config        *Config
	messageChan   chan interface{}
	isOpen        bool
	cacheChan     chan interface{}
	cacheChanLock sync.Mutex
	threadChan    chan struct{}
	ctx           context.Context
	cancelFunc    context.CancelFunc
	messageWg     sync.WaitGroup
	serviceLock   sync.RWMutex
	updateTime    int64
	handler       func(batchData []interface{}) error
}

func NewProcessor(name string, config *Config, handler func(batchData []interface{}) error) *Processor {
	if config == nil {
		config = GetDefaultConfig()
	}
	return &Processor{
		Name:        name,
		config:      config,
		handler:     handler,
		messageChan: make(chan interface{}, 1024),
	}
}

func (p *Processor) Start() {
	p.serviceLock.Lock()
	defer p.serviceLock.Unlock()

	if p.isOpen {
		return
	}

	p.threadChan = make(chan struct{}, p.config.MaxThread)
	p.cacheChan = make(chan interface{}, p.config.CacheNum)
	p.ctx, p.cancelFunc = context.WithCancel(context.Background())

	go p.flushLoop()

	go func() {
		for {
			select {
			case <-p.ctx.Done():
				p.messageWg.Wait()
				return
			case msg := <-p.messageChan:
				p.enqueue(msg)
			}
		}
	}()

	p.isOpen = true
}

func (p *Processor) Stop() {
	p.serviceLock.Lock()
	defer p.serviceLock.Unlock()

	if !p.isOpen {
		return
	}

	p.cancelFunc()

	// flush whatever is still cached so queued work survives shutdown
	p.cacheChanLock.Lock()
	p.dispatchLocked(nil)
	p.cacheChanLock.Unlock()

	p.messageWg.Wait()
	p.isOpen = false
}

func (p *Processor) GetMessageChan() chan interface{} {
	return p.messageChan
}

// Submit queues one message without blocking the caller path.
func (p *Processor) Submit(data interface{}) {
	select {
	case p.messageChan <- data:
	default:
		logrus.Warnf("batch process: %s message queue full, dropping", p.Name)
	}
}

func (p *Processor) flushLoop() {
	logrus.Infof("batch process: %s batch handle thread start", p.Name)
	defer logrus.Infof("batch process: %s batch handle thread close", p.Name)

	interval := time.Millisecond * time.Duration(p.config.TimeIntervalMilliSeconds)
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-time.After(interval):
			p.cacheChanLock.Lock()
			elapsed := time.Now().UnixNano() - p.updateTime
			if elapsed > p.config.TimeIntervalMilliSeconds*int64(time.Millisecond) || elapsed < 0 {
				p.dispatchLocked(nil)
			}
			p.cacheChanLock.Unlock()
		}
	}
}

func (p *Processor) enqueue(data interface{}) {
	p.cacheChanLock.Lock()
	defer p.cacheChanLock.Unlock()

	select {
	case p.cacheChan <- data:
	default:
		// cache full, flush everything including the new message
		p.dispatchLocked([]interface{}{data})
	}
}

// dispatchLocked drains the cache into head and hands the batch to a worker.
// Callers must hold cacheChanLock.
func (p *Processor) dispatchLocked(head []interface{}) {
	dataSlice := head
	for {
		select {
		case cacheData := <-p.cacheChan:
			dataSlice = append(dataSlice, cacheData)
			continue
		default:
		}
		break
	}

	if len(dataSlice) == 0 {
		return
	}

	p.threadChan <- struct{}{}
	p.messageWg.Add(1)
	go func(batchData []interface{}) {
		defer func() {
			p.messageWg.Done()
			<-p.threadChan
		}()

		if err := p.handler(batchData); err != nil {
			logrus.Errorf("batch process: %s batch handle err: %s", p.Name, err.Error())
		}
	}(dataSlice)

	p.updateTime = time.Now().UnixNano()
}
