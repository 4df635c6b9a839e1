package httptool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/tools"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	ConnectionRefusedTag = "connection refused"

	HeaderContentType       = "Content-Type"
	HeaderContentTypeStream = "text/event-stream;charset=utf-8"
	HeaderContentCache      = "Cache-Control"
	HeaderContentCacheNo    = "no-cache"
	HeaderContentConnection = "Connection"
	HeaderContentKeepAlive  = "keep-alive"
	HeaderContentTransfer   = "Transfer-Encoding"
	HeaderContentChunked    = "chunked"
)

type ResponseMsg struct {
	Message string `json:"message"`
}

// HTTPClient is a small JSON-oriented client for probing HTTP endpoints the
// SDK clients do not cover.
type HTTPClient struct {
	sync.RWMutex
	hc         http.Client
	baseAddr   string
	header     http.Header
	clientName string
}

func NewHTTPClient(baseAddr, clientName string, timeout time.Duration, transport *http.Transport) *HTTPClient {
	return &HTTPClient{
		baseAddr: baseAddr,
		hc: http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		clientName: clientName,
	}
}

func (hc *HTTPClient) SetHeader(key, value string) {
	hc.Lock()
	defer hc.Unlock()

	if hc.header == nil {
		hc.header = http.Header{}
	}

	hc.header.Set(key, value)
}

func (hc *HTTPClient) GetWithContext(ctx context.Context, url string) ([]byte, int, error) {
	return hc.fetchWithContext(ctx, http.MethodGet, url, nil)
}

func (hc *HTTPClient) PostJSONWithContext(ctx context.Context, url string, obj interface{}) ([]byte, int, error) {
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return hc.fetchWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
}

func (hc *HTTPClient) fetchWithContext(ctx context.Context, method, url string, body io.Reader) ([]byte, int, error) {
	targetURL := fmt.Sprintf("%v%v", hc.baseAddr, url)
	now := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, targetURL, body)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	hc.RLock()
	if hc.header != nil {
		req.Header = hc.header.Clone()
	}
	hc.RUnlock()
	if body != nil && req.Header.Get(HeaderContentType) == "" {
		req.Header.Set(HeaderContentType, "application/json")
	}

	resp, err := hc.hc.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), ConnectionRefusedTag) {
			return nil, 0, fmt.Errorf("%s client: %s connection refused", hc.clientName, req.Host)
		}
		return nil, 0, errors.WithStack(err)
	}

	return hc.readResponse(resp, req, now)
}

func (hc *HTTPClient) readResponse(resp *http.Response, req *http.Request, startTime time.Time) ([]byte, int, error) {
	defer tools.ErrorWithPrintContext(resp.Body.Close, "close response body")
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.WithStack(err)
	}

	if took := time.Since(startTime); took > 800*time.Millisecond {
		log.Infof("slow request: %v %v status=%d took=%v", req.Method, req.URL, resp.StatusCode, took)
	}

	if resp.StatusCode/100 != 2 {
		errMsg := fmt.Errorf("HTTP request to %v %v failed with status code %d response:%v", req.Method, req.URL, resp.StatusCode, string(bodyBytes))
		if len(bodyBytes) == 0 {
			return bodyBytes, resp.StatusCode, errMsg
		}
		var result = new(ResponseMsg)
		if err = json.Unmarshal(bodyBytes, result); err != nil || result.Message == "" {
			return bodyBytes, resp.StatusCode, errMsg
		}
		return bodyBytes, resp.StatusCode, fmt.Errorf("%s", result.Message)
	}
	return bodyBytes, resp.StatusCode, nil
}
