package controller_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/router"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

const fakeAudio = "ID3-not-really-mp3-but-bytes"

var upstream *httptest.Server

// TestMain points every upstream client at a local fake before any of the
// process-wide singletons are built, and picks the in-memory storage backend
// so the suite runs without postgres.
func TestMain(m *testing.M) {
	upstream = fakeOpenAI()
	os.Setenv("STORAGE_BACKEND", "memory")
	os.Setenv("OPENAI_API_KEY", "test-api-key")
	os.Setenv("OPENAI_BASE_URL", upstream.URL)
	os.Setenv("OPENAI_EMBEDDING_BASE_URL", upstream.URL)

	code := m.Run()
	upstream.Close()
	os.Exit(code)
}

// fakeOpenAI serves canned completions, audio and embeddings on the paths
// the upstream clients call.
func fakeOpenAI() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			var req map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if streaming, _ := req["stream"].(bool); streaming {
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = fmt.Fprint(w, `data: {"id":"chatcmpl-test","object":"chat.completion.chunk","created":1700000000,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"role":"assistant","content":"hello from upstream"},"finish_reason":null}]}`+"\n\n")
				_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id":      "chatcmpl-test",
				"object":  "chat.completion",
				"created": 1700000000,
				"model":   "gpt-4o-mini",
				"choices": []map[string]interface{}{
					{
						"index":         0,
						"message":       map[string]string{"role": "assistant", "content": "hello from upstream"},
						"finish_reason": "stop",
					},
				},
				"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 32, "total_tokens": 42},
			})
		case strings.HasSuffix(r.URL.Path, "/audio/speech"):
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write([]byte(fakeAudio))
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			var req struct {
				Input []string `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if len(req.Input) == 0 {
				req.Input = []string{""}
			}
			data := make([]map[string]interface{}, len(req.Input))
			for i := range req.Input {
				data[i] = map[string]interface{}{
					"object":    "embedding",
					"index":     i,
					"embedding": []float64{0.1, 0.2, 0.3},
				}
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"object": "list",
				"data":   data,
				"model":  "text-embedding-3-small",
				"usage":  map[string]int{"prompt_tokens": 2, "total_tokens": 2},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

type ControllerTest struct {
	suite.Suite
	server *httptest.Server
}

func (c *ControllerTest) SetupSuite() {
	c.server = httptest.NewServer(router.GetInstance())
}

func (c *ControllerTest) TearDownSuite() {
	c.server.Close()
}

// do sends one JSON request and decodes the JSON response into out when the
// caller provides one. It returns the response status code.
func (c *ControllerTest) do(method, path string, body interface{}, out interface{}) int {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		c.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	c.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	c.Require().NoError(err)
	raw, err := io.ReadAll(res.Body)
	c.Require().NoError(err)
	c.Require().NoError(res.Body.Close())

	if out != nil && len(raw) > 0 {
		c.Require().NoError(json.Unmarshal(raw, out), "body: %s", string(raw))
	}
	return res.StatusCode
}

func (c *ControllerTest) TestHealthReportsServiceMetadata() {
	var body map[string]interface{}
	status := c.do(http.MethodGet, "/api/health", nil, &body)

	c.Require().Equal(http.StatusOK, status)
	c.Equal("OK", body["status"])
	c.Equal(constant.AppName, body["service"])
	c.Equal(constant.AppVersion, body["version"])
	c.Equal("development", body["environment"])
	c.Greater(body["timestamp"].(float64), float64(0))
}

func (c *ControllerTest) TestTestEndpointEchoes() {
	var body map[string]interface{}
	status := c.do(http.MethodGet, "/api/test", nil, &body)

	c.Require().Equal(http.StatusOK, status)
	c.Equal("API is working", body["message"])
}

func (c *ControllerTest) TestDebugReportsPresenceFlagsOnly() {
	var body map[string]interface{}
	status := c.do(http.MethodGet, "/api/debug", nil, &body)

	c.Require().Equal(http.StatusOK, status)
	c.Equal(true, body["openaiKeyPresent"])
	c.Equal("memory", body["storageBackend"])

	raw, err := json.Marshal(body)
	c.Require().NoError(err)
	c.NotContains(string(raw), "test-api-key")
}

func (c *ControllerTest) TestChatRelaysUpstreamReply() {
	var res model.ChatResponse
	status := c.do(http.MethodPost, "/api/chat", model.ChatRequest{
		Messages: []model.ChatMessage{{Role: "user", Content: "hi there"}},
		UserID:   "http-chat-user",
	}, &res)

	c.Require().Equal(http.StatusOK, status)
	c.Equal("hello from upstream", res.Response)
	c.Equal(42, res.Tokens)
	c.Equal("gpt-4o-mini", res.Model)
}

func (c *ControllerTest) TestChatRejectsMissingMessages() {
	var body map[string]interface{}
	status := c.do(http.MethodPost, "/api/chat", map[string]interface{}{}, &body)
	c.Equal(http.StatusBadRequest, status)
	c.Equal("messages array is required", body["error"])

	// messages present but not an array fails the bind with the same message
	status = c.do(http.MethodPost, "/api/chat", map[string]interface{}{"messages": "nope"}, &body)
	c.Equal(http.StatusBadRequest, status)
	c.Equal("messages array is required", body["error"])
}

func (c *ControllerTest) TestChatStreamWritesEventStream() {
	raw, err := json.Marshal(model.ChatRequest{
		Messages: []model.ChatMessage{{Role: "user", Content: "stream it"}},
	})
	c.Require().NoError(err)

	res, err := http.Post(c.server.URL+"/api/chat/stream", "application/json", bytes.NewReader(raw))
	c.Require().NoError(err)
	body, err := io.ReadAll(res.Body)
	c.Require().NoError(err)
	c.Require().NoError(res.Body.Close())

	c.Equal(http.StatusOK, res.StatusCode)
	c.Contains(res.Header.Get("Content-Type"), "text/event-stream")
	c.Contains(string(body), "data: ")
	c.Contains(string(body), "hello from upstream")
}

func (c *ControllerTest) TestSynthesizeReturnsEncodedAudio() {
	var res model.SpeakResponse
	status := c.do(http.MethodPost, "/api/tts", model.SpeakRequest{Text: "hello there"}, &res)

	c.Require().Equal(http.StatusOK, status)
	c.Equal("mp3", res.Format)
	c.Equal("nova", res.Voice)
	c.Equal(1.0, res.Speed)
	c.Equal(len(fakeAudio), res.Size)

	decoded, err := base64.StdEncoding.DecodeString(res.Audio)
	c.Require().NoError(err)
	c.Equal(fakeAudio, string(decoded))
}

func (c *ControllerTest) TestSynthesizeRejectsBadInput() {
	var body map[string]interface{}
	status := c.do(http.MethodPost, "/api/tts", model.SpeakRequest{Text: ""}, &body)
	c.Equal(http.StatusBadRequest, status)
	c.Equal(model.ErrorMessages[model.ErrorSpeechInput], body["error"])

	status = c.do(http.MethodPost, "/api/tts", model.SpeakRequest{Text: strings.Repeat("a", 4001)}, &body)
	c.Equal(http.StatusBadRequest, status)
	c.Equal(model.ErrorMessages[model.ErrorSpeechInput], body["error"])
}

func (c *ControllerTest) TestMemoryLifecycle() {
	var created entity.Memory
	status := c.do(http.MethodPost, "/api/memories", model.CreateMemoryRequest{
		UserID:  "http-mem-user",
		Content: "weekly climbing session every thursday",
		Tags:    []string{"hobby"},
	}, &created)
	c.Require().Equal(http.StatusOK, status)
	c.NotEmpty(created.ID)
	c.Equal(constant.ImportanceMedium.String(), created.Importance)

	var listed struct {
		Memories []entity.Memory `json:"memories"`
		Count    int             `json:"count"`
	}
	status = c.do(http.MethodGet, "/api/memories?userId=http-mem-user", nil, &listed)
	c.Require().Equal(http.StatusOK, status)
	c.Equal(1, listed.Count)

	var searched struct {
		Results []model.MemorySearchResult `json:"results"`
		Count   int                        `json:"count"`
	}
	status = c.do(http.MethodPost, "/api/memories/search", model.SearchMemoriesRequest{
		UserID: "http-mem-user",
		Query:  "climbing",
	}, &searched)
	c.Require().Equal(http.StatusOK, status)
	c.Require().NotEmpty(searched.Results)
	c.Equal(created.ID, searched.Results[0].Memory.ID)

	var updated entity.Memory
	status = c.do(http.MethodPut, "/api/memories/"+created.ID, model.CreateMemoryRequest{
		UserID:     "http-mem-user",
		Content:    "weekly climbing session every friday",
		Importance: constant.ImportanceHigh.String(),
	}, &updated)
	c.Require().Equal(http.StatusOK, status)
	c.Equal(constant.ImportanceHigh.String(), updated.Importance)
	c.Contains(updated.Content, "friday")

	var deleted map[string]interface{}
	status = c.do(http.MethodDelete, "/api/memories/"+created.ID, nil, &deleted)
	c.Require().Equal(http.StatusOK, status)
	c.Equal("memory deleted", deleted["message"])

	var errBody map[string]interface{}
	status = c.do(http.MethodDelete, "/api/memories/"+created.ID, nil, &errBody)
	c.Equal(http.StatusNotFound, status)
	c.Equal(model.ErrorMessages[model.ErrorNotFound], errBody["error"])
}

func (c *ControllerTest) TestPlanLifecycle() {
	var created model.PlanResponse
	status := c.do(http.MethodPost, "/api/plans", model.CreatePlanRequest{
		UserID: "http-plan-user",
		Title:  "learn the violin",
		Goals:  []string{"play one song end to end"},
		Steps: []model.PlanStep{
			{Text: "rent an instrument", Completed: true},
			{Text: "book a first lesson"},
		},
	}, &created)
	c.Require().Equal(http.StatusOK, status)
	c.Equal(constant.PlanStatusActive.String(), created.Status)
	c.Equal(50, created.Completion)
	c.Require().Len(created.Steps, 2)

	completed := true
	var after model.PlanResponse
	status = c.do(http.MethodPut, fmt.Sprintf("/api/plans/%s/steps/%s", created.ID, created.Steps[1].ID),
		model.UpdateStepRequest{Completed: &completed}, &after)
	c.Require().Equal(http.StatusOK, status)
	c.Equal(100, after.Completion)

	status = c.do(http.MethodPost, "/api/plans/"+created.ID+"/steps",
		model.AddStepRequest{Text: "practice scales"}, &after)
	c.Require().Equal(http.StatusOK, status)
	c.Require().Len(after.Steps, 3)
	c.Equal(67, after.Completion)

	status = c.do(http.MethodDelete, fmt.Sprintf("/api/plans/%s/steps/%s", created.ID, after.Steps[2].ID), nil, &after)
	c.Require().Equal(http.StatusOK, status)
	c.Equal(100, after.Completion)

	bogus := "certainly-not-a-status"
	var errBody map[string]interface{}
	status = c.do(http.MethodPut, "/api/plans/"+created.ID, model.UpdatePlanRequest{Status: &bogus}, &errBody)
	c.Equal(http.StatusBadRequest, status)

	done := constant.PlanStatusCompleted.String()
	status = c.do(http.MethodPut, "/api/plans/"+created.ID, model.UpdatePlanRequest{Status: &done}, &after)
	c.Require().Equal(http.StatusOK, status)
	c.Equal(constant.PlanStatusCompleted.String(), after.Status)

	var listed struct {
		Plans []model.PlanResponse `json:"plans"`
		Count int                  `json:"count"`
	}
	status = c.do(http.MethodGet, "/api/plans?userId=http-plan-user&status=completed", nil, &listed)
	c.Require().Equal(http.StatusOK, status)
	c.Equal(1, listed.Count)

	status = c.do(http.MethodDelete, "/api/plans/"+created.ID, nil, nil)
	c.Require().Equal(http.StatusOK, status)

	status = c.do(http.MethodGet, "/api/plans/"+created.ID, nil, &errBody)
	c.Equal(http.StatusNotFound, status)
}

func (c *ControllerTest) TestConversationLifecycle() {
	var created model.ConversationResponse
	status := c.do(http.MethodPost, "/api/conversations", model.CreateConversationRequest{
		UserID: "http-conv-user",
		Messages: []model.ConversationMessage{
			{Role: constant.RoleUser, Content: "I am so happy today"},
		},
	}, &created)
	c.Require().Equal(http.StatusOK, status)
	c.NotEmpty(created.ID)
	c.NotEmpty(created.Title)
	c.Contains(created.Emotions, constant.EmotionJoy.String())
	c.Require().Len(created.Messages, 1)
	c.NotZero(created.Messages[0].Timestamp)

	var appended model.ConversationResponse
	status = c.do(http.MethodPost, "/api/conversations/"+created.ID+"/messages", model.AppendMessageRequest{
		Role:    constant.RoleAssistant,
		Content: "That is wonderful to hear",
	}, &appended)
	c.Require().Equal(http.StatusOK, status)
	c.Require().Len(appended.Messages, 2)
	// assistant turns never contribute emotion tags
	c.Equal([]string{constant.EmotionJoy.String()}, appended.Emotions)

	var listed struct {
		Conversations []model.ConversationResponse `json:"conversations"`
		Count         int                          `json:"count"`
	}
	status = c.do(http.MethodGet, "/api/conversations?userId=http-conv-user", nil, &listed)
	c.Require().Equal(http.StatusOK, status)
	c.Equal(1, listed.Count)

	status = c.do(http.MethodDelete, "/api/conversations/"+created.ID, nil, nil)
	c.Require().Equal(http.StatusOK, status)

	var errBody map[string]interface{}
	status = c.do(http.MethodGet, "/api/conversations/"+created.ID, nil, &errBody)
	c.Equal(http.StatusNotFound, status)
	c.Equal(model.ErrorMessages[model.ErrorNotFound], errBody["error"])
}

func (c *ControllerTest) TestMetricsEndpointExposesHTTPCounters() {
	status := c.do(http.MethodGet, "/api/health", nil, nil)
	c.Require().Equal(http.StatusOK, status)

	res, err := http.Get(c.server.URL + "/metrics")
	c.Require().NoError(err)
	raw, err := io.ReadAll(res.Body)
	c.Require().NoError(err)
	c.Require().NoError(res.Body.Close())

	c.Equal(http.StatusOK, res.StatusCode)
	c.Contains(string(raw), "zoxaa_http_requests_total")
}

func (c *ControllerTest) TestPreflightRequestIsShortCircuited() {
	req, err := http.NewRequest(http.MethodOptions, c.server.URL+"/api/chat", nil)
	c.Require().NoError(err)

	res, err := http.DefaultClient.Do(req)
	c.Require().NoError(err)
	c.Require().NoError(res.Body.Close())

	c.Equal(http.StatusNoContent, res.StatusCode)
	c.Equal("*", res.Header.Get("Access-Control-Allow-Origin"))
}

func (c *ControllerTest) TestRequestIDIsEchoed() {
	req, err := http.NewRequest(http.MethodGet, c.server.URL+"/api/health", nil)
	c.Require().NoError(err)
	req.Header.Set("X-Request-ID", "fixed-request-id")

	res, err := http.DefaultClient.Do(req)
	c.Require().NoError(err)
	c.Require().NoError(res.Body.Close())
	c.Equal("fixed-request-id", res.Header.Get("X-Request-ID"))

	res, err = http.Get(c.server.URL + "/api/health")
	c.Require().NoError(err)
	c.Require().NoError(res.Body.Close())
	c.NotEmpty(res.Header.Get("X-Request-ID"))
}

func (c *ControllerTest) TestUnknownRouteIsNotFound() {
	status := c.do(http.MethodGet, "/api/nothing-here", nil, nil)
	c.Equal(http.StatusNotFound, status)
}

func (c *ControllerTest) wsDial(userID string) *websocket.Conn {
	wsURL := "ws" + strings.TrimPrefix(c.server.URL, "http") + "/api/voice?userId=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	c.Require().NoError(err)
	c.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	return conn
}

func (c *ControllerTest) readVoiceEvent(conn *websocket.Conn) model.VoiceServerEvent {
	var event model.VoiceServerEvent
	c.Require().NoError(conn.ReadJSON(&event))
	return event
}

func (c *ControllerTest) TestVoiceWebsocketSpeaksReplies() {
	conn := c.wsDial("ws-user-loop")
	defer func() { _ = conn.Close() }()

	c.Require().NoError(conn.WriteJSON(model.VoiceClientEvent{Type: constant.VoiceEventStart}))
	event := c.readVoiceEvent(conn)
	c.Equal(constant.VoiceEventState, event.Type)
	c.Equal(constant.VoiceStateListening.String(), event.State)

	c.Require().NoError(conn.WriteJSON(model.VoiceClientEvent{
		Type:       constant.VoiceEventTranscript,
		Transcript: "tell me something nice",
		Final:      true,
	}))

	var states []string
	var reply model.VoiceServerEvent
	for reply.Type != constant.VoiceEventReply {
		event = c.readVoiceEvent(conn)
		if event.Type == constant.VoiceEventState {
			states = append(states, event.State)
			continue
		}
		c.Require().Equal(constant.VoiceEventReply, event.Type)
		reply = event
	}

	c.Equal([]string{constant.VoiceStateThinking.String(), constant.VoiceStateSpeaking.String()}, states)
	c.Equal("hello from upstream", reply.Text)
	c.Equal("mp3", reply.Format)
	decoded, err := base64.StdEncoding.DecodeString(reply.Audio)
	c.Require().NoError(err)
	c.Equal(fakeAudio, string(decoded))

	event = c.readVoiceEvent(conn)
	c.Equal(constant.VoiceEventState, event.Type)
	c.Equal(constant.VoiceStateListening.String(), event.State)
}

func (c *ControllerTest) TestVoiceWebsocketRejectsSecondSession() {
	first := c.wsDial("ws-user-dup")
	defer func() { _ = first.Close() }()

	// wait for the first session to be registered before racing a second one
	c.Require().NoError(first.WriteJSON(model.VoiceClientEvent{Type: constant.VoiceEventStart}))
	event := c.readVoiceEvent(first)
	c.Require().Equal(constant.VoiceEventState, event.Type)

	second := c.wsDial("ws-user-dup")
	defer func() { _ = second.Close() }()

	var body map[string]interface{}
	c.Require().NoError(second.ReadJSON(&body))
	errMsg, ok := body["error"].(string)
	c.Require().True(ok)
	c.Contains(errMsg, "already active")
}

func (c *ControllerTest) TestVoiceEndpointRequiresUserID() {
	var body map[string]interface{}
	status := c.do(http.MethodGet, "/api/voice", nil, &body)

	c.Equal(http.StatusBadRequest, status)
	c.Equal("userId is required", body["error"])
}

func TestController(t *testing.T) {
	suite.Run(t, new(ControllerTest))
}
