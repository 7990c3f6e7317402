package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	getMeResponse   = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"risk","username":"risk_bot"}}`
	messageResponse = `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`
)

// fakeBotAPI is a minimal Bot API server that records sent messages.
type fakeBotAPI struct {
	mu        sync.Mutex
	texts     []string
	photos    int
	failSends int32
	updates   string
	served    int32
	sent      chan string
}

func (f *fakeBotAPI) handler(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	switch method {
	case "getMe":
		_, _ = w.Write([]byte(getMeResponse))
	case "sendMessage":
		_ = r.ParseForm()
		if atomic.AddInt32(&f.failSends, -1) >= 0 {
			_, _ = w.Write([]byte(`{"ok":false,"error_code":500,"description":"Internal Server Error"}`))
			return
		}
		f.mu.Lock()
		f.texts = append(f.texts, r.FormValue("text"))
		f.mu.Unlock()
		if f.sent != nil {
			f.sent <- r.FormValue("text")
		}
		_, _ = w.Write([]byte(messageResponse))
	case "sendPhoto":
		_ = r.ParseMultipartForm(1 << 20)
		f.mu.Lock()
		f.photos++
		f.mu.Unlock()
		_, _ = w.Write([]byte(messageResponse))
	case "getUpdates":
		if f.updates != "" && atomic.AddInt32(&f.served, 1) == 1 {
			_, _ = w.Write([]byte(f.updates))
			return
		}
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(t *testing.T, api *fakeBotAPI) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	t.Cleanup(srv.Close)

	n, err := newTelegramNotifier("TOKEN", "42", srv.URL+"/bot%s/%s", srv.Client(), zerolog.Nop())
	require.NoError(t, err)
	n.backoff = time.Millisecond
	return n
}

func TestNewTelegramNotifier_BadChatID(t *testing.T) {
	_, err := NewTelegramNotifier("TOKEN", "not-a-number", "", zerolog.Nop())
	assert.Error(t, err)
}

func TestTelegramNotifier_Send(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api)

	require.NoError(t, n.Send(context.Background(), "<b>hello</b>"))
	assert.Equal(t, []string{"<b>hello</b>"}, api.texts)
}

func TestTelegramNotifier_SendWithRetry(t *testing.T) {
	api := &fakeBotAPI{failSends: 2}
	n := newTestNotifier(t, api)

	require.NoError(t, n.SendWithRetry(context.Background(), "report", 3))
	assert.Equal(t, []string{"report"}, api.texts)
}

func TestTelegramNotifier_SendWithRetryExhausted(t *testing.T) {
	api := &fakeBotAPI{failSends: 10}
	n := newTestNotifier(t, api)

	err := n.SendWithRetry(context.Background(), "report", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 retries exhausted")
}

func TestTelegramNotifier_SendCancelled(t *testing.T) {
	n := newTestNotifier(t, &fakeBotAPI{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Send(ctx, "x"), context.Canceled)
}

func TestTelegramNotifier_SendPhoto(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api)

	require.NoError(t, n.SendPhoto(context.Background(), "chart.png", []byte{0x89, 'P', 'N', 'G'}, "cumulative"))
	assert.Equal(t, 1, api.photos)
}

func TestTelegramNotifier_StartPolling(t *testing.T) {
	api := &fakeBotAPI{
		sent: make(chan string, 4),
		updates: `{"ok":true,"result":[
			{"update_id":1,"message":{"message_id":1,"date":0,"text":"/status","chat":{"id":99,"type":"private"}}},
			{"update_id":2,"message":{"message_id":2,"date":0,"text":" /status ","chat":{"id":42,"type":"private"}}}
		]}`,
	}
	n := newTestNotifier(t, api)

	var mu sync.Mutex
	var commands []string
	handler := func(_ context.Context, cmd string) string {
		mu.Lock()
		commands = append(commands, cmd)
		mu.Unlock()
		return "all good"
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, handler)
		close(done)
	}()

	select {
	case reply := <-api.sent:
		assert.Equal(t, "all good", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	// the message from the unknown chat is ignored
	assert.Equal(t, []string{"/status"}, commands)
}
