package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/voicebridge/internal/cache"
)

const gtxResponse = `[[["Bonjour le monde. ","Hello world. ",null,null,10],["Comment allez-vous?","How are you?",null,null,10]],null,"en"]`

func TestGoogleTranslator_Translate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_a/single", r.URL.Path)
		assert.Equal(t, "gtx", r.URL.Query().Get("client"))
		assert.Equal(t, "en", r.URL.Query().Get("sl"))
		assert.Equal(t, "fr", r.URL.Query().Get("tl"))
		assert.Equal(t, "Hello world. How are you?", r.URL.Query().Get("q"))
		w.Write([]byte(gtxResponse))
	}))
	defer server.Close()

	tr := NewGoogleTranslator(GoogleConfig{BaseURL: server.URL})
	out, err := tr.Translate(context.Background(), "Hello world. How are you?", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde. Comment allez-vous?", out)
}

func TestGoogleTranslator_AutoDetectAndChineseCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "auto", r.URL.Query().Get("sl"))
		assert.Equal(t, "zh-CN", r.URL.Query().Get("tl"))
		w.Write([]byte(`[[["你好","Hello",null,null,1]],null,"en"]`))
	}))
	defer server.Close()

	tr := NewGoogleTranslator(GoogleConfig{BaseURL: server.URL})
	out, err := tr.Translate(context.Background(), "Hello", "", "zh-cn")
	require.NoError(t, err)
	assert.Equal(t, "你好", out)
}

func TestGoogleTranslator_SameLanguageShortCircuits(t *testing.T) {
	tr := NewGoogleTranslator(GoogleConfig{BaseURL: "http://127.0.0.1:1"})
	out, err := tr.Translate(context.Background(), " Hola ", "es", "es")
	require.NoError(t, err)
	assert.Equal(t, "Hola", out)
}

func TestGoogleTranslator_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	tr := NewGoogleTranslator(GoogleConfig{BaseURL: server.URL})
	_, err := tr.Translate(context.Background(), "Hello", "en", "fr")
	assert.ErrorContains(t, err, "429")

	_, err = tr.Translate(context.Background(), "Hello", "en", "xx")
	assert.ErrorContains(t, err, "unsupported target")
}

func TestParseGTX(t *testing.T) {
	_, err := parseGTX([]byte(`{}`))
	assert.Error(t, err)
	_, err = parseGTX([]byte(`[]`))
	assert.Error(t, err)
	_, err = parseGTX([]byte(`[[],null,"en"]`))
	assert.Error(t, err)
}

type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	sets   int
}

func (m *memStore) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	*(dest.(*string)) = v
	return nil
}

func (m *memStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.sets++
	return nil
}

type countingTranslator struct {
	calls int
	err   error
}

func (c *countingTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "[" + target + "] " + text, nil
}

func TestCachedTranslator_HitsCacheOnSecondCall(t *testing.T) {
	next := &countingTranslator{}
	store := &memStore{data: map[string]string{}}
	tr := NewCachedTranslator(next, store, time.Hour)

	for i := 0; i < 2; i++ {
		out, err := tr.Translate(context.Background(), "Hello", "en", "fr")
		require.NoError(t, err)
		assert.Equal(t, "[fr] Hello", out)
	}
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, store.sets)
}

func TestCachedTranslator_CacheErrorsAreIgnored(t *testing.T) {
	next := &countingTranslator{}
	store := &memStore{data: map[string]string{}, getErr: errors.New("connection refused")}
	tr := NewCachedTranslator(next, store, time.Hour)

	out, err := tr.Translate(context.Background(), "Hello", "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "[de] Hello", out)
}

func TestCachedTranslator_DoesNotCacheFailures(t *testing.T) {
	next := &countingTranslator{err: errors.New("boom")}
	store := &memStore{data: map[string]string{}}
	tr := NewCachedTranslator(next, store, time.Hour)

	_, err := tr.Translate(context.Background(), "Hello", "en", "de")
	assert.Error(t, err)
	assert.Zero(t, store.sets)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, cacheKey("a", "", "fr"), cacheKey("a", "auto", "fr"))
	assert.NotEqual(t, cacheKey("a", "en", "fr"), cacheKey("a", "en", "de"))
}
