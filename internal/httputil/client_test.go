package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardClientWraps(t *testing.T) {
	custom := &http.Client{}
	assert.Same(t, custom, NewStandardClient(custom, 0).Client)
	assert.Equal(t, 3*time.Second, NewStandardClient(nil, 3*time.Second).Timeout)
}

func TestStandardClientDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := NewStandardClient(nil, time.Second).Do(req)
	require.NoError(t, err)
	body, err := ReadOK(resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestReadOKStatusError(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com/x", nil)
	_, err := ReadOK(Respond(req, http.StatusBadGateway, "nope"))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Contains(t, se.Error(), "example.com")
}

func TestMockHTTPClientConcurrent(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DefaultBody = "{}"

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
			resp, err := mock.Do(req)
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, mock.RequestCount())
}

func TestMockHTTPClientDoFunc(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DoFunc = func(*http.Request) (*http.Response, error) {
		return nil, errors.New("boom")
	}
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	_, err := mock.Do(req)
	assert.EqualError(t, err, "boom")
}
