package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
}

func (s staticTokens) Get() (string, bool) {
	return s.token, s.token != ""
}

func newTestGateway(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gateway, err := NewGateway(GatewayConfig{BaseURL: server.URL + "/", Tokens: tokens})
	require.NoError(t, err)
	return gateway
}

func TestNewGateway(t *testing.T) {
	t.Run("valid URL", func(t *testing.T) {
		gateway, err := NewGateway(GatewayConfig{BaseURL: "http://localhost:4000"})
		require.NoError(t, err)
		assert.NotNil(t, gateway)
	})

	t.Run("empty URL", func(t *testing.T) {
		_, err := NewGateway(GatewayConfig{})
		assert.Error(t, err)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := NewGateway(GatewayConfig{BaseURL: "ftp://example.com"})
		assert.Error(t, err)
	})
}

func TestRequestAttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(headerRequestID)
		w.Write([]byte(`[]`))
	}, staticTokens{token: "t1"})

	_, err := gateway.Request(context.Background(), "/contacts", RequestOptions{RequiresAuth: true})
	require.NoError(t, err)

	assert.Equal(t, "Bearer t1", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestRequestOmitsTokenWhenNotRequired(t *testing.T) {
	var gotAuth string
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, staticTokens{token: "t1"})

	_, err := gateway.Request(context.Background(), "/auth/login", RequestOptions{Method: http.MethodPost})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestRequestOmitsTokenWhenStoreEmpty(t *testing.T) {
	var gotAuth string
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}, staticTokens{})

	_, err := gateway.Request(context.Background(), "/contacts", RequestOptions{RequiresAuth: true})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestRequestSerializesBody(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ann", body["name"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"1"}`))
	}, nil)

	result, err := gateway.Request(context.Background(), "/contacts", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"name": "Ann"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(result))
}

func TestRequestWithoutBodySendsNoContentType(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		assert.Empty(t, data)
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}, nil)

	result, err := gateway.Request(context.Background(), "/contacts/1", RequestOptions{Method: http.MethodDelete})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRequestEmptySuccessBody(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  \n"))
	}, nil)

	result, err := gateway.Request(context.Background(), "/contacts", RequestOptions{})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRequestErrorPayloads(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Name taken"}`, "Name taken"},
		{"error field", http.StatusUnauthorized, `{"error":"Invalid token"}`, "Invalid token"},
		{"message wins over error", http.StatusConflict, `{"message":"first","error":"second"}`, "first"},
		{"non-string message", http.StatusBadRequest, `{"message":{"x":1},"error":"fallback"}`, "fallback"},
		{"no payload", http.StatusInternalServerError, ``, "HTTP 500"},
		{"html payload", http.StatusBadGateway, `<html>bad</html>`, "HTTP 502"},
		{"payload without fields", http.StatusNotFound, `{"code":7}`, "HTTP 404"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}, nil)

			_, err := gateway.Request(context.Background(), "/contacts", RequestOptions{})
			require.Error(t, err)

			var remoteErr *RemoteError
			require.True(t, errors.As(err, &remoteErr), "expected RemoteError, got %T", err)
			assert.Equal(t, tc.status, remoteErr.StatusCode)
			assert.Equal(t, tc.message, remoteErr.Error())
			assert.True(t, IsRemoteStatus(err, tc.status))
		})
	}
}

func TestRequestInvalidSuccessBody(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}, nil)

	_, err := gateway.Request(context.Background(), "/contacts", RequestOptions{})

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, opDecode, transportErr.Op)
}

func TestRequestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	gateway, err := NewGateway(GatewayConfig{BaseURL: url})
	require.NoError(t, err)

	_, err = gateway.Request(context.Background(), "/contacts", RequestOptions{})

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, opRequest, transportErr.Op)
	assert.NotEmpty(t, transportErr.UserMessage())
}

func TestRequestUnencodableBody(t *testing.T) {
	calls := 0
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	}, nil)

	_, err := gateway.Request(context.Background(), "/contacts", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]any{"bad": make(chan int)},
	})

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, opEncode, transportErr.Op)
	assert.Zero(t, calls)
}
