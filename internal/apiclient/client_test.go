package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelportal/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", time.Second)
}

func TestClient_LoginSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@x.com", body["email"])
		assert.Equal(t, "pw", body["password"])
		_, _ = w.Write([]byte(`{"success":true,"token":"t1","user":{"id":1,"name":"A","email":"a@x.com","role":"warden"}}`))
	})

	resp, err := client.Login(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.Token)
	assert.Equal(t, model.RoleWarden, resp.User.Role)
}

func TestClient_LoginRejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"401 with message", http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`, "Invalid credentials"},
		{"200 with success false", http.StatusOK, `{"success":false,"message":"Account disabled"}`, "Account disabled"},
		{"error field", http.StatusBadRequest, `{"error":"bad input","code":"X"}`, "bad input"},
		{"no body", http.StatusInternalServerError, ``, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			resp, err := client.Login(context.Background(), "a@x.com", "pw")
			assert.Nil(t, resp)
			var rejected *RejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.message, rejected.Message)
			assert.Equal(t, tt.message, Message(err, "fallback"))
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(url, time.Second)
	_, err := client.Login(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, "fallback", Message(err, "fallback"))
}

func TestClient_BearerAndUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid or expired jwt"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"number":"A-101","block":"A","capacity":2,"occupied":1}]`))
	})

	rooms, err := client.Rooms(context.Background(), "good")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "A-101", rooms[0].Number)

	_, err = client.Rooms(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_PasswordRecovery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/forgotpassword":
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = w.Write([]byte(`{"message":"otp sent"}`))
		case "/api/auth/resetpassword":
			assert.Equal(t, http.MethodPut, r.Method)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"invalid or expired otp"}`))
		}
	})

	msg, err := client.ForgotPassword(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "otp sent", msg)

	_, err = client.ResetPassword(context.Background(), "a@x.com", "000000", "newpass1")
	assert.Equal(t, "invalid or expired otp", Message(err, ""))
	assert.NotErrorIs(t, err, ErrUnauthorized)
}
