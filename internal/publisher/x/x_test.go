package x

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/faruk-isik/x-trend-bot/internal/publisher"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, tweetHandler, uploadHandler http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	if tweetHandler != nil {
		mux.HandleFunc("/2/tweets", tweetHandler)
	}
	if uploadHandler != nil {
		mux.HandleFunc("/1.1/media/upload.json", uploadHandler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(Credentials{APIKey: "ck", APISecret: "cs", AccessToken: "at", AccessSecret: "as"}, testLogger())
	c.tweetURL = srv.URL + "/2/tweets"
	c.uploadURL = srv.URL + "/1.1/media/upload.json"
	return c
}

func TestPublish(t *testing.T) {
	var gotBody tweetRequest
	var gotAuth string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1234567890","text":"ok"}}`))
	}, nil)

	res, err := c.Publish(context.Background(), "Merkez Bankası faiz kararını açıkladı.", nil)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.ID != "1234567890" {
		t.Errorf("id = %q", res.ID)
	}
	if gotBody.Text != "Merkez Bankası faiz kararını açıkladı." {
		t.Errorf("posted text = %q", gotBody.Text)
	}
	if gotBody.Media != nil {
		t.Errorf("unexpected media block: %+v", gotBody.Media)
	}
	// Requests must carry an OAuth 1.0a signature.
	if !strings.Contains(gotAuth, "OAuth") {
		t.Errorf("authorization header = %q", gotAuth)
	}
}

func TestPublishWithMedia(t *testing.T) {
	var gotBody tweetRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	}, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"media_id_string":"987"}`))
	})

	_, err := c.Publish(context.Background(), "Görselli gönderi.", []byte("fake-image"))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if gotBody.Media == nil || len(gotBody.Media.MediaIDs) != 1 || gotBody.Media.MediaIDs[0] != "987" {
		t.Errorf("media block = %+v", gotBody.Media)
	}
}

func TestPublishMediaUploadSoftFails(t *testing.T) {
	var gotBody tweetRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	}, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	// Upload failure must not block the text publish.
	_, err := c.Publish(context.Background(), "Görsel yüklenemedi ama metin gitti.", []byte("fake-image"))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if gotBody.Media != nil {
		t.Errorf("media block present after failed upload: %+v", gotBody.Media)
	}
}

func TestPublishErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: publisher.ErrRateLimited},
		{name: "bad credentials", status: http.StatusUnauthorized, wantErr: publisher.ErrAuthFailed},
		{name: "forbidden", status: http.StatusForbidden, wantErr: publisher.ErrAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}, nil)

			_, err := c.Publish(context.Background(), "metin", nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("server error", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"boom"}`))
		}, nil)

		_, err := c.Publish(context.Background(), "metin", nil)
		if err == nil {
			t.Fatal("expected error")
		}
		if errors.Is(err, publisher.ErrRateLimited) || errors.Is(err, publisher.ErrAuthFailed) {
			t.Errorf("5xx mapped to a typed error: %v", err)
		}
	})
}
