package cloudinary

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignExcludesKeyAndFile(t *testing.T) {
	c := New("demo", "key", "secret", "")
	got := c.sign(map[string]string{
		"timestamp": "1700000000",
		"public_id": "u1",
		"api_key":   "key",
		"file":      "ignored",
		"folder":    "",
	})
	want := fmt.Sprintf("%x", sha1.Sum([]byte("public_id=u1&timestamp=1700000000secret")))
	if got != want {
		t.Fatalf("sign = %s, want %s", got, want)
	}
}

func TestUploadProfilePhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/demo/image/upload" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("public_id") != "u1" || r.FormValue("folder") != "rideshare/profiles" || r.FormValue("signature") == "" {
			http.Error(w, "missing params", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"public_id":"rideshare/profiles/u1","secure_url":"https://res.example/u1.jpg"}`))
	}))
	defer srv.Close()

	c := New("demo", "key", "secret", "rideshare/profiles")
	c.BaseURL = srv.URL
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	res, err := c.UploadProfilePhoto(context.Background(), "u1", []byte("jpegdata"), "me.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if res.SecureURL != "https://res.example/u1.jpg" {
		t.Fatalf("result = %+v", res)
	}
}

func TestUploadProfilePhotoRejectsEmpty(t *testing.T) {
	c := New("demo", "key", "secret", "")
	if _, err := c.UploadProfilePhoto(context.Background(), "u1", nil, "x.jpg"); err == nil {
		t.Fatal("expected error")
	}
}
