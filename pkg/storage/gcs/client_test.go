package gcs

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func mustGenerateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}

func staticTokenClient(t *testing.T, transport roundTripFunc) *Client {
	t.Helper()
	return &Client{
		defaultBucket: "bucket",
		tokenSource: &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
			return "token", time.Now().Add(time.Hour), nil
		}},
		httpClient: &http.Client{Transport: transport},
	}
}

func TestSignedURLSuccess(t *testing.T) {
	t.Parallel()

	key := mustGenerateKey(t)
	client := &Client{
		defaultBucket: "bucket",
		serviceAccount: &serviceAccountInfo{
			clientEmail: "signer@example.com",
			privateKey:  key,
		},
	}

	object := "jobs/abc/workflow/5/1700000000_pod.png"
	contentType := "image/png"
	urlStr, err := client.SignedURL("bucket", object, contentType, 5*time.Minute)
	if err != nil {
		t.Fatalf("SignedURL returned error: %v", err)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if !strings.EqualFold(parsed.Host, "storage.googleapis.com") {
		t.Fatalf("unexpected host %s", parsed.Host)
	}

	values := parsed.Query()
	if got := values.Get("GoogleAccessId"); got != "signer@example.com" {
		t.Fatalf("unexpected GoogleAccessId %q", got)
	}

	expireParam := values.Get("Expires")
	if expireParam == "" {
		t.Fatal("Expires missing")
	}
	expiration, err := strconv.ParseInt(expireParam, 10, 64)
	if err != nil {
		t.Fatalf("parse expires: %v", err)
	}

	signature := values.Get("Signature")
	if signature == "" {
		t.Fatal("signature missing")
	}
	rawSig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	data := []byte("PUT\n\n" + contentType + "\n" + strconv.FormatInt(expiration, 10) + "\n/bucket/" + object)
	hash := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, hash[:], rawSig); err != nil {
		t.Fatalf("verify signature: %v", err)
	}
}

func TestSignedURLErrors(t *testing.T) {
	t.Parallel()

	client := &Client{
		serviceAccount: &serviceAccountInfo{
			clientEmail: "test@example.com",
			privateKey:  mustGenerateKey(t),
		},
		defaultBucket: "bucket",
	}

	cases := []struct {
		name              string
		bucket            string
		object            string
		contentType       string
		expires           time.Duration
		forceClearDefault bool
	}{
		{"missing bucket", "", "object", "image/png", time.Minute, true},
		{"missing object", "bucket", "", "image/png", time.Minute, false},
		{"missing contentType", "bucket", "object", "", time.Minute, false},
		{"negative ttl", "bucket", "object", "image/png", -time.Minute, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			origBucket := client.defaultBucket
			if tc.forceClearDefault {
				client.defaultBucket = ""
			}
			defer func() {
				client.defaultBucket = origBucket
			}()
			if _, err := client.SignedURL(tc.bucket, tc.object, tc.contentType, tc.expires); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}

	emptyClient := &Client{}
	if _, err := emptyClient.SignedURL("", "object", "image/png", time.Minute); err == nil {
		t.Fatal("expected error without service account")
	}
}

func TestDeleteObjectSuccess(t *testing.T) {
	t.Parallel()

	client := staticTokenClient(t, func(req *http.Request) *http.Response {
		if req.Method != http.MethodDelete {
			t.Fatalf("expected DELETE, got %s", req.Method)
		}
		if req.Header.Get("Authorization") != "Bearer token" {
			t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
		}
		return &http.Response{
			StatusCode: http.StatusNoContent,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
		}
	})

	if err := client.DeleteObject(context.Background(), "bucket", "jobs/abc/documents/1700000000_invoice.pdf"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
}

func TestDeleteObjectNotFoundIsClean(t *testing.T) {
	t.Parallel()

	client := staticTokenClient(t, func(req *http.Request) *http.Response {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
		}
	})

	if err := client.DeleteObject(context.Background(), "bucket", "jobs/abc/missing.png"); err != nil {
		t.Fatalf("DeleteObject on missing object should succeed: %v", err)
	}
}

func TestUploadObject(t *testing.T) {
	t.Parallel()

	var gotURL string
	var gotBody []byte
	client := staticTokenClient(t, func(req *http.Request) *http.Response {
		gotURL = req.URL.String()
		gotBody, _ = io.ReadAll(req.Body)
		if req.Header.Get("Content-Type") != "image/jpeg" {
			t.Fatalf("unexpected content type %s", req.Header.Get("Content-Type"))
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Header:     http.Header{},
		}
	})

	err := client.UploadObject(context.Background(), "", "jobs/abc/workflow/3/pic.jpg", "image/jpeg", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("UploadObject: %v", err)
	}
	if !strings.Contains(gotURL, "/upload/storage/v1/b/bucket/o") {
		t.Fatalf("unexpected upload url %s", gotURL)
	}
	if !strings.Contains(gotURL, "name="+url.QueryEscape("jobs/abc/workflow/3/pic.jpg")) {
		t.Fatalf("object name missing from url %s", gotURL)
	}
	if string(gotBody) != "bytes" {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestListObjectsFollowsPages(t *testing.T) {
	t.Parallel()

	calls := 0
	client := staticTokenClient(t, func(req *http.Request) *http.Response {
		calls++
		if calls == 1 {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body: io.NopCloser(strings.NewReader(
					`{"items":[{"name":"jobs/a/one.png","size":"10"}],"nextPageToken":"tok"}`,
				)),
				Header: http.Header{},
			}
		}
		if req.URL.Query().Get("pageToken") != "tok" {
			t.Fatalf("expected pageToken on second call, got %s", req.URL.RawQuery)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body: io.NopCloser(strings.NewReader(
				`{"items":[{"name":"jobs/a/two.png","size":"20"}]}`,
			)),
			Header: http.Header{},
		}
	})

	objects, err := client.ListObjects(context.Background(), "", "jobs/")
	if err != nil {
		t.Fatalf("ListObjects: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(objects))
	}
	if objects[0].Name != "jobs/a/one.png" || objects[0].Size != 10 {
		t.Fatalf("first object = %+v", objects[0])
	}
	if objects[1].Name != "jobs/a/two.png" || objects[1].Size != 20 {
		t.Fatalf("second object = %+v", objects[1])
	}
}
