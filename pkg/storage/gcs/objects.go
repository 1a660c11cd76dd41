package gcs

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ObjectInfo describes one stored object returned by a prefix listing.
type ObjectInfo struct {
	Name    string
	Size    int64
	Updated time.Time
}

// UploadObject streams the body into the bucket under the given object name.
func (c *Client) UploadObject(ctx context.Context, bucket, object, contentType string, body io.Reader) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	bucket = c.resolveBucket(bucket)
	if bucket == "" {
		return errors.New("bucket is required")
	}
	if object == "" {
		return errors.New("object name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"https://storage.googleapis.com/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		url.PathEscape(bucket),
		url.QueryEscape(object),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("gcs upload %q failed: %s: %s", object, resp.Status, strings.TrimSpace(string(b)))
	}
	return nil
}

// DeleteObject removes the object. A missing object is treated as already
// deleted and returns nil.
func (c *Client) DeleteObject(ctx context.Context, bucket, object string) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	bucket = c.resolveBucket(bucket)
	if bucket == "" {
		return errors.New("bucket is required")
	}
	if object == "" {
		return errors.New("object name is required")
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"https://storage.googleapis.com/storage/v1/b/%s/o/%s",
		url.PathEscape(bucket),
		url.PathEscape(object),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("gcs delete %q failed: %s: %s", object, resp.Status, strings.TrimSpace(string(b)))
	}
}

// ListObjects returns every object under the prefix, following page tokens.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	if c == nil || c.tokenSource == nil {
		return nil, errors.New("gcs client not initialized")
	}
	bucket = c.resolveBucket(bucket)
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return nil, err
	}

	var out []ObjectInfo
	pageToken := ""
	for {
		u := fmt.Sprintf(
			"https://storage.googleapis.com/storage/v1/b/%s/o?prefix=%s",
			url.PathEscape(bucket),
			url.QueryEscape(prefix),
		)
		if pageToken != "" {
			u += "&pageToken=" + url.QueryEscape(pageToken)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, fmt.Errorf("gcs list prefix %q failed: %s: %s", prefix, resp.Status, strings.TrimSpace(string(b)))
		}

		var page struct {
			Items []struct {
				Name    string    `json:"name"`
				Size    string    `json:"size"`
				Updated time.Time `json:"updated"`
			} `json:"items"`
			NextPageToken string `json:"nextPageToken"`
		}
		err = json.NewDecoder(resp.Body).Decode(&page)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding gcs listing: %w", err)
		}

		for _, item := range page.Items {
			size, _ := strconv.ParseInt(item.Size, 10, 64)
			out = append(out, ObjectInfo{Name: item.Name, Size: size, Updated: item.Updated})
		}

		if page.NextPageToken == "" {
			return out, nil
		}
		pageToken = page.NextPageToken
	}
}

// SignedURL builds a V2 signed PUT URL for direct browser uploads.
func (c *Client) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	return c.signURL(http.MethodPut, bucket, object, contentType, expires)
}

// SignedReadURL builds a V2 signed GET URL for downloads.
func (c *Client) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	return c.signURL(http.MethodGet, bucket, object, "", expires)
}

func (c *Client) signURL(method, bucket, object, contentType string, expires time.Duration) (string, error) {
	if c == nil || c.serviceAccount == nil || c.serviceAccount.privateKey == nil {
		return "", errors.New("service account credentials required for signed urls")
	}
	bucket = c.resolveBucket(bucket)
	if bucket == "" {
		return "", errors.New("bucket is required")
	}
	if object == "" {
		return "", errors.New("object name is required")
	}
	if method == http.MethodPut && contentType == "" {
		return "", errors.New("content type is required for uploads")
	}
	if expires <= 0 {
		return "", errors.New("expiry must be positive")
	}

	expiry := time.Now().Add(expires).Unix()
	payload := fmt.Sprintf("%s\n\n%s\n%d\n/%s/%s", method, contentType, expiry, bucket, object)
	hash := sha256.Sum256([]byte(payload))
	sig, err := rsa.SignPKCS1v15(rand.Reader, c.serviceAccount.privateKey, crypto.SHA256, hash[:])
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}

	q := url.Values{}
	q.Set("GoogleAccessId", c.serviceAccount.clientEmail)
	q.Set("Expires", strconv.FormatInt(expiry, 10))
	q.Set("Signature", base64.StdEncoding.EncodeToString(sig))

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s?%s", bucket, object, q.Encode()), nil
}

func (c *Client) resolveBucket(bucket string) string {
	if bucket != "" {
		return bucket
	}
	return c.defaultBucket
}
