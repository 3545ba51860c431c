package storage

import (
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/config"
)

// Client fronts the audio object store: uploaded tracks and emergency
// announcement audio live here, referenced from the DB by key.
type Client struct {
	backend     StorageProvider
	bucketAudio string
	publicBase  string
}

func New(cfg *config.Config) *Client {
	var backend StorageProvider

	if cfg.Storage.Provider == "local" {
		backend = NewLocalProvider(cfg.Storage.LocalPath)
	} else {
		// Defaulting to S3/B2
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Storage.KeyID, cfg.Storage.AppKey, ""),
			Endpoint:         aws.String(cfg.Storage.Endpoint),
			Region:           aws.String(cfg.Storage.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		sess := session.Must(session.NewSession(s3Config))
		backend = &S3Provider{api: s3.New(sess)}
	}

	publicBase := cfg.Storage.PublicBaseURL
	if publicBase == "" {
		publicBase = strings.TrimSuffix(cfg.Storage.Endpoint, "/") + "/" + cfg.Storage.BucketAudio
	}

	return &Client{
		backend:     backend,
		bucketAudio: cfg.Storage.BucketAudio,
		publicBase:  strings.TrimSuffix(publicBase, "/"),
	}
}

func (c *Client) UploadAudio(key string, body io.ReadSeeker, contentType string) error {
	return c.backend.Put(c.bucketAudio, key, body, contentType, "max-age=31536000")
}

func (c *Client) DownloadAudio(key string) (*FileObject, error) {
	return c.backend.Get(c.bucketAudio, key)
}

func (c *Client) DeleteAudio(key string) error {
	return c.backend.Delete(c.bucketAudio, key)
}

// ListAudio returns audio keys under a prefix, filtering out
// non-playable objects (cover art, sidecar files)
func (c *Client) ListAudio(prefix string) ([]string, error) {
	keys, err := c.backend.List(c.bucketAudio, prefix)
	if err != nil {
		return nil, err
	}

	var audio []string
	for _, key := range keys {
		if hasAudioExt(key) && key != prefix {
			audio = append(audio, key)
		}
	}
	return audio, nil
}

// PublicURL resolves a storage key to the URL store players stream from
func (c *Client) PublicURL(key string) string {
	return c.publicBase + "/" + strings.TrimPrefix(key, "/")
}

func hasAudioExt(key string) bool {
	for _, ext := range []string{".mp3", ".aac", ".ogg", ".flac", ".wav"} {
		if strings.HasSuffix(key, ext) {
			return true
		}
	}
	return false
}
