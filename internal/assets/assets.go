// Package assets stores finalized newscast audio and returns stable
// public references to it.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// Store persists one finished audio asset per newscast and hands back
// the URL clients stream it from.
type Store interface {
	PutNewscastAudio(ctx context.Context, newscastID uuid.UUID, wav []byte) (string, error)
}

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	bucket          string
	accessKey       string
	secretAccessKey string
	publicURLPrefix string
	useSSL          bool
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) {
		c.bucket = bucket
	}
}

func WithAccessKey(accessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) MinioOpts {
	return func(c *minioConfig) {
		c.secretAccessKey = secretKey
	}
}

// WithPublicURLPrefix sets the base URL returned for stored objects,
// e.g. a CDN in front of the bucket. Defaults to the bucket endpoint.
func WithPublicURLPrefix(prefix string) MinioOpts {
	return func(c *minioConfig) {
		c.publicURLPrefix = prefix
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}

type minioStore struct {
	cfg    *minioConfig
	client *minio.Client
}

// Make sure we conform to Store interface
var _ Store = (*minioStore)(nil)

func NewMinioStore(opts ...MinioOpts) (Store, error) {
	cfg := &minioConfig{
		bucket: "newscasts",
	}
	for _, o := range opts {
		o(cfg)
	}

	client, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create object storage client")
	}

	return &minioStore{cfg: cfg, client: client}, nil
}

func (s *minioStore) PutNewscastAudio(ctx context.Context, newscastID uuid.UUID, wav []byte) (string, error) {
	name := objectName(newscastID)

	_, err := s.client.PutObject(ctx, s.cfg.bucket, name, bytes.NewReader(wav), int64(len(wav)), minio.PutObjectOptions{
		ContentType: "audio/wav",
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload newscast audio")
	}

	return s.publicURL(name), nil
}

func (s *minioStore) publicURL(name string) string {
	if s.cfg.publicURLPrefix != "" {
		return strings.TrimSuffix(s.cfg.publicURLPrefix, "/") + "/" + name
	}
	scheme := "http"
	if s.cfg.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.endpoint, s.cfg.bucket, name)
}

func objectName(newscastID uuid.UUID) string {
	return fmt.Sprintf("newscasts/%s.wav", newscastID)
}

// MemoryStore keeps assets in memory. Used in tests and when no object
// storage is configured.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// Make sure we conform to Store interface
var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (s *MemoryStore) PutNewscastAudio(ctx context.Context, newscastID uuid.UUID, wav []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := objectName(newscastID)
	s.objects[name] = wav
	return "memory://" + name, nil
}

// Get returns a stored asset, for tests.
func (s *MemoryStore) Get(newscastID uuid.UUID) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wav, ok := s.objects[objectName(newscastID)]
	return wav, ok
}
