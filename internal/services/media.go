package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"communityhub/internal/apperr"
	"communityhub/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MediaStore 上传文件的存放位置，返回公开访问路径
type MediaStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// NewMediaStoreFromConfig 按 MEDIA_BACKEND 选择本地目录或 S3
func NewMediaStoreFromConfig(cfg *config.Config) (MediaStore, error) {
	switch cfg.MediaBackend {
	case "s3":
		return NewS3MediaStore(cfg.AWSRegion, cfg.S3Bucket, cfg.S3BaseURL)
	case "", "local":
		return NewLocalMediaStore(cfg.UploadDir, cfg.MediaURLPrefix)
	}
	return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
}

// LocalMediaStore 写入固定公开目录
type LocalMediaStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalMediaStore(dir, urlPrefix string) (*LocalMediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalMediaStore{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *LocalMediaStore) Save(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.URLPrefix + "/" + name, nil
}

// S3MediaStore 上传到 S3 桶
type S3MediaStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3MediaStore(region, bucket, baseURL string) (*S3MediaStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for the s3 media backend")
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3MediaStore{client: s3.NewFromConfig(cfg), bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *S3MediaStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	now := time.Now()
	key := fmt.Sprintf("media/%d/%02d/%s", now.Year(), now.Month(), name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=86400"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

var allowedMedia = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

// StoreUploads 校验并保存上传文件，返回公开路径列表。空文件视为上传失败直接跳过。
func StoreUploads(ctx context.Context, store MediaStore, files []*multipart.FileHeader, maxBytes int64) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		if fh == nil || fh.Size == 0 {
			continue
		}
		if maxBytes > 0 && fh.Size > maxBytes {
			return nil, apperr.Validation("images", fmt.Sprintf("%s exceeds the upload size limit", fh.Filename))
		}

		data, err := readUpload(fh)
		if err != nil {
			return nil, err
		}

		mt := mimetype.Detect(data)
		ext, ok := allowedMedia[strings.Split(mt.String(), ";")[0]]
		if !ok {
			return nil, apperr.Validation("images", fmt.Sprintf("%s is not a supported image or video", fh.Filename))
		}

		name := uuid.NewString() + ext
		url, err := store.Save(ctx, name, data, mt.String())
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
