// "Тупой" клиент. обработка проектных файлов будет отдельно

package s3storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ilkoid/cotools-ai/pkg/config"
)

// ClientInterface определяет интерфейс для S3 клиента.
// Используется для мокания в тестах и внедрения зависимостей.
type ClientInterface interface {
	ListFiles(ctx context.Context, prefix string) ([]StoredObject, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
}

type Client struct {
	api    *minio.Client
	bucket string
}

// Проверка что Client реализует ClientInterface
var _ ClientInterface = (*Client)(nil)

// StoredObject - сырой объект из S3
type StoredObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ProjectFileMeta хранит метаданные проектного файла в хранилище.
type ProjectFileMeta struct {
	Key          string // Полный путь в S3
	Filename     string // Имя файла без пути
	Format       string // Расширение в нижнем регистре (".mpp", ".xer", ...)
	Size         int64  // Размер файла в байтах
	LastModified time.Time
}

// NewProjectFileMeta создает метаданные из сырого объекта.
func NewProjectFileMeta(obj StoredObject) ProjectFileMeta {
	return ProjectFileMeta{
		Key:          obj.Key,
		Filename:     filepath.Base(obj.Key),
		Format:       strings.ToLower(filepath.Ext(obj.Key)),
		Size:         obj.Size,
		LastModified: obj.LastModified,
	}
}

// New создает клиент, используя наш конфиг
func New(cfg config.S3Config) (*Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		api:    minioClient,
		bucket: cfg.Bucket,
	}, nil
}

// ListFiles возвращает ВСЕ файлы по префиксу (папке проекта)
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]StoredObject, error) {
	// Нормализация префикса (добавляем слеш, если это "папка")
	if !strings.HasSuffix(prefix, "/") && prefix != "" {
		prefix += "/"
	}

	var objects []StoredObject

	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	for obj := range c.api.ListObjects(ctx, c.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// Пропускаем саму "папку"
		if obj.Key == prefix {
			continue
		}
		objects = append(objects, StoredObject{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	if len(objects) == 0 {
		return nil, fmt.Errorf("path '%s' not found or empty", prefix)
	}

	return objects, nil
}

// DownloadFile скачивает объект целиком в память
func (c *Client) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.api.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	// Читаем в буфер
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, obj); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// StatFile возвращает метаданные объекта без скачивания.
//
// Rule 11: context.Context propagation for cancellation support.
func (c *Client) StatFile(ctx context.Context, key string) (ProjectFileMeta, error) {
	info, err := c.api.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ProjectFileMeta{}, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	return NewProjectFileMeta(StoredObject{
		Key:          key,
		Size:         info.Size,
		LastModified: info.LastModified,
	}), nil
}
