package sourcesFs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// CachePath is where the last downloaded sources document is kept
var CachePath = filepath.Join("assets", "sources.json")

// DownloadSourcesFromS3 fetches the fleet-wide sources document and keeps a
// local copy so the next start works offline.
func DownloadSourcesFromS3(bucket, key string) (Sources, error) {
	log.Printf("DownloadSourcesFromS3 called | bucket=%s | key=%s", bucket, key)

	region := os.Getenv("AWS_DEFAULT_REGION")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")

	if region == "" || accessKey == "" || secretKey == "" {
		return Defaults(), errors.New("missing one or more required environment variables: AWS_DEFAULT_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return Defaults(), fmt.Errorf("aws session: %w", err)
	}

	result, err := s3.New(sess).GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Defaults(), fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	raw, err := io.ReadAll(result.Body)
	if err != nil {
		return Defaults(), fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}

	s, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return Defaults(), err
	}

	if err := writeCache(raw); err != nil {
		log.Printf("DownloadSourcesFromS3: failed to cache sources: %v", err)
	}

	log.Printf("DownloadSourcesFromS3 completed | news=%d", len(s.News))
	return s, nil
}

func writeCache(raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(CachePath), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(CachePath, raw, 0o644)
}

// Resolve picks the sources for this run: S3 when a bucket is configured,
// then the cached download, then a local file, then the defaults.
func Resolve(bucket, key, localPath string) Sources {
	if bucket != "" {
		s, err := DownloadSourcesFromS3(bucket, key)
		if err == nil {
			return s
		}
		log.Printf("Resolve: S3 sources unavailable: %v", err)

		if s, err := LoadFile(CachePath); err == nil {
			return s
		}
	}

	if localPath != "" {
		s, err := LoadFile(localPath)
		if err == nil {
			return s
		}
		log.Printf("Resolve: %v", err)
	}

	return Defaults()
}
