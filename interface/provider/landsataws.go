package provider

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
	"github.com/geomatics-lab/landsat-ingest/common"
)

const (
	landsatAwsBucket         = "usgs-landsat"
	landsatAwsPrefixTemplate = "collection02/level-1/standard/%s/%s/%s/%s/%s/"
	landsatAwsRegion         = "us-west-2"
)

// LandsatAwsImageProvider implements ImageProvider for the usgs-landsat requester-pays bucket
type LandsatAwsImageProvider struct {
	accessKeyId     string
	secretAccessKey string
}

// Name implements ImageProvider
func (ip *LandsatAwsImageProvider) Name() string {
	return "LandsatAws"
}

// NewLandsatAwsImageProvider creates a new ImageProvider from the usgs-landsat bucket
func NewLandsatAwsImageProvider(accessKeyId, secretAccessKey string) *LandsatAwsImageProvider {
	return &LandsatAwsImageProvider{accessKeyId, secretAccessKey}
}

func landsatAwsSensorDir(dataset common.Dataset) (string, error) {
	switch dataset {
	case common.LandsatTM:
		return "tm", nil
	case common.LandsatETM:
		return "etm", nil
	case common.Landsat8:
		return "oli-tirs", nil
	}
	return "", fmt.Errorf("dataset not supported: %s", dataset)
}

// Download implements ImageProvider
func (ip *LandsatAwsImageProvider) Download(ctx context.Context, scene *entities.Scene, localDir string) error {
	// The bucket is keyed by product identifiers
	sceneName := scene.DisplayID
	if sceneName == "" {
		return ErrProductNotFound{scene.EntityID}
	}

	sensorDir, err := landsatAwsSensorDir(common.GetDatasetFromSceneID(sceneName))
	if err != nil {
		return fmt.Errorf("LandsatAwsImageProvider: %w", err)
	}

	info, err := common.Info(sceneName)
	if err != nil {
		return fmt.Errorf("LandsatAwsImageProvider.common.Info: %w", err)
	}

	landsatAwsPrefix := fmt.Sprintf(landsatAwsPrefixTemplate, sensorDir, info["YEAR"], info["PATH"], info["ROW"], sceneName)

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(ip.accessKeyId, ip.secretAccessKey, "")),
		config.WithRegion(landsatAwsRegion),
	)
	if err != nil {
		return fmt.Errorf("LandsatAwsImageProvider config.LoadDefaultConfig: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	downloader := manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = 10 * 1024 * 1024 // 10MB per part
	})

	paginator := s3.NewListObjectsV2Paginator(client,
		&s3.ListObjectsV2Input{
			Bucket:       aws.String(landsatAwsBucket),
			Prefix:       aws.String(landsatAwsPrefix),
			RequestPayer: "requester",
		},
		func(o *s3.ListObjectsV2PaginatorOptions) {
			o.Limit = 200 // much more than the typical number of files in a Landsat product
		},
	)

	found := false
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("LandsatAwsImageProvider paginator.NextPage: %w", err)
		}

		for _, object := range page.Contents {
			found = true
			objectKey := aws.ToString(object.Key)
			objectFileName := objectKey[strings.LastIndex(objectKey, "/")+1:]
			localFilePath := path.Join(localDir, objectFileName)

			if err := downloadSingleObjectToFile(ctx, downloader, landsatAwsBucket, objectKey, localFilePath); err != nil {
				return fmt.Errorf("LandsatAwsImageProvider.%w", err)
			}
		}
	}
	if !found {
		return ErrProductNotFound{sceneName}
	}

	return nil
}

func downloadSingleObjectToFile(ctx context.Context, downloader *manager.Downloader, bucketName string, objectKey string, localPath string) error {
	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("downloadSingleObjectToFile: failed to create file %s: %w", localPath, err)
	}
	defer file.Close()

	_, err = downloader.Download(ctx, file, &s3.GetObjectInput{
		Bucket:       aws.String(bucketName),
		Key:          aws.String(objectKey),
		RequestPayer: "requester",
	})
	if err != nil {
		return fmt.Errorf("downloadSingleObjectToFile: failed to download object %s:%s: %w",
			bucketName, objectKey, err)
	}

	return nil
}
