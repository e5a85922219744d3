package provider

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
	"github.com/geomatics-lab/landsat-ingest/common"
	"github.com/geomatics-lab/landsat-ingest/service"
)

const gsDefaultBucketPattern = "gs://gcp-public-data-landsat/{SENSOR_DIR}/01/{PATH}/{ROW}/{SCENE}"

// GSImageProvider implements ImageProvider for the Google Cloud public LANDSAT bucket
type GSImageProvider struct {
	bucketPatterns []string
}

// Name implements ImageProvider
func (ip *GSImageProvider) Name() string {
	return "GoogleStorage"
}

// NewGSImageProvider creates a new ImageProvider from the Google Cloud public LANDSAT bucket
func NewGSImageProvider() *GSImageProvider {
	return &GSImageProvider{bucketPatterns: []string{gsDefaultBucketPattern}}
}

// AddBucket to the provider
// pattern can contain several {IDENTIFIER} that will be replaced according to the information
// found in the scene name (see common.Info), plus {SENSOR_DIR} (LT05, LE07, LC08)
func (ip *GSImageProvider) AddBucket(pattern string) {
	ip.bucketPatterns = append(ip.bucketPatterns, pattern)
}

func gsSensorDir(dataset common.Dataset) (string, error) {
	switch dataset {
	case common.LandsatTM:
		return "LT05", nil
	case common.LandsatETM:
		return "LE07", nil
	case common.Landsat8:
		return "LC08", nil
	}
	return "", fmt.Errorf("dataset not supported: %s", dataset)
}

// parseGsUri splits gs://bucket/prefix into its components
func parseGsUri(uri string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("not a gs:// uri: %s", uri)
	}
	splits := strings.SplitN(uri[5:], "/", 2)
	if len(splits) != 2 || splits[0] == "" {
		return "", "", fmt.Errorf("missing bucket or object: %s", uri)
	}
	return splits[0], splits[1], nil
}

// Download implements ImageProvider
func (ip *GSImageProvider) Download(ctx context.Context, scene *entities.Scene, localDir string) error {
	// The bucket is keyed by product identifiers
	sceneName := scene.DisplayID
	if sceneName == "" {
		return ErrProductNotFound{scene.EntityID}
	}

	sensorDir, err := gsSensorDir(common.GetDatasetFromSceneID(sceneName))
	if err != nil {
		return fmt.Errorf("GSImageProvider: %w", err)
	}
	format, err := common.Info(sceneName)
	if err != nil {
		return fmt.Errorf("GSImageProvider: %w", err)
	}
	format["SENSOR_DIR"] = sensorDir

	for _, pattern := range ip.bucketPatterns {
		url := common.FormatBrackets(pattern, format)
		e := func() error {
			files, err := ip.downloadDirectory(ctx, url, localDir)
			if err != nil {
				return fmt.Errorf("GSImageProvider[%s].%w", url, err)
			}
			if len(files) == 0 {
				return ErrProductNotFound{url}
			}
			return nil
		}()

		if err = service.MergeErrors(false, err, e); err == nil {
			break
		}
	}
	return err
}

// downloadDirectory fetches all objects prefixed by uri to dstDir
// It returns the list of absolute filenames that were created (i.e with the destination prefix)
func (ip *GSImageProvider) downloadDirectory(ctx context.Context, uri string, dstDir string) (files []string, err error) {
	defer func() {
		if err != nil {
			err = service.MakeTemporary(err)
		}
	}()

	bucket, prefix, err := parseGsUri(uri)
	if err != nil {
		return nil, fmt.Errorf("downloadDirectory: %w", err)
	}
	prefix = strings.TrimRight(prefix, "/") + "/"

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("downloadDirectory: %w", err)
	}
	defer client.Close()

	type gsObjectToDownload struct {
		object string
		file   string
	}
	downloads := make(chan gsObjectToDownload)
	ctx, cncl := context.WithCancel(ctx)
	defer cncl()
	wg := sync.WaitGroup{}
	concurrency := 5
	wg.Add(concurrency)
	filemu := sync.Mutex{}
	var workerErr error
	for worker := 0; worker < concurrency; worker++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case dl, ok := <-downloads:
					if !ok {
						return
					}
					if err := downloadGsObjectToFile(ctx, client, bucket, dl.object, dl.file); err != nil {
						filemu.Lock()
						workerErr = service.MergeErrors(true, workerErr, err)
						filemu.Unlock()
						cncl()
						return
					}
					filemu.Lock()
					files = append(files, dl.file)
					filemu.Unlock()
				}
			}
		}()
	}

	q := &storage.Query{Prefix: prefix, Versions: false}
	q.SetAttrSelection([]string{"Name"})
	it := client.Bucket(bucket).Objects(ctx, q)
	for {
		objectAttrs, iterr := it.Next()
		if iterr == iterator.Done {
			break
		}
		if iterr != nil {
			close(downloads)
			wg.Wait()
			return nil, fmt.Errorf("bucket iterate [%s/%s]: %w", bucket, prefix, iterr)
		}
		filename := strings.TrimPrefix(objectAttrs.Name, prefix)
		if filename == "" || filename[len(filename)-1] == '/' {
			continue
		}
		if dir := filepath.Dir(filename); dir != "." {
			if ferr := os.MkdirAll(filepath.Join(dstDir, dir), 0766); ferr != nil {
				close(downloads)
				wg.Wait()
				return nil, fmt.Errorf("mkdirall %s: %w", dir, ferr)
			}
		}
		select {
		case <-ctx.Done():
		case downloads <- gsObjectToDownload{object: objectAttrs.Name, file: filepath.Join(dstDir, filename)}:
		}
	}
	close(downloads)
	wg.Wait()
	if workerErr != nil {
		return nil, fmt.Errorf("downloadDirectory.%w", workerErr)
	}
	return files, nil
}

func downloadGsObjectToFile(ctx context.Context, client *storage.Client, bucket, object, localPath string) error {
	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("downloadGsObjectToFile.NewReader [%s/%s]: %w", bucket, object, err)
	}
	defer r.Close()

	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("downloadGsObjectToFile.Create: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("downloadGsObjectToFile.Copy [%s/%s]: %w", bucket, object, err)
	}
	return nil
}
