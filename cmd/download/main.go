package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"github.com/geomatics-lab/landsat-ingest/catalog"
	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
	"github.com/geomatics-lab/landsat-ingest/common"
	"github.com/geomatics-lab/landsat-ingest/downloader"
	"github.com/geomatics-lab/landsat-ingest/interface/catalog/earthexplorer"
	"github.com/geomatics-lab/landsat-ingest/interface/provider"
	"github.com/geomatics-lab/landsat-ingest/service"
	"github.com/geomatics-lab/landsat-ingest/service/log"
)

type config struct {
	SettingsFile string
	CatalogURL   string

	Dataset   string
	Clouds    int
	Start     string
	End       string
	SceneIDs  []string
	AOIFile   string
	OutputDir string
	ListOnly  bool

	LocalProviderPath  string
	AwsAccessKeyId     string
	AwsSecretAccessKey string
	GSBuckets          []string
	FTPUrl             string
	FTPUsername        string
	FTPPassword        string
}

func newAppConfig() (*config, error) {
	config := config{}
	// Catalog
	flag.StringVar(&config.SettingsFile, "settings", "", "file with the USGS credentials, one per line ('-' to read them from the terminal)")
	flag.StringVar(&config.CatalogURL, "catalog-url", earthexplorer.DefaultURL, "base url of the EarthExplorer JSON API")

	// Query
	flag.StringVar(&config.Dataset, "dataset", common.Landsat8.Code(), "Landsat dataset to search")
	flag.IntVar(&config.Clouds, "clouds", 100, "maximum cloud cover in percent")
	flag.StringVar(&config.Start, "start", "", "start of the acquisition time range (e.g. 2018-12-01)")
	flag.StringVar(&config.End, "end", "", "end of the acquisition time range (e.g. 2018-12-31)")
	ids := flag.String("id", "", "scene identifiers, comma-separated. When given, the time range, cloud and AOI filters are ignored.")
	flag.StringVar(&config.AOIFile, "aoi", "", "GeoJSON file with the area of interest (optional)")
	flag.StringVar(&config.OutputDir, "output", "", "directory to store the downloaded scenes (default: temp dir)")
	flag.BoolVar(&config.ListOnly, "l", false, "list the matching scenes and exit, nothing is downloaded")

	// Providers
	flag.StringVar(&config.LocalProviderPath, "local-path", "", "local path where scene archives are stored (optional). To configure a local path as a potential image Provider.")
	flag.StringVar(&config.AwsAccessKeyId, "aws-access-key-id", "", "AWS access key id (optional). To configure the usgs-landsat requester-pays bucket as a potential image Provider.")
	flag.StringVar(&config.AwsSecretAccessKey, "aws-secret-access-key", "", "AWS secret access key (optional)")
	gsBuckets := flag.String("gcs-bucket", "", `Google Storage bucket patterns, comma-separated (optional, "default" for the public LANDSAT bucket). To configure GS as a potential image Provider.
	pattern can contain several {IDENTIFIER} that will be replaced according to the sceneName.
	IDENTIFIER must be one of SCENE, SENSOR_DIR, PATH, ROW, YEAR, DATE`)
	flag.StringVar(&config.FTPUrl, "ftp-url", "", "ftp url pattern, e.g. ftp://host:21/Landsat/{SCENE}.tar.gz (optional). To configure an FTP mirror as a potential image Provider.")
	flag.StringVar(&config.FTPUsername, "ftp-username", "", "ftp account username (optional)")
	flag.StringVar(&config.FTPPassword, "ftp-password", "", "ftp account password (optional)")

	flag.Parse()

	if config.SettingsFile == "" {
		return nil, fmt.Errorf("missing settings config flag")
	}
	if *ids != "" {
		config.SceneIDs = strings.Split(*ids, ",")
	}
	if *gsBuckets != "" {
		config.GSBuckets = strings.Split(*gsBuckets, ",")
	}
	return &config, nil
}

func main() {
	ctx := context.Background()
	err := run(ctx)
	if err != nil {
		log.Fatal("error", zap.Error(err))
	}
}

func newQuery(config *config) (entities.Query, error) {
	query := entities.Query{
		MaxCloudCover: config.Clouds,
		SceneIDs:      config.SceneIDs,
	}

	query.Dataset = common.GetDatasetFromCode(config.Dataset)

	var err error
	if config.Start != "" {
		if query.StartTime, err = dateparse.ParseAny(config.Start); err != nil {
			return query, fmt.Errorf("parse start date: %w", err)
		}
	}
	if config.End != "" {
		if query.EndTime, err = dateparse.ParseAny(config.End); err != nil {
			return query, fmt.Errorf("parse end date: %w", err)
		}
	}
	if config.AOIFile != "" {
		if query.AOI, err = service.LoadGeometryFile(config.AOIFile); err != nil {
			return query, fmt.Errorf("load aoi: %w", err)
		}
	}
	return query, nil
}

func newImageProviders(config *config, credentials service.Credentials) []provider.ImageProvider {
	imageProviders := []provider.ImageProvider{}
	if config.LocalProviderPath != "" {
		imageProviders = append(imageProviders, provider.NewLocalImageProvider(config.LocalProviderPath))
	}
	imageProviders = append(imageProviders, provider.NewEarthExplorerImageProvider(credentials.Username, credentials.Password))
	if len(config.GSBuckets) != 0 {
		gs := provider.NewGSImageProvider()
		for _, bucket := range config.GSBuckets {
			if bucket != "default" {
				gs.AddBucket(bucket)
			}
		}
		imageProviders = append(imageProviders, gs)
	}
	if config.AwsAccessKeyId != "" {
		imageProviders = append(imageProviders, provider.NewLandsatAwsImageProvider(config.AwsAccessKeyId, config.AwsSecretAccessKey))
	}
	if config.FTPUrl != "" {
		imageProviders = append(imageProviders, provider.NewFTPImageProvider(config.FTPUrl, config.FTPUsername, config.FTPPassword))
	}
	return imageProviders
}

func run(ctx context.Context) error {
	config, err := newAppConfig()
	if err != nil {
		return err
	}

	credentials, err := service.LoadCredentials(config.SettingsFile)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	query, err := newQuery(config)
	if err != nil {
		return service.MakeFatal(err)
	}

	// Catalog
	eeProvider := earthexplorer.NewProvider(credentials)
	eeProvider.URL = config.CatalogURL
	if err := eeProvider.Login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer func() {
		if err := eeProvider.Logout(ctx); err != nil {
			log.Logger(ctx).Sugar().Warnf("logout: %v", err)
		}
	}()

	scenes, err := (&catalog.Catalog{Provider: eeProvider}).ScenesInventory(ctx, query)
	if err != nil {
		return err
	}

	if config.ListOnly {
		catalog.FprintScenes(os.Stdout, scenes)
		return nil
	}

	outputDir := config.OutputDir
	if outputDir == "" {
		if outputDir, err = os.MkdirTemp("", "landsat"); err != nil {
			return fmt.Errorf("output: %w", err)
		}
		log.Logger(ctx).Sugar().Infof("downloading to %s", outputDir)
	} else if err := os.MkdirAll(outputDir, 0766); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	d := downloader.Downloader{
		Providers: newImageProviders(config, credentials),
		OutputDir: outputDir,
	}
	return d.ProcessScenes(ctx, scenes)
}
