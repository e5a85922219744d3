package provider

import (
	"context"
	"os"
	"testing"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
)

func testDownload(t *testing.T) {
	awsAccessKeyId := os.Getenv("LANDSAT_AWS_ACCESS_KEY_ID")
	awsSecretAccessKey := os.Getenv("LANDSAT_AWS_SECRET_ACCESS_KEY")

	ip := LandsatAwsImageProvider{accessKeyId: awsAccessKeyId, secretAccessKey: awsSecretAccessKey}

	scene := entities.Scene{
		EntityID:  "LC91660032025154LGN00",
		DisplayID: "LC09_L1GT_166003_20250603_20250603_02_T2",
	}

	err := ip.Download(context.Background(), &scene, os.TempDir())
	if err != nil {
		t.Fatalf("Failed to Download product: %v", err)
	}
}

func TestDownloadLandsatAWS(t *testing.T) {
	//testDownload(t)
}

func TestLandsatAwsSensorDir(t *testing.T) {
	scene := entities.Scene{DisplayID: "LS01_L1TP_139116_20181204_20181217_01_T1"}
	ip := NewLandsatAwsImageProvider("", "")
	if err := ip.Download(context.Background(), &scene, os.TempDir()); err == nil {
		t.Error("expected an error for the unsupported dataset")
	}
}
