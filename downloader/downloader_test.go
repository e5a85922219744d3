package downloader_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
	"github.com/geomatics-lab/landsat-ingest/downloader"
	"github.com/geomatics-lab/landsat-ingest/interface/provider"
)

// MokeProvider implements provider.ImageProvider
type MokeProvider struct {
	name      string
	downloads []string
	failing   map[string]bool
}

func (p *MokeProvider) Name() string {
	return p.name
}

func (p *MokeProvider) Download(ctx context.Context, scene *entities.Scene, localDir string) error {
	if p.failing[scene.EntityID] {
		return fmt.Errorf("%s unavailable", scene.EntityID)
	}
	p.downloads = append(p.downloads, scene.EntityID)
	return os.WriteFile(filepath.Join(localDir, scene.EntityID+"_B4.TIF"), []byte("raster"), 0644)
}

var _ = Describe("Downloader", func() {
	var (
		ctx           context.Context
		outputDir     string
		imageProvider *MokeProvider
		d             downloader.Downloader
		scenes        []*entities.Scene
	)

	BeforeEach(func() {
		ctx = context.Background()
		outputDir, _ = os.MkdirTemp("", "downloader")
		imageProvider = &MokeProvider{name: "moke", failing: map[string]bool{}}
		d = downloader.Downloader{
			Providers: []provider.ImageProvider{imageProvider},
			OutputDir: outputDir,
		}
		scenes = []*entities.Scene{
			{EntityID: "LC81391162018338LGN00"},
			{EntityID: "LC81391162018354LGN00"},
		}
	})

	AfterEach(func() {
		os.RemoveAll(outputDir)
	})

	Describe("downloading scenes", func() {
		It("creates one directory per scene", func() {
			Expect(d.ProcessScenes(ctx, scenes)).To(Succeed())
			for _, scene := range scenes {
				Expect(filepath.Join(outputDir, scene.EntityID, scene.EntityID+"_B4.TIF")).To(BeAnExistingFile())
			}
			Expect(imageProvider.downloads).To(HaveLen(2))
		})

		It("does not download a scene that is already present", func() {
			Expect(d.ProcessScenes(ctx, scenes)).To(Succeed())
			imageProvider.downloads = nil

			Expect(d.ProcessScenes(ctx, scenes)).To(Succeed())
			Expect(imageProvider.downloads).To(BeEmpty(), "a second run over the same scenes downloads nothing")
		})

		It("continues after a scene failure and reports a summary error", func() {
			imageProvider.failing["LC81391162018338LGN00"] = true

			err := d.ProcessScenes(ctx, scenes)
			Expect(err).To(MatchError("1/2 scenes failed to download"))
			Expect(imageProvider.downloads).To(Equal([]string{"LC81391162018354LGN00"}))
			Expect(filepath.Join(outputDir, "LC81391162018338LGN00")).NotTo(BeADirectory())
		})

		It("leaves no partial scene directory on failure", func() {
			imageProvider.failing["LC81391162018338LGN00"] = true

			_ = d.ProcessScenes(ctx, scenes)
			entries, err := os.ReadDir(outputDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1), "only the successful scene remains")
		})

		It("removes a stale archive before retrying a scene", func() {
			stale := filepath.Join(outputDir, "LC81391162018338LGN00.tar.gz")
			Expect(os.WriteFile(stale, []byte("partial"), 0644)).To(Succeed())

			Expect(d.ProcessScenes(ctx, scenes)).To(Succeed())
			Expect(stale).NotTo(BeAnExistingFile())
		})
	})
})
