package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/mholt/archiver"

	"github.com/geomatics-lab/landsat-ingest/service"
)

// EnumerationError is returned when the scene directories cannot be listed
type EnumerationError struct {
	Dir string
	Err error
}

func (e EnumerationError) Error() string {
	return fmt.Sprintf("enumerate %s: %v", e.Dir, e.Err)
}

func (e EnumerationError) Unwrap() error {
	return e.Err
}

// SceneFiles is the content of one scene directory
type SceneFiles struct {
	Dir   string   // path of the scene directory
	Scene string   // base name of the directory, used as scene identifier
	Files []string // file names, lexically sorted
}

// MatchName reports whether the pattern is found within name.
// The pattern is a regular expression matched anywhere in the name
// (i.e "B4" matches "LC08..._B4.TIF"). An empty pattern matches everything.
func MatchName(name, pattern string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re.FindStringIndex(name) != nil, nil
}

// Enumerate lists the scene subdirectories of inputDir and their files.
// Subdirectories are filtered by dirPattern and files by filePattern (see
// MatchName). The result is lexically ordered: two runs over the same tree
// enumerate the same scenes and files in the same order.
func Enumerate(inputDir, dirPattern, filePattern string) ([]SceneFiles, error) {
	// Patterns are validated once, upfront
	if _, err := MatchName("", dirPattern); err != nil {
		return nil, service.MakeFatal(err)
	}
	if _, err := MatchName("", filePattern); err != nil {
		return nil, service.MakeFatal(err)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, EnumerationError{Dir: inputDir, Err: err}
	}

	scenes := []SceneFiles{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if ok, _ := MatchName(entry.Name(), dirPattern); !ok {
			continue
		}
		sceneDir := filepath.Join(inputDir, entry.Name())
		files, err := os.ReadDir(sceneDir)
		if err != nil {
			return nil, EnumerationError{Dir: sceneDir, Err: err}
		}
		scene := SceneFiles{Dir: sceneDir, Scene: entry.Name()}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if ok, _ := MatchName(file.Name(), filePattern); ok {
				scene.Files = append(scene.Files, file.Name())
			}
		}
		sort.Strings(scene.Files)
		scenes = append(scenes, scene)
	}
	sort.Slice(scenes, func(i, j int) bool { return scenes[i].Scene < scenes[j].Scene })

	return scenes, nil
}

// UnpackRoot extracts the scene archives found directly under inputDir, each
// into a directory named after the archive (without its extension). Archives
// whose name does not match dirPattern are left untouched, as are archives
// whose scene directory already exists. The archives themselves are kept.
func UnpackRoot(inputDir, dirPattern string) error {
	if _, err := MatchName("", dirPattern); err != nil {
		return service.MakeFatal(err)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return EnumerationError{Dir: inputDir, Err: err}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := service.GetExt(entry.Name())
		if !ext.IsArchive() {
			continue
		}
		scene := strings.TrimSuffix(entry.Name(), "."+string(ext))
		if ok, _ := MatchName(scene, dirPattern); !ok {
			continue
		}
		sceneDir := filepath.Join(inputDir, scene)
		if _, err := os.Stat(sceneDir); err == nil {
			continue
		}
		archive := filepath.Join(inputDir, entry.Name())
		if err := os.Mkdir(sceneDir, 0766); err != nil {
			return fmt.Errorf("unpack %s: %w", archive, err)
		}
		if err := unpackArchive(archive, sceneDir); err != nil {
			return fmt.Errorf("unpack %s: %w", archive, err)
		}
	}
	return nil
}

// UnpackArchives extracts the archives found directly under sceneDir and
// removes them. Extraction is idempotent: an archive whose files are already
// present overwrites them.
func UnpackArchives(sceneDir string) error {
	entries, err := os.ReadDir(sceneDir)
	if err != nil {
		return EnumerationError{Dir: sceneDir, Err: err}
	}
	for _, entry := range entries {
		if entry.IsDir() || !service.GetExt(entry.Name()).IsArchive() {
			continue
		}
		archive := filepath.Join(sceneDir, entry.Name())
		if err := unpackArchive(archive, sceneDir); err != nil {
			return fmt.Errorf("unpack %s: %w", archive, err)
		}
		if err := os.Remove(archive); err != nil {
			return fmt.Errorf("unpack %s: %w", archive, err)
		}
	}
	return nil
}

func unpackArchive(archive, dir string) error {
	tmpdir, err := os.MkdirTemp(dir, filepath.Base(archive))
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpdir)
	if err := archiver.Unarchive(archive, tmpdir); err != nil {
		return err
	}
	files, err := os.ReadDir(tmpdir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Rename(filepath.Join(tmpdir, f.Name()), filepath.Join(dir, f.Name())); err != nil {
			return err
		}
	}
	return nil
}
