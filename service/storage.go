package service

import "strings"

// Extension of a file handled by the ingester
type Extension string

// Common extensions
const (
	NoExtension     Extension = ""
	ExtensionGTiff  Extension = "tif"
	ExtensionTarGz  Extension = "tar.gz"
	ExtensionTarBz2 Extension = "tar.bz2"
	ExtensionZIP    Extension = "zip"
)

// GetExt returns the extension of the file, handling double extensions of
// compressed tarballs.
func GetExt(filename string) Extension {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return ExtensionTarGz
	case strings.HasSuffix(lower, ".tar.bz2"):
		return ExtensionTarBz2
	case strings.HasSuffix(lower, ".zip"):
		return ExtensionZIP
	case strings.HasSuffix(lower, ".tif"), strings.HasSuffix(lower, ".tiff"):
		return ExtensionGTiff
	}
	if i := strings.LastIndex(filename, "."); i != -1 {
		return Extension(filename[i+1:])
	}
	return NoExtension
}

// IsArchive returns true if the extension is one of the archive formats that
// the providers know how to unpack.
func (e Extension) IsArchive() bool {
	switch e {
	case ExtensionTarGz, ExtensionTarBz2, ExtensionZIP:
		return true
	}
	return false
}
