package common

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

//go:generate go run github.com/dmarkham/enumer -json -type Dataset

// Dataset identifies a Landsat collection of the remote catalog
type Dataset int

const (
	UnknownDataset Dataset = iota
	LandsatTM              // LXSPPPRRRYYYYDDDGSIVV with sensor T and satellite 4/5
	LandsatETM             // LE7PPPRRRYYYYDDDGSIVV
	Landsat8               // LC8PPPRRRYYYYDDDGSIVV or LC08_LLLL_PPPRRR_YYYYMMDD_yyyymmdd_CC_TX
)

// Code returns the dataset identifier used by the remote catalog
func (d Dataset) Code() string {
	switch d {
	case LandsatTM:
		return "LANDSAT_TM_C1"
	case LandsatETM:
		return "LANDSAT_ETM_C1"
	case Landsat8:
		return "LANDSAT_8_C1"
	}
	return ""
}

// GetDatasetFromCode returns the dataset from a catalog dataset code
func GetDatasetFromCode(code string) Dataset {
	switch strings.ToUpper(code) {
	case "LANDSAT_TM_C1":
		return LandsatTM
	case "LANDSAT_ETM_C1":
		return LandsatETM
	case "LANDSAT_8_C1":
		return Landsat8
	}
	return UnknownDataset
}

// GetDatasetFromSceneID returns the dataset from a scene or product identifier
func GetDatasetFromSceneID(sceneID string) Dataset {
	if len(sceneID) < 3 || sceneID[0] != 'L' {
		return UnknownDataset
	}
	sensor, satellite := sceneID[1], sceneID[2]
	if satellite == '0' && len(sceneID) > 3 {
		satellite = sceneID[3]
	}
	switch {
	case sensor == 'T' && (satellite == '4' || satellite == '5'):
		return LandsatTM
	case sensor == 'E' && satellite == '7':
		return LandsatETM
	case (sensor == 'C' || sensor == 'O' || sensor == 'T') && (satellite == '8' || satellite == '9'):
		return Landsat8
	}
	return UnknownDataset
}

var (
	entityIDRe  = regexp.MustCompile(`^L[COTEM]\d{14}[A-Z]{3}\d{2}$`)
	productIDRe = regexp.MustCompile(`^L[COTEM]0\d_L\d[A-Z]{2}_\d{6}_\d{8}_\d{8}_\d{2}_[A-Z0-9]{2}$`)
)

// Info parses a Landsat scene identifier and returns its fields.
// Both forms are supported:
//   - entity ID:  LC81391162018338LGN00 (LXSPPPRRRYYYYDDDGSIVV)
//   - product ID: LC08_L1TP_139116_20181204_20181217_01_T1
func Info(sceneID string) (map[string]string, error) {
	switch {
	case entityIDRe.MatchString(sceneID):
		return map[string]string{
			"SCENE":     sceneID,
			"SENSOR":    sceneID[1:2],
			"SATELLITE": sceneID[2:3],
			"PATH":      sceneID[3:6],
			"ROW":       sceneID[6:9],
			"YEAR":      sceneID[9:13],
			"DOY":       sceneID[13:16],
			"STATION":   sceneID[16:19],
			"VERSION":   sceneID[19:21],
		}, nil
	case productIDRe.MatchString(sceneID):
		return map[string]string{
			"SCENE":           sceneID,
			"SENSOR":          sceneID[1:2],
			"SATELLITE":       sceneID[2:4],
			"LEVEL":           sceneID[5:9],
			"PATH":            sceneID[10:13],
			"ROW":             sceneID[13:16],
			"DATE":            sceneID[17:25],
			"YEAR":            sceneID[17:21],
			"MONTH":           sceneID[21:23],
			"DAY":             sceneID[23:25],
			"PROCESSING_DATE": sceneID[26:34],
			"COLLECTION":      sceneID[35:37],
			"TIER":            sceneID[38:40],
		}, nil
	}
	return nil, fmt.Errorf("Info: invalid Landsat scene identifier: %s", sceneID)
}

// GetDateFromSceneID returns the acquisition date encoded in the scene identifier
func GetDateFromSceneID(sceneID string) (time.Time, error) {
	info, err := Info(sceneID)
	if err != nil {
		return time.Time{}, err
	}
	if date, ok := info["DATE"]; ok {
		return time.Parse("20060102", date)
	}
	doy, err := strconv.Atoi(info["DOY"])
	if err != nil {
		return time.Time{}, fmt.Errorf("GetDateFromSceneID: %w", err)
	}
	year, err := strconv.Atoi(info["YEAR"])
	if err != nil {
		return time.Time{}, fmt.Errorf("GetDateFromSceneID: %w", err)
	}
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1), nil
}

var bandRe = regexp.MustCompile(`(?i)_B(\d{1,2})\.TIFF?$`)

// BandNumber extracts the spectral band number from a vendor band file name
// (e.g. LC08_L1TP_139116_20181204_20181217_01_T1_B4.TIF -> 4).
// Quality and auxiliary files (BQA, MTL, ANG...) are not band files.
func BandNumber(filename string) (int, bool) {
	m := bandRe.FindStringSubmatch(filename)
	if m == nil {
		return 0, false
	}
	band, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return band, true
}

// LayerName derives the target layer name of a band file.
// The naming is deterministic: one (scene, band) pair maps to exactly one layer.
func LayerName(sceneID string, band int) string {
	return fmt.Sprintf("%s_B%d", sceneID, band)
}

/**
 * FormatBrackets replaces in <str> all {keys} of <info> by the corresponding value
 * keys must be one of SCENE, SENSOR, SATELLITE, PATH, ROW, DATE(YEAR/MONTH/DAY), DOY, LEVEL, COLLECTION, TIER
 */
func FormatBrackets(str string, infos ...map[string]string) string {
	for _, info := range infos {
		for k, v := range info {
			str = strings.ReplaceAll(str, "{"+k+"}", v)
		}
	}
	return str
}
