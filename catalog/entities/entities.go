package entities

import (
	"fmt"
	"sort"
	"time"

	"github.com/geomatics-lab/landsat-ingest/common"
	"github.com/go-spatial/geom"
)

// QueryError is returned when the query parameters are invalid
type QueryError struct {
	Reason string
}

func (e QueryError) Error() string {
	return "invalid query: " + e.Reason
}

// Query describes one catalog search. Immutable once constructed.
type Query struct {
	Dataset       common.Dataset
	StartTime     time.Time
	EndTime       time.Time
	MaxCloudCover int
	AOI           geom.Geometry // optional
	SceneIDs      []string      // optional; when given, cloud/AOI filters are bypassed
}

// Validate returns a QueryError when the parameter combination is invalid
func (q Query) Validate() error {
	if !q.Dataset.IsADataset() || q.Dataset == common.UnknownDataset {
		return QueryError{Reason: fmt.Sprintf("unknown dataset %q", q.Dataset.Code())}
	}
	if q.MaxCloudCover < 0 || q.MaxCloudCover > 100 {
		return QueryError{Reason: fmt.Sprintf("cloud cover percentage out of range: %d", q.MaxCloudCover)}
	}
	if len(q.SceneIDs) != 0 {
		for _, id := range q.SceneIDs {
			if _, err := common.Info(id); err != nil {
				return QueryError{Reason: fmt.Sprintf("malformed scene identifier %q", id)}
			}
		}
		return nil
	}
	if q.StartTime.IsZero() || q.EndTime.IsZero() {
		return QueryError{Reason: "missing start or end date"}
	}
	if q.EndTime.Before(q.StartTime) {
		return QueryError{Reason: fmt.Sprintf("end date %s before start date %s",
			q.EndTime.Format("2006-01-02"), q.StartTime.Format("2006-01-02"))}
	}
	return nil
}

// Explicit returns whether the query asks for an explicit list of scenes
func (q Query) Explicit() bool {
	return len(q.SceneIDs) != 0
}

// Scene is one catalog record. Read-only to this tool.
type Scene struct {
	EntityID        string
	DisplayID       string
	AcquisitionDate time.Time
	CloudCover      float64
	Path            int
	Row             int
	DownloadURL     string
	GeometryWKT     string
	Tags            map[string]string
}

// SortByDate sorts scenes by acquisition date, ascending.
// The order is made total with the entity ID so that listings are reproducible.
func SortByDate(scenes []*Scene) {
	sort.Slice(scenes, func(i, j int) bool {
		if scenes[i].AcquisitionDate.Equal(scenes[j].AcquisitionDate) {
			return scenes[i].EntityID < scenes[j].EntityID
		}
		return scenes[i].AcquisitionDate.Before(scenes[j].AcquisitionDate)
	})
}
