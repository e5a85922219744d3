package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/geomatics-lab/landsat-ingest/common"
)

func validQuery() Query {
	return Query{
		Dataset:       common.Landsat8,
		StartTime:     time.Date(2018, 12, 1, 0, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2018, 12, 31, 0, 0, 0, 0, time.UTC),
		MaxCloudCover: 100,
	}
}

func TestValidate(t *testing.T) {
	if err := validQuery().Validate(); err != nil {
		t.Error(err.Error())
	}

	query := validQuery()
	query.Dataset = common.UnknownDataset
	if err := query.Validate(); err == nil {
		t.Error("expected an error for the unknown dataset")
	} else if !errors.As(err, &QueryError{}) {
		t.Errorf("expected a QueryError, got %v", err)
	}

	query = validQuery()
	query.MaxCloudCover = 101
	if query.Validate() == nil {
		t.Error("expected an error for the cloud cover")
	}
	query.MaxCloudCover = -1
	if query.Validate() == nil {
		t.Error("expected an error for the cloud cover")
	}

	query = validQuery()
	query.StartTime, query.EndTime = query.EndTime, query.StartTime
	if query.Validate() == nil {
		t.Error("expected an error for the reversed dates")
	}

	query = validQuery()
	query.StartTime = time.Time{}
	if query.Validate() == nil {
		t.Error("expected an error for the missing date")
	}
}

func TestValidateExplicit(t *testing.T) {
	// An explicit list of scenes does not need a time range
	query := Query{
		Dataset:       common.Landsat8,
		MaxCloudCover: 100,
		SceneIDs:      []string{"LC81391162018338LGN00", "LC08_L1TP_139116_20181204_20181217_01_T1"},
	}
	if err := query.Validate(); err != nil {
		t.Error(err.Error())
	}
	if !query.Explicit() {
		t.Error("expected an explicit query")
	}

	query.SceneIDs = append(query.SceneIDs, "not_a_scene")
	if query.Validate() == nil {
		t.Error("expected an error for the malformed identifier")
	}
}

func TestSortByDate(t *testing.T) {
	scenes := []*Scene{
		{EntityID: "LC81391162018354LGN00", AcquisitionDate: time.Date(2018, 12, 20, 0, 0, 0, 0, time.UTC)},
		{EntityID: "LC81391162018338LGN00", AcquisitionDate: time.Date(2018, 12, 4, 0, 0, 0, 0, time.UTC)},
		{EntityID: "LC81391152018338LGN00", AcquisitionDate: time.Date(2018, 12, 4, 0, 0, 0, 0, time.UTC)},
	}
	SortByDate(scenes)
	for i, expected := range []string{"LC81391152018338LGN00", "LC81391162018338LGN00", "LC81391162018354LGN00"} {
		if scenes[i].EntityID != expected {
			t.Errorf("expected %s at %d, got %s", expected, i, scenes[i].EntityID)
		}
	}
}
