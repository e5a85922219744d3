package earthexplorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
	"github.com/geomatics-lab/landsat-ingest/common"
	"github.com/geomatics-lab/landsat-ingest/service"
)

const testAPIKey = "9aa05235c90f3b4d6bab9e3685ca34ef"

func mustParse(t *testing.T, date string) time.Time {
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	return d
}

func decodeRequest(t *testing.T, r *http.Request) map[string]interface{} {
	payload := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	return payload
}

func newTestServer(t *testing.T, search func(t *testing.T, payload map[string]interface{}) string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := decodeRequest(t, r)
		switch r.URL.Path {
		case "/login":
			if payload["username"] != "user" || payload["password"] != "pass" {
				fmt.Fprint(w, `{"errorCode":"AUTH_ERROR","error":"Invalid username or password","data":null}`)
				return
			}
			fmt.Fprintf(w, `{"errorCode":null,"error":"","data":%q}`, testAPIKey)
		case "/logout":
			assert.Equal(t, testAPIKey, payload["apiKey"])
			fmt.Fprint(w, `{"errorCode":null,"error":"","data":true}`)
		case "/search", "/metadata":
			assert.Equal(t, testAPIKey, payload["apiKey"])
			fmt.Fprint(w, search(t, payload))
		default:
			t.Errorf("unexpected endpoint %s", r.URL.Path)
		}
	}))
}

func login(t *testing.T, url string) *Provider {
	p := NewProvider(service.Credentials{Username: "user", Password: "pass"})
	p.URL = url
	require.NoError(t, p.Login(context.Background()))
	return p
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	p := login(t, srv.URL)
	assert.NoError(t, p.Logout(context.Background()))

	p = NewProvider(service.Credentials{Username: "user", Password: "wrong"})
	p.URL = srv.URL
	err := p.Login(context.Background())
	assert.ErrorAs(t, err, &AuthenticationError{})
}

func TestLoginWithoutCredentials(t *testing.T) {
	p := NewProvider(service.Credentials{})
	err := p.Login(context.Background())
	assert.ErrorAs(t, err, &AuthenticationError{})
}

func TestSearchScenesWithoutSession(t *testing.T) {
	p := NewProvider(service.Credentials{Username: "user", Password: "pass"})
	_, err := p.SearchScenes(context.Background(), entities.Query{Dataset: common.Landsat8})
	assert.ErrorAs(t, err, &AuthenticationError{})
}

func TestSearchScenes(t *testing.T) {
	srv := newTestServer(t, func(t *testing.T, payload map[string]interface{}) string {
		assert.Equal(t, "LANDSAT_8_C1", payload["datasetName"])
		assert.Equal(t, float64(30), payload["maxCloudCover"])
		assert.Equal(t, "ASC", payload["sortOrder"])
		temporal, ok := payload["temporalFilter"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "2018-12-01", temporal["startDate"])
		assert.Equal(t, "2018-12-31", temporal["endDate"])
		return `{"errorCode":null,"error":"","data":{"results":[
			{"entityId":"LC81391162018338LGN00","displayId":"LC08_L1TP_139116_20181204_20181217_01_T1",
			 "acquisitionDate":"2018-12-04","cloudCover":10.5,
			 "spatialFootprint":{"type":"Polygon","coordinates":[[[88,26],[90,26],[90,28],[88,28],[88,26]]]},
			 "summary":"ID: LC81391162018338LGN00"}
		]}}`
	})
	defer srv.Close()

	p := login(t, srv.URL)
	scenes, err := p.SearchScenes(context.Background(), entities.Query{
		Dataset:       common.Landsat8,
		StartTime:     mustParse(t, "2018-12-01"),
		EndTime:       mustParse(t, "2018-12-31"),
		MaxCloudCover: 30,
	})
	require.NoError(t, err)
	require.Len(t, scenes, 1)

	scene := scenes[0]
	assert.Equal(t, "LC81391162018338LGN00", scene.EntityID)
	assert.Equal(t, "LC08_L1TP_139116_20181204_20181217_01_T1", scene.DisplayID)
	assert.Equal(t, 10.5, scene.CloudCover)
	assert.Equal(t, 139, scene.Path)
	assert.Equal(t, 116, scene.Row)
	// no downloadUrl in the record, the standard location is derived
	assert.Equal(t, fmt.Sprintf(DownloadURLTemplate, "LANDSAT_8_C1", "LC81391162018338LGN00"), scene.DownloadURL)
	assert.NotEmpty(t, scene.GeometryWKT)
}

func TestSearchScenesExplicit(t *testing.T) {
	srv := newTestServer(t, func(t *testing.T, payload map[string]interface{}) string {
		ids, ok := payload["entityIds"].([]interface{})
		require.True(t, ok)
		assert.Equal(t, []interface{}{"LC81391162018338LGN00"}, ids)
		return `{"errorCode":null,"error":"","data":[
			{"entityId":"LC81391162018338LGN00","displayId":"LC08_L1TP_139116_20181204_20181217_01_T1",
			 "acquisitionDate":"2018-12-04","cloudCover":10.5}
		]}`
	})
	defer srv.Close()

	p := login(t, srv.URL)
	scenes, err := p.SearchScenes(context.Background(), entities.Query{
		Dataset:  common.Landsat8,
		SceneIDs: []string{"LC81391162018338LGN00"},
	})
	require.NoError(t, err)
	require.Len(t, scenes, 1)
	assert.Equal(t, 10.5, scenes[0].CloudCover)
}
