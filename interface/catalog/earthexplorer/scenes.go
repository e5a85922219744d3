package earthexplorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/araddon/dateparse"
	"github.com/geomatics-lab/landsat-ingest/catalog/entities"
	"github.com/geomatics-lab/landsat-ingest/common"
	"github.com/geomatics-lab/landsat-ingest/service"
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkt"
)

const (
	// DefaultURL is the endpoint of the USGS EarthExplorer JSON API
	DefaultURL = "https://earthexplorer.usgs.gov/inventory/json/v/1.4.1"

	// DownloadURLTemplate is the standard product download location of a scene
	DownloadURLTemplate = "https://earthexplorer.usgs.gov/download/%s/%s/STANDARD/EE"

	searchLimit = 5000
)

// AuthenticationError is returned when the credentials are invalid or
// the remote service rejects the session
type AuthenticationError struct {
	Reason string
}

func (e AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}

// Provider implements catalog.ScenesProvider for the EarthExplorer JSON API
type Provider struct {
	URL         string
	Credentials service.Credentials

	apiKey string
}

// NewProvider creates an EarthExplorer catalog client
func NewProvider(creds service.Credentials) *Provider {
	return &Provider{URL: DefaultURL, Credentials: creds}
}

type coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type spatialFilter struct {
	FilterType string     `json:"filterType"`
	LowerLeft  coordinate `json:"lowerLeft"`
	UpperRight coordinate `json:"upperRight"`
}

type temporalFilter struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type searchRequest struct {
	APIKey         string          `json:"apiKey"`
	DatasetName    string          `json:"datasetName"`
	SpatialFilter  *spatialFilter  `json:"spatialFilter,omitempty"`
	TemporalFilter *temporalFilter `json:"temporalFilter,omitempty"`
	MaxCloudCover  int             `json:"maxCloudCover"`
	MaxResults     int             `json:"maxResults"`
	SortOrder      string          `json:"sortOrder"`
}

type metadataRequest struct {
	APIKey      string   `json:"apiKey"`
	DatasetName string   `json:"datasetName"`
	EntityIDs   []string `json:"entityIds"`
}

type sceneResult struct {
	EntityID         string          `json:"entityId"`
	DisplayID        string          `json:"displayId"`
	AcquisitionDate  string          `json:"acquisitionDate"`
	CloudCover       json.Number     `json:"cloudCover"`
	DownloadURL      string          `json:"downloadUrl"`
	SpatialFootprint json.RawMessage `json:"spatialFootprint"`
	Summary          string          `json:"summary"`
}

type apiResponse struct {
	ErrorCode string          `json:"errorCode"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
}

// Login implements catalog.Authenticator. One network session is established;
// it must be torn down with Logout.
func (p *Provider) Login(ctx context.Context) error {
	if p.Credentials.Username == "" || p.Credentials.Password == "" {
		return AuthenticationError{Reason: "no user or password given"}
	}
	data, err := p.request(ctx, "login", map[string]string{
		"username": p.Credentials.Username,
		"password": p.Credentials.Password,
	})
	if err != nil {
		return AuthenticationError{Reason: err.Error()}
	}
	if err := json.Unmarshal(data, &p.apiKey); err != nil || p.apiKey == "" {
		return AuthenticationError{Reason: "no api key returned"}
	}
	return nil
}

// Logout implements catalog.Authenticator
func (p *Provider) Logout(ctx context.Context) error {
	if p.apiKey == "" {
		return nil
	}
	_, err := p.request(ctx, "logout", map[string]string{"apiKey": p.apiKey})
	p.apiKey = ""
	if err != nil {
		return fmt.Errorf("Logout.%w", err)
	}
	return nil
}

// SearchScenes implements catalog.ScenesProvider.
// For explicit scene IDs the metadata endpoint is queried directly and
// no cloud/spatial filter is applied.
func (p *Provider) SearchScenes(ctx context.Context, query entities.Query) ([]*entities.Scene, error) {
	if p.apiKey == "" {
		return nil, AuthenticationError{Reason: "no session, call Login first"}
	}

	var results []sceneResult
	if query.Explicit() {
		data, err := p.request(ctx, "metadata", metadataRequest{
			APIKey:      p.apiKey,
			DatasetName: query.Dataset.Code(),
			EntityIDs:   query.SceneIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("SearchScenes(EarthExplorer).%w", err)
		}
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("SearchScenes(EarthExplorer).Unmarshal: %w", err)
		}
	} else {
		req := searchRequest{
			APIKey:      p.apiKey,
			DatasetName: query.Dataset.Code(),
			TemporalFilter: &temporalFilter{
				StartDate: query.StartTime.Format("2006-01-02"),
				EndDate:   query.EndTime.Format("2006-01-02"),
			},
			MaxCloudCover: query.MaxCloudCover,
			MaxResults:    searchLimit,
			SortOrder:     "ASC",
		}
		if query.AOI != nil {
			sf, err := boundsFilter(query.AOI)
			if err != nil {
				return nil, fmt.Errorf("SearchScenes(EarthExplorer).%w", err)
			}
			req.SpatialFilter = sf
		}
		data, err := p.request(ctx, "search", req)
		if err != nil {
			return nil, fmt.Errorf("SearchScenes(EarthExplorer).%w", err)
		}
		searchData := struct {
			Results []sceneResult `json:"results"`
		}{}
		if err := json.Unmarshal(data, &searchData); err != nil {
			return nil, fmt.Errorf("SearchScenes(EarthExplorer).Unmarshal: %w", err)
		}
		results = searchData.Results
	}

	scenes := make([]*entities.Scene, 0, len(results))
	for _, r := range results {
		scene, err := p.toScene(r, query.Dataset)
		if err != nil {
			return nil, fmt.Errorf("SearchScenes(EarthExplorer).%w", err)
		}
		scenes = append(scenes, scene)
	}
	return scenes, nil
}

func (p *Provider) toScene(r sceneResult, dataset common.Dataset) (*entities.Scene, error) {
	date, err := dateparse.ParseAny(r.AcquisitionDate)
	if err != nil {
		return nil, fmt.Errorf("parse acquisitionDate[%s]: %w", r.AcquisitionDate, err)
	}
	cloudCover, err := r.CloudCover.Float64()
	if err != nil {
		return nil, fmt.Errorf("parse cloudCover[%s]: %w", r.CloudCover, err)
	}

	scene := &entities.Scene{
		EntityID:        r.EntityID,
		DisplayID:       r.DisplayID,
		AcquisitionDate: date,
		CloudCover:      cloudCover,
		DownloadURL:     r.DownloadURL,
		Tags: map[string]string{
			common.TagEntityID:        r.EntityID,
			common.TagDisplayID:       r.DisplayID,
			common.TagDataset:         dataset.Code(),
			common.TagAcquisitionDate: r.AcquisitionDate,
			common.TagCloudCover:      r.CloudCover.String(),
			common.TagSummary:         r.Summary,
		},
	}
	if scene.DownloadURL == "" {
		scene.DownloadURL = fmt.Sprintf(DownloadURLTemplate, dataset.Code(), r.EntityID)
	}
	scene.Tags[common.TagDownloadURL] = scene.DownloadURL

	// Path/row from the identifier
	id := r.DisplayID
	if id == "" {
		id = r.EntityID
	}
	if info, err := common.Info(id); err == nil {
		scene.Path, _ = strconv.Atoi(info["PATH"])
		scene.Row, _ = strconv.Atoi(info["ROW"])
		scene.Tags[common.TagPath] = info["PATH"]
		scene.Tags[common.TagRow] = info["ROW"]
	}

	// Footprint, if the catalog returned one
	if len(r.SpatialFootprint) != 0 {
		if g, err := service.UnmarshalGeometry(r.SpatialFootprint); err == nil {
			if footprint, err := wkt.EncodeString(g); err == nil {
				scene.GeometryWKT = footprint
			}
		}
	}
	return scene, nil
}

// request posts one endpoint call and unwraps the EarthExplorer response envelope
func (p *Provider) request(ctx context.Context, endpoint string, payload interface{}) (json.RawMessage, error) {
	body := &bytes.Buffer{}
	if err := json.NewEncoder(body).Encode(payload); err != nil {
		return nil, fmt.Errorf("request.Encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", p.URL+"/"+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("request.NewRequest: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")

	respBody, err := service.GetBodyRetryReq(req, 4)
	if err != nil {
		return nil, fmt.Errorf("request[%s].GetBodyRetryReq: %w", endpoint, err)
	}

	resp := apiResponse{}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("request[%s].Unmarshal: %w", endpoint, err)
	}
	if resp.ErrorCode != "" {
		return nil, fmt.Errorf("request[%s]: %s: %s", endpoint, resp.ErrorCode, resp.Error)
	}
	return resp.Data, nil
}

func boundsFilter(aoi geom.Geometry) (*spatialFilter, error) {
	extent, err := geom.NewExtentFromGeometry(aoi)
	if err != nil {
		return nil, fmt.Errorf("boundsFilter: %w", err)
	}
	return &spatialFilter{
		FilterType: "mbr",
		LowerLeft:  coordinate{Latitude: extent.MinY(), Longitude: extent.MinX()},
		UpperRight: coordinate{Latitude: extent.MaxY(), Longitude: extent.MaxX()},
	}, nil
}
