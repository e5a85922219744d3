package common

// Scene metadata tags
const (
	TagEntityID        = "entityId"
	TagDisplayID       = "displayId"
	TagDataset         = "dataset"
	TagAcquisitionDate = "acquisitionDate"
	TagCloudCover      = "cloudCover"
	TagPath            = "path"
	TagRow             = "row"
	TagDownloadURL     = "downloadUrl"
	TagSummary         = "summary"
)
