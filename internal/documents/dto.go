package documents

import "time"

type documentResponse struct {
	ID               string     `json:"id"`
	DeviceID         string     `json:"deviceId,omitempty"`
	Name             string     `json:"name"`
	OriginalFilename string     `json:"originalFilename"`
	SizeBytes        int64      `json:"sizeBytes"`
	Status           string     `json:"status"`
	Vectorized       bool       `json:"vectorized"`
	ChunksProcessed  *int       `json:"chunksProcessed,omitempty"`
	ProcessingTime   string     `json:"processingTime,omitempty"`
	CollectionName   string     `json:"collectionName,omitempty"`
	UploadedAt       time.Time  `json:"uploadedAt"`
	ProcessedAt      *time.Time `json:"processedAt,omitempty"`
}

func toResponse(doc Document) documentResponse {
	return documentResponse{
		ID:               doc.ID,
		DeviceID:         doc.DeviceID,
		Name:             doc.Name,
		OriginalFilename: doc.OriginalFilename,
		SizeBytes:        doc.SizeBytes,
		Status:           doc.Status,
		Vectorized:       doc.Vectorized,
		ChunksProcessed:  doc.ChunksProcessed,
		ProcessingTime:   doc.ProcessingTime,
		CollectionName:   doc.CollectionName,
		UploadedAt:       doc.UploadedAt,
		ProcessedAt:      doc.ProcessedAt,
	}
}
