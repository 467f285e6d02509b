package models

import "time"

// HistoryEntry records one successful city search.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	City        string    `json:"city"`
	Description string    `json:"weather_description"`
	SearchedAt  time.Time `json:"searched_at"`
}

// Note is free text attached to a city. City matching is case-insensitive.
type Note struct {
	ID        int64     `json:"id"`
	City      string    `json:"city"`
	Text      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// Photo is the metadata row for an uploaded image. BlobKey names the object
// in blob storage; ImageURL is the route that serves it.
type Photo struct {
	ID         int64     `json:"id"`
	City       string    `json:"city"`
	BlobKey    string    `json:"blob_key"`
	ImageURL   string    `json:"image_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Upload is a file selected for upload on the client side.
type Upload struct {
	Name string
	Data []byte
}
