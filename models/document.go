package models

// RawDocument is the opaque fetched content of one page
type RawDocument struct {
	URL        string
	StatusCode int
	Body       []byte
}
