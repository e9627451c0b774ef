package domain

// ListMetadata is the pagination envelope shared by the entity listings.
type ListMetadata struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
