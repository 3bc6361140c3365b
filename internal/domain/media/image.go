package media

// Image is a file stored on the image host. PublicID is the host's handle
// used for deletion; URL is what clients render.
type Image struct {
	PublicID string `json:"public_id" bson:"public_id"`
	URL      string `json:"url" bson:"url"`
}
