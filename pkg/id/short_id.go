package id

import "github.com/teris-io/shortid"

// ShortId returns a short, url-safe id. Jams use it as their share code.
func ShortId() string {
	id, err := shortid.Generate()
	if err != nil {
		return ""
	}
	return id
}
