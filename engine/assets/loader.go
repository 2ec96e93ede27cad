package assets

import "github.com/spaghettifunk/lumen/engine/renderer/metadata"

// Loader turns one file into a resource. The concrete type of Resource.Data depends on the loader.
type Loader interface {
	Load(path string) (*metadata.Resource, error)
}
