package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// errMapReadBytes is returned by mapProvider.ReadBytes; koanf calls Read
// when no parser is given.
var errMapReadBytes = errors.New("confloader: map provider has no byte form")

// mapProvider feeds flat "section.key" values, such as config.ToMap
// output, into koanf.
type mapProvider struct {
	values map[string]any
	delim  string
}

func newMapProvider(values map[string]any) mapProvider {
	return mapProvider{values: values, delim: "."}
}

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, errMapReadBytes
}

// Read returns a nested copy of the values. koanf merges keys literally,
// so "storage.retry_max" must become storage -> retry_max before Unmarshal
// can see it.
func (p mapProvider) Read() (map[string]any, error) {
	flat := make(map[string]any, len(p.values))
	for k, v := range p.values {
		flat[k] = v
	}
	return maps.Unflatten(flat, p.delim), nil
}
