package platform

import (
	"github.com/tmorell/inkwell/pkg/core"
)

// New opens (or creates) a vault at uri and returns the domain service
// bound to it. The uri is adapter-specific; for "fs" it is a directory path.
func New(uri string, opts ...Option) (*core.Service, error) {
	repo, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	service := core.NewService(repo)
	if size, ok := o.config["event_buffer"].(int); ok && size > 0 {
		service.SetEventBuffer(size)
	}
	return service, nil
}
