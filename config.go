package goacornstash

import (
	"github.com/Keksclan/goAcornStash/cache"
	"github.com/Keksclan/goAcornStash/internal/core"
)

// config holds the internal configuration assembled via functional options.
type config struct {
	middlewares core.MiddlewareBuilder
	cache       cache.Bytes
}
