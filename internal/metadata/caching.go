package metadata

import (
	"go.uber.org/zap"

	"github.com/toyz/attrconv/internal/logging"
	"github.com/toyz/attrconv/internal/utils"
)

// CachingResolver is a read-through cache in front of a Source. Failed and
// unknown lookups are cached as Unavailable too.
type CachingResolver struct {
	source Source
	cache  *utils.Cache[string, Names]
	logger *zap.Logger
}

// NewCachingResolver wraps source. A nil source resolves everything as Unavailable.
func NewCachingResolver(source Source) *CachingResolver {
	return &CachingResolver{
		source: source,
		cache:  utils.NewCache[string, Names](),
		logger: logging.Named("metadata"),
	}
}

// ResolveFromClass returns the parameter names of the class, never failing
func (r *CachingResolver) ResolveFromClass(classID string) Names {
	return r.cache.GetOrLoad(NormalizeClassID(classID), r.load)
}

// Warm resolves the given classes up front so later lookups only read the cache
func (r *CachingResolver) Warm(classIDs ...string) {
	for _, classID := range classIDs {
		r.ResolveFromClass(classID)
	}
}

// Stats returns cache statistics
func (r *CachingResolver) Stats() utils.CacheStats {
	return r.cache.GetStats()
}

func (r *CachingResolver) load(classID string) Names {
	if r.source == nil {
		return Unavailable
	}

	names, err := r.source.ParameterNames(classID)
	if err != nil {
		r.logger.Warn("parameter names unavailable",
			zap.String("class", classID),
			zap.Error(err))
		return Unavailable
	}
	if !names.IsAvailable() {
		r.logger.Debug("no metadata for class", zap.String("class", classID))
	}
	return names
}
