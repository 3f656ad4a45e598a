// Package resolve loads fully expanded route details at the boundary of the
// tracking core. Upstream records sometimes carry expanded objects and
// sometimes bare identifiers; everything past this package works with one
// resolved representation.
package resolve

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/schooltrack/schooltrack/pkg/models"
	storepkg "github.com/schooltrack/schooltrack/pkg/store"
	"golang.org/x/exp/slices"
)

const cacheExpiration = 30 * time.Second

type RouteDetail struct {
	Route  models.Route
	Riders []models.Rider
}

// HasRider reports route membership using both upstream signals. Either one
// is enough; they occasionally disagree and rejecting on disagreement would
// produce false negatives.
func (d *RouteDetail) HasRider(rider *models.Rider) bool {
	if rider.RouteRef == d.Route.PrimaryIdentifier {
		return true
	}

	return slices.Contains(d.Route.RiderRefs, rider.PrimaryIdentifier)
}

type Resolver struct {
	Repository storepkg.Repository

	routeDetailCache *cache.Cache[string]
}

// NewResolver creates a resolver. redisClient may be nil, in which case every
// lookup goes straight to the repository.
func NewResolver(repository storepkg.Repository, redisClient *redis.Client) *Resolver {
	resolver := &Resolver{
		Repository: repository,
	}

	if redisClient != nil {
		redisStore := redisstore.NewRedis(redisClient, store.WithExpiration(cacheExpiration))
		resolver.routeDetailCache = cache.New[string](redisStore)
	}

	return resolver
}

func (r *Resolver) RouteDetail(ctx context.Context, routeRef string) (*RouteDetail, error) {
	cacheKey := "routedetail/" + routeRef

	if r.routeDetailCache != nil {
		if cached, err := r.routeDetailCache.Get(ctx, cacheKey); err == nil && cached != "" {
			var routeDetail RouteDetail
			if err := json.Unmarshal([]byte(cached), &routeDetail); err == nil {
				return &routeDetail, nil
			}
		}
	}

	route, err := r.Repository.GetRoute(ctx, routeRef)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, models.NewNotFoundError("Could not find Route")
	}

	riders, err := r.Repository.GetRosterForRoute(ctx, route)
	if err != nil {
		return nil, err
	}

	routeDetail := &RouteDetail{
		Route:  *route,
		Riders: riders,
	}

	if r.routeDetailCache != nil {
		if encoded, err := json.Marshal(routeDetail); err == nil {
			r.routeDetailCache.Set(ctx, cacheKey, string(encoded))
		}
	}

	return routeDetail, nil
}
