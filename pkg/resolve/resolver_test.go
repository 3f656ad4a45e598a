package resolve

import (
	"context"
	"testing"

	"github.com/schooltrack/schooltrack/pkg/models"
	"github.com/schooltrack/schooltrack/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteDetailUnknownRoute(t *testing.T) {
	resolver := NewResolver(store.NewMemoryRepository(), nil)

	_, err := resolver.RouteDetail(context.Background(), "route-missing")

	assert.Equal(t, models.ErrorKindNotFound, models.KindOf(err))
}

func TestRouteDetailRosterIncludesBothMembershipSignals(t *testing.T) {
	repository := store.NewMemoryRepository()
	repository.AddRoute(models.Route{
		PrimaryIdentifier: "route-1",
		RiderRefs:         []string{"rider-listed"},
	})
	repository.AddRider(models.Rider{
		PrimaryIdentifier: "rider-assigned",
		RouteRef:          "route-1",
	})
	repository.AddRider(models.Rider{
		PrimaryIdentifier: "rider-listed",
	})
	repository.AddRider(models.Rider{
		PrimaryIdentifier: "rider-elsewhere",
		RouteRef:          "route-2",
	})

	resolver := NewResolver(repository, nil)

	routeDetail, err := resolver.RouteDetail(context.Background(), "route-1")
	require.NoError(t, err)

	var riderRefs []string
	for _, rider := range routeDetail.Riders {
		riderRefs = append(riderRefs, rider.PrimaryIdentifier)
	}
	assert.ElementsMatch(t, []string{"rider-assigned", "rider-listed"}, riderRefs)
}

func TestHasRider(t *testing.T) {
	routeDetail := &RouteDetail{
		Route: models.Route{
			PrimaryIdentifier: "route-1",
			RiderRefs:         []string{"rider-listed"},
		},
	}

	assert.True(t, routeDetail.HasRider(&models.Rider{PrimaryIdentifier: "rider-a", RouteRef: "route-1"}))
	assert.True(t, routeDetail.HasRider(&models.Rider{PrimaryIdentifier: "rider-listed", RouteRef: "route-2"}))
	assert.False(t, routeDetail.HasRider(&models.Rider{PrimaryIdentifier: "rider-b", RouteRef: "route-2"}))
}
