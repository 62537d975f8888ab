package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository"
)

func catalogFixture() *CatalogService {
	catalog := &fakeCatalogRepo{items: map[uint]domain.PointItem{
		1: {ID: 1, Name: "background", Type: domain.ItemDecoBG, Price: 100},
		2: {ID: 2, Name: "ticket", Type: domain.ItemRandomIcon, Price: 200},
	}}
	wishes := &fakeWishRepo{wished: make(map[uint]map[uint]bool)}

	return NewCatalogService(catalog, wishes)
}

func TestListItems_AnnotatesWishes(t *testing.T) {
	svc := catalogFixture()

	wished, err := svc.ToggleWish(context.Background(), 7, 2)
	require.NoError(t, err)
	require.True(t, wished)

	listing, err := svc.ListItems(context.Background(), 7, repository.ItemFilter{}, 1, 20)
	require.NoError(t, err)

	assert.Len(t, listing.Items, 2)
	assert.False(t, listing.Wished[1])
	assert.True(t, listing.Wished[2])
}

func TestToggleWish_RoundTrip(t *testing.T) {
	svc := catalogFixture()

	wished, err := svc.ToggleWish(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, wished)

	wished, err = svc.ToggleWish(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.False(t, wished)
}

func TestToggleWish_UnknownItem(t *testing.T) {
	svc := catalogFixture()

	_, err := svc.ToggleWish(context.Background(), 7, 99)
	assert.ErrorIs(t, err, ErrItemNotFound)
}
