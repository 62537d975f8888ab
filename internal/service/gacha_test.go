package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popcornhub/points-api/internal/domain"
)

func fullIconPool() *fakeIconRepo {
	pool := &fakeIconRepo{icons: make(map[domain.Rarity][]domain.Icon)}
	id := uint(1)
	for _, rarity := range domain.RarityOrder {
		for i := 0; i < 3; i++ {
			pool.icons[rarity] = append(pool.icons[rarity], domain.Icon{ID: id, Rarity: rarity})
			id++
		}
	}

	return pool
}

func TestDrawIcon_Distribution(t *testing.T) {
	weights := map[string]int{
		"COMMON":    600,
		"RARE":      280,
		"EPIC":      90,
		"LEGENDARY": 25,
		"UNIQUE":    5,
	}
	resolver := seededResolver(gachaConfig(weights), fullIconPool(), 42)

	const draws = 10000
	counts := make(map[domain.Rarity]int)
	for i := 0; i < draws; i++ {
		icon, err := resolver.DrawIcon(context.Background())
		require.NoError(t, err)
		counts[icon.Rarity]++
	}

	// Common should dominate and rarities should be strictly ordered by
	// weight, with slack for sampling noise.
	assert.Greater(t, counts[domain.RarityCommon], draws/2)
	assert.Greater(t, counts[domain.RarityCommon], counts[domain.RarityRare])
	assert.Greater(t, counts[domain.RarityRare], counts[domain.RarityEpic])
	assert.Greater(t, counts[domain.RarityEpic], counts[domain.RarityLegendary])
	assert.Greater(t, counts[domain.RarityLegendary], 0)
}

func TestDrawIcon_FallbackToNextRarity(t *testing.T) {
	// Only UNIQUE icons exist; every draw must fall through to them.
	pool := &fakeIconRepo{icons: map[domain.Rarity][]domain.Icon{
		domain.RarityUnique: {{ID: 1, Rarity: domain.RarityUnique}},
	}}
	resolver := seededResolver(gachaConfig(map[string]int{"COMMON": 1000}), pool, 7)

	for i := 0; i < 50; i++ {
		icon, err := resolver.DrawIcon(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.RarityUnique, icon.Rarity)
	}
}

func TestDrawIcon_FallbackPrefersNextMostCommon(t *testing.T) {
	// Every roll lands on EPIC, whose pool is empty. The fallback must
	// step down to RARE, not jump all the way to COMMON.
	pool := &fakeIconRepo{icons: map[domain.Rarity][]domain.Icon{
		domain.RarityCommon: {{ID: 1, Rarity: domain.RarityCommon}},
		domain.RarityRare:   {{ID: 2, Rarity: domain.RarityRare}},
	}}
	resolver := seededResolver(gachaConfig(map[string]int{"EPIC": 100}), pool, 11)

	for i := 0; i < 50; i++ {
		icon, err := resolver.DrawIcon(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.RarityRare, icon.Rarity)
	}
}

func TestDrawIcon_EmptyCatalog(t *testing.T) {
	pool := &fakeIconRepo{icons: make(map[domain.Rarity][]domain.Icon)}
	resolver := seededResolver(gachaConfig(nil), pool, 1)

	_, err := resolver.DrawIcon(context.Background())
	assert.ErrorIs(t, err, ErrCatalogEmpty)
}

func TestRollPointBox_WithinRange(t *testing.T) {
	resolver := seededResolver(gachaConfig(nil), fullIconPool(), 99)

	for i := 0; i < 1000; i++ {
		amount := resolver.RollPointBox()
		assert.GreaterOrEqual(t, amount, 50)
		assert.LessOrEqual(t, amount, 500)
	}
}

func TestRollRoulette_OnlyConfiguredPrizes(t *testing.T) {
	resolver := seededResolver(gachaConfig(nil), fullIconPool(), 3)

	allowed := map[int]bool{0: true, 100: true, 1000: true}
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		prize := resolver.RollRoulette()
		require.True(t, allowed[prize], "unexpected prize %d", prize)
		seen[prize] = true
	}

	// With 2000 spins every prize tier should appear.
	assert.Len(t, seen, 3)
}

func TestRollRoulette_EmptyTablePaysNothing(t *testing.T) {
	conf := gachaConfig(nil)
	conf.Gacha.Roulette = nil
	resolver := seededResolver(conf, fullIconPool(), 5)

	assert.Zero(t, resolver.RollRoulette())
}
