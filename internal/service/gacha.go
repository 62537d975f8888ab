package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/popcornhub/points-api/internal/config"
	"github.com/popcornhub/points-api/internal/domain"
)

var ErrCatalogEmpty = errors.New("no icons available to draw")

// Default draw weights, used when config omits a rarity.
var defaultRarityWeights = map[string]int{
	string(domain.RarityCommon):    600,
	string(domain.RarityRare):      280,
	string(domain.RarityEpic):      90,
	string(domain.RarityLegendary): 25,
	string(domain.RarityUnique):    5,
}

// GachaResolver rolls random rewards: icon draws, point boxes and
// roulette spins. Weights come from config and may change under hot
// reload; each roll reads a snapshot.
type GachaResolver struct {
	conf     *config.AppConfig
	iconRepo IconRepository

	mu  sync.Mutex
	rng *rand.Rand
}

func NewGachaResolver(conf *config.AppConfig, iconRepo IconRepository) *GachaResolver {
	return &GachaResolver{
		conf:     conf,
		iconRepo: iconRepo,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *GachaResolver) roll(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rng.Intn(n)
}

func (g *GachaResolver) weights() map[string]int {
	snap := g.conf.GachaSnapshot()
	if len(snap.Weights) == 0 {
		return defaultRarityWeights
	}

	return snap.Weights
}

// rollRarity picks a rarity by weight. Rarities with zero or missing
// weight are never drawn directly but remain reachable via fallback.
func (g *GachaResolver) rollRarity() domain.Rarity {
	weights := g.weights()

	total := 0
	for _, rarity := range domain.RarityOrder {
		if w := weights[string(rarity)]; w > 0 {
			total += w
		}
	}
	if total == 0 {
		return domain.RarityCommon
	}

	pick := g.roll(total)
	for _, rarity := range domain.RarityOrder {
		w := weights[string(rarity)]
		if w <= 0 {
			continue
		}
		if pick < w {
			return rarity
		}
		pick -= w
	}

	return domain.RarityCommon
}

// DrawIcon rolls a rarity and picks uniformly within its pool. An empty
// pool falls back to the next-most-common rarity, stepping down until
// COMMON before wrapping to rarer tiers, so a draw succeeds as long as
// any icon exists.
func (g *GachaResolver) DrawIcon(ctx context.Context) (domain.Icon, error) {
	rolled := g.rollRarity()

	start := 0
	for i, rarity := range domain.RarityOrder {
		if rarity == rolled {
			start = i
			break
		}
	}

	order := make([]domain.Rarity, 0, len(domain.RarityOrder))
	for i := start; i >= 0; i-- {
		order = append(order, domain.RarityOrder[i])
	}
	for i := start + 1; i < len(domain.RarityOrder); i++ {
		order = append(order, domain.RarityOrder[i])
	}

	for _, rarity := range order {
		icons, err := g.iconRepo.FindByRarity(ctx, rarity)
		if err != nil {
			return domain.Icon{}, fmt.Errorf("g.iconRepo.FindByRarity -> %w", err)
		}
		if len(icons) == 0 {
			continue
		}

		return icons[g.roll(len(icons))], nil
	}

	return domain.Icon{}, ErrCatalogEmpty
}

// RollPointBox returns a uniform reward in the configured range.
func (g *GachaResolver) RollPointBox() int {
	snap := g.conf.GachaSnapshot()

	min, max := 50, 500
	if snap.PointBox != nil && snap.PointBox.Max >= snap.PointBox.Min && snap.PointBox.Min > 0 {
		min, max = snap.PointBox.Min, snap.PointBox.Max
	}
	if min == max {
		return min
	}

	return min + g.roll(max-min+1)
}

// RollRoulette picks a prize from the weighted table and returns its
// point value. An empty table pays nothing.
func (g *GachaResolver) RollRoulette() int {
	snap := g.conf.GachaSnapshot()
	if snap.Roulette == nil || len(snap.Roulette.Prizes) == 0 {
		return 0
	}

	total := 0
	for _, prize := range snap.Roulette.Prizes {
		if prize.Weight > 0 {
			total += prize.Weight
		}
	}
	if total == 0 {
		return 0
	}

	pick := g.roll(total)
	for _, prize := range snap.Roulette.Prizes {
		if prize.Weight <= 0 {
			continue
		}
		if pick < prize.Weight {
			return prize.Points
		}
		pick -= prize.Weight
	}

	return 0
}
