// Package imagery maps catalog categories to image pools and picks the
// rotating image for an item's position within its category.
package imagery

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/Veraticus/catalog-imager/internal/model"
)

// Pool configuration errors.
var (
	ErrNoPools       = errors.New("no image pools configured")
	ErrEmptyPool     = errors.New("image pool is empty")
	ErrUnknownPool   = errors.New("unknown image pool")
	ErrBlankImageURL = errors.New("image reference cannot be blank")
)

// PoolSet is an immutable collection of named image pools.
// The zero value is not usable; build one with NewPoolSet.
type PoolSet struct {
	pools    map[model.PoolName][]string
	fallback model.PoolName
}

// NewPoolSet validates and copies the given pools. Every pool must hold at
// least one non-blank image reference and the fallback pool must exist.
func NewPoolSet(pools map[model.PoolName][]string, fallback model.PoolName) (*PoolSet, error) {
	if len(pools) == 0 {
		return nil, ErrNoPools
	}

	copied := make(map[model.PoolName][]string, len(pools))
	for name, images := range pools {
		if len(images) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyPool, name)
		}
		for i, img := range images {
			if strings.TrimSpace(img) == "" {
				return nil, fmt.Errorf("%w: pool %s index %d", ErrBlankImageURL, name, i)
			}
		}
		copied[normalizePool(name)] = slices.Clone(images)
	}

	fallback = normalizePool(fallback)
	if _, ok := copied[fallback]; !ok {
		return nil, fmt.Errorf("%w: fallback %s", ErrUnknownPool, fallback)
	}

	return &PoolSet{pools: copied, fallback: fallback}, nil
}

// Fallback returns the pool used for unrecognized pool names.
func (p *PoolSet) Fallback() model.PoolName {
	return p.fallback
}

// Has reports whether a pool with the given name exists.
func (p *PoolSet) Has(name model.PoolName) bool {
	_, ok := p.pools[normalizePool(name)]
	return ok
}

// Names returns the pool names in sorted order.
func (p *PoolSet) Names() []model.PoolName {
	names := make([]model.PoolName, 0, len(p.pools))
	for name := range p.pools {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Images returns a copy of the images in a pool.
func (p *PoolSet) Images(name model.PoolName) []string {
	return slices.Clone(p.resolve(name))
}

// Size returns the number of images in a pool.
func (p *PoolSet) Size(name model.PoolName) int {
	return len(p.resolve(name))
}

// ImageFor returns the image at position mod pool size. Negative positions
// are treated as zero.
func (p *PoolSet) ImageFor(name model.PoolName, position int) string {
	images := p.resolve(name)
	if position < 0 {
		position = 0
	}
	return images[position%len(images)]
}

func (p *PoolSet) resolve(name model.PoolName) []string {
	if images, ok := p.pools[normalizePool(name)]; ok {
		return images
	}
	return p.pools[p.fallback]
}

func normalizePool(name model.PoolName) model.PoolName {
	return model.PoolName(strings.ToLower(strings.TrimSpace(string(name))))
}

// DefaultPools returns the built-in coffee shop image pools.
func DefaultPools() map[model.PoolName][]string {
	const suffix = "?w=400&h=400&fit=crop"
	photo := func(id string) string {
		return "https://images.unsplash.com/photo-" + id + suffix
	}

	return map[model.PoolName][]string{
		model.PoolCoffee: {
			photo("1495474472287-4d71bcdd2085"),
			photo("1509042239860-f550ce710b93"),
			photo("1447933601403-0c6688de566e"),
			photo("1559056199-641a0ac8b55e"),
			photo("1461023058943-07fcbe16d735"),
			photo("1497515114629-f71d768fd07c"),
			photo("1506905925346-21bda4d32df4"),
			photo("1511920170033-f8396924c348"),
		},
		model.PoolTea: {
			photo("1556679343-c7306c1976bc"),
			photo("1571934811356-5cc061b6821f"),
			photo("1544787219-7f47ccb76574"),
			photo("1597318181409-cf64d0b5d8a2"),
		},
		model.PoolSmoothie: {
			photo("1553530666-ba11a7da3888"),
		},
		model.PoolPastry: {
			photo("1555507036-ab1f4038808a"),
			photo("1578985545062-69928b1d9587"),
		},
	}
}

// NewDefaultPoolSet builds the built-in pools with coffee as fallback.
func NewDefaultPoolSet() *PoolSet {
	set, err := NewPoolSet(DefaultPools(), model.PoolCoffee)
	if err != nil {
		panic(fmt.Sprintf("built-in pools are invalid: %v", err))
	}
	return set
}
