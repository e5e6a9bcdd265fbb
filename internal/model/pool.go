package model

// PoolName identifies an image pool.
type PoolName string

// Built-in pool names.
const (
	PoolCoffee   PoolName = "coffee"
	PoolTea      PoolName = "tea"
	PoolSmoothie PoolName = "smoothie"
	PoolPastry   PoolName = "pastry"
)

// String implements fmt.Stringer.
func (p PoolName) String() string {
	return string(p)
}
