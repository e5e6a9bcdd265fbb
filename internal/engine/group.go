package engine

import (
	"github.com/Veraticus/catalog-imager/internal/model"
	"github.com/samber/lo"
)

// GroupItems partitions items by lower-cased category. Groups appear in the
// order their first item was enumerated and items keep their relative order.
func GroupItems(items []model.Item) []model.CategoryGroup {
	keyOf := func(item model.Item, _ int) string {
		return model.GroupKey(item.Category)
	}

	keys := lo.Uniq(lo.Map(items, keyOf))
	byKey := lo.GroupBy(items, func(item model.Item) string {
		return keyOf(item, 0)
	})

	return lo.Map(keys, func(key string, _ int) model.CategoryGroup {
		members := byKey[key]
		return model.CategoryGroup{
			Key:   key,
			Label: members[0].Category,
			Items: members,
		}
	})
}
