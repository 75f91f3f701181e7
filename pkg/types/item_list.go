package types

import "maps"

type ItemList map[ItemId]struct{}

func NewItemList() *ItemList {
	return &ItemList{}
}

func (i ItemList) AddId(id ItemId) {
	i[id] = struct{}{}
}

func (i ItemList) Add(item *Item) {
	i[item.Id] = struct{}{}
}

func (i ItemList) Contains(id ItemId) bool {
	_, ok := i[id]
	return ok
}

func (i ItemList) Len() int {
	return len(i)
}

func (i ItemList) IsEmpty() bool {
	return len(i) == 0
}

func (a ItemList) Intersect(b *ItemList) {
	if b == nil {
		return
	}
	for id := range a {
		if _, ok := (*b)[id]; !ok {
			delete(a, id)
		}
	}
}

func (i ItemList) Merge(other *ItemList) {
	if other == nil {
		return
	}
	maps.Copy(i, *other)
}

func (i ItemList) Exclude(other *ItemList) {
	if other == nil {
		return
	}
	for id := range *other {
		delete(i, id)
	}
}

func (i ItemList) Clone() *ItemList {
	c := maps.Clone(i)
	if c == nil {
		c = ItemList{}
	}
	return &c
}
