package todo

// Walk visits every item depth-first in document order. Top-level items have
// depth 0. Returning false from fn skips the item's children.
func Walk(items []Item, fn func(item Item, depth int) bool) {
	walk(items, 0, fn)
}

func walk(items []Item, depth int, fn func(item Item, depth int) bool) {
	for _, item := range items {
		if !fn(item, depth) {
			continue
		}
		if len(item.Children) > 0 {
			walk(item.Children, depth+1, fn)
		}
	}
}

// Summarize wraps items in a List with counts taken over the whole tree.
// A nil slice becomes an empty one so the list encodes as [].
func Summarize(items []Item) List {
	if items == nil {
		items = []Item{}
	}
	list := List{Items: items}
	Walk(items, func(item Item, _ int) bool {
		list.TotalCount++
		if item.IsCompleted() {
			list.CompletedCount++
		}
		return true
	})
	return list
}

// Depth returns the number of levels in the tree. An empty tree has depth 0.
func Depth(items []Item) int {
	max := 0
	Walk(items, func(_ Item, depth int) bool {
		if depth+1 > max {
			max = depth + 1
		}
		return true
	})
	return max
}
