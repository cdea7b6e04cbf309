package toodle

import (
	"time"

	"pkt.systems/toodle/schema"
	"pkt.systems/toodle/store"
)

// DefaultCategoryColor colors labels created through CreateCategory.
const DefaultCategoryColor = "#808080"

// ListManager exposes the store's todo items. It shares the parent
// session's connection.
type ListManager struct {
	store *store.Store
}

// CreateTodo creates an item named name, due at the given epoch seconds,
// tagged with the named labels. Every named label must already exist.
func (m *ListManager) CreateTodo(name string, due int64, labelNames []string) (schema.Item, error) {
	labels := []schema.Label{}
	for _, labelName := range labelNames {
		label, err := m.store.LabelByName(labelName)
		if err != nil {
			return schema.Item{}, err
		}
		labels = append(labels, label)
	}
	item := schema.Item{
		Name:    name,
		DueDate: schema.Epoch(due),
		Labels:  labels,
	}
	return m.store.CreateItem(item)
}

// AllItems lists every item in creation order.
func (m *ListManager) AllItems() ([]schema.Item, error) {
	return m.store.ItemsWithLabels(nil)
}

// ItemsWithLabels lists items carrying any of the named labels. An empty
// filter behaves like AllItems.
func (m *ListManager) ItemsWithLabels(names []string) ([]schema.Item, error) {
	return m.store.ItemsWithLabels(names)
}

// DeleteTodo removes the item with the given uuid.
func (m *ListManager) DeleteTodo(itemUUID string) error {
	return m.store.DeleteItem(itemUUID)
}

// MarkCompleted stamps the item's completion date with the current time
// and returns the updated item.
func (m *ListManager) MarkCompleted(itemUUID string) (schema.Item, error) {
	item, err := m.store.FetchItem(itemUUID)
	if err != nil {
		return schema.Item{}, err
	}
	item.CompletionDate = schema.Epoch(time.Now().Unix())
	if err := m.store.UpdateItem(item); err != nil {
		return schema.Item{}, err
	}
	return item, nil
}

// SetDue replaces the item's due date and returns the updated item.
func (m *ListManager) SetDue(itemUUID string, due int64) (schema.Item, error) {
	item, err := m.store.FetchItem(itemUUID)
	if err != nil {
		return schema.Item{}, err
	}
	item.DueDate = schema.Epoch(due)
	if err := m.store.UpdateItem(item); err != nil {
		return schema.Item{}, err
	}
	return item, nil
}

// CreateCategory creates a label with the default category color. It is
// the convenience the mobile surface calls into.
func (m *ListManager) CreateCategory(name string) (schema.Label, error) {
	return m.store.CreateLabel(name, DefaultCategoryColor)
}
