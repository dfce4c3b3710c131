package window

import (
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Persistence format: {"areas":[{"origin":"...","items":[{"key":"...","value":"..."}]}]}.
// Entries are arrays rather than objects so arbitrary origins and keys never
// need JSON path escaping, and so item order survives a round trip.

// SaveLocal serializes the hub's local storage areas to JSON.
func (h *StorageHub) SaveLocal() ([]byte, error) {
	doc := `{"areas":[]}`

	origins := h.localOrigins()
	sort.Strings(origins)

	var err error
	for _, origin := range origins {
		store := h.Local(origin)
		keys := store.Keys()
		if len(keys) == 0 {
			continue
		}

		area := `{"items":[]}`
		area, err = sjson.Set(area, "origin", origin)
		if err != nil {
			return nil, fmt.Errorf("persist origin %q: %w", origin, err)
		}
		for _, key := range keys {
			value, _ := store.GetItem(key)
			area, err = sjson.Set(area, "items.-1", map[string]any{"key": key, "value": value})
			if err != nil {
				return nil, fmt.Errorf("persist key %q: %w", key, err)
			}
		}

		doc, err = sjson.SetRaw(doc, "areas.-1", area)
		if err != nil {
			return nil, fmt.Errorf("persist area %q: %w", origin, err)
		}
	}

	return []byte(doc), nil
}

// LoadLocal restores local storage areas from JSON produced by SaveLocal.
// Loaded entries merge into existing stores, keeping insertion order from the
// file for keys not already present.
func (h *StorageHub) LoadLocal(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("storage file is not valid JSON")
	}

	areas := gjson.GetBytes(data, "areas")
	if !areas.Exists() {
		return fmt.Errorf("storage file has no areas field")
	}

	var loadErr error
	areas.ForEach(func(_, area gjson.Result) bool {
		origin := area.Get("origin").String()
		if origin == "" {
			loadErr = fmt.Errorf("storage area without origin")
			return false
		}
		store := h.Local(origin)
		area.Get("items").ForEach(func(_, item gjson.Result) bool {
			store.SetItem(item.Get("key").String(), item.Get("value").String())
			return true
		})
		return true
	})
	return loadErr
}

// SaveLocalFile writes the hub's local storage to path.
func (h *StorageHub) SaveLocalFile(path string) error {
	data, err := h.SaveLocal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadLocalFile restores local storage from path. A missing file is not an
// error; it leaves the hub unchanged.
func (h *StorageHub) LoadLocalFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return h.LoadLocal(data)
}
