package window

import (
	"net/url"
	"strings"
	"sync"
)

// reservedStorageNames are the property names that always resolve to the
// store's own behavior at the property-access layer, even when a stored key
// collides with one of them. The underlying map stores such keys normally;
// only property-style access is redirected (see the js storage binding).
var reservedStorageNames = map[string]bool{
	"length":     true,
	"key":        true,
	"getItem":    true,
	"setItem":    true,
	"removeItem": true,
	"clear":      true,
}

// IsReservedStorageName reports whether property access on the given name
// resolves to store behavior instead of stored data.
func IsReservedStorageName(name string) bool {
	return reservedStorageNames[name]
}

// Storage is an ordered, string-keyed store. Keys enumerate in insertion
// order; overwriting a key keeps its position. Safe for concurrent use.
type Storage struct {
	mu    sync.RWMutex
	keys  []string
	items map[string]string
}

// NewStorage creates an empty store.
func NewStorage() *Storage {
	return &Storage{items: make(map[string]string)}
}

// Length returns the number of stored entries.
func (s *Storage) Length() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Key returns the key at the given insertion-order position, or ("", false)
// if the index is out of range.
func (s *Storage) Key(index int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.keys) {
		return "", false
	}
	return s.keys[index], true
}

// GetItem returns the value for key. An absent key yields ("", false), never
// an error.
func (s *Storage) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	return value, ok
}

// SetItem stores value under key, appending new keys to the enumeration
// order.
func (s *Storage) SetItem(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.items[key] = value
}

// RemoveItem deletes key. Removing an absent key is a no-op.
func (s *Storage) RemoveItem(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[key]; !exists {
		return
	}
	delete(s.items, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Clear removes all entries.
func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = nil
	s.items = make(map[string]string)
}

// Keys returns the keys in insertion order.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// StorageHub hands out per-origin local and session stores. Local stores
// persist for the hub's lifetime and can be saved to disk; session stores are
// expected to be discarded with the windows that used them.
type StorageHub struct {
	mu      sync.Mutex
	local   map[string]*Storage
	session map[string]*Storage
}

// NewStorageHub creates an empty hub.
func NewStorageHub() *StorageHub {
	return &StorageHub{
		local:   make(map[string]*Storage),
		session: make(map[string]*Storage),
	}
}

// Local returns the persistent store for origin, creating it on first use.
func (h *StorageHub) Local(origin string) *Storage {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.local[origin]
	if !ok {
		s = NewStorage()
		h.local[origin] = s
	}
	return s
}

// Session returns the session store for origin, creating it on first use.
func (h *StorageHub) Session(origin string) *Storage {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.session[origin]
	if !ok {
		s = NewStorage()
		h.session[origin] = s
	}
	return s
}

// localOrigins returns the origins with a local store, for persistence.
func (h *StorageHub) localOrigins() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	origins := make([]string, 0, len(h.local))
	for origin := range h.local {
		origins = append(origins, origin)
	}
	return origins
}

// OriginOf derives a storage origin (scheme://host:port) from a document URL.
// Unparseable or schemeless URLs map to the opaque origin "null".
func OriginOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "null"
	}

	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		}
	}
	origin := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Hostname())
	if port != "" {
		origin += ":" + port
	}
	return origin
}
