// ABOUTME: Static catalog of recognized per-guild boolean configuration keys
// ABOUTME: Pure data, fixed at build time; the store validates against it

package registry

// Key is a recognized boolean configuration switch and its default value.
type Key struct {
	Name    string
	Default bool
}

// keys is the build-time catalog. Order is significant: it is the order
// switches are seeded onto new guild documents and listed to operators.
var keys = []Key{
	{Name: "antiSpam", Default: false},
	{Name: "welcomeMessage", Default: false},
	{Name: "shopAlerts", Default: false},
	{Name: "targetNotify", Default: false},
}

// Keys returns the ordered catalog of recognized boolean config keys.
// The returned slice is a copy; callers may not mutate the catalog.
func Keys() []Key {
	out := make([]Key, len(keys))
	copy(out, keys)
	return out
}

// Names returns just the key names, in catalog order.
func Names() []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Name
	}
	return out
}

// Contains reports whether name is a recognized config key.
func Contains(name string) bool {
	for _, k := range keys {
		if k.Name == name {
			return true
		}
	}
	return false
}

// DefaultFor returns the declared default for name, or false if name is not
// in the catalog.
func DefaultFor(name string) bool {
	for _, k := range keys {
		if k.Name == name {
			return k.Default
		}
	}
	return false
}
