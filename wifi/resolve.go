package wifi

import "fmt"

// FindUSBAdapter returns the first USB adapter in listing order.
func FindUSBAdapter(l AdapterLister) (Adapter, error) {
	adapters, err := l.ListAdapters()
	if err != nil {
		return Adapter{}, err
	}
	for _, a := range adapters {
		if a.IsUSB {
			return a, nil
		}
	}
	return Adapter{}, ErrNoUSBAdapter
}

// GetAdapter returns the wireless adapter with the given name.
func GetAdapter(l AdapterLister, name string) (Adapter, error) {
	adapters, err := l.ListAdapters()
	if err != nil {
		return Adapter{}, err
	}
	for _, a := range adapters {
		if a.Name == name {
			return a, nil
		}
	}
	return Adapter{}, fmt.Errorf("%q: %w", name, ErrAdapterNotFound)
}

// Resolve turns an optional adapter name into a concrete adapter. An empty
// name auto-detects the first USB adapter.
func Resolve(l AdapterLister, name string) (Adapter, error) {
	if name != "" {
		return GetAdapter(l, name)
	}
	return FindUSBAdapter(l)
}
