package news

import "fmt"

// FetchError is a network or parse failure on one source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// TranslationError is a failed translation backend call. It never leaves the translator.
type TranslationError struct {
	Backend string
	Err     error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate via %s: %v", e.Backend, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// DeliveryError is a failed send to the messaging channel.
type DeliveryError struct {
	Identity string
	Op       string // "photo" or "text"
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s (%s): %v", e.Identity, e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// StoreError is a read or write failure on the dedup store.
type StoreError struct {
	Identity string
	Op       string // "read" or "write"
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Identity, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ConfigError is a missing or invalid mandatory setting. It is fatal at startup.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}
