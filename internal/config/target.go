package config

import "strings"

// DefaultURL is used when no flag, environment variable or context names a
// daemon.
const DefaultURL = "http://127.0.0.1:8500"

type Source string

const (
	SourceFlag       Source = "flag"
	SourceEnvURL     Source = "env:RGBLDK_URL"
	SourceEnvConnect Source = "env:RGBLDK_CONNECT"
	SourceEnvContext Source = "env:RGBLDK_CTX"
	SourceContext    Source = "context"
	SourceDefault    Source = "default"
)

// Target is the daemon base URL for one invocation and where it came from.
type Target struct {
	URL    string
	Source Source
	// Context is the context name when the URL came from the store.
	Context string
}

// ContextLookup is the read side of the context store.
type ContextLookup interface {
	Lookup(name string) (string, bool)
	CurrentName() string
}

// ResolveTarget picks the first non-blank source in order: explicit value,
// RGBLDK_URL, RGBLDK_CONNECT, the context named by RGBLDK_CTX, the store's
// current context, DefaultURL. A context name absent from the store is
// skipped. store may be nil.
func ResolveTarget(explicit string, env func(string) string, store ContextLookup) Target {
	if v := strings.TrimSpace(explicit); v != "" {
		return Target{URL: v, Source: SourceFlag}
	}
	if env != nil {
		if v := strings.TrimSpace(env("RGBLDK_URL")); v != "" {
			return Target{URL: v, Source: SourceEnvURL}
		}
		if v := strings.TrimSpace(env("RGBLDK_CONNECT")); v != "" {
			return Target{URL: v, Source: SourceEnvConnect}
		}
		if name := strings.TrimSpace(env("RGBLDK_CTX")); name != "" && store != nil {
			if url, ok := lookup(store, name); ok {
				return Target{URL: url, Source: SourceEnvContext, Context: name}
			}
		}
	}
	if store != nil {
		if name := strings.TrimSpace(store.CurrentName()); name != "" {
			if url, ok := lookup(store, name); ok {
				return Target{URL: url, Source: SourceContext, Context: name}
			}
		}
	}
	return Target{URL: DefaultURL, Source: SourceDefault}
}

func lookup(store ContextLookup, name string) (string, bool) {
	url, ok := store.Lookup(name)
	url = strings.TrimSpace(url)
	return url, ok && url != ""
}
