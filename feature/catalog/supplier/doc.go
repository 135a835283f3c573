// Package supplier retrieves raw catalog payloads from external sources.
//
// Fetchers are registered by name in a Registry built at startup; a sync run
// names its source and the registry resolves the fetcher. The payload is an
// opaque JSON document at this layer, validation happens downstream in the
// normalizer.
package supplier
