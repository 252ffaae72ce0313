// Package fetch retrieves venue schedule and detail pages, renders them to
// normalized text, and caches each rendering on disk keyed by source URL and
// month offset so repeat pipeline runs skip network and rendering cost.
package fetch
