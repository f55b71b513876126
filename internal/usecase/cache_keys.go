package usecase

import (
	"fmt"
	"strings"
)

// Cache key prefixes for remote catalog operations. Every operation is
// memoized under its own prefix plus its arguments so distinct calls never
// collide.
const (
	prefixResolve = "resolve:"
	prefixUploads = "uploads:"
	prefixDetail  = "detail:"
	prefixSearch  = "search:"
	prefixStats   = "stats:"
)

func resolveKey(ref string) string {
	return prefixResolve + ref
}

func uploadsKey(channelID string, limit int) string {
	return fmt.Sprintf("%s%s:%d", prefixUploads, channelID, limit)
}

func detailKey(videoID string, minimal bool) string {
	return fmt.Sprintf("%s%s:%t", prefixDetail, videoID, minimal)
}

func searchKey(channelID string, limit int, pageToken string) string {
	return fmt.Sprintf("%s%s:%d:%s", prefixSearch, channelID, limit, pageToken)
}

func statsKey(videoIDs []string) string {
	return prefixStats + strings.Join(videoIDs, ",")
}
