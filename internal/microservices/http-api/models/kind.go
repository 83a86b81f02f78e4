package models

import (
	"fmt"
	"strings"
)

// Kind tags which side of the library a row belongs to. Publishers, series
// and issues of both kinds share one table each; uniqueness and lookups are
// always scoped by kind.
type Kind string

const (
	KindCollection Kind = "collection"
	KindWishlist   Kind = "wishlist"
)

func (k Kind) Valid() bool {
	return k == KindCollection || k == KindWishlist
}

// ParseKind accepts the collectionType values used by the UI ("comics",
// "collection", "wishlist"). Empty means collection.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "comics", "collection", "regular":
		return KindCollection, nil
	case "wishlist":
		return KindWishlist, nil
	default:
		return "", fmt.Errorf("unknown collection type %q", s)
	}
}

// NormalizeName is the case-insensitive identity of a publisher or series name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeVariant maps an absent or blank variant to "" so that two issues
// without a variant compare equal.
func NormalizeVariant(variant *string) string {
	if variant == nil {
		return ""
	}
	return strings.TrimSpace(*variant)
}

// ReconcileKey joins "the same" series across kinds by series and publisher name.
func ReconcileKey(seriesName, publisherName string) string {
	return NormalizeName(seriesName) + "|" + NormalizeName(publisherName)
}
