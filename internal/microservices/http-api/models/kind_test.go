package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindCollection, false},
		{"comics", KindCollection, false},
		{"Collection", KindCollection, false},
		{" wishlist ", KindWishlist, false},
		{"trash", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestReconcileKey(t *testing.T) {
	assert.Equal(t, ReconcileKey("Saga", "Image"), ReconcileKey("  saga ", "IMAGE"))
	assert.NotEqual(t, ReconcileKey("Saga", "Image"), ReconcileKey("Saga", "Marvel"))
}

func TestNormalizeVariant(t *testing.T) {
	blank := "  "
	cover := " Cover B "
	assert.Equal(t, "", NormalizeVariant(nil))
	assert.Equal(t, "", NormalizeVariant(&blank))
	assert.Equal(t, "Cover B", NormalizeVariant(&cover))
}
