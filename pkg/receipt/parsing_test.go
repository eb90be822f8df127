package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1.500.000", 1_500_000},
		{"500.000", 500_000},
		{"10.000,00", 10_000},
		{"10,000.00", 10_000},
		{"4010000", 4_010_000},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseAmountRejectsEmpty(t *testing.T) {
	_, err := ParseAmount("   ")
	assert.Error(t, err)
}

func TestAmountCandidates(t *testing.T) {
	text := "TRANSFER BERHASIL\nRp 1.500.000\nBiaya admin Rp 2.500\nRef 20250310"
	cands := AmountCandidates(text)
	assert.Contains(t, cands, "1.500.000")
	assert.Contains(t, cands, "2.500")
}

func TestBestAmountPicksLargest(t *testing.T) {
	text := "Total Rp 500.000\nBiaya admin Rp 6.500"
	amt, raw, ok := BestAmount(text)
	assert.True(t, ok)
	assert.Equal(t, int64(500_000), amt)
	assert.Equal(t, "500.000", raw)
}

func TestBestAmountNoCandidates(t *testing.T) {
	_, _, ok := BestAmount("tidak ada nominal di sini")
	assert.False(t, ok)
}

func TestIsSupportedImage(t *testing.T) {
	assert.True(t, IsSupportedImage("bukti.jpg"))
	assert.True(t, IsSupportedImage("bukti.PNG"))
	assert.False(t, IsSupportedImage("bukti.ocr.png"))
	assert.False(t, IsSupportedImage("catatan.pdf"))
}
