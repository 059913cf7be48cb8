package interval

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/expect"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		region string
		want   Region
	}{
		{"chr1:100-200", Region{"chr1", 100, 200}},
		{"chr1:0-1", Region{"chr1", 0, 1}},
		{"chr2:5", Region{"chr2", 5, 6}},
		{"chrX", Region{"chrX", 0, PosMax}},
		{"HLA-A*01:01:01:01:10-20", Region{"HLA-A*01:01:01:01", 10, 20}},
	}
	for _, tt := range tests {
		got, err := ParseRegion(tt.region)
		expect.NoError(t, err)
		expect.EQ(t, got, tt.want)
	}
}

func TestParseRegionErrors(t *testing.T) {
	for _, region := range []string{
		"",
		":1-2",
		"chr1:x-2",
		"chr1:1-y",
		"chr1:5-5",
		"chr1:7-5",
		"chr1:-3",
		"chr1:abc",
	} {
		_, err := ParseRegion(region)
		expect.NotNil(t, err, "%q", region)
		expect.True(t, errors.Is(errors.Invalid, err), "%q", region)
	}
}

func TestRegionStringRoundTrip(t *testing.T) {
	for _, r := range []Region{{"chr1", 0, 10}, {"chr22", 12345, 67890}} {
		got, err := ParseRegion(r.String())
		expect.NoError(t, err)
		expect.EQ(t, got, r)
	}
}

func TestRegionOverlaps(t *testing.T) {
	a := Region{"chr1", 10, 20}
	tests := []struct {
		b    Region
		want bool
	}{
		{Region{"chr1", 0, 10}, false},
		{Region{"chr1", 0, 11}, true},
		{Region{"chr1", 19, 30}, true},
		{Region{"chr1", 20, 30}, false},
		{Region{"chr1", 12, 15}, true},
		{Region{"chr1", 15, 15}, false},
		{Region{"chr2", 10, 20}, false},
	}
	for _, tt := range tests {
		expect.EQ(t, a.Overlaps(tt.b), tt.want, "%v", tt.b)
		expect.EQ(t, tt.b.Overlaps(a), tt.want, "%v", tt.b)
	}
	expect.EQ(t, a.Len(), int64(10))
	expect.EQ(t, Region{"chr1", 5, 3}.Len(), int64(0))
}
