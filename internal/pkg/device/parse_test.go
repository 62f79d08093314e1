package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/loxone-integration/internal/pkg/model"
)

func TestParseColor(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    ColorValue
		wantErr bool
	}{
		"hsv":          {in: "hsv(12,50.5,100)", want: ColorValue{Tag: "hsv", Args: []float64{12, 50.5, 100}}},
		"temp":         {in: "temp(40,3500)", want: ColorValue{Tag: "temp", Args: []float64{40, 3500}}},
		"spaces":       {in: " temp( 40 , 3500 ) ", want: ColorValue{Tag: "temp", Args: []float64{40, 3500}}},
		"bad number":   {in: "hsv(bad)", wantErr: true},
		"missing args": {in: "hsv(1,2)", wantErr: true},
		"unclosed":     {in: "hsv(1,2,3", wantErr: true},
		"empty":        {in: "", wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSceneIDs(t *testing.T) {
	ids, err := ParseSceneIDs("[2, 778]")
	require.NoError(t, err)
	assert.Equal(t, []model.SceneID{"2", "778"}, ids)

	ids, err = ParseSceneIDs("[]")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = ParseSceneIDs(`["a",'b']`)
	require.NoError(t, err)
	assert.Equal(t, []model.SceneID{"a", "b"}, ids)

	_, err = ParseSceneIDs("778")
	assert.Error(t, err)

	_, err = ParseSceneIDs("[True]")
	assert.Error(t, err)
}

func TestParseScenesBooleanSpellings(t *testing.T) {
	lower := `[{"name":"Hell","id":1,"static":true},{"name":"Aus","id":778,"static":false}]`
	upper := `[{"name":"Hell","id":1,"static":True},{"name":"Aus","id":778,"static":False}]`
	want := []model.Scene{{ID: "1", Name: "Hell"}, {ID: "778", Name: "Aus"}}

	for _, in := range []string{lower, upper} {
		got, err := ParseScenes(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseScenesSkipsIncompleteRecords(t *testing.T) {
	got, err := ParseScenes(`[{"name":"NoID"},{"id":4},{"name":"Ok","id":5,"extra":None}]`)
	require.NoError(t, err)
	assert.Equal(t, []model.Scene{{ID: "5", Name: "Ok"}}, got)
}

func TestParseLiteral(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    any
		wantErr bool
	}{
		"nested":        {in: `[{"a":[1,-2.5]}]`, want: []any{map[string]any{"a": []any{1.0, -2.5}}}},
		"escaped quote": {in: `'it\'s'`, want: "it's"},
		"null":          {in: "null", want: nil},
		"trailing":      {in: "[1] x", wantErr: true},
		"code":          {in: "__import__('os')", wantErr: true},
		"unterminated":  {in: `"abc`, wantErr: true},
		"bare key":      {in: `{a:1}`, wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseLiteral(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
