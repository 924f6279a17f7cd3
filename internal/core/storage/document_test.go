package storage

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/planetreboot/internal/core/litter"
)

func TestDocumentSerialize(t *testing.T) {
	doc := DefaultDocument()
	doc.Trash = nil
	data, err := doc.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, `{"health":80,"yearsLeft":75,"trashCount":0,"trash":[],"autoRotateEnabled":true}`, string(data))
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := Document{
		Health:     63,
		YearsLeft:  71.4,
		TrashCount: 2,
		Trash: []litter.PackedItem{
			{0, 0, 1.033, 0, 0, 0, 0, 1, 0.8},
			{2, 1.033, 0, 0, 0, 0, 0.7071, 0.7071, 0.76},
		},
	}
	data, err := doc.Serialize()
	require.NoError(t, err)

	var got Document
	require.NoError(t, got.Deserialize(data))
	if diff := cmp.Diff(doc, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentDeserializeLenient(t *testing.T) {
	cases := []struct {
		name string
		blob string
		want Document
	}{
		{
			name: "Empty",
			blob: `{}`,
			want: DefaultDocument(),
		},
		{
			name: "ZeroFallsBackToDefault",
			blob: `{"health":0,"yearsLeft":0}`,
			want: DefaultDocument(),
		},
		{
			name: "Clamped",
			blob: `{"health":250,"yearsLeft":-4,"trashCount":9000}`,
			want: Document{Health: 100, YearsLeft: 0, TrashCount: 600, Trash: []litter.PackedItem{}, AutoRotateEnabled: true},
		},
		{
			name: "Coerced",
			blob: `{"health":"55","yearsLeft":"soon","trashCount":"12.7","autoRotateEnabled":0}`,
			want: Document{Health: 55, YearsLeft: 75, TrashCount: 12, Trash: []litter.PackedItem{}},
		},
		{
			name: "NullAutoRotate",
			blob: `{"autoRotateEnabled":null}`,
			want: DefaultDocument(),
		},
		{
			name: "TrashNotArray",
			blob: `{"trash":"oops","trashCount":3}`,
			want: Document{Health: 80, YearsLeft: 75, TrashCount: 3, Trash: []litter.PackedItem{}, AutoRotateEnabled: true},
		},
		{
			name: "TrashPartlyMalformed",
			blob: `{"trash":[[1,0,1,0,0,0,0,1,0.5],[1,2],"x"],"trashCount":3}`,
			want: Document{
				Health: 80, YearsLeft: 75, TrashCount: 3, AutoRotateEnabled: true,
				Trash:   []litter.PackedItem{{1, 0, 1, 0, 0, 0, 0, 1, 0.5}},
				Skipped: 2,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got Document
			require.NoError(t, got.Deserialize([]byte(tc.blob)))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDocumentDeserializeRejectsNonObjects(t *testing.T) {
	for _, blob := range []string{``, `null`, `[]`, `"text"`, `42`, `{"health":`} {
		var d Document
		require.ErrorIs(t, d.Deserialize([]byte(blob)), ErrMalformedDocument, "blob %q", blob)
	}
}
