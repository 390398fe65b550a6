package member

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheetHeader = "id,name,institute,email,bio,originCountry,originLatitude,originLongitude,currentLocation,currentLatitude,currentLongitude,researchTags,image\n"

func TestDecodeCSV(t *testing.T) {
	payload := sheetHeader +
		`1,Ana Pérez,UChile,ana@example.org,"Soil, microbes",Chile,-33.4,-70.6,Germany,52.52,13.40,"ecology, microbiology",ana.jpg` + "\n" +
		"\n" +
		`2,Luis Gómez,UNAM,,Physicist,Mexico,19.43,-99.13` + "\n"

	rows, err := DecodeCSV(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Soil, microbes", rows[0][ColBio])
	assert.Equal(t, "ecology, microbiology", rows[0][ColResearchTags])
	assert.Equal(t, "Mexico", rows[1][ColOriginCountry])
	_, ok := rows[1][ColCurrentLocation]
	assert.False(t, ok, "short rows leave trailing columns absent")

	batch := ParseRows(rows)
	require.Len(t, batch.Members, 2)
	assert.Nil(t, batch.Members[1].Current)
}

func TestDecodeCSV_ByteOrderMark(t *testing.T) {
	rows, err := DecodeCSV(strings.NewReader("\ufeff" + sheetHeader + "1,A,B,,,Peru,-12,-77,,,,,\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0][ColID])
}

func TestDecodeCSV_Failures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"html page", "<!DOCTYPE html>\n<html><body>Sign in</body></html>\n"},
		{"missing origin columns", "id,name,originCountry\n1,A,Chile\n"},
		{"bare quote", sheetHeader + "1,\"unterminated,Chile\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV(strings.NewReader(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDecodeCSV_HeaderOnly(t *testing.T) {
	rows, err := DecodeCSV(strings.NewReader(sheetHeader))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeCSV_LineNumbersSurviveBlankRows(t *testing.T) {
	payload := sheetHeader +
		"1,A,B,,,Peru,-12,-77,,,,,\n" +
		"\n" +
		",,,,,,,,,,,,\n" +
		"2,C,D,,,Chile,-33.4,not-a-number,,,,,\n" +
		"\"3\",\"E\nF\",G,,,Chile,-33.4,-70.6,,,,,\n" +
		"3,H,I,,,Chile,-30,-71,,,,,\n"

	rows, err := DecodeCSV(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []int{2, 5, 6, 8}, []int{rows[0].Line(), rows[1].Line(), rows[2].Line(), rows[3].Line()})

	batch := ParseRows(rows)
	assert.Equal(t, []Rejection{
		{Line: 5, ID: "2", Reason: ReasonMissingOrigin},
		{Line: 8, ID: "3", Reason: ReasonDuplicateID},
	}, batch.Rejected)
}
