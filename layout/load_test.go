package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallTemplate = `
version: small
group_stride: 4
record_stride: 6
group_anchor_row: 0
first_group_col: 0
first_record_row: 1
categories:
  - name: build
    label: Build
    row: 1
  - name: run
    label: Run
    row: 2
periods:
  start: 1
  end: 2
total_col: 3
before_cutoff: {row: 4, col: 3}
after_cutoff: {row: 5, col: 3}
external: [build]
reserved:
  - token: header
  - token: ops
    whole: true
`

func TestDecodeTemplate(t *testing.T) {
	tmpl, err := DecodeTemplate(strings.NewReader(smallTemplate))
	require.NoError(t, err)

	assert.Equal(t, "small", tmpl.Version)
	assert.Equal(t, 4, tmpl.GroupStride)
	assert.Equal(t, []string{"build", "run"}, tmpl.CategoryNames())
	assert.Equal(t, 2, tmpl.PeriodCount())
	assert.Equal(t, Offset{Row: 5, Col: 3}, tmpl.AfterCutoff)
	assert.True(t, tmpl.IsReserved("OPS"))
	assert.False(t, tmpl.IsReserved("DevOps"))
}

func TestDecodeTemplate_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", smallTemplate + "colour: blue\n"},
		{"not yaml", "version: [unclosed"},
		{"invalid", strings.Replace(smallTemplate, "total_col: 3", "total_col: 9", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTemplate(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}

	_, err := DecodeTemplate(strings.NewReader(strings.Replace(smallTemplate, "group_stride: 4", "group_stride: 0", 1)))
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestEncodeTemplate(t *testing.T) {
	data, err := EncodeTemplate(Default())
	require.NoError(t, err)
	assert.Contains(t, string(data), "group_stride: 11")
	assert.Contains(t, string(data), "- name: features")

	back, err := DecodeTemplate(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, Default(), back)
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallTemplate), 0o644))

	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "small", tmpl.Version)

	_, err = LoadTemplate(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
