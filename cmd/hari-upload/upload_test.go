package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quality-match/hari-client-sub000/pkg/models"
)

func TestScanMediaFilesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".hidden"), 0o755))
	for _, name := range []string{"b.jpg", "a.PNG", "notes.txt", filepath.Join("sub", "c.jpeg"), filepath.Join(".hidden", "d.jpg")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := scanMediaFiles(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"a.PNG", "b.jpg", filepath.Join("sub", "c.jpeg")}, files)
}

func TestScanMediaFilesMissingDir(t *testing.T) {
	_, err := scanMediaFiles(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestMediaFromFile(t *testing.T) {
	media := mediaFromFile("/data/images", filepath.Join("sub", "img.jpg"))

	require.Equal(t, "sub/img.jpg", media.BackReference)
	require.Equal(t, "img.jpg", media.Name)
	require.Equal(t, filepath.Join("/data/images", "sub", "img.jpg"), media.FilePath)
	require.Equal(t, models.MediaTypeImage, media.MediaType)
}
