package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	th "github.com/desertthunder/musicx/internal/testing"
)

func testPlaylists(n int) ([]models.Playlist, []int64) {
	playlists := make([]models.Playlist, n)
	ids := make([]int64, n)
	for i := range n {
		id := int64(i + 1)
		ids[i] = id
		playlists[i] = models.Playlist{
			ID:          id,
			Name:        fmt.Sprintf("Playlist %d", id),
			Description: fmt.Sprintf("Test playlist %d", id),
			Songs: []models.Song{
				{ID: id*10 + 1, Title: "Song 1", Artist: "Artist 1"},
				{ID: id*10 + 2, Title: "Song 2", Artist: "Artist 2"},
			},
		}
	}
	return playlists, ids
}

func drain(t *testing.T) chan ProgressUpdate {
	t.Helper()
	ch := make(chan ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range ch {
		}
	}()
	t.Cleanup(func() {
		close(ch)
		<-done
	})
	return ch
}

func TestBulkExport_SuccessfulExport(t *testing.T) {
	tests := []struct {
		name          string
		format        string
		playlistCount int
		filesPer      int
		firstFile     string
	}{
		{name: "single playlist json export", format: "json", playlistCount: 1, filesPer: 1, firstFile: "1-playlist-1.json"},
		{name: "multiple playlists csv export", format: "csv", playlistCount: 3, filesPer: 2, firstFile: "1-playlist-1_songs.csv"},
		{name: "text export", format: "txt", playlistCount: 2, filesPer: 1, firstFile: "1-playlist-1_songs.txt"},
		{name: "markdown export", format: "markdown", playlistCount: 1, filesPer: 1, firstFile: filepath.Join("1-playlist-1", "README.md")},
		{name: "default format", format: "", playlistCount: 1, filesPer: 1, firstFile: "1-playlist-1.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			playlists, ids := testPlaylists(tt.playlistCount)
			engine := NewEngine(&th.MockAPI{Playlists: playlists}, nil, nil, nil)

			result, err := engine.BulkExport(context.Background(), drain(t), ids, BulkExportOpts{
				Format:     tt.format,
				OutputDir:  tempDir,
				NumWorkers: 2,
				RateLimit:  100,
			})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}

			if result.SuccessfulExports != tt.playlistCount || result.FailedExports != 0 {
				t.Errorf("expected %d successes and 0 failures, got %d/%d",
					tt.playlistCount, result.SuccessfulExports, result.FailedExports)
			}
			for _, res := range result.Results {
				if len(res.Files) != tt.filesPer {
					t.Errorf("%s: expected %d files, got %v", res.PlaylistName, tt.filesPer, res.Files)
				}
			}

			th.AssertFileExists(t, filepath.Join(tempDir, tt.firstFile))
			th.AssertFileExists(t, result.ManifestPath)
		})
	}
}

func TestBulkExport_PartialFailure(t *testing.T) {
	tempDir := t.TempDir()
	playlists, _ := testPlaylists(2)
	engine := NewEngine(&th.MockAPI{Playlists: playlists}, nil, nil, nil)

	result, err := engine.BulkExport(context.Background(), drain(t), []int64{1, 99, 2}, BulkExportOpts{
		Format:    "json",
		OutputDir: tempDir,
		RateLimit: 100,
	})
	if err != nil {
		t.Fatalf("BulkExport failed: %v", err)
	}

	if result.TotalPlaylists != 3 || result.SuccessfulExports != 2 || result.FailedExports != 1 {
		t.Errorf("unexpected counts: %+v", result)
	}

	var failed *models.PlaylistExportResult
	for i := range result.Results {
		if !result.Results[i].Success {
			failed = &result.Results[i]
		}
	}
	if failed == nil || failed.PlaylistID != 99 || failed.PlaylistName != "Unknown (99)" {
		t.Fatalf("expected playlist 99 to fail, got %+v", failed)
	}

	var manifest struct {
		Format        string `json:"format"`
		FailedExports int    `json:"failedExports"`
		Results       []struct {
			PlaylistID int64  `json:"playlistId"`
			Error      string `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if manifest.Format != "json" || manifest.FailedExports != 1 || len(manifest.Results) != 3 {
		t.Errorf("unexpected manifest: %+v", manifest)
	}
}

func TestBulkExport_Validation(t *testing.T) {
	engine := NewEngine(&th.MockAPI{}, nil, nil, nil)

	t.Run("no ids", func(t *testing.T) {
		_, err := engine.BulkExport(context.Background(), nil, nil, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := engine.BulkExport(context.Background(), nil, []int64{1}, BulkExportOpts{Format: "xml", OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("nil api", func(t *testing.T) {
		_, err := NewEngine(nil, nil, nil, nil).BulkExport(context.Background(), nil, []int64{1}, BulkExportOpts{})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("default output dir", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		playlists, ids := testPlaylists(1)
		result, err := NewEngine(&th.MockAPI{Playlists: playlists}, nil, nil, nil).
			BulkExport(context.Background(), nil, ids, BulkExportOpts{RateLimit: 100})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if _, err := os.Stat(result.OutputDirectory); err != nil {
			t.Errorf("default output directory not created: %v", err)
		}
	})
}

func TestBulkExport_Cancelled(t *testing.T) {
	playlists, ids := testPlaylists(5)
	engine := NewEngine(&th.MockAPI{Playlists: playlists}, nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := engine.BulkExport(ctx, nil, ids, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 1})
	if err == nil {
		t.Fatal("expected an interrupted export to fail")
	}
	if result.ManifestPath != "" {
		t.Error("manifest should not be written for a cancelled export")
	}
	if result.SuccessfulExports >= 5 {
		t.Errorf("cancelled export should not finish every playlist, got %d", result.SuccessfulExports)
	}
}
