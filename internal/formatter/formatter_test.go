package formatter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	th "github.com/desertthunder/musicx/internal/testing"
)

func testExport() *models.PlaylistExport {
	return &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:          12,
			Name:        "Road Trip!",
			Description: "A test playlist",
			Username:    "ada",
			Public:      true,
		},
		Songs: []models.Song{
			{ID: 1, Title: "Song One", Artist: "Artist One", Album: "Album One", Genre: "Rock", Duration: 180, AudioURL: "http://a/1.mp3"},
			{ID: 2, Title: "Song, Two", Artist: "Artist Two", DurationSeconds: 240},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Title,Artist,Album,Genre,Duration,AudioURL\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Song One,Artist One,Album One,Rock,180,http://a/1.mp3") {
			t.Errorf("CSV missing first song, got: %s", output)
		}
		if !strings.Contains(output, `2,"Song, Two",Artist Two,,,240,`) {
			t.Errorf("CSV should quote commas and use durationSeconds, got: %s", output)
		}
	})

	t.Run("ReadCSV Round Trip", func(t *testing.T) {
		data, _ := ExportToCSV(testExport())
		songs, err := ReadCSV(strings.NewReader(string(data)))
		if err != nil {
			t.Fatalf("ReadCSV failed: %v", err)
		}
		if len(songs) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(songs))
		}
		if songs[1].Title != "Song, Two" || songs[1].Artist != "Artist Two" {
			t.Errorf("unexpected song: %+v", songs[1])
		}
	})

	t.Run("ReadCSV", func(t *testing.T) {
		tests := []struct {
			name  string
			input string
			want  []string
		}{
			{"reordered header", "artist,title\nMuse,Uprising\n", []string{"Uprising|Muse"}},
			{"no header", "Yellow,Coldplay\nCreep\n", []string{"Yellow|Coldplay", "Creep|"}},
			{"blank titles skipped", "Title,Artist\n,Nobody\nClocks,Coldplay\n", []string{"Clocks|Coldplay"}},
			{"empty", "", []string{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				songs, err := ReadCSV(strings.NewReader(tt.input))
				if err != nil {
					t.Fatalf("ReadCSV failed: %v", err)
				}
				got := []string{}
				for _, s := range songs {
					got = append(got, s.Title+"|"+s.Artist)
				}
				if strings.Join(got, ",") != strings.Join(tt.want, ",") {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			})
		}

		if _, err := ReadCSV(strings.NewReader("a,\"b\n")); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for malformed CSV, got %v", err)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testExport(), "cover.jpg")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Road Trip!",
			"![Cover](cover.jpg)",
			"**Description**: A test playlist",
			"**Owner**: ada",
			"**Songs**: 2",
			"**Visibility**: Public",
			"1. Artist One - Song One (Album One) [3:00]",
			"2. Artist Two - Song, Two [4:00]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Playlist: Road Trip!\n") {
			t.Errorf("text missing name, got: %s", output)
		}
		if !strings.Contains(output, "2. Artist Two - Song, Two\n") {
			t.Errorf("text missing second song, got: %s", output)
		}
	})

	t.Run("BaseName", func(t *testing.T) {
		tests := []struct {
			playlist models.Playlist
			want     string
		}{
			{models.Playlist{ID: 12, Name: "Road Trip!"}, "12-road-trip"},
			{models.Playlist{ID: 3, Name: "  Lo-Fi  Beats  "}, "3-lo-fi-beats"},
			{models.Playlist{ID: 4, Name: "!!!"}, "4"},
		}
		for _, tt := range tests {
			if got := BaseName(tt.playlist); got != tt.want {
				t.Errorf("BaseName(%q) = %q, want %q", tt.playlist.Name, got, tt.want)
			}
		}
	})
}

func TestDownloadImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	data, err := DownloadImage(server.URL + "/cover.jpg")
	if err != nil {
		t.Fatalf("DownloadImage failed: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("unexpected image data: %q", data)
	}

	if _, err := DownloadImage(server.URL + "/missing.jpg"); err == nil {
		t.Error("expected error for 404")
	}
	if _, err := DownloadImage(""); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(testExport(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.SongsFile != "12-road-trip_songs.csv" {
				t.Errorf("Expected songs file '12-road-trip_songs.csv', got '%s'", result.SongsFile)
			}
			th.AssertFileExists(t, result.SongsFile)
			th.AssertFileExists(t, result.MetadataFile)

			var meta map[string]any
			if err := json.Unmarshal([]byte(th.MustReadFile(t, result.MetadataFile)), &meta); err != nil {
				t.Fatalf("metadata is not JSON: %v", err)
			}
			if _, ok := meta["songs"]; ok {
				t.Error("metadata should not include songs")
			}
		})

		t.Run("UnwritablePath", func(t *testing.T) {
			if _, err := WriteCSVExport(testExport(), filepath.Join(t.TempDir(), "missing", "x")); err == nil {
				t.Error("expected error writing into a missing directory")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("img"))
		}))
		defer server.Close()

		dir := filepath.Join(t.TempDir(), "md")
		result, err := WriteMarkdownExport(testExport(), dir, server.URL+"/art.jpg")
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		th.AssertDirExists(t, dir)
		th.AssertFileExists(t, filepath.Join(dir, "README.md"))
		th.AssertFileExists(t, filepath.Join(dir, "cover.jpg"))
		if len(result.Files) != 2 {
			t.Errorf("expected 2 files, got %v", result.Files)
		}
		if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
			t.Error("README should reference the cover")
		}
	})

	t.Run("WriteMarkdownExport Without Cover", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "md")
		result, err := WriteMarkdownExport(testExport(), dir, "http://127.0.0.1:1/none.jpg")
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if result.CoverImage != "" || len(result.Files) != 1 {
			t.Errorf("failed download should only skip the cover, got %+v", result)
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		tests := []struct {
			format string
			files  int
		}{
			{"csv", 2},
			{"txt", 1},
			{"json", 1},
			{"markdown", 1},
		}

		for _, tt := range tests {
			t.Run(tt.format, func(t *testing.T) {
				export := testExport()
				export.Songs[0].AlbumArtURL = ""
				files, err := WriteExport(export, tt.format, t.TempDir())
				if err != nil {
					t.Fatalf("WriteExport failed: %v", err)
				}
				if len(files) != tt.files {
					t.Errorf("expected %d files, got %v", tt.files, files)
				}
				for _, f := range files {
					th.AssertFileExists(t, f)
				}
			})
		}

		if _, err := WriteExport(testExport(), "xml", t.TempDir()); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("WriteBulkExportManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export_manifest.json")
		result := &models.BulkExportResult{
			TotalPlaylists:    2,
			SuccessfulExports: 1,
			FailedExports:     1,
			OutputDirectory:   "out",
			Results: []models.PlaylistExportResult{
				{PlaylistID: 1, PlaylistName: "One", Success: true, Files: []string{"out/1-one.json"}},
				{PlaylistID: 2, PlaylistName: "Two", Error: errors.New("boom")},
			},
		}

		if err := WriteBulkExportManifest(result, "json", path); err != nil {
			t.Fatalf("WriteBulkExportManifest failed: %v", err)
		}

		content := th.MustReadFile(t, path)
		for _, want := range []string{`"format": "json"`, `"failedExports": 1`, `"error": "boom"`, `"playlistName": "One"`} {
			if !strings.Contains(content, want) {
				t.Errorf("manifest missing %s, got:\n%s", want, content)
			}
		}

		if err := WriteBulkExportManifest(nil, "json", path); err == nil {
			t.Error("expected error for nil result")
		}
	})
}

func TestTables(t *testing.T) {
	t.Run("SongTable", func(t *testing.T) {
		out := SongTable(testExport().Songs)
		for _, want := range []string{"Title", "Song One", "Artist Two", "3:00", "yes"} {
			if !strings.Contains(out, want) {
				t.Errorf("song table missing %q:\n%s", want, out)
			}
		}
		if SongTable(nil) != "No songs found.\n" {
			t.Error("empty song table should say so")
		}
	})

	t.Run("RecommendationTable", func(t *testing.T) {
		trending := RecommendationTable([]models.Recommendation{{Song: models.Song{Title: "Hit", Artist: "Star"}, Rank: 1, Plays: 99}})
		if !strings.Contains(trending, "Plays") || !strings.Contains(trending, "99") {
			t.Errorf("trending table should show plays:\n%s", trending)
		}
		if strings.Contains(trending, "Why") {
			t.Errorf("trending table should not show reasons:\n%s", trending)
		}

		personal := RecommendationTable([]models.Recommendation{{Song: models.Song{ID: 3, Title: "Deep Cut"}, Reason: "Because you like Rock"}})
		if !strings.Contains(personal, "Because you like Rock") {
			t.Errorf("personal table should show reasons:\n%s", personal)
		}
	})

	t.Run("PlaylistTable", func(t *testing.T) {
		out := PlaylistTable([]models.Playlist{{ID: 1, Name: "Mix", SongCount: 4, Public: false}})
		if !strings.Contains(out, "Mix") || !strings.Contains(out, "Private") {
			t.Errorf("playlist table incomplete:\n%s", out)
		}
	})

	t.Run("HistoryTable", func(t *testing.T) {
		played := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
		out := HistoryTable([]models.HistoryEntry{{Song: models.Song{Title: "Yellow", Artist: "Coldplay"}, PlayedAt: played}})
		if !strings.Contains(out, "Yellow") || !strings.Contains(out, "2025-01-02 03:04:05") {
			t.Errorf("history table incomplete:\n%s", out)
		}
	})

	t.Run("AdminStatsTable", func(t *testing.T) {
		out := AdminStatsTable(models.AdminStats{
			TotalUsers:   3,
			TotalSongs:   10,
			RecentUsers:  []models.User{{ID: 1, Username: "ada", Role: "ADMIN"}},
			PopularSongs: []models.Song{{ID: 5, Title: "Hit", PlayCount: 50}},
		})
		for _, want := range []string{"Users", "10", "ada", "Popular songs", "Hit"} {
			if !strings.Contains(out, want) {
				t.Errorf("admin stats missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("ShareDetails", func(t *testing.T) {
		out := ShareDetails(models.ShareInfo{ID: 1, Name: "Mix", Shareable: true, IsPublic: true, ShareURL: "http://x/playlist/1"})
		if !strings.Contains(out, "http://x/playlist/1") {
			t.Errorf("share details missing URL:\n%s", out)
		}
		private := ShareDetails(models.ShareInfo{ID: 1, Name: "Mix"})
		if !strings.Contains(private, "Not shareable") {
			t.Errorf("private playlist should not show a URL:\n%s", private)
		}
	})

	t.Run("SongDetails", func(t *testing.T) {
		out := SongDetails(models.Song{ID: 1, Title: "Yellow", Artist: "Coldplay", ReleaseYear: 2000})
		if !strings.Contains(out, "Yellow - Coldplay") || !strings.Contains(out, "2000") || strings.Contains(out, "Album:") {
			t.Errorf("unexpected song details:\n%s", out)
		}
	})

	t.Run("SongDetails with a YouTube audio link", func(t *testing.T) {
		out := SongDetails(models.Song{ID: 2, Title: "Creep", Artist: "Radiohead", AudioURL: "https://www.youtube.com/watch?v=XFkzRNyygfk"})
		if !strings.Contains(out, "https://youtu.be/XFkzRNyygfk") {
			t.Errorf("expected short YouTube link:\n%s", out)
		}
	})
}
