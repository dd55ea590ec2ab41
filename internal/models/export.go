package models

import "time"

// PlaylistExport is a playlist with its songs, as written to export files.
type PlaylistExport struct {
	Playlist   Playlist  `json:"playlist"`
	Songs      []Song    `json:"songs"`
	ExportedAt time.Time `json:"exportedAt"`
}

// PlaylistExportResult reports the export of one playlist.
type PlaylistExportResult struct {
	PlaylistID   int64    `json:"playlistId"`
	PlaylistName string   `json:"playlistName"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
}

// BulkExportResult summarizes an export of several playlists.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"totalPlaylists"`
	SuccessfulExports int                    `json:"successfulExports"`
	FailedExports     int                    `json:"failedExports"`
	OutputDirectory   string                 `json:"outputDirectory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}
