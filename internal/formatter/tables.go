package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

const maxCell = 40

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCell {
		return s
	}
	return string(r[:maxCell-1]) + "…"
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

// SongTable renders songs with their id, title, artist, album, duration and play count.
func SongTable(songs []models.Song) string {
	if len(songs) == 0 {
		return "No songs found.\n"
	}

	t := newTable("ID", "Title", "Artist", "Album", "Length", "Plays", "Audio")
	for _, s := range songs {
		audio := "-"
		if s.Playable() {
			audio = "yes"
		}
		t.Row(id(s.ID), truncate(s.Title), truncate(s.Artist), truncate(s.Album),
			shared.FormatDuration(s.Length()), strconv.Itoa(s.PlayCount), audio)
	}
	return t.String() + "\n"
}

// SongDetails renders every field of one song.
func SongDetails(s models.Song) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Label())
	for _, kv := range [][2]string{
		{"ID", id(s.ID)},
		{"Album", s.Album},
		{"Genre", s.Genre},
		{"Length", shared.FormatDuration(s.Length())},
		{"Released", yearString(s.ReleaseYear)},
		{"Plays", strconv.Itoa(s.PlayCount)},
		{"Likes", strconv.Itoa(s.LikeCount)},
		{"Source", s.Source},
		{"YouTube", youtubeLink(s.AudioURL)},
		{"Audio", s.AudioURL},
		{"Artwork", s.AlbumArtURL},
		{"Uploaded", s.UploadedAt},
	} {
		if kv[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "  %-9s %s\n", kv[0]+":", kv[1])
	}
	return b.String()
}

func youtubeLink(url string) string {
	if id := shared.YouTubeID(url); id != "" {
		return "https://youtu.be/" + id
	}
	return ""
}

func yearString(y int) string {
	if y <= 0 {
		return ""
	}
	return strconv.Itoa(y)
}

// RecommendationTable renders recommendations. Rank, plays and reason columns appear when any entry has them.
func RecommendationTable(recs []models.Recommendation) string {
	if len(recs) == 0 {
		return "No recommendations.\n"
	}

	var ranked, reasons bool
	for _, r := range recs {
		ranked = ranked || r.Rank > 0
		reasons = reasons || r.Reason != ""
	}

	headers := []string{"ID", "Title", "Artist"}
	if ranked {
		headers = append([]string{"#"}, append(headers, "Plays")...)
	}
	if reasons {
		headers = append(headers, "Why")
	}

	t := newTable(headers...)
	for _, r := range recs {
		row := []string{id(r.ID), truncate(r.Title), truncate(r.Artist)}
		if ranked {
			row = append([]string{strconv.Itoa(r.Rank)}, append(row, strconv.FormatInt(r.Plays, 10))...)
		}
		if reasons {
			row = append(row, truncate(r.Reason))
		}
		t.Row(row...)
	}
	return t.String() + "\n"
}

// PlaylistTable renders playlists with their id, name, song count and visibility.
func PlaylistTable(playlists []models.Playlist) string {
	if len(playlists) == 0 {
		return "No playlists found.\n"
	}

	t := newTable("ID", "Name", "Songs", "Visibility", "Owner")
	for _, p := range playlists {
		t.Row(id(p.ID), truncate(p.Name), strconv.Itoa(p.Count()), shared.VisibilityString(p.Public), p.Username)
	}
	return t.String() + "\n"
}

// PlaylistDetails renders a playlist header followed by its songs.
func PlaylistDetails(p models.Playlist) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d, %s, %d songs)\n", p.Name, p.ID, shared.VisibilityString(p.Public), p.Count())
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n", p.Description)
	}
	b.WriteString("\n")
	b.WriteString(SongTable(p.Songs))
	return b.String()
}

// ShareDetails renders the share information of a playlist.
func ShareDetails(info models.ShareInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", info.Name, info.ID)
	fmt.Fprintf(&b, "  Visibility: %s\n", shared.VisibilityString(info.IsPublic))
	fmt.Fprintf(&b, "  Songs:      %d\n", info.SongCount)
	if info.CreatedBy != "" {
		fmt.Fprintf(&b, "  Created by: %s\n", info.CreatedBy)
	}
	if info.Shareable {
		fmt.Fprintf(&b, "  Share URL:  %s\n", info.ShareURL)
	} else {
		b.WriteString("  Not shareable; make the playlist public first.\n")
	}
	return b.String()
}

// HistoryTable renders play history, most recent first.
func HistoryTable(entries []models.HistoryEntry) string {
	if len(entries) == 0 {
		return "No listening history yet.\n"
	}

	t := newTable("#", "Title", "Artist", "Played")
	for i, e := range entries {
		t.Row(strconv.Itoa(i+1), truncate(e.Song.Title), truncate(e.Song.Artist), e.PlayedAt.Local().Format(time.DateTime))
	}
	return t.String() + "\n"
}

// AdminStatsTable renders the admin dashboard: totals, recent users and popular songs.
func AdminStatsTable(stats models.AdminStats) string {
	var b strings.Builder

	totals := newTable("Users", "Songs", "Playlists").
		Row(strconv.FormatInt(stats.TotalUsers, 10), strconv.FormatInt(stats.TotalSongs, 10), strconv.FormatInt(stats.TotalPlaylists, 10))
	b.WriteString(totals.String() + "\n\n")

	b.WriteString("Recent users\n")
	if len(stats.RecentUsers) == 0 {
		b.WriteString("  none\n")
	} else {
		users := newTable("ID", "Username", "Email", "Role", "Joined")
		for _, u := range stats.RecentUsers {
			users.Row(id(u.ID), u.Username, u.Email, u.Role, u.CreatedAt)
		}
		b.WriteString(users.String() + "\n")
	}

	b.WriteString("\nPopular songs\n")
	if len(stats.PopularSongs) == 0 {
		b.WriteString("  none\n")
	} else {
		b.WriteString(SongTable(stats.PopularSongs))
	}
	return b.String()
}

// AppStatsTable renders the public catalogue totals.
func AppStatsTable(stats models.AppStats) string {
	return newTable("Users", "Songs", "Playlists").
		Row(strconv.FormatInt(stats.TotalUsers, 10), strconv.FormatInt(stats.TotalSongs, 10), strconv.FormatInt(stats.TotalPlaylists, 10)).
		String() + "\n"
}

// UserDetails renders an account.
func UserDetails(u models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", u.Username, u.ID)
	if u.FullName != "" {
		fmt.Fprintf(&b, "  Name:  %s\n", u.FullName)
	}
	if u.Email != "" {
		fmt.Fprintf(&b, "  Email: %s\n", u.Email)
	}
	if u.Role != "" {
		fmt.Fprintf(&b, "  Role:  %s\n", u.Role)
	}
	return b.String()
}
