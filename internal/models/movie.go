package models

import "math"

// Movie is a catalog item as handed to the favorites and continue-watching managers.
//
// Two shapes arrive here: curated catalog items with Image already resolved, and TMDB
// results that only carry BackdropPath/PosterPath fragments. Every field may be empty.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Image        string  `json:"image,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	Match        int     `json:"match,omitempty"`
	Year         string  `json:"year,omitempty"`
	Rating       string  `json:"rating,omitempty"`
	Duration     string  `json:"duration,omitempty"`
}

// ResolvedImage returns the first non-empty of Image, BackdropPath and PosterPath.
func (m Movie) ResolvedImage() string {
	switch {
	case m.Image != "":
		return m.Image
	case m.BackdropPath != "":
		return m.BackdropPath
	default:
		return m.PosterPath
	}
}

// MatchPercent returns Match, or the vote average scaled to a rounded percentage.
func (m Movie) MatchPercent() int {
	if m.Match != 0 {
		return m.Match
	}
	return int(math.Round(m.VoteAverage * 10))
}

// ReleaseYear returns Year, or the year prefix of ReleaseDate.
func (m Movie) ReleaseYear() string {
	if m.Year != "" {
		return m.Year
	}
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// Normalized returns a copy with Image, Match and Year filled in.
func (m Movie) Normalized() Movie {
	m.Image = m.ResolvedImage()
	m.Match = m.MatchPercent()
	m.Year = m.ReleaseYear()
	return m
}
