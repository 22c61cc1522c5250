// Package export は記事リストのCSV/JSONシリアライズを提供する。
//
// パイプライン出力の消費者であり、パイプライン自体には関与しない。
// published_atはISO-8601（RFC3339）またはnull/空欄として出力する。
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/hitoshi/newsdeck/internal/model"
)

// FavoriteChecker はエクスポート行のfavorite列を解決するインターフェース。
type FavoriteChecker interface {
	Contains(sessionID string, url string) bool
}

// csvHeader はCSV出力の列順。
var csvHeader = []string{
	"title", "url", "source", "category",
	"points", "comments", "author", "published_at", "score", "favorite",
}

// WriteCSV は記事リストをヘッダー行付きのCSVとして書き込む。
// checkerがnilの場合はfavorite列を常にfalseにする。
func WriteCSV(w io.Writer, articles []model.Article, checker FavoriteChecker, sessionID string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, a := range articles {
		published := ""
		if a.PublishedAt != nil {
			published = a.PublishedAt.UTC().Format(time.RFC3339)
		}

		favorite := false
		if checker != nil {
			favorite = checker.Contains(sessionID, a.URL)
		}

		record := []string{
			a.Title,
			a.URL,
			a.Source,
			a.Category,
			strconv.Itoa(a.Points),
			strconv.Itoa(a.Comments),
			a.Author,
			published,
			strconv.FormatFloat(round2(a.Score), 'f', 2, 64),
			strconv.FormatBool(favorite),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// jsonRow はJSONエクスポートの1行分。
type jsonRow struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	Category    string  `json:"category"`
	Points      int     `json:"points"`
	Comments    int     `json:"comments"`
	Author      string  `json:"author"`
	PublishedAt *string `json:"published_at"` // ISO-8601またはnull
	Score       float64 `json:"score"`
	Favorite    bool    `json:"favorite"`
}

// WriteJSON は記事リストをJSON配列として書き込む。
// checkerがnilの場合はfavorite列を常にfalseにする。
func WriteJSON(w io.Writer, articles []model.Article, checker FavoriteChecker, sessionID string) error {
	rows := make([]jsonRow, 0, len(articles))
	for _, a := range articles {
		var published *string
		if a.PublishedAt != nil {
			s := a.PublishedAt.UTC().Format(time.RFC3339)
			published = &s
		}

		favorite := false
		if checker != nil {
			favorite = checker.Contains(sessionID, a.URL)
		}

		rows = append(rows, jsonRow{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source,
			Category:    a.Category,
			Points:      a.Points,
			Comments:    a.Comments,
			Author:      a.Author,
			PublishedAt: published,
			Score:       round2(a.Score),
			Favorite:    favorite,
		})
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// round2 はスコアを小数第2位に丸める。
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
