// Package score は記事の合成スコア計算を提供する。
//
// 合成スコアは鮮度（指数減衰）と人気度（対数スケール）の和で、
// 新着性とバイラル性のどちらか一方が支配的にならないよう設計されている。
// すべての関数は純粋関数であり、有限かつ非負の値のみを返す。
package score

import (
	"math"
	"time"
)

const (
	// recencyPeak は公開直後の記事に与える鮮度スコアの最大値。
	recencyPeak = 100.0
	// decayHours は鮮度スコアが1/eになるまでの時間（時間単位）。
	decayHours = 24.0
	// popularityScale は対数人気度スコアの倍率。
	popularityScale = 100.0
)

// Recency は公開日時に基づく鮮度スコアを返す。
// 公開直後で100、24時間ごとに1/eに減衰する。
// 公開日時が不明（nil）の場合は0を返す。
// 経過時間はUTCに正規化した上でnow基準で計算する。
func Recency(publishedAt *time.Time, now time.Time) float64 {
	if publishedAt == nil {
		return 0.0
	}
	ageHours := now.UTC().Sub(publishedAt.UTC()).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return recencyPeak * math.Exp(-ageHours/decayHours)
}

// Popularity はポイント数に基づく人気度スコアを返す。
// log10(max(points, 1)) * 100 で、0以下のポイントでは0になる。
// 対数スケールにより巨大スレッドが恒久的に上位を占めることを防ぐ。
func Popularity(points int) float64 {
	if points < 1 {
		return 0.0
	}
	return popularityScale * math.Log10(float64(points))
}

// Composite は鮮度スコアと人気度スコアの和を返す。
// スコアは採点時点のnowに依存するため、同じ記事でも呼び出しごとに変動する。
func Composite(publishedAt *time.Time, points int, now time.Time) float64 {
	return Recency(publishedAt, now) + Popularity(points)
}
