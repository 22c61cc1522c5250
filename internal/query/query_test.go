package query

import (
	"reflect"
	"testing"
	"time"

	"github.com/hitoshi/newsdeck/internal/model"
)

// makeArticles はテスト用の記事リストを生成するヘルパー。
func makeArticles() []model.Article {
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t3 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	return []model.Article{
		{Title: "Go 1.25 Released", URL: "https://example.com/go", Points: 500, PublishedAt: &t1, Score: 280.0},
		{Title: "Rust async deep dive", URL: "https://example.com/rust", Points: 120, PublishedAt: &t2, Score: 250.0},
		{Title: "Why Python is slow", URL: "https://example.com/python", Points: 900, PublishedAt: &t3, Score: 310.0},
		{Title: "New JavaScript framework", URL: "https://example.com/js", Points: 30, PublishedAt: nil, Score: 148.0},
	}
}

// titles は記事リストからタイトルだけを抽出するヘルパー。
func titles(articles []model.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}

// TestFilter_EmptyFiltersPassThrough は空のフィルタが全件を元の順序で素通しすることを確認する。
func TestFilter_EmptyFiltersPassThrough(t *testing.T) {
	articles := makeArticles()

	got := Filter(articles, "", "", "")

	if !reflect.DeepEqual(titles(got), titles(articles)) {
		t.Errorf("Filter(empty) = %v, want original order %v", titles(got), titles(articles))
	}
}

// TestFilter_SearchCaseInsensitive はタイトル検索が大文字小文字を区別しないことを確認する。
func TestFilter_SearchCaseInsensitive(t *testing.T) {
	articles := makeArticles()

	got := Filter(articles, "PYTHON", "", "")

	if len(got) != 1 || got[0].Title != "Why Python is slow" {
		t.Errorf("Filter(search=PYTHON) = %v, want [Why Python is slow]", titles(got))
	}
}

// TestFilter_IncludeAnyMatch はincludeキーワードのいずれか1つに一致すれば通過することを確認する。
func TestFilter_IncludeAnyMatch(t *testing.T) {
	articles := makeArticles()

	got := Filter(articles, "", "go, rust", "")

	want := []string{"Go 1.25 Released", "Rust async deep dive"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("Filter(include=go,rust) = %v, want %v", titles(got), want)
	}
}

// TestFilter_ExcludeRemovesMatches はexcludeキーワードに一致する記事が除外されることを確認する。
func TestFilter_ExcludeRemovesMatches(t *testing.T) {
	articles := makeArticles()

	got := Filter(articles, "", "", "python,javascript")

	want := []string{"Go 1.25 Released", "Rust async deep dive"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("Filter(exclude=python,javascript) = %v, want %v", titles(got), want)
	}
}

// TestFilter_WhitespaceOnlyKeywordsPassThrough は空白のみのキーワードリストが全件拒否にならないことを確認する。
func TestFilter_WhitespaceOnlyKeywordsPassThrough(t *testing.T) {
	articles := makeArticles()

	got := Filter(articles, "", " , , ", " ")

	if len(got) != len(articles) {
		t.Errorf("Filter(whitespace keywords) returned %d articles, want %d (pass through)", len(got), len(articles))
	}
}

// TestFilter_ExcludeWinsOverInclude は同じキーワードがincludeとexcludeの両方にある場合、除外が優先されることを確認する。
func TestFilter_ExcludeWinsOverInclude(t *testing.T) {
	articles := makeArticles()

	got := Filter(articles, "", "go", "go")

	if len(got) != 0 {
		t.Errorf("Filter(include=go, exclude=go) = %v, want empty", titles(got))
	}
}

// TestSort_ByScore はスコア降順のソートを確認する。
func TestSort_ByScore(t *testing.T) {
	articles := makeArticles()

	got := Sort(articles, model.SortByScore)

	want := []string{"Why Python is slow", "Go 1.25 Released", "Rust async deep dive", "New JavaScript framework"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("Sort(score) = %v, want %v", titles(got), want)
	}
}

// TestSort_ByPoints はポイント降順のソートを確認する。
func TestSort_ByPoints(t *testing.T) {
	articles := makeArticles()

	got := Sort(articles, model.SortByPoints)

	want := []string{"Why Python is slow", "Go 1.25 Released", "Rust async deep dive", "New JavaScript framework"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("Sort(points) = %v, want %v", titles(got), want)
	}
}

// TestSort_ByNewest_NilPublishedLast は日時不明の記事が新着順ソートで末尾に来ることを確認する。
func TestSort_ByNewest_NilPublishedLast(t *testing.T) {
	articles := makeArticles()

	got := Sort(articles, model.SortByNewest)

	want := []string{"Go 1.25 Released", "Rust async deep dive", "Why Python is slow", "New JavaScript framework"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("Sort(newest) = %v, want %v", titles(got), want)
	}
}

// TestSort_Stable は同値キーの記事が入力順を維持することを確認する。
func TestSort_Stable(t *testing.T) {
	articles := []model.Article{
		{Title: "first", Score: 100.0},
		{Title: "second", Score: 100.0},
		{Title: "third", Score: 100.0},
	}

	got := Sort(articles, model.SortByScore)

	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("Sort(equal scores) = %v, want input order %v", titles(got), want)
	}
}

// TestSort_DoesNotMutateInput はソートが入力スライスを変更しないことを確認する。
func TestSort_DoesNotMutateInput(t *testing.T) {
	articles := makeArticles()
	original := titles(articles)

	Sort(articles, model.SortByPoints)

	if !reflect.DeepEqual(titles(articles), original) {
		t.Errorf("input mutated: %v, want %v", titles(articles), original)
	}
}

// TestPaginate_ConsecutivePagesCoverAll は連続するページを連結すると元のリストと一致することを確認する。
func TestPaginate_ConsecutivePagesCoverAll(t *testing.T) {
	articles := makeArticles()

	var joined []model.Article
	for page := 1; page <= 2; page++ {
		joined = append(joined, Paginate(articles, 2, page)...)
	}

	if !reflect.DeepEqual(titles(joined), titles(articles)) {
		t.Errorf("concatenated pages = %v, want %v", titles(joined), titles(articles))
	}
}

// TestPaginate_OutOfRangePage は範囲外のページ番号が空スライスを返すことを確認する。
func TestPaginate_OutOfRangePage(t *testing.T) {
	articles := makeArticles()

	got := Paginate(articles, 10, 5)

	if len(got) != 0 {
		t.Errorf("Paginate(page=5) = %v, want empty", titles(got))
	}
}

// TestPaginate_LastPartialPage は最終ページが端数の件数を返すことを確認する。
func TestPaginate_LastPartialPage(t *testing.T) {
	articles := makeArticles()

	got := Paginate(articles, 3, 2)

	if len(got) != 1 {
		t.Errorf("Paginate(pageSize=3, page=2) returned %d articles, want 1", len(got))
	}
}

// TestPaginate_InvalidValuesDegrade は不正なページ指定がデフォルト値として扱われることを確認する。
func TestPaginate_InvalidValuesDegrade(t *testing.T) {
	articles := makeArticles()

	got := Paginate(articles, 0, 0)

	if len(got) != 1 || got[0].Title != articles[0].Title {
		t.Errorf("Paginate(0, 0) = %v, want first article only", titles(got))
	}
}

// TestApply_FullPipeline はフィルタ→ソート→ページネーションの固定順適用とTotal件数を確認する。
func TestApply_FullPipeline(t *testing.T) {
	articles := makeArticles()

	got := Apply(articles, Options{
		ExcludeKeywords: "javascript",
		Sort:            model.SortByPoints,
		PageSize:        2,
		Page:            1,
	})

	if got.Total != 3 {
		t.Errorf("Total = %d, want 3 (filtered count, not page count)", got.Total)
	}
	want := []string{"Why Python is slow", "Go 1.25 Released"}
	if !reflect.DeepEqual(titles(got.Items), want) {
		t.Errorf("Items = %v, want %v", titles(got.Items), want)
	}
}

// TestApply_EmptyInput は空の入力が空の結果を返すことを確認する。
func TestApply_EmptyInput(t *testing.T) {
	got := Apply(nil, Options{PageSize: 10, Page: 1})

	if got.Total != 0 || len(got.Items) != 0 {
		t.Errorf("Apply(nil) = {Total: %d, Items: %d}, want empty", got.Total, len(got.Items))
	}
}
