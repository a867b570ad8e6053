package aptnotice_test

import (
	"testing"

	"github.com/fwojciec/aptnotice"
	"github.com/stretchr/testify/assert"
)

func TestTransformer_PromoteTitles(t *testing.T) {
	t.Parallel()

	tr := aptnotice.NewTransformer()

	t.Run("prefixes known titles by level", func(t *testing.T) {
		t.Parallel()

		got := tr.PromoteTitles("공통 유의사항\n내용\n신혼부부 특별공급\n자격")

		assert.Equal(t, "# 공통 유의사항\n내용\n## 신혼부부 특별공급\n자격", got)
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		text := "당첨자 및 예비입주자 계약 체결 안내\n생애최초 특별공급 대상\n※ 단지 주요정보"

		once := tr.PromoteTitles(text)
		twice := tr.PromoteTitles(once)

		assert.Equal(t, once, twice)
		assert.Equal(t, "# 당첨자 및 예비입주자 계약 체결 안내\n## 생애최초 특별공급 대상\n# ※ 단지 주요정보", once)
	})

	t.Run("marks only the first occurrence", func(t *testing.T) {
		t.Parallel()

		got := tr.PromoteTitles("단지 유의사항\n단지 유의사항을 확인하세요")

		assert.Equal(t, "# 단지 유의사항\n단지 유의사항을 확인하세요", got)
	})

	t.Run("leaves text without titles unchanged", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "입주 예정일 2027년 3월", tr.PromoteTitles("입주 예정일 2027년 3월"))
	})
}

func TestStripPageNumbers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "본문  끝", aptnotice.StripPageNumbers("본문 - 12 - 끝"))
	assert.Equal(t, "ab", aptnotice.StripPageNumbers("a-3-b"))
	assert.Equal(t, "2027-03-01", aptnotice.StripPageNumbers("2027-03-01"))
}

func TestTransformer_Render(t *testing.T) {
	t.Parallel()

	t.Run("renders text and tables in block order", func(t *testing.T) {
		t.Parallel()

		blocks := []*aptnotice.ContentBlock{
			{Kind: aptnotice.BlockText, Page: 1, Text: "공급대상 및 공급금액\n- 1 -"},
			{Kind: aptnotice.BlockTable, Page: 1, Table: aptnotice.RawTable{
				{s("주택형"), s("세대수")},
				{s("84A"), s("120")},
			}},
			{Kind: aptnotice.BlockText, Page: 1, Text: "끝"},
		}

		parts := aptnotice.NewTransformer().Render(blocks)

		assert.Equal(t, []string{
			"# 공급대상 및 공급금액",
			"| 주택형 | 세대수 |\n|---|---|\n| 84A | 120 |",
			"끝",
		}, parts)
	})

	t.Run("drops rejected tables and blank text", func(t *testing.T) {
		t.Parallel()

		blocks := []*aptnotice.ContentBlock{
			{Kind: aptnotice.BlockText, Text: "  - 2 -  "},
			{Kind: aptnotice.BlockTable, Table: aptnotice.RawTable{
				{s(""), s(""), s("")},
				{s("1"), s("2"), s("3")},
				{s(""), s(""), s("")},
			}},
			{Kind: aptnotice.BlockTable, Table: aptnotice.RawTable{
				{s("단일")},
				{s("열")},
			}},
		}

		parts := aptnotice.NewTransformer().Render(blocks)

		assert.Empty(t, parts)
	})
}

func TestJoinMarkdown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a\n\nb", aptnotice.JoinMarkdown([]string{"a", "b"}))
	assert.Empty(t, aptnotice.JoinMarkdown(nil))
}
