package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "ass override", input: `{\pos(10,20)}こんにちは`, want: "こんにちは"},
		{name: "line breaks", input: `今日は\N天気が\nいい`, want: "今日は 天気が いい"},
		{name: "html tags", input: "<i>勉強</i>する", want: "勉強する"},
		{name: "whitespace", input: "  a \t b\n\nc  ", want: "a b c"},
		{name: "ideographic space", input: "今日　は", want: "今日 は"},
		{name: "only markup", input: `{\an8}<b></b>`, want: ""},
		{name: "empty", input: "", want: ""},
		{name: "escape formed by tag removal", input: `a\<i>Nb`, want: "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		`{\fad(100,200)}<font color="red">彼は</font>\N走った`,
		`\<b>N\<i>n`,
		`{{a}b}c`,
		"<<x>y>",
		"  \t ",
		`\\N`,
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNaturalSort(t *testing.T) {
	items := []string{"f10", "f2", "f1"}
	SortNaturalStrings(items)
	assert.Equal(t, []string{"f1", "f2", "f10"}, items)

	files := []string{"ep10.mp4", "ep2.mp4", "ep1.mp4"}
	SortNaturalStrings(files)
	assert.Equal(t, []string{"ep1.mp4", "ep2.mp4", "ep10.mp4"}, files)
}

func TestNaturalKey_Compare(t *testing.T) {
	assert.True(t, NaturalLess("Ep2", "ep10"))
	assert.True(t, NaturalLess("a", "a1"))
	assert.True(t, NaturalLess("10", "a"))
	assert.False(t, NaturalLess("ep01", "ep1"))
	assert.False(t, NaturalLess("ep1", "ep01"))
	assert.Equal(t, 0, NaturalKey("EP1").Compare(NaturalKey("ep1")))
	assert.True(t, NaturalLess("第２話", "第10話"))
	assert.True(t, NaturalLess("x99999999999999999999998", "x99999999999999999999999"))
}

func TestSortNatural_Stable(t *testing.T) {
	type file struct {
		name string
		id   int
	}
	items := []file{{"b2", 1}, {"B2", 2}, {"b1", 3}}
	SortNatural(items, func(f file) string { return f.name })
	assert.Equal(t, []int{3, 1, 2}, []int{items[0].id, items[1].id, items[2].id})
}

func TestKana(t *testing.T) {
	assert.Equal(t, "おうこく", KatakanaToHiragana("オウコク"))
	assert.Equal(t, "ゔぁー", KatakanaToHiragana("ヴァー"))
	assert.Equal(t, "abc漢字", KatakanaToHiragana("abc漢字"))

	assert.True(t, HasKanji("勉強する"))
	assert.False(t, HasKanji("べんきょう"))
	assert.Equal(t, 2, CountKanji("勉強する"))

	assert.True(t, IsKatakanaOnly("ドキドキ"))
	assert.True(t, IsKatakanaOnly("コーヒー・ブレイク"))
	assert.False(t, IsKatakanaOnly("ドキドキする"))

	assert.True(t, IsJapanese("hello 世界"))
	assert.False(t, IsJapanese("hello world"))
}
