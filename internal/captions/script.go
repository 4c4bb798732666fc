package captions

import "unicode"

// Script is a writing-system family that needs a dedicated font.
type Script string

const (
	Latin     Script = "latin"
	Malayalam Script = "malayalam"
	Hindi     Script = "hindi"
	Arabic    Script = "arabic"
	Chinese   Script = "chinese"
	Japanese  Script = "japanese"
	Korean    Script = "korean"
)

// Порядок важен: при смешанном тексте побеждает первый найденный.
var scriptRanges = []struct {
	script Script
	table  *unicode.RangeTable
}{
	{Malayalam, rangeTable(0x0D00, 0x0D7F)},
	{Hindi, rangeTable(0x0900, 0x097F)},
	{Arabic, rangeTable(0x0600, 0x06FF)},
	{Chinese, rangeTable(0x3400, 0x4DBF, 0x4E00, 0x9FFF)},
	{Japanese, rangeTable(0x3040, 0x309F, 0x30A0, 0x30FF)},
	{Korean, rangeTable(0xAC00, 0xD7AF)},
}

func rangeTable(bounds ...uint16) *unicode.RangeTable {
	t := &unicode.RangeTable{}
	for i := 0; i+1 < len(bounds); i += 2 {
		t.R16 = append(t.R16, unicode.Range16{Lo: bounds[i], Hi: bounds[i+1], Stride: 1})
	}
	return t
}

// Classify returns the highest-precedence script present in text, or Latin.
func Classify(text string) Script {
	present := make([]bool, len(scriptRanges))
	for _, r := range text {
		for i, sr := range scriptRanges {
			if !present[i] && unicode.Is(sr.table, r) {
				present[i] = true
			}
		}
	}
	for i, ok := range present {
		if ok {
			return scriptRanges[i].script
		}
	}
	return Latin
}

// sampleRune is a character every font for the script must cover.
func (s Script) sampleRune() rune {
	switch s {
	case Malayalam:
		return 'അ'
	case Hindi:
		return 'अ'
	case Arabic:
		return 'ا'
	case Chinese:
		return '中'
	case Japanese:
		return 'あ'
	case Korean:
		return '한'
	default:
		return 'A'
	}
}
