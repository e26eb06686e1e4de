package b24

// Character-table resolution: turns a decoded GenericChar into the rune(s)
// it represents. Two-byte planes (kanji, JIS kanji planes 1/2, extra
// symbols) are resolved the way the teacher's decoder does it — by feeding
// the high-bit-set byte pair through golang.org/x/text/encoding/japanese's
// EUC-JP transform and falling back to a gaiji lookup table when the
// transform can't map the pair (U+FFFD). One-byte planes (alnum/kana) use
// the direct JIS X 0201/0208 row offsets, since they don't need EUC-JP at
// all.
//
// almost copied from https://github.com/eagletmt/eagletmt-recutils/blob/master/assdumper/assdumper.go
// with slight modification
/*
Copyright (c) 2014 Kohei Suzuki

MIT License

Permission is hereby granted, free of charge, to any person obtaining
a copy of this software and associated documentation files (the
"Software"), to deal in the Software without restriction, including
without limitation the rights to use, copy, modify, merge, publish,
distribute, sublicense, and/or sell copies of the Software, and to
permit persons to whom the Software is furnished to do so, subject to
the following conditions:

The above copyright notice and this permission notice shall be
included in all copies or substantial portions of the Software.
*/

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// DecodeRune resolves a GenericChar to its printable text. Two-byte planes
// go through EUC-JP + gaiji fallback; one-byte kana/alnum planes are
// resolved algorithmically.
func DecodeRune(g GenericChar) string {
	switch g.Set {
	case SetAlnum, SetPropAlnum:
		// JIS X 0201 roman: mostly ASCII, with a couple of yen/overline
		// substitutions the broadcast profile never actually emits.
		return string(rune(g.C1.Get()))
	case SetHira, SetPropHira:
		return decodeKana(g.C1.Get(), 0x3041-0x21)
	case SetKata, SetPropKata:
		return decodeKana(g.C1.Get(), 0x30A1-0x21)
	case SetJisXKata:
		return decodeJisXKatakana(g.C1.Get())
	case SetKanji, SetJisKanjiPlane1, SetJisKanjiPlane2, SetExtraSymbols:
		return decodeTwoByte(g.C1.Get(), g.C2.Get())
	default:
		return fmt.Sprintf("{unk 0x%02x}", g.C1.Get())
	}
}

func decodeKana(c1 uint8, base rune) string {
	if c1 < 0x21 || c1 > 0x7E {
		return ""
	}
	return string(base + rune(c1) - 0x21)
}

// decodeJisXKatakana maps JIS X 0201 half-width katakana (0x21..0x5F within
// the graphic region) to the Unicode halfwidth katakana forms (U+FF61..U+FF9F).
func decodeJisXKatakana(c1 uint8) string {
	if c1 < 0x21 || c1 > 0x5F {
		return ""
	}
	return string(rune(0xFF61 + rune(c1) - 0x21))
}

var eucjpDecoder = japanese.EUCJP.NewDecoder()

func decodeTwoByte(c1, c2 uint8) string {
	eucjp := []byte{c1 | 0x80, c2 | 0x80, 0}
	buf := make([]byte, 10)
	ndst, nsrc, err := eucjpDecoder.Transform(buf, eucjp, true)
	if err != nil || nsrc != 3 {
		return gaijiLookup(int(c1&0x7F)<<8 | int(c2&0x7F))
	}
	r, _ := utf8.DecodeRune(buf)
	if r == utf8.RuneError {
		return gaijiLookup(int(c1&0x7F)<<8 | int(c2&0x7F))
	}
	return string(buf[:ndst-1])
}
