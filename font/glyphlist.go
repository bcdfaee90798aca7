package font

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// glyphNames maps the glyph names that /Differences arrays use in practice
// to their Unicode values.
var glyphNames = func() map[string]rune {
	m := map[string]rune{
		"nbspace": 0x00A0, "sfthyphen": 0x00AD, "softhyphen": 0x00AD, "middot": 0x00B7,
		"quoteleft": 0x2018, "quoteright": 0x2019, "quotesinglbase": 0x201A,
		"quotedblleft": 0x201C, "quotedblright": 0x201D, "quotedblbase": 0x201E,
		"endash": 0x2013, "emdash": 0x2014, "bullet": 0x2022, "ellipsis": 0x2026,
		"dagger": 0x2020, "daggerdbl": 0x2021, "perthousand": 0x2030,
		"guilsinglleft": 0x2039, "guilsinglright": 0x203A,
		"ff": 0xFB00, "fi": 0xFB01, "fl": 0xFB02, "ffi": 0xFB03, "ffl": 0xFB04,
		"trademark": 0x2122, "Euro": 0x20AC, "florin": 0x0192, "fraction": 0x2044,
		"circumflex": 0x02C6, "tilde": 0x02DC, "breve": 0x02D8, "dotaccent": 0x02D9,
		"ring": 0x02DA, "hungarumlaut": 0x02DD, "ogonek": 0x02DB, "caron": 0x02C7,
		"dotlessi": 0x0131, "dotlessj": 0x0237, "Lslash": 0x0141, "lslash": 0x0142,
		"OE": 0x0152, "oe": 0x0153, "Scaron": 0x0160, "scaron": 0x0161,
		"Zcaron": 0x017D, "zcaron": 0x017E, "Ydieresis": 0x0178,
		"Aogonek": 0x0104, "aogonek": 0x0105, "Cacute": 0x0106, "cacute": 0x0107,
		"Ccaron": 0x010C, "ccaron": 0x010D, "Dcroat": 0x0110, "dcroat": 0x0111,
		"Eogonek": 0x0118, "eogonek": 0x0119, "Ecaron": 0x011A, "ecaron": 0x011B,
		"Gbreve": 0x011E, "gbreve": 0x011F, "Idotaccent": 0x0130,
		"Nacute": 0x0143, "nacute": 0x0144, "Ncaron": 0x0147, "ncaron": 0x0148,
		"Ohungarumlaut": 0x0150, "ohungarumlaut": 0x0151, "Rcaron": 0x0158, "rcaron": 0x0159,
		"Sacute": 0x015A, "sacute": 0x015B, "Scedilla": 0x015E, "scedilla": 0x015F,
		"Tcaron": 0x0164, "tcaron": 0x0165, "Uring": 0x016E, "uring": 0x016F,
		"Uhungarumlaut": 0x0170, "uhungarumlaut": 0x0171,
		"Zacute": 0x0179, "zacute": 0x017A, "Zdotaccent": 0x017B, "zdotaccent": 0x017C,
		"minus": 0x2212, "lessequal": 0x2264, "greaterequal": 0x2265, "notequal": 0x2260,
		"infinity": 0x221E, "summation": 0x2211, "product": 0x220F, "radical": 0x221A,
		"partialdiff": 0x2202, "integral": 0x222B, "approxequal": 0x2248,
		"lozenge": 0x25CA, "Delta": 0x2206, "Omega": 0x2126,
		"arrowleft": 0x2190, "arrowup": 0x2191, "arrowright": 0x2192, "arrowdown": 0x2193,
		"checkmark": 0x2713,
		"alpha": 0x03B1, "beta": 0x03B2, "gamma": 0x03B3, "delta": 0x03B4,
		"epsilon": 0x03B5, "zeta": 0x03B6, "eta": 0x03B7, "theta": 0x03B8,
		"iota": 0x03B9, "kappa": 0x03BA, "lambda": 0x03BB, "nu": 0x03BD,
		"xi": 0x03BE, "omicron": 0x03BF, "pi": 0x03C0, "rho": 0x03C1,
		"sigma": 0x03C3, "tau": 0x03C4, "upsilon": 0x03C5, "phi": 0x03C6,
		"chi": 0x03C7, "psi": 0x03C8, "omega": 0x03C9,
	}

	ascii := []string{
		"space", "exclam", "quotedbl", "numbersign", "dollar", "percent", "ampersand",
		"quotesingle", "parenleft", "parenright", "asterisk", "plus", "comma", "hyphen",
		"period", "slash", "zero", "one", "two", "three", "four", "five", "six", "seven",
		"eight", "nine", "colon", "semicolon", "less", "equal", "greater", "question", "at",
	}
	for i, name := range ascii {
		m[name] = rune(0x20 + i)
	}
	for i, name := range []string{"bracketleft", "backslash", "bracketright", "asciicircum", "underscore", "grave"} {
		m[name] = rune(0x5B + i)
	}
	for i, name := range []string{"braceleft", "bar", "braceright", "asciitilde"} {
		m[name] = rune(0x7B + i)
	}
	for c := 'A'; c <= 'Z'; c++ {
		m[string(c)] = c
		m[string(c+'a'-'A')] = c + 'a' - 'A'
	}

	latin1 := []string{
		"exclamdown", "cent", "sterling", "currency", "yen", "brokenbar", "section",
		"dieresis", "copyright", "ordfeminine", "guillemotleft", "logicalnot", "",
		"registered", "macron", "degree", "plusminus", "twosuperior", "threesuperior",
		"acute", "mu", "paragraph", "periodcentered", "cedilla", "onesuperior",
		"ordmasculine", "guillemotright", "onequarter", "onehalf", "threequarters",
		"questiondown", "Agrave", "Aacute", "Acircumflex", "Atilde", "Adieresis",
		"Aring", "AE", "Ccedilla", "Egrave", "Eacute", "Ecircumflex", "Edieresis",
		"Igrave", "Iacute", "Icircumflex", "Idieresis", "Eth", "Ntilde", "Ograve",
		"Oacute", "Ocircumflex", "Otilde", "Odieresis", "multiply", "Oslash", "Ugrave",
		"Uacute", "Ucircumflex", "Udieresis", "Yacute", "Thorn", "germandbls", "agrave",
		"aacute", "acircumflex", "atilde", "adieresis", "aring", "ae", "ccedilla",
		"egrave", "eacute", "ecircumflex", "edieresis", "igrave", "iacute", "icircumflex",
		"idieresis", "eth", "ntilde", "ograve", "oacute", "ocircumflex", "otilde",
		"odieresis", "divide", "oslash", "ugrave", "uacute", "ucircumflex", "udieresis",
		"yacute", "thorn", "ydieresis",
	}
	for i, name := range latin1 {
		if name != "" {
			m[name] = rune(0xA1 + i)
		}
	}
	return m
}()

// glyphText returns the text a glyph name stands for. Besides names in the
// list it understands uniXXXX sequences, uXXXX[XX] values, suffixes after
// a period and ligatures joined with underscores.
func glyphText(name string) (string, bool) {
	if r, ok := glyphNames[name]; ok {
		return string(r), true
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "", false
	}

	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		s, ok := glyphComponent(part)
		if !ok {
			return "", false
		}
		b.WriteString(s)
	}
	return b.String(), true
}

func glyphComponent(part string) (string, bool) {
	if r, ok := glyphNames[part]; ok {
		return string(r), true
	}
	if hex, ok := strings.CutPrefix(part, "uni"); ok && len(hex) > 0 && len(hex)%4 == 0 {
		var b strings.Builder
		for i := 0; i < len(hex); i += 4 {
			r, ok := hexRune(hex[i : i+4])
			if !ok {
				return "", false
			}
			b.WriteRune(r)
		}
		return b.String(), true
	}
	if hex, ok := strings.CutPrefix(part, "u"); ok && len(hex) >= 4 && len(hex) <= 6 {
		if r, ok := hexRune(hex); ok {
			return string(r), true
		}
	}
	return "", false
}

func hexRune(s string) (rune, bool) {
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	r := rune(v)
	return r, utf8.ValidRune(r)
}
