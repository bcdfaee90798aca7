package font

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

var codecs = map[string]encoding.Encoding{
	"charmap":      charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"utf-16-be":    unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"utf-8":        unicode.UTF8,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"mac-roman":    charmap.Macintosh,
	"gb2312":       simplifiedchinese.GBK,
	"gbk":          simplifiedchinese.GBK,
	"gb18030":      simplifiedchinese.GB18030,
	"cp950":        traditionalchinese.Big5,
	"big5":         traditionalchinese.Big5,
	"cp932":        japanese.ShiftJIS,
	"shift-jis":    japanese.ShiftJIS,
	"euc-jp":       japanese.EUCJP,
	"euc-kr":       korean.EUCKR,
	"cp949":        korean.EUCKR,
}

// LookupCodec returns the codec registered under name. Names are matched
// case-insensitively with '_' and '-' treated alike; names outside the
// built-in set are looked up in the WHATWG and IANA registries.
func LookupCodec(name string) (encoding.Encoding, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if enc, ok := codecs[key]; ok {
		return enc, nil
	}
	for _, n := range []string{name, key} {
		if enc, err := htmlindex.Get(n); err == nil {
			return enc, nil
		}
		if enc, err := ianaindex.IANA.Encoding(n); err == nil && enc != nil {
			return enc, nil
		}
	}
	return nil, fmt.Errorf("%w: no codec named %q", ErrUnsupportedEncoding, name)
}

// predefinedCMaps maps predefined CMap name prefixes to codec names.
var predefinedCMaps = []struct {
	prefix string
	codec  string
}{
	{"GB-EUC-", "gb2312"},
	{"GBK-EUC-", "gbk"},
	{"GBpc-EUC-", "gbk"},
	{"GBK2K-", "gb18030"},
	{"B5pc-", "cp950"},
	{"ETen-B5-", "cp950"},
	{"90ms-RKSJ-", "cp932"},
	{"KSC-EUC-", "euc-kr"},
}

// predefinedCMapCodec returns the codec that decodes strings shown with
// the predefined CMap name.
func predefinedCMapCodec(name string) (string, bool) {
	switch {
	case name == "Identity-H" || name == "Identity-V":
		return "utf-16-be", true
	case strings.Contains(name, "-UCS2-") || strings.Contains(name, "-UTF16-"):
		return "utf-16-be", true
	}
	for _, p := range predefinedCMaps {
		if strings.HasPrefix(name, p.prefix) {
			return p.codec, true
		}
	}
	return "", false
}
