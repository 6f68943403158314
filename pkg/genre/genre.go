// Package genre collapses free text genre tags into a small fixed taxonomy.
package genre

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Buckets is the canonical taxonomy in matching priority order.
var Buckets = []string{
	"rock", "pop", "electronic", "hip-hop", "r&b", "jazz",
	"folk", "metal", "classical", "country", "blues", "reggae",
}

type mapping struct {
	tag    string
	bucket string
}

// table is scanned in order for partial matches, so order matters.
var table = []mapping{
	// rock
	{"alt-rock", "rock"},
	{"alternative rock", "rock"},
	{"hard rock", "rock"},
	{"indie rock", "rock"},
	{"modern rock", "rock"},
	{"post-rock", "rock"},
	{"prog-rock", "rock"},
	{"progressive rock", "rock"},
	{"punk rock", "rock"},
	{"rock-n-roll", "rock"},
	{"soft rock", "rock"},
	{"garage rock", "rock"},
	{"grunge", "rock"},
	{"psychedelic rock", "rock"},
	{"classic rock", "rock"},

	// pop
	{"art pop", "pop"},
	{"dance pop", "pop"},
	{"electropop", "pop"},
	{"indie pop", "pop"},
	{"k-pop", "pop"},
	{"synth-pop", "pop"},
	{"pop rock", "pop"},
	{"power pop", "pop"},
	{"dream pop", "pop"},
	{"chamber pop", "pop"},
	{"baroque pop", "pop"},

	// electronic
	{"ambient", "electronic"},
	{"downtempo", "electronic"},
	{"drum and bass", "electronic"},
	{"dubstep", "electronic"},
	{"edm", "electronic"},
	{"electronica", "electronic"},
	{"house", "electronic"},
	{"idm", "electronic"},
	{"techno", "electronic"},
	{"trance", "electronic"},
	{"trip-hop", "electronic"},
	{"synthwave", "electronic"},
	{"electro", "electronic"},

	// hip-hop
	{"rap", "hip-hop"},
	{"trap", "hip-hop"},
	{"conscious hip hop", "hip-hop"},
	{"alternative hip hop", "hip-hop"},
	{"underground hip hop", "hip-hop"},
	{"gangsta rap", "hip-hop"},
	{"old school hip hop", "hip-hop"},

	// r&b
	{"contemporary r&b", "r&b"},
	{"neo soul", "r&b"},
	{"soul", "r&b"},
	{"funk", "r&b"},
	{"motown", "r&b"},
	{"rhythm and blues", "r&b"},

	// jazz
	{"acid jazz", "jazz"},
	{"bebop", "jazz"},
	{"big band", "jazz"},
	{"cool jazz", "jazz"},
	{"fusion", "jazz"},
	{"latin jazz", "jazz"},
	{"smooth jazz", "jazz"},
	{"swing", "jazz"},
	{"vocal jazz", "jazz"},
	{"nu jazz", "jazz"},

	// folk
	{"indie folk", "folk"},
	{"folk rock", "folk"},
	{"contemporary folk", "folk"},
	{"traditional folk", "folk"},
	{"americana", "folk"},
	{"bluegrass", "folk"},

	// metal
	{"black metal", "metal"},
	{"death metal", "metal"},
	{"doom metal", "metal"},
	{"heavy metal", "metal"},
	{"power metal", "metal"},
	{"progressive metal", "metal"},
	{"thrash metal", "metal"},
	{"nu metal", "metal"},

	// classical
	{"baroque", "classical"},
	{"chamber music", "classical"},
	{"choral", "classical"},
	{"contemporary classical", "classical"},
	{"modern classical", "classical"},
	{"opera", "classical"},
	{"orchestral", "classical"},
	{"romantic", "classical"},
	{"symphony", "classical"},

	// country
	{"alternative country", "country"},
	{"contemporary country", "country"},
	{"country rock", "country"},
	{"outlaw country", "country"},
	{"traditional country", "country"},

	// blues
	{"blues rock", "blues"},
	{"chicago blues", "blues"},
	{"delta blues", "blues"},
	{"electric blues", "blues"},
	{"modern blues", "blues"},

	// reggae
	{"dub", "reggae"},
	{"roots reggae", "reggae"},
	{"ska", "reggae"},
	{"dancehall", "reggae"},
}

var exact = func() map[string]string {
	m := make(map[string]string, len(table))
	for _, e := range table {
		m[e.tag] = e.bucket
	}
	return m
}()

var lower = cases.Lower(language.Und)

// Normalize maps a raw tag to its bucket. Tags matching no rule are returned
// lowercased.
func Normalize(raw string) string {
	g := lower.String(raw)
	if g == "" {
		return ""
	}
	if b, ok := exact[g]; ok {
		return b
	}
	for _, b := range Buckets {
		if strings.Contains(g, b) {
			return b
		}
	}
	for _, e := range table {
		if strings.Contains(g, e.tag) {
			return e.bucket
		}
	}
	for _, e := range table {
		if strings.Contains(e.tag, g) {
			return e.bucket
		}
	}
	return g
}

// IsBucket reports whether g is one of the canonical buckets.
func IsBucket(g string) bool {
	for _, b := range Buckets {
		if b == g {
			return true
		}
	}
	return false
}
