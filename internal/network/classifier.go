// Package network infers a canonical broadcast-network label from free-text
// channel names. It is a best-effort heuristic over an ordered rule table,
// not a lookup against an authoritative registry.
package network

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tvforge/tvcatalog/internal/catalog"
)

// patterns is the classification rule table. Order is significant: the
// first matching pattern wins, so more specific networks (ESPN2, FOX News)
// must appear before their generic prefixes would otherwise swallow them.
// Grouped by domain: US broadcast, news, sports, premium/entertainment,
// streaming, international, Spanish-language, other.
var patterns = compile([]string{
	// Major US networks
	`\b(ABC|American Broadcasting Company)\b`,
	`\b(CBS|Columbia Broadcasting System)\b`,
	`\b(NBC|National Broadcasting Company)\b`,
	`\b(FOX|Fox)\b`,
	`\b(CW|The CW)\b`,
	`\b(PBS|Public Broadcasting Service)\b`,

	// News
	`\b(CNN|Cable News Network)\b`,
	`\b(MSNBC)\b`,
	`\b(FOX News|Fox News)\b`,
	`\b(CNBC)\b`,
	`\b(BBC|British Broadcasting Corporation)\b`,
	`\b(Al Jazeera)\b`,
	`\b(Reuters)\b`,
	`\b(AP|Associated Press)\b`,

	// Sports
	`\b(ESPN)\b`,
	`\b(ESPN2|ESPN 2)\b`,
	`\b(ESPNU|ESPN U)\b`,
	`\b(FS1|Fox Sports 1)\b`,
	`\b(FS2|Fox Sports 2)\b`,
	`\b(NFL Network)\b`,
	`\b(NBA TV)\b`,
	`\b(NHL Network)\b`,
	`\b(MLB Network)\b`,
	`\b(Golf Channel)\b`,
	`\b(Tennis Channel)\b`,
	`\b(Olympic Channel)\b`,

	// Premium / entertainment
	`\b(HBO|Home Box Office)\b`,
	`\b(Showtime)\b`,
	`\b(Starz)\b`,
	`\b(Cinemax)\b`,
	`\b(AMC)\b`,
	`\b(FX)\b`,
	`\b(FXX)\b`,
	`\b(TNT)\b`,
	`\b(TBS)\b`,
	`\b(USA Network)\b`,
	`\b(Syfy)\b`,
	`\b(Comedy Central)\b`,
	`\b(MTV)\b`,
	`\b(VH1)\b`,
	`\b(BET)\b`,
	`\b(Discovery)\b`,
	`\b(History|History Channel)\b`,
	`\b(Nat Geo|National Geographic)\b`,
	`\b(Animal Planet)\b`,
	`\b(TLC)\b`,
	`\b(Food Network)\b`,
	`\b(HGTV)\b`,
	`\b(Travel Channel)\b`,
	`\b(A&E)\b`,
	`\b(Lifetime)\b`,
	`\b(Hallmark)\b`,
	`\b(Freeform)\b`,
	`\b(Disney|Disney Channel)\b`,
	`\b(Nickelodeon|Nick)\b`,
	`\b(Cartoon Network)\b`,
	`\b(Adult Swim)\b`,

	// Streaming
	`\b(Netflix)\b`,
	`\b(Hulu)\b`,
	`\b(Amazon Prime|Prime Video)\b`,
	`\b(Apple TV)\b`,
	`\b(Disney\+|Disney Plus)\b`,
	`\b(Paramount\+|Paramount Plus)\b`,
	`\b(Peacock)\b`,
	`\b(Max|HBO Max)\b`,

	// International
	`\b(BBC)\b`,
	`\b(ITV)\b`,
	`\b(Channel 4)\b`,
	`\b(Sky)\b`,
	`\b(CBC|Canadian Broadcasting Corporation)\b`,
	`\b(CTV)\b`,
	`\b(Global)\b`,
	`\b(ABC Australia)\b`,
	`\b(SBS)\b`,

	// Spanish-language
	`\b(Univision)\b`,
	`\b(Telemundo)\b`,
	`\b(Estrella TV)\b`,

	// Other
	`\b(C-SPAN)\b`,
	`\b(QVC)\b`,
	`\b(HSN)\b`,
	`\b(Weather Channel)\b`,
})

func compile(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// normalize maps lower-cased matched text to the canonical network label.
// Matches absent from this map are returned as matched (trimmed).
var normalize = map[string]string{
	"fox":                   "FOX",
	"abc":                   "ABC",
	"cbs":                   "CBS",
	"nbc":                   "NBC",
	"cnn":                   "CNN",
	"espn":                  "ESPN",
	"hbo":                   "HBO",
	"discovery":             "Discovery",
	"national geographic":   "National Geographic",
	"nat geo":               "National Geographic",
	"history channel":       "History",
	"history":               "History",
	"disney channel":        "Disney",
	"disney":                "Disney",
	"nickelodeon":           "Nickelodeon",
	"nick":                  "Nickelodeon",
	"cartoon network":       "Cartoon Network",
	"food network":          "Food Network",
	"travel channel":        "Travel Channel",
	"animal planet":         "Animal Planet",
	"tlc":                   "TLC",
	"hgtv":                  "HGTV",
	"a&e":                   "A&E",
	"lifetime":              "Lifetime",
	"hallmark":              "Hallmark",
	"freeform":              "Freeform",
	"mtv":                   "MTV",
	"vh1":                   "VH1",
	"bet":                   "BET",
	"comedy central":        "Comedy Central",
	"tnt":                   "TNT",
	"tbs":                   "TBS",
	"usa network":           "USA Network",
	"syfy":                  "Syfy",
	"fx":                    "FX",
	"fxx":                   "FXX",
	"amc":                   "AMC",
	"showtime":              "Showtime",
	"starz":                 "Starz",
	"cinemax":               "Cinemax",
	"fox news":              "FOX News",
	"msnbc":                 "MSNBC",
	"cnbc":                  "CNBC",
	"nfl network":           "NFL Network",
	"nba tv":                "NBA TV",
	"nhl network":           "NHL Network",
	"mlb network":           "MLB Network",
	"golf channel":          "Golf Channel",
	"tennis channel":        "Tennis Channel",
	"olympic channel":       "Olympic Channel",
	"pbs":                   "PBS",
	"cw":                    "CW",
	"c-span":                "C-SPAN",
	"weather channel":       "Weather Channel",
	"univision":             "Univision",
	"telemundo":             "Telemundo",
	"estrella tv":           "Estrella TV",
	"bbc":                   "BBC",
	"itv":                   "ITV",
	"channel 4":             "Channel 4",
	"sky":                   "Sky",
	"cbc":                   "CBC",
	"ctv":                   "CTV",
	"global":                "Global",
}

// abbrevWhitelist gates the leading-token fallback: a 2-10 letter leading
// token is only accepted as a network if it is one of these.
var abbrevWhitelist = map[string]bool{
	"ABC": true, "CBS": true, "NBC": true, "FOX": true, "CNN": true,
	"ESPN": true, "HBO": true, "TNT": true, "TBS": true, "USA": true,
	"FX": true, "AMC": true, "MTV": true, "VH1": true, "BET": true,
	"PBS": true, "CW": true, "CNBC": true, "MSNBC": true,
}

var leadingToken = regexp.MustCompile(`(?i)^([A-Z]{2,10})\s`)

// Classify infers a network label from a channel's display name and optional
// alternate (tvg) name. Returns "" when nothing matches. First matching
// pattern wins; the rule order above is part of the contract.
func Classify(name, tvgName string) string {
	if name == "" {
		return ""
	}
	searchText := name
	if tvgName != "" {
		searchText = name + " " + tvgName
	}

	for _, re := range patterns {
		m := re.FindStringSubmatch(searchText)
		if m == nil {
			continue
		}
		matched := m[0]
		if len(m) > 1 && m[1] != "" {
			matched = m[1]
		}
		if canonical, ok := normalize[strings.ToLower(matched)]; ok {
			return canonical
		}
		return strings.TrimSpace(matched)
	}

	// Fallback: a short leading abbreviation like "ABC 5" or "CNN International",
	// accepted only when whitelisted so random call signs don't classify.
	if m := leadingToken.FindStringSubmatch(name); m != nil {
		token := strings.ToUpper(m[1])
		if abbrevWhitelist[token] {
			return token
		}
	}
	return ""
}

// UniqueNetworks classifies every channel and returns the sorted distinct
// set of network labels found.
func UniqueNetworks(channels []catalog.Channel) []string {
	seen := make(map[string]bool)
	for _, ch := range channels {
		if n := Classify(ch.Name, ch.TVGName); n != "" {
			seen[n] = true
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
