package hpackdraft

// HPACK static table, §3 Data Model.
//
// The 61-entry table is shipped verbatim: per-index identity is part of the
// wire format, so the values themselves cannot be adapted even though
// nothing else in this package is RFC 7541-compatible. Index 0 is unused;
// valid static indices are 1..staticTableSize. The combined index space
// (§3 "Combined index space") puts D first and S after it, so callers
// resolving a combined index subtract dynamicTable.Len() before calling
// getStaticEntry, and callers building one add dynamicTable.combinedSize()
// to a static index (see resolveIndex in decoder.go and encodeOne in
// encoder.go).

// HeaderField is a decoded or to-be-encoded header name/value pair.
type HeaderField struct {
	Name  string
	Value string
}

const staticTableSize = 61

var staticTable = [...]HeaderField{
	{},                                   // 0 - unused
	{":authority", ""},                   // 1
	{":method", "GET"},                   // 2
	{":method", "POST"},                  // 3
	{":path", "/"},                       // 4
	{":path", "/index.html"},             // 5
	{":scheme", "http"},                  // 6
	{":scheme", "https"},                 // 7
	{":status", "200"},                   // 8
	{":status", "204"},                   // 9
	{":status", "206"},                   // 10
	{":status", "304"},                   // 11
	{":status", "400"},                   // 12
	{":status", "404"},                   // 13
	{":status", "500"},                   // 14
	{"accept-charset", ""},               // 15
	{"accept-encoding", "gzip, deflate"},  // 16
	{"accept-language", ""},              // 17
	{"accept-ranges", ""},                // 18
	{"accept", ""},                       // 19
	{"access-control-allow-origin", ""},   // 20
	{"age", ""},                          // 21
	{"allow", ""},                        // 22
	{"authorization", ""},                // 23
	{"cache-control", ""},                // 24
	{"content-disposition", ""},          // 25
	{"content-encoding", ""},             // 26
	{"content-language", ""},             // 27
	{"content-length", ""},               // 28
	{"content-location", ""},             // 29
	{"content-range", ""},                // 30
	{"content-type", ""},                 // 31
	{"cookie", ""},                       // 32
	{"date", ""},                         // 33
	{"etag", ""},                         // 34
	{"expect", ""},                       // 35
	{"expires", ""},                      // 36
	{"from", ""},                         // 37
	{"host", ""},                         // 38
	{"if-match", ""},                     // 39
	{"if-modified-since", ""},            // 40
	{"if-none-match", ""},                // 41
	{"if-range", ""},                     // 42
	{"if-unmodified-since", ""},          // 43
	{"last-modified", ""},                // 44
	{"link", ""},                         // 45
	{"location", ""},                     // 46
	{"max-forwards", ""},                 // 47
	{"proxy-authenticate", ""},           // 48
	{"proxy-authorization", ""},          // 49
	{"range", ""},                        // 50
	{"referer", ""},                      // 51
	{"refresh", ""},                      // 52
	{"retry-after", ""},                  // 53
	{"server", ""},                       // 54
	{"set-cookie", ""},                   // 55
	{"strict-transport-security", ""},    // 56
	{"transfer-encoding", ""},            // 57
	{"user-agent", ""},                   // 58
	{"vary", ""},                         // 59
	{"via", ""},                          // 60
	{"www-authenticate", ""},             // 61
}

// getStaticEntry returns the static table entry at index (1..61).
func getStaticEntry(index int) (HeaderField, bool) {
	if index < 1 || index > staticTableSize {
		return HeaderField{}, false
	}
	return staticTable[index], true
}

// staticNameIndex carries the lowest static index for each distinct name;
// staticPairIndex carries the index for entries whose value is part of
// their canonical identity (most static entries have no canonical value
// and so are name-only). Two typed maps, rather than one keyed by a
// name+NUL+value string, since HeaderField is already a comparable struct
// and the pair lookup never needs to be decomposed back into its parts.
var (
	staticNameIndex map[string]int
	staticPairIndex map[HeaderField]int
)

func init() {
	staticNameIndex = make(map[string]int, staticTableSize)
	staticPairIndex = make(map[HeaderField]int, staticTableSize)
	for i := 1; i <= staticTableSize; i++ {
		entry := staticTable[i]
		if _, exists := staticNameIndex[entry.Name]; !exists {
			staticNameIndex[entry.Name] = i
		}
		if entry.Value != "" {
			staticPairIndex[entry] = i
		}
	}
}

// findStaticIndex looks up a header field in the static table. exact is
// true only when both name and value matched the same entry.
func findStaticIndex(name, value string) (index int, exact bool) {
	if value != "" {
		if idx, ok := staticPairIndex[HeaderField{Name: name, Value: value}]; ok {
			return idx, true
		}
	}
	if idx, ok := staticNameIndex[name]; ok {
		return idx, false
	}
	return 0, false
}
