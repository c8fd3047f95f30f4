package recordsetchange

import (
	"sort"
	"strings"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
)

// domainNameTypes lists the record types whose RDATA is itself a domain
// name, and therefore compares case-insensitively with a single trailing
// dot stripped (spec §4.1).
var domainNameTypes = map[domain.RecordType]bool{
	domain.TypeNS:    true,
	domain.TypeCNAME: true,
	domain.TypePTR:   true,
	domain.TypeSOA:   true,
}

func canonicalRData(rtype domain.RecordType, value string) string {
	if domainNameTypes[rtype] {
		value = strings.TrimSuffix(value, ".")
		value = strings.ToLower(value)
	}
	return value
}

// recordSetsEqual reports whether two record sets are the same post-state:
// same name, type, class, ttl, and multiset of RDATA values (order
// irrelevant, domain-name RDATA canonicalized).
func recordSetsEqual(a, b domain.RecordSet) bool {
	if !strings.EqualFold(strings.TrimSuffix(a.Name, "."), strings.TrimSuffix(b.Name, ".")) {
		return false
	}
	if a.Type != b.Type {
		return false
	}
	if classOf(a) != classOf(b) {
		return false
	}
	if a.TTL != b.TTL {
		return false
	}
	return rdataMultisetEqual(a.Type, a.Records, b.Records)
}

func classOf(rs domain.RecordSet) string {
	if rs.Class == "" {
		return "IN"
	}
	return rs.Class
}

func rdataMultisetEqual(rtype domain.RecordType, a, b []domain.RData) bool {
	if len(a) != len(b) {
		return false
	}
	av := canonicalValues(rtype, a)
	bv := canonicalValues(rtype, b)
	sort.Strings(av)
	sort.Strings(bv)
	for i := range av {
		if av[i] != bv[i] {
			return false
		}
	}
	return true
}

func canonicalValues(rtype domain.RecordType, records []domain.RData) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = canonicalRData(rtype, r.Value)
	}
	return out
}

// recordSetContains reports whether any entry in live is a structural match
// for want (used by the Create/Update "exactly the desired post-state" rule
// when live may hold more than one record set for the name/type, which in
// practice is always zero or one for this platform's single-zone model).
func recordSetContains(live []domain.RecordSet, want domain.RecordSet) bool {
	for _, rs := range live {
		if recordSetsEqual(rs, want) {
			return true
		}
	}
	return false
}
