package recordsetchange

import (
	"testing"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
)

func TestRecordSetsEqual_DomainNameRDataIsCaseInsensitive(t *testing.T) {
	a := domain.RecordSet{Name: "host.example.com.", Type: domain.TypeCNAME, TTL: 300, Records: []domain.RData{{Value: "Target.Example.com"}}}
	b := domain.RecordSet{Name: "host.example.com.", Type: domain.TypeCNAME, TTL: 300, Records: []domain.RData{{Value: "target.example.com."}}}
	if !recordSetsEqual(a, b) {
		t.Errorf("expected CNAME rdata to compare case-insensitively with trailing dot ignored")
	}
}

func TestRecordSetsEqual_NonDomainNameRDataIsCaseSensitive(t *testing.T) {
	a := domain.RecordSet{Name: "host.example.com.", Type: domain.TypeTXT, TTL: 300, Records: []domain.RData{{Value: "Hello"}}}
	b := domain.RecordSet{Name: "host.example.com.", Type: domain.TypeTXT, TTL: 300, Records: []domain.RData{{Value: "hello"}}}
	if recordSetsEqual(a, b) {
		t.Errorf("expected TXT rdata to compare case-sensitively")
	}
}

func TestRecordSetsEqual_RDataOrderIrrelevant(t *testing.T) {
	a := domain.RecordSet{Name: "host.example.com.", Type: domain.TypeA, TTL: 300, Records: []domain.RData{{Value: "1.1.1.1"}, {Value: "2.2.2.2"}}}
	b := domain.RecordSet{Name: "host.example.com.", Type: domain.TypeA, TTL: 300, Records: []domain.RData{{Value: "2.2.2.2"}, {Value: "1.1.1.1"}}}
	if !recordSetsEqual(a, b) {
		t.Errorf("expected rdata multiset comparison to ignore order")
	}
}

func TestRecordSetsEqual_DefaultsClassToIN(t *testing.T) {
	a := domain.RecordSet{Name: "host.example.com.", Type: domain.TypeA, TTL: 300, Class: "", Records: []domain.RData{{Value: "1.1.1.1"}}}
	b := domain.RecordSet{Name: "host.example.com.", Type: domain.TypeA, TTL: 300, Class: "IN", Records: []domain.RData{{Value: "1.1.1.1"}}}
	if !recordSetsEqual(a, b) {
		t.Errorf("expected empty class to default to IN")
	}
}

func TestRecordSetsEqual_TTLMismatchIsNotEqual(t *testing.T) {
	a := domain.RecordSet{Name: "host.example.com.", Type: domain.TypeA, TTL: 300, Records: []domain.RData{{Value: "1.1.1.1"}}}
	b := domain.RecordSet{Name: "host.example.com.", Type: domain.TypeA, TTL: 60, Records: []domain.RData{{Value: "1.1.1.1"}}}
	if recordSetsEqual(a, b) {
		t.Errorf("expected differing TTL to break equality")
	}
}

func TestWildcardFormOf(t *testing.T) {
	cases := map[string]string{
		"host.example.com.": "*.example.com.",
		"example.com.":       "*.com.",
		"*.example.com.":     "*.example.com.",
	}
	for in, want := range cases {
		if got := wildcardFormOf(in); got != want {
			t.Errorf("wildcardFormOf(%q) = %q, want %q", in, got, want)
		}
	}
}
