// Package dnsconnector implements ports.DnsConnector against a live
// authoritative nameserver using RFC 2136 dynamic updates.
package dnsconnector

import (
	"context"
	"fmt"
	"net"
	"time"

	miekgdns "github.com/miekg/dns"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
	"github.com/poyrazK/cloudDNS/internal/core/ports"
)

// clockSkew bounds the TSIG signature's allowed time drift, matching the
// conventional RFC 2845 fudge value.
const clockSkew = 300

// Config holds everything needed to reach and authenticate against a
// zone's primary nameserver.
type Config struct {
	Nameserver    string // host:port, e.g. "ns1.example.com:53"
	Zone          string
	TsigKeyName   string
	TsigSecret    string
	TsigAlgorithm string // defaults to miekgdns.HmacSHA256
	Net           string // "tcp" or "udp", defaults to "tcp"
	Timeout       time.Duration
}

// Rfc2136Connector drives DNS resolution and dynamic updates via
// github.com/miekg/dns against a single zone's primary nameserver.
type Rfc2136Connector struct {
	cfg Config
}

func NewRfc2136Connector(cfg Config) *Rfc2136Connector {
	if cfg.TsigAlgorithm == "" {
		cfg.TsigAlgorithm = miekgdns.HmacSHA256
	}
	if cfg.Net == "" {
		cfg.Net = "tcp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Rfc2136Connector{cfg: cfg}
}

// DnsResolve implements ports.DnsConnector.DnsResolve. NXDOMAIN and
// NOERROR-with-no-answers both report "no records today" (nil error, empty
// slice); any other rcode or transport failure is a DnsError.
func (c *Rfc2136Connector) DnsResolve(ctx context.Context, name, zoneName string, rtype domain.RecordType) ([]domain.RecordSet, *ports.DnsError) {
	qtype, err := toMiekgType(rtype)
	if err != nil {
		return nil, &ports.DnsError{Code: ports.DnsFormatError, Message: err.Error()}
	}

	client := &miekgdns.Client{Net: c.cfg.Net, Timeout: c.cfg.Timeout}
	msg := &miekgdns.Msg{}
	msg.SetQuestion(miekgdns.Fqdn(name), qtype)
	msg.RecursionDesired = false

	retMsg, _, err := client.ExchangeContext(ctx, msg, c.cfg.Nameserver)
	if err != nil {
		return nil, &ports.DnsError{Code: ports.DnsTransportError, Message: err.Error()}
	}

	switch retMsg.Rcode {
	case miekgdns.RcodeSuccess:
		// fall through to answer mapping
	case miekgdns.RcodeNameError:
		return nil, nil
	default:
		return nil, &ports.DnsError{Code: ports.DnsServerFailure, Message: fmt.Sprintf("lookup failed with rcode %d", retMsg.Rcode)}
	}

	if len(retMsg.Answer) == 0 {
		return nil, nil
	}

	rs := domain.RecordSet{
		ZoneID:  zoneName,
		Name:    name,
		Type:    rtype,
		Class:   "IN",
		Status:  domain.RecordSetActive,
		Records: make([]domain.RData, 0, len(retMsg.Answer)),
	}
	for i, rr := range retMsg.Answer {
		if i == 0 {
			rs.TTL = int(rr.Header().Ttl)
		}
		value, err := rdataOf(rr)
		if err != nil {
			return nil, &ports.DnsError{Code: ports.DnsFormatError, Message: err.Error()}
		}
		rs.Records = append(rs.Records, domain.RData{Value: value})
	}
	return []domain.RecordSet{rs}, nil
}

// DnsUpdate implements ports.DnsConnector.DnsUpdate, submitting an RFC-2136
// dynamic update built from change's intended post-state.
func (c *Rfc2136Connector) DnsUpdate(ctx context.Context, change *domain.RecordSetChange) (*ports.DnsResponse, *ports.DnsError) {
	var inserts, deletes []miekgdns.RR

	switch change.ChangeType {
	case domain.ChangeDelete:
		rrs, err := toRRSet(change.RecordSet)
		if err != nil {
			return nil, &ports.DnsError{Code: ports.DnsFormatError, Message: err.Error()}
		}
		deletes = rrs
	case domain.ChangeUpdate:
		rrs, err := toRRSet(change.RecordSet)
		if err != nil {
			return nil, &ports.DnsError{Code: ports.DnsFormatError, Message: err.Error()}
		}
		inserts = rrs
		if change.Updates != nil {
			old, err := toRRSet(*change.Updates)
			if err != nil {
				return nil, &ports.DnsError{Code: ports.DnsFormatError, Message: err.Error()}
			}
			deletes = old
		}
	default: // ChangeCreate
		rrs, err := toRRSet(change.RecordSet)
		if err != nil {
			return nil, &ports.DnsError{Code: ports.DnsFormatError, Message: err.Error()}
		}
		inserts = rrs
	}

	msg := &miekgdns.Msg{}
	msg.SetUpdate(miekgdns.Fqdn(c.cfg.Zone))
	if len(deletes) > 0 {
		msg.Remove(deletes)
	}
	if len(inserts) > 0 {
		msg.Insert(inserts)
	}
	if c.cfg.TsigKeyName != "" {
		msg.SetTsig(miekgdns.Fqdn(c.cfg.TsigKeyName), c.cfg.TsigAlgorithm, clockSkew, time.Now().Unix())
	}

	client := &miekgdns.Client{
		Net:        c.cfg.Net,
		Timeout:    c.cfg.Timeout,
		TsigSecret: map[string]string{miekgdns.Fqdn(c.cfg.TsigKeyName): c.cfg.TsigSecret},
	}

	retMsg, _, err := client.ExchangeContext(ctx, msg, c.cfg.Nameserver)
	if err != nil {
		return nil, &ports.DnsError{Code: ports.DnsTransportError, Message: err.Error()}
	}

	if retMsg.Rcode != miekgdns.RcodeSuccess {
		return nil, &ports.DnsError{Code: rcodeToErrorCode(retMsg.Rcode), Message: fmt.Sprintf("update rejected with rcode %d", retMsg.Rcode)}
	}
	return &ports.DnsResponse{Code: "NoError"}, nil
}

func rcodeToErrorCode(rcode int) ports.DnsErrorCode {
	switch rcode {
	case miekgdns.RcodeRefused:
		return ports.DnsRefused
	case miekgdns.RcodeNotAuth:
		return ports.DnsNotAuthorized
	case miekgdns.RcodeFormatError:
		return ports.DnsFormatError
	case miekgdns.RcodeNotZone:
		return ports.DnsNotZone
	default:
		return ports.DnsServerFailure
	}
}

func toMiekgType(rtype domain.RecordType) (uint16, error) {
	switch rtype {
	case domain.TypeA:
		return miekgdns.TypeA, nil
	case domain.TypeAAAA:
		return miekgdns.TypeAAAA, nil
	case domain.TypeCNAME:
		return miekgdns.TypeCNAME, nil
	case domain.TypeNS:
		return miekgdns.TypeNS, nil
	case domain.TypeMX:
		return miekgdns.TypeMX, nil
	case domain.TypeTXT:
		return miekgdns.TypeTXT, nil
	case domain.TypeSOA:
		return miekgdns.TypeSOA, nil
	case domain.TypePTR:
		return miekgdns.TypePTR, nil
	case domain.TypeSRV:
		return miekgdns.TypeSRV, nil
	default:
		return 0, fmt.Errorf("unsupported record type %q", rtype)
	}
}

func rdataOf(rr miekgdns.RR) (string, error) {
	switch r := rr.(type) {
	case *miekgdns.A:
		return r.A.String(), nil
	case *miekgdns.AAAA:
		return r.AAAA.String(), nil
	case *miekgdns.CNAME:
		return r.Target, nil
	case *miekgdns.NS:
		return r.Ns, nil
	case *miekgdns.MX:
		return fmt.Sprintf("%d %s", r.Preference, r.Mx), nil
	case *miekgdns.TXT:
		out := ""
		for i, s := range r.Txt {
			if i > 0 {
				out += " "
			}
			out += s
		}
		return out, nil
	case *miekgdns.SRV:
		return fmt.Sprintf("%d %d %d %s", r.Priority, r.Weight, r.Port, r.Target), nil
	case *miekgdns.PTR:
		return r.Ptr, nil
	case *miekgdns.SOA:
		return fmt.Sprintf("%s %s %d %d %d %d %d", r.Ns, r.Mbox, r.Serial, r.Refresh, r.Retry, r.Expire, r.Minttl), nil
	default:
		return "", fmt.Errorf("unhandled rr type %T", rr)
	}
}

// toRRSet maps a RecordSet's rdata entries to wire RRs of the matching type.
func toRRSet(rs domain.RecordSet) ([]miekgdns.RR, error) {
	hdr := miekgdns.RR_Header{
		Name: miekgdns.Fqdn(rs.Name),
		Ttl:  uint32(rs.TTL),
	}

	var out []miekgdns.RR
	for _, rec := range rs.Records {
		hdr.Rrtype = 0
		switch rs.Type {
		case domain.TypeA:
			ip := net.ParseIP(rec.Value)
			if ip == nil || ip.To4() == nil {
				return nil, fmt.Errorf("invalid IPv4 address %q", rec.Value)
			}
			hdr.Rrtype = miekgdns.TypeA
			out = append(out, &miekgdns.A{Hdr: hdr, A: ip.To4()})
		case domain.TypeAAAA:
			ip := net.ParseIP(rec.Value)
			if ip == nil {
				return nil, fmt.Errorf("invalid IPv6 address %q", rec.Value)
			}
			hdr.Rrtype = miekgdns.TypeAAAA
			out = append(out, &miekgdns.AAAA{Hdr: hdr, AAAA: ip.To16()})
		case domain.TypeCNAME:
			hdr.Rrtype = miekgdns.TypeCNAME
			out = append(out, &miekgdns.CNAME{Hdr: hdr, Target: miekgdns.Fqdn(rec.Value)})
		case domain.TypeNS:
			hdr.Rrtype = miekgdns.TypeNS
			out = append(out, &miekgdns.NS{Hdr: hdr, Ns: miekgdns.Fqdn(rec.Value)})
		case domain.TypeTXT:
			hdr.Rrtype = miekgdns.TypeTXT
			out = append(out, &miekgdns.TXT{Hdr: hdr, Txt: []string{rec.Value}})
		case domain.TypePTR:
			hdr.Rrtype = miekgdns.TypePTR
			out = append(out, &miekgdns.PTR{Hdr: hdr, Ptr: miekgdns.Fqdn(rec.Value)})
		default:
			return nil, fmt.Errorf("unsupported record type %q for dynamic update", rs.Type)
		}
	}
	return out, nil
}
