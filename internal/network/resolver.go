// Package network holds the service's small networking helpers: the caching
// DNS resolver behind /dns/resolve and the client address split behind /ip.
package network

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/dns/dnsmessage"

	"imgd/internal/logging"
	"imgd/internal/observability"
)

const (
	defaultCacheSize = 512
	queryTimeout     = 3 * time.Second
	// Large enough for any answer set we care about without EDNS.
	responseBufferSize = 1232
)

// ErrResolveFailed covers every upstream failure mode: timeouts, refusals,
// NXDOMAIN and empty answer sets.
var ErrResolveFailed = errors.New("resolve failed")

// Resolution is one answered query.
type Resolution struct {
	Answers     []string
	TTL         time.Duration
	Nameservers []string
	FromCache   bool
}

type cacheEntry struct {
	answers []string
	expires time.Time
}

// Resolver asks the configured nameservers directly so the answer TTL is
// available, and keeps answered sets in an LRU until they expire.
type Resolver struct {
	nameservers []string
	cache       *lru.Cache[string, cacheEntry]
	log         logging.Logger
	metrics     *observability.ResolverMetrics

	now func() time.Time
}

// NewResolver builds a resolver over the given nameservers (host or
// host:port; port 53 is assumed). cacheSize <= 0 picks the default.
func NewResolver(nameservers []string, cacheSize int, log logging.Logger, metrics *observability.ResolverMetrics) (*Resolver, error) {
	if len(nameservers) == 0 {
		return nil, errors.New("at least one nameserver is required")
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.NewWithEvict[string, cacheEntry](cacheSize, func(string, cacheEntry) {
		metrics.RecordCacheEviction()
	})
	if err != nil {
		return nil, fmt.Errorf("build resolver cache: %w", err)
	}
	return &Resolver{
		nameservers: nameservers,
		cache:       cache,
		log:         logging.OrNop(log),
		metrics:     metrics,
		now:         time.Now,
	}, nil
}

// Resolve looks up the A records for domain. Cached answers are served with
// their remaining TTL; otherwise the nameservers are tried in order and the
// first one that answers wins.
func (r *Resolver) Resolve(ctx context.Context, domain string) (*Resolution, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrResolveFailed)
	}

	key := strings.ToLower(domain)
	if entry, ok := r.cache.Get(key); ok {
		if remaining := entry.expires.Sub(r.now()); remaining > 0 {
			r.metrics.RecordCacheHit()
			return &Resolution{
				Answers:     entry.answers,
				TTL:         remaining,
				Nameservers: r.nameservers,
				FromCache:   true,
			}, nil
		}
		r.cache.Remove(key)
	}
	r.metrics.RecordCacheMiss()

	var lastErr error
	for _, ns := range r.nameservers {
		r.metrics.RecordLookup("A")
		answers, ttl, err := r.query(ctx, ns, domain)
		if err != nil {
			r.metrics.RecordLookupError("A")
			r.log.Debug("resolve %s via %s: %v", domain, ns, err)
			lastErr = err
			continue
		}
		r.cache.Add(key, cacheEntry{answers: answers, expires: r.now().Add(ttl)})
		return &Resolution{
			Answers:     answers,
			TTL:         ttl,
			Nameservers: r.nameservers,
		}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no nameservers answered")
	}
	return nil, fmt.Errorf("%w: %v", ErrResolveFailed, lastErr)
}

// query sends a single A question over UDP and parses the answer section.
func (r *Resolver) query(ctx context.Context, nameserver, domain string) ([]string, time.Duration, error) {
	name, err := dnsmessage.NewName(fqdn(domain))
	if err != nil {
		return nil, 0, fmt.Errorf("invalid domain: %w", err)
	}

	msg := dnsmessage.Message{
		Header: dnsmessage.Header{
			ID:               uint16(rand.Uint32()),
			RecursionDesired: true,
		},
		Questions: []dnsmessage.Question{{
			Name:  name,
			Type:  dnsmessage.TypeA,
			Class: dnsmessage.ClassINET,
		}},
	}
	packed, err := msg.Pack()
	if err != nil {
		return nil, 0, fmt.Errorf("pack query: %w", err)
	}

	dialer := net.Dialer{Timeout: queryTimeout}
	conn, err := dialer.DialContext(ctx, "udp", withDNSPort(nameserver))
	if err != nil {
		return nil, 0, err
	}
	defer conn.Close()

	deadline := time.Now().Add(queryTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, 0, err
	}

	if _, err := conn.Write(packed); err != nil {
		return nil, 0, err
	}
	buf := make([]byte, responseBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, 0, err
	}

	return parseAnswers(buf[:n], msg.Header.ID)
}

func parseAnswers(response []byte, wantID uint16) ([]string, time.Duration, error) {
	var p dnsmessage.Parser
	hdr, err := p.Start(response)
	if err != nil {
		return nil, 0, fmt.Errorf("parse response: %w", err)
	}
	if hdr.ID != wantID {
		return nil, 0, errors.New("response id mismatch")
	}
	if hdr.RCode != dnsmessage.RCodeSuccess {
		return nil, 0, fmt.Errorf("server returned %v", hdr.RCode)
	}
	if err := p.SkipAllQuestions(); err != nil {
		return nil, 0, fmt.Errorf("parse response: %w", err)
	}

	var (
		answers []string
		minTTL  uint32
	)
	for {
		h, err := p.AnswerHeader()
		if err == dnsmessage.ErrSectionDone {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("parse answer: %w", err)
		}
		if h.Type != dnsmessage.TypeA {
			if err := p.SkipAnswer(); err != nil {
				return nil, 0, fmt.Errorf("parse answer: %w", err)
			}
			continue
		}
		res, err := p.AResource()
		if err != nil {
			return nil, 0, fmt.Errorf("parse answer: %w", err)
		}
		answers = append(answers, net.IP(res.A[:]).String())
		if minTTL == 0 || h.TTL < minTTL {
			minTTL = h.TTL
		}
	}
	if len(answers) == 0 {
		return nil, 0, errors.New("no A records in answer")
	}
	return answers, time.Duration(minTTL) * time.Second, nil
}

func fqdn(domain string) string {
	if strings.HasSuffix(domain, ".") {
		return domain
	}
	return domain + "."
}

func withDNSPort(nameserver string) string {
	if _, _, err := net.SplitHostPort(nameserver); err == nil {
		return nameserver
	}
	return net.JoinHostPort(nameserver, "53")
}
