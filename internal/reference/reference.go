package reference

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
)

// Protocol selects the transport used for shorthand references.
type Protocol string

const (
	ProtocolHTTPS Protocol = "https"
	ProtocolSSH   Protocol = "ssh"
)

// DefaultHost is the hosting convention shorthand references expand against.
const DefaultHost = "github.com"

// ProtocolFor returns ProtocolSSH when ssh is true and ProtocolHTTPS otherwise.
func ProtocolFor(ssh bool) Protocol {
	if ssh {
		return ProtocolSSH
	}
	return ProtocolHTTPS
}

// Reference is a resolved repository reference. It is a value type and is
// never modified after resolution.
type Reference struct {
	Raw      string
	Protocol Protocol
	Owner    string
	Name     string
	URL      string
	DirName  string
}

// Slug returns owner/name, or just name when the owner is unknown.
func (r Reference) Slug() string {
	if r.Owner == "" {
		return r.DirName
	}
	return r.Owner + "/" + r.DirName
}

func (r Reference) String() string { return r.Slug() }

var (
	segmentRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	httpsRe   = regexp.MustCompile(`^https://([^/\s@]+)/([^/\s]+)/([^/\s]+?)/?$`)
	scpRe     = regexp.MustCompile(`^([^@\s/:]+)@([^:\s/]+):([^/\s]+)/([^/\s]+)$`)
)

// Resolver resolves references against a hosting convention.
type Resolver struct {
	Host string
}

// NewResolver returns a Resolver for DefaultHost.
func NewResolver() *Resolver {
	return &Resolver{Host: DefaultHost}
}

// Resolve resolves raw with the given protocol preference.
func (r *Resolver) Resolve(raw string, p Protocol) (Reference, error) {
	in := strings.TrimSpace(raw)
	if in == "" {
		return Reference{}, errors.ReferenceFormatError(raw, "empty reference").Build()
	}
	if strings.ContainsAny(in, " \t\r\n") {
		return Reference{}, errors.ReferenceFormatError(raw, "contains whitespace").Build()
	}

	if m := httpsRe.FindStringSubmatch(in); m != nil {
		return build(raw, ProtocolHTTPS, m[2], m[3], strings.TrimSuffix(in, "/"))
	}
	if m := scpRe.FindStringSubmatch(in); m != nil {
		return build(raw, ProtocolSSH, m[3], m[4], in)
	}
	if strings.Contains(in, "://") {
		return Reference{}, errors.ReferenceFormatError(raw, "only https:// URLs and user@host:owner/repo are supported").Build()
	}

	parts := strings.Split(in, "/")
	if len(parts) != 2 {
		return Reference{}, errors.ReferenceFormatError(raw, "expected owner/repo").Build()
	}
	owner, name := parts[0], strings.TrimSuffix(parts[1], ".git")
	if p == "" {
		p = ProtocolHTTPS
	}
	var url string
	switch p {
	case ProtocolHTTPS:
		url = fmt.Sprintf("https://%s/%s/%s.git", r.host(), owner, name)
	case ProtocolSSH:
		url = fmt.Sprintf("git@%s:%s/%s.git", r.host(), owner, name)
	default:
		return Reference{}, errors.ReferenceFormatError(raw, "unknown protocol "+string(p)).Build()
	}
	return build(raw, p, owner, name, url)
}

// ResolveInOwner resolves a batch entry. A bare repository name is qualified
// with owner; shorthand and URLs are resolved as by Resolve.
func (r *Resolver) ResolveInOwner(raw, owner string, p Protocol) (Reference, error) {
	in := strings.TrimSpace(raw)
	if in != "" && !strings.ContainsAny(in, "/:@") {
		if !validSegment(owner) {
			return Reference{}, errors.ReferenceFormatError(owner, "invalid owner").Build()
		}
		return r.Resolve(owner+"/"+in, p)
	}
	return r.Resolve(raw, p)
}

func (r *Resolver) host() string {
	if r.Host == "" {
		return DefaultHost
	}
	return r.Host
}

func build(raw string, p Protocol, owner, repo, url string) (Reference, error) {
	name := strings.TrimSuffix(repo, ".git")
	if !validSegment(owner) {
		return Reference{}, errors.ReferenceFormatError(raw, "invalid owner segment").Build()
	}
	if !validSegment(name) {
		return Reference{}, errors.ReferenceFormatError(raw, "invalid repository name").Build()
	}
	return Reference{
		Raw:      raw,
		Protocol: p,
		Owner:    owner,
		Name:     name,
		URL:      url,
		DirName:  name,
	}, nil
}

func validSegment(s string) bool {
	return s != "." && s != ".." && segmentRe.MatchString(s)
}
