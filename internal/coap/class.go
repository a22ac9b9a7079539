package coap

import (
	"fmt"
	"net/url"
	"strings"
)

// CoAP option numbers this module's partitioner and codec reference (§6).
const (
	OptionUriHost     uint16 = 3
	OptionObserve     uint16 = 6
	OptionUriPort     uint16 = 7
	OptionOSCORE      uint16 = 9
	OptionProxyUri    uint16 = 35
	OptionProxyScheme uint16 = 39
	OptionNoResponse  uint16 = 258
)

// Class identifies which of an OSCORE message's three option partitions an
// option number belongs to.
type Class int

const (
	// ClassE options are encrypted and integrity-protected: serialized into
	// the plaintext before AEAD sealing.
	ClassE Class = iota
	// ClassU options stay outer, unprotected, visible to proxies.
	ClassU
	// ClassI options are integrity-protected but not encrypted. Empty in
	// this specification (kept for wire/API stability against a future
	// extension that populates it).
	ClassI
)

// classU is the fixed set of option numbers carried unprotected (§4.7).
// Observe and No-Response are members of classU *and* pass classE's
// exclusion test below - both partitions carry them, matching the
// draft's treatment of Observe (outer token for notification ordering,
// inner copy protected like any other option) and No-Response.
var classU = map[uint16]bool{
	OptionUriHost:     true,
	OptionObserve:     true,
	OptionUriPort:     true,
	OptionOSCORE:      true,
	OptionProxyUri:    true,
	OptionProxyScheme: true,
	OptionNoResponse:  true,
}

// classEExcluded are the only option numbers classE does NOT carry.
// Everything else - including unknown option numbers - is Class E by
// default.
var classEExcluded = map[uint16]bool{
	OptionUriHost:     true,
	OptionUriPort:     true,
	OptionOSCORE:      true,
	OptionProxyUri:    true,
	OptionProxyScheme: true,
}

// Is reports whether num belongs to class.
func Is(num uint16, class Class) bool {
	switch class {
	case ClassU:
		return classU[num]
	case ClassE:
		return !classEExcluded[num]
	case ClassI:
		return false
	default:
		return false
	}
}

// Filter returns the subsequence of opts belonging to class, in order,
// with Proxy-Uri rewritten to scheme://host[:port] when it's being kept
// as a Class U option (§4.7 edge case: path/query carry user intent and
// belong in Class E via Uri-Path/Uri-Query, never duplicated outward).
func Filter(opts Options, class Class) (Options, error) {
	var out Options
	for _, o := range opts {
		if !Is(o.Number, class) {
			continue
		}
		if class == ClassU && o.Number == OptionProxyUri {
			rewritten, err := RewriteProxyURI(o.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, Option{Number: o.Number, Value: rewritten})
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// EncodedLength returns the number of bytes Encode(opts, class, ...) would
// write, without allocating. Skipped options contribute only their raw
// delta to the next kept option - absolute option numbers are computed
// from the full original sequence, not renumbered.
func EncodedLength(opts Options, class Class) (int, error) {
	filtered, err := Filter(opts, class)
	if err != nil {
		return 0, err
	}
	_, length := Sizing(filtered)
	return length, nil
}

// EncodeClass emits the class-filtered subsequence of opts into out, which
// must be sized exactly via EncodedLength.
func EncodeClass(opts Options, class Class, out []byte) (int, error) {
	filtered, err := Filter(opts, class)
	if err != nil {
		return 0, err
	}
	return Encode(filtered, out)
}

// URIError reports a Proxy-Uri rewrite failure.
type URIError struct {
	Kind string
	Err  string
}

func (e *URIError) Error() string {
	return fmt.Sprintf("coap: proxy-uri %s: %s", e.Kind, e.Err)
}

// RewriteProxyURI parses a Proxy-Uri option value and returns just its
// scheme://host[:port] prefix, stripping path, query and fragment, which
// travel instead as Class E Uri-Path/Uri-Query options.
func RewriteProxyURI(value []byte) ([]byte, error) {
	u, err := url.Parse(string(value))
	if err != nil {
		return nil, &URIError{"UriParserError", err.Error()}
	}
	if u.Fragment != "" {
		return nil, &URIError{"UriInvalidFragment", "proxy-uri must not carry a fragment"}
	}
	switch strings.ToLower(u.Scheme) {
	case "coap", "coaps", "http", "https":
	default:
		return nil, &URIError{"UriInvalidProtocol", fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}

	rewritten := u.Scheme + "://" + u.Host
	return []byte(rewritten), nil
}
