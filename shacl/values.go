package shacl

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/geoknoesis/shacl-go/rdf"
)

func xsd(local string) rdf.IRI { return rdf.IRI{Value: rdf.XSDNamespace + local} }

var (
	xsdFloat    = xsd("float")
	xsdDateTime = xsd("dateTime")
	xsdDate     = xsd("date")
	xsdTime     = xsd("time")
)

var (
	integerLexical  = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalLexical  = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)$`)
	doubleLexical   = regexp.MustCompile(`^([+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?|[+-]?INF|NaN)$`)
	dateTimeLexical = regexp.MustCompile(`^-?[0-9]{4,}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}(\.[0-9]+)?(Z|[+-][0-9]{2}:[0-9]{2})?$`)
	dateLexical     = regexp.MustCompile(`^-?[0-9]{4,}-[0-9]{2}-[0-9]{2}(Z|[+-][0-9]{2}:[0-9]{2})?$`)
	timeLexical     = regexp.MustCompile(`^[0-9]{2}:[0-9]{2}:[0-9]{2}(\.[0-9]+)?(Z|[+-][0-9]{2}:[0-9]{2})?$`)
	gYearLexical    = regexp.MustCompile(`^-?[0-9]{4,}(Z|[+-][0-9]{2}:[0-9]{2})?$`)
	durationLexical = regexp.MustCompile(`^-?P([0-9]+Y)?([0-9]+M)?([0-9]+D)?(T([0-9]+H)?([0-9]+M)?([0-9]+(\.[0-9]+)?S)?)?$`)
	languageLexical = regexp.MustCompile(`^[a-zA-Z]{1,8}(-[a-zA-Z0-9]{1,8})*$`)
)

// integerRange bounds the derived integer types; nil ends mean unbounded.
type integerRange struct{ min, max *big.Int }

func bound(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

var integerTypes = map[string]integerRange{
	"integer":            {},
	"long":               {bound("-9223372036854775808"), bound("9223372036854775807")},
	"int":                {bound("-2147483648"), bound("2147483647")},
	"short":              {bound("-32768"), bound("32767")},
	"byte":               {bound("-128"), bound("127")},
	"nonNegativeInteger": {min: bound("0")},
	"positiveInteger":    {min: bound("1")},
	"nonPositiveInteger": {max: bound("0")},
	"negativeInteger":    {max: bound("-1")},
	"unsignedLong":       {bound("0"), bound("18446744073709551615")},
	"unsignedInt":        {bound("0"), bound("4294967295")},
	"unsignedShort":      {bound("0"), bound("65535")},
	"unsignedByte":       {bound("0"), bound("255")},
}

// wellFormed reports whether the lexical form of lit is valid for its
// datatype. Datatypes outside the supported XSD set are accepted as is.
func wellFormed(lit rdf.Literal) bool {
	dt := lit.EffectiveDatatype()
	if dt == rdf.RDFLangString {
		return lit.Lang != ""
	}
	if !strings.HasPrefix(dt.Value, rdf.XSDNamespace) {
		return true
	}
	local := strings.TrimPrefix(dt.Value, rdf.XSDNamespace)
	lex := lit.Lexical
	if r, ok := integerTypes[local]; ok {
		if !integerLexical.MatchString(lex) {
			return false
		}
		n, ok := new(big.Int).SetString(strings.TrimPrefix(lex, "+"), 10)
		if !ok {
			return false
		}
		return (r.min == nil || n.Cmp(r.min) >= 0) && (r.max == nil || n.Cmp(r.max) <= 0)
	}
	switch local {
	case "string", "normalizedString", "token", "anyURI":
		return true
	case "boolean":
		return lex == "true" || lex == "false" || lex == "1" || lex == "0"
	case "decimal":
		return decimalLexical.MatchString(lex)
	case "double", "float":
		return doubleLexical.MatchString(lex)
	case "dateTime", "dateTimeStamp":
		if !dateTimeLexical.MatchString(lex) {
			return false
		}
		_, ok := parseDateTime(lex)
		if local == "dateTimeStamp" {
			return ok && hasTimezone(lex)
		}
		return ok
	case "date":
		if !dateLexical.MatchString(lex) {
			return false
		}
		_, ok := parseDate(lex)
		return ok
	case "time":
		return timeLexical.MatchString(lex) && validClock(lex[:8])
	case "gYear":
		return gYearLexical.MatchString(lex)
	case "duration":
		return durationLexical.MatchString(lex) && lex != "P" && !strings.HasSuffix(lex, "T")
	case "language":
		return languageLexical.MatchString(lex)
	}
	return true
}

func hasTimezone(lex string) bool {
	if strings.HasSuffix(lex, "Z") {
		return true
	}
	if len(lex) < 6 {
		return false
	}
	c := lex[len(lex)-6]
	return (c == '+' || c == '-') && lex[len(lex)-3] == ':'
}

func validClock(clock string) bool {
	h, err1 := strconv.Atoi(clock[0:2])
	m, err2 := strconv.Atoi(clock[3:5])
	s, err3 := strconv.Atoi(clock[6:8])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	if h == 24 {
		return m == 0 && s == 0
	}
	return h < 24 && m < 60 && s < 60
}

// parseDateTime parses an xsd:dateTime. Values without a timezone are read
// as UTC. The hour 24:00:00 is the first instant of the next day.
func parseDateTime(lex string) (time.Time, bool) {
	layout := "2006-01-02T15:04:05.999999999"
	if hasTimezone(lex) {
		layout += "Z07:00"
	}
	midnight := strings.Contains(lex, "T24:00:00")
	if midnight {
		lex = strings.Replace(lex, "T24:00:00", "T00:00:00", 1)
	}
	t, err := time.Parse(layout, lex)
	if err != nil {
		return time.Time{}, false
	}
	if midnight {
		t = t.Add(24 * time.Hour)
	}
	return t, true
}

func parseDate(lex string) (time.Time, bool) {
	layout := "2006-01-02"
	if hasTimezone(lex) {
		layout += "Z07:00"
	}
	t, err := time.Parse(layout, lex)
	return t, err == nil
}

func isNumeric(dt rdf.IRI) bool {
	if dt == rdf.XSDDecimal || dt == rdf.XSDDouble || dt == xsdFloat {
		return true
	}
	_, ok := integerTypes[strings.TrimPrefix(dt.Value, rdf.XSDNamespace)]
	return ok && strings.HasPrefix(dt.Value, rdf.XSDNamespace)
}

// numericValue returns the value of a numeric literal. Exact types use a
// rational; floating types fall back to float64 for INF and NaN.
func numericValue(lit rdf.Literal) (*big.Rat, float64, bool) {
	if !wellFormed(lit) {
		return nil, 0, false
	}
	dt := lit.EffectiveDatatype()
	if dt == rdf.XSDDouble || dt == xsdFloat {
		f, err := strconv.ParseFloat(strings.Replace(lit.Lexical, "INF", "Inf", 1), 64)
		if err != nil {
			return nil, 0, false
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, f, true
		}
		return new(big.Rat).SetFloat64(f), f, true
	}
	r, ok := new(big.Rat).SetString(strings.TrimPrefix(lit.Lexical, "+"))
	if !ok {
		return nil, 0, false
	}
	f, _ := r.Float64()
	return r, f, true
}

// compareTerms orders two RDF terms the way SPARQL's < operator does. The
// boolean is false when the terms are not comparable.
func compareTerms(a, b rdf.Term) (int, bool) {
	la, ok1 := a.(rdf.Literal)
	lb, ok2 := b.(rdf.Literal)
	if !ok1 || !ok2 {
		return 0, false
	}
	da, db := la.EffectiveDatatype(), lb.EffectiveDatatype()
	switch {
	case isNumeric(da) && isNumeric(db):
		ra, fa, okA := numericValue(la)
		rb, fb, okB := numericValue(lb)
		if !okA || !okB || math.IsNaN(fa) || math.IsNaN(fb) {
			return 0, false
		}
		if ra != nil && rb != nil {
			return ra.Cmp(rb), true
		}
		return compareFloats(fa, fb), true
	case da == xsdDateTime && db == xsdDateTime:
		ta, okA := parseDateTime(la.Lexical)
		tb, okB := parseDateTime(lb.Lexical)
		if !okA || !okB || hasTimezone(la.Lexical) != hasTimezone(lb.Lexical) {
			return 0, false
		}
		return ta.Compare(tb), true
	case da == xsdDate && db == xsdDate:
		ta, okA := parseDate(la.Lexical)
		tb, okB := parseDate(lb.Lexical)
		if !okA || !okB {
			return 0, false
		}
		return ta.Compare(tb), true
	case da == xsdTime && db == xsdTime:
		if !wellFormed(la) || !wellFormed(lb) {
			return 0, false
		}
		return strings.Compare(la.Lexical, lb.Lexical), true
	case da == rdf.XSDString && db == rdf.XSDString:
		return strings.Compare(la.Lexical, lb.Lexical), true
	case da == rdf.RDFLangString && db == rdf.RDFLangString && la.Lang == lb.Lang:
		return strings.Compare(la.Lexical, lb.Lexical), true
	case da == rdf.XSDBoolean && db == rdf.XSDBoolean:
		va, okA := parseBool(la.Lexical)
		vb, okB := parseBool(lb.Lexical)
		if !okA || !okB {
			return 0, false
		}
		switch {
		case va == vb:
			return 0, true
		case !va:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func parseBool(lex string) (bool, bool) {
	switch lex {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// lexicalForm is the string a term contributes to sh:pattern and the length
// constraints. Blank nodes have none.
func lexicalForm(t rdf.Term) (string, bool) {
	switch v := t.(type) {
	case rdf.IRI:
		return v.Value, true
	case rdf.Literal:
		return v.Lexical, true
	}
	return "", false
}

// langMatches implements RFC 4647 basic filtering as used by sh:languageIn.
func langMatches(tag, langRange string) bool {
	if tag == "" {
		return false
	}
	tag, langRange = strings.ToLower(tag), strings.ToLower(langRange)
	if langRange == "*" {
		return true
	}
	return tag == langRange || strings.HasPrefix(tag, langRange+"-")
}
