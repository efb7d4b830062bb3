package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	maxNameRunes    = 120
	maxSummaryRunes = 500
)

type industry struct {
	name  string
	terms []string
}

// Table order decides ties: the first industry with a hit wins.
var industryTable = []industry{
	{"banking", []string{"banking", "bank", "banks"}},
	{"insurance", []string{"insurance", "insurer", "insurers", "underwriting", "reinsurance"}},
	{"asset management", []string{"asset management", "asset manager", "fund management"}},
	{"wealth management", []string{"wealth management", "wealth manager", "family office"}},
	{"payments", []string{"payments", "payment", "card issuing", "acquiring"}},
	{"capital markets", []string{"capital markets", "trading", "securities", "brokerage"}},
	{"fintech", []string{"fintech", "neobank"}},
	{"private equity", []string{"private equity", "buyout"}},
	{"pensions", []string{"pension", "pensions", "retirement"}},
	{"lending", []string{"lending", "mortgage", "mortgages", "loan", "loans", "credit"}},
}

var serviceTerms = []string{
	"analytics", "cloud", "compliance", "cost reduction", "cyber", "data",
	"digital", "due diligence", "esg", "governance", "integration",
	"operating model", "regulatory", "risk", "strategy", "transformation",
}

var objectiveHeadings = []string{"objectives", "goals", "key objectives", "project objectives", "aims"}

var deliverableHeadings = []string{"deliverables", "key deliverables", "outputs", "project deliverables"}

var (
	labelPattern  = regexp.MustCompile(`^\s*(?:[-*]\s*)?([A-Za-z][A-Za-z ]{0,30}?)\s*:\s*(.*)$`)
	bulletPattern = regexp.MustCompile(`^\s*(?:[-*•+]|\d{1,2}[.)])\s+(.+?)\s*$`)
	forPattern    = regexp.MustCompile(`\bfor\s+((?:the\s+)?[A-Z][\w&'-]*(?:\s+(?:[A-Z][\w&'-]*|&|of))*)`)
	datePattern   = regexp.MustCompile(`(?i)\b(\d{4}-\d{2}-\d{2})\b|\b(\d{1,2}/\d{1,2}/\d{4})\b|\b((?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4})\b`)
	moneyPattern  = regexp.MustCompile(`(?i)(?:([$£€])\s?|\b(USD|GBP|EUR|CHF|AUD|CAD|JPY|SGD)\s?)(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)\s*(bn|billion|b|million|m|thousand|k)?\b`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

var knownLabels = map[string]struct{}{
	"project": {}, "project name": {}, "name": {}, "client": {}, "industry": {},
	"start": {}, "start date": {}, "end": {}, "end date": {}, "due": {},
	"due date": {}, "deadline": {}, "budget": {},
}

var currencySymbols = map[string]string{"$": "USD", "£": "GBP", "€": "EUR"}

var monthNames = map[string]struct{}{
	"january": {}, "february": {}, "march": {}, "april": {}, "may": {}, "june": {},
	"july": {}, "august": {}, "september": {}, "october": {}, "november": {}, "december": {},
}

type document struct {
	text   string
	lines  []string
	labels map[string]string
}

func newDocument(text string) *document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	d := &document{
		text:   text,
		lines:  strings.Split(text, "\n"),
		labels: make(map[string]string),
	}
	for _, line := range d.lines {
		label, value, ok := splitLabel(line)
		if !ok || value == "" {
			continue
		}
		if _, known := knownLabels[label]; !known {
			continue
		}
		if _, seen := d.labels[label]; !seen {
			d.labels[label] = value
		}
	}
	return d
}

func splitLabel(line string) (label, value string, ok bool) {
	m := labelPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(m[1])), strings.TrimSpace(m[2]), true
}

func (d *document) label(names ...string) string {
	for _, n := range names {
		if v := d.labels[n]; v != "" {
			return v
		}
	}
	return ""
}

func (d *document) isKnownLabelLine(line string) bool {
	label, _, ok := splitLabel(line)
	if !ok {
		return false
	}
	_, known := knownLabels[label]
	return known
}

func (d *document) name() string {
	if v := d.label("project name", "project", "name"); v != "" {
		return truncateRunes(v, maxNameRunes)
	}
	for _, line := range d.lines {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if line == "" || d.isKnownLabelLine(line) || isHeading(line) {
			continue
		}
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			line = m[1]
		}
		return truncateRunes(line, maxNameRunes)
	}
	return ""
}

func (d *document) client() string {
	if v := d.label("client"); v != "" {
		return v
	}
	for _, m := range forPattern.FindAllStringSubmatch(d.text, -1) {
		candidate := strings.TrimPrefix(m[1], "the ")
		candidate = strings.TrimSuffix(strings.TrimSuffix(candidate, " of"), " &")
		first := strings.ToLower(strings.Fields(candidate)[0])
		if _, isMonth := monthNames[first]; isMonth {
			continue
		}
		return candidate
	}
	return ""
}

func (d *document) industry() string {
	if v := d.label("industry"); v != "" {
		return strings.ToLower(v)
	}
	lower := strings.ToLower(d.text)
	for _, entry := range industryTable {
		for _, term := range entry.terms {
			if containsTerm(lower, term) {
				return entry.name
			}
		}
	}
	return ""
}

func (d *document) dates() (start, end string) {
	if v := d.label("start", "start date"); v != "" {
		if found := findDates(v); len(found) > 0 {
			start = found[0]
		}
	}
	if v := d.label("end", "end date", "due", "due date", "deadline"); v != "" {
		if found := findDates(v); len(found) > 0 {
			end = found[0]
		}
	}
	if start != "" && end != "" {
		return start, end
	}

	var unlabelled []string
	for _, line := range d.lines {
		if d.isKnownLabelLine(line) {
			continue
		}
		unlabelled = append(unlabelled, findDates(line)...)
	}
	for _, date := range unlabelled {
		switch {
		case start == "" && date != end:
			start = date
		case end == "" && date != start:
			end = date
		}
	}
	return start, end
}

func (d *document) budget() *Budget {
	if v := d.label("budget"); v != "" {
		if b := findBudget(v); b != nil {
			return b
		}
	}
	return findBudget(d.text)
}

func (d *document) bullets(headings []string) []string {
	var items []string
	for i := 0; i < len(d.lines); i++ {
		inline, ok := headingMatch(d.lines[i], headings)
		if !ok {
			continue
		}
		for _, part := range strings.FieldsFunc(inline, func(r rune) bool { return r == ';' || r == ',' }) {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		for j := i + 1; j < len(d.lines); j++ {
			line := strings.TrimSpace(d.lines[j])
			if line == "" {
				continue
			}
			m := bulletPattern.FindStringSubmatch(line)
			if m == nil {
				i = j - 1
				break
			}
			items = append(items, m[1])
			i = j
		}
		if len(items) > 0 {
			return items
		}
	}
	return items
}

func (d *document) summary() string {
	kept := make([]string, 0, len(d.lines))
	for _, line := range d.lines {
		if d.isKnownLabelLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	collapsed := strings.TrimSpace(spacePattern.ReplaceAllString(strings.Join(kept, " "), " "))
	return truncateRunes(collapsed, maxSummaryRunes)
}

// headingMatch reports whether line is one of headings, returning any inline
// content after a trailing colon
func headingMatch(line string, headings []string) (string, bool) {
	line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
	head, inline := line, ""
	if idx := strings.Index(line, ":"); idx >= 0 {
		head, inline = line[:idx], strings.TrimSpace(line[idx+1:])
	}
	head = strings.ToLower(strings.TrimSpace(head))
	for _, h := range headings {
		if head == h {
			return inline, true
		}
	}
	return "", false
}

func isHeading(line string) bool {
	for _, set := range [][]string{objectiveHeadings, deliverableHeadings} {
		if _, ok := headingMatch(line, set); ok {
			return true
		}
	}
	return false
}

func findDates(s string) []string {
	var out []string
	for _, m := range datePattern.FindAllStringSubmatch(s, -1) {
		if date, ok := normalizeDate(m); ok {
			out = append(out, date)
		}
	}
	return out
}

func normalizeDate(m []string) (string, bool) {
	var (
		t   time.Time
		err error
	)
	switch {
	case m[1] != "":
		t, err = time.Parse("2006-01-02", m[1])
	case m[2] != "":
		t, err = time.Parse("2/1/2006", m[2])
	case m[3] != "":
		parts := strings.Fields(strings.ReplaceAll(m[3], ",", " "))
		month := strings.ToUpper(parts[0][:1]) + strings.ToLower(parts[0][1:])
		t, err = time.Parse("January 2, 2006", fmt.Sprintf("%s %s, %s", month, parts[1], parts[2]))
	default:
		return "", false
	}
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// ParseBudget reads a currency amount such as "$1.2m" or "EUR 250,000"
func ParseBudget(s string) *Budget {
	return findBudget(s)
}

func findBudget(s string) *Budget {
	m := moneyPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	currency := currencySymbols[m[1]]
	if currency == "" {
		currency = strings.ToUpper(m[2])
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[3], ",", ""), 64)
	if err != nil {
		return nil
	}
	switch strings.ToLower(m[4]) {
	case "k", "thousand":
		amount *= 1e3
	case "m", "million":
		amount *= 1e6
	case "b", "bn", "billion":
		amount *= 1e9
	}
	return &Budget{Currency: currency, Amount: amount}
}

// containsTerm reports whether term occurs in lower as a whole word
func containsTerm(lower, term string) bool {
	for offset := 0; ; {
		idx := strings.Index(lower[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(term)
		before, _ := utf8.DecodeLastRuneInString(lower[:start])
		after, _ := utf8.DecodeRuneInString(lower[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(lower) || !isWordRune(after)) {
			return true
		}
		offset = start + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, " "); idx > max/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
