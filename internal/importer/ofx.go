package importer

import (
	"encoding/xml"
	"regexp"
	"strings"
	"unicode"

	"github.com/finstat-dev/finstat/internal/model"
)

// OFXExtractor parses OFX (Open Financial Exchange) statements, both the XML
// based 2.x documents and SGML 1.x documents without closing leaf tags.
type OFXExtractor struct{}

const (
	ofxTransaction = "STMTTRN"
	ofxPosted      = "DTPOSTED"
	ofxAmount      = "TRNAMT"
	ofxMemo        = "MEMO"
	ofxName        = "NAME"
)

// ofxNode is a generic element of the OFX document tree.
type ofxNode struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []ofxNode `xml:",any"`
}

// Key returns the format key.
func (p *OFXExtractor) Key() string { return "ofx" }

// DisplayName returns the human readable format name.
func (p *OFXExtractor) DisplayName() string { return "OFX (Open Financial Exchange)" }

// Extension returns the file extension the format uses.
func (p *OFXExtractor) Extension() string { return "ofx" }

// Parse walks the OFX element tree and reads every STMTTRN element, however
// deeply it is nested.
func (p *OFXExtractor) Parse(raw string) ([]model.Transaction, error) {
	// Skip the plain-text OFX header that may precede the XML.
	start := strings.Index(raw, "<")
	if start < 0 {
		return nil, &MalformedInputError{Format: p.Key(), Reason: "no XML content"}
	}

	var root ofxNode
	if err := xml.Unmarshal([]byte(closeLeafTags(raw[start:])), &root); err != nil {
		return nil, &MalformedInputError{Format: p.Key(), Reason: "invalid XML", Err: err}
	}

	var txns []model.Transaction
	var walkErr error
	var walk func(nodes []ofxNode)
	walk = func(nodes []ofxNode) {
		for _, n := range nodes {
			if walkErr != nil {
				return
			}
			if n.XMLName.Local == ofxTransaction {
				txn, err := p.transaction(n, len(txns)+1)
				if err != nil {
					walkErr = err
					return
				}
				txns = append(txns, txn)
				continue
			}
			walk(n.Children)
		}
	}
	walk([]ofxNode{root})

	if walkErr != nil {
		return nil, walkErr
	}
	return txns, nil
}

var ofxLeafTag = regexp.MustCompile(`<([A-Za-z0-9.]+)>([^<]*)`)

// closeLeafTags adds the closing tag SGML OFX omits after an element's text.
// Elements that are already closed are left alone.
func closeLeafTags(body string) string {
	var b strings.Builder
	last := 0
	for _, m := range ofxLeafTag.FindAllStringSubmatchIndex(body, -1) {
		name := body[m[2]:m[3]]
		text := body[m[4]:m[5]]
		value := strings.TrimRightFunc(text, unicode.IsSpace)

		b.WriteString(body[last:m[4]])
		b.WriteString(value)
		closing := "</" + name + ">"
		if strings.TrimSpace(value) != "" && !strings.HasPrefix(body[m[5]:], closing) {
			b.WriteString(closing)
		}
		b.WriteString(text[len(value):])
		last = m[1]
	}
	b.WriteString(body[last:])
	return b.String()
}

// transaction reads one STMTTRN element; seq is its 1-based position.
func (p *OFXExtractor) transaction(n ofxNode, seq int) (model.Transaction, error) {
	fields := make(map[string]string, len(n.Children))
	for _, c := range n.Children {
		fields[c.XMLName.Local] = strings.TrimSpace(c.Text)
	}

	posted := fields[ofxPosted]
	if len(posted) < 8 {
		return model.Transaction{}, &MalformedInputError{Format: p.Key(), Line: seq, Reason: "missing or short " + ofxPosted}
	}
	date := posted[0:4] + "-" + posted[4:6] + "-" + posted[6:8]

	value, err := parseValue(p.Key(), seq, fields[ofxAmount])
	if err != nil {
		return model.Transaction{}, err
	}

	desc := fields[ofxMemo]
	if desc == "" {
		desc = fields[ofxName]
	}
	return model.New(date, desc, value), nil
}
