package extractor

import (
	"strings"

	"expograb/internal/contact"
)

// BlockSelector locates the contact area of a company page. CSS wins over
// XPath when both are set. With Strict unset a page lacking the area is
// searched as a whole.
type BlockSelector struct {
	CSS    string `yaml:"css"`
	XPath  string `yaml:"xpath"`
	Strict bool   `yaml:"strict"`
}

func (s BlockSelector) empty() bool {
	return s.CSS == "" && s.XPath == ""
}

// ContactBlock cuts the contact area out of a company page. found reports
// whether the selector matched. When it did not, the block is nil for a
// strict selector and the page body otherwise.
func ContactBlock(markup string, sel BlockSelector) (block *contact.Block, found bool, err error) {
	e, err := NewExtractor(markup)
	if err != nil {
		return nil, false, err
	}
	return e.ContactBlock(sel)
}

// ContactBlock is ContactBlock on an already parsed page.
func (e *Extractor) ContactBlock(sel BlockSelector) (*contact.Block, bool, error) {
	if sel.empty() {
		body, err := e.extractHTML()
		if err != nil {
			return nil, false, err
		}
		return contact.NewBlock(body), true, nil
	}

	var (
		area string
		err  error
	)
	if sel.CSS != "" {
		area, err = e.extractByCSS(sel.CSS)
	} else {
		area, err = e.extractByXPath(sel.XPath)
	}
	if err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(area) != "" {
		return contact.NewBlock(area), true, nil
	}

	if sel.Strict {
		return nil, false, nil
	}
	body, err := e.extractHTML()
	if err != nil {
		return nil, false, err
	}
	return contact.NewBlock(body), false, nil
}
