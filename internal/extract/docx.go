package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// extractDocx pulls paragraph texts out of an OOXML wordprocessing archive.
// Non-empty paragraphs are joined one per line in document order. Legacy .doc
// uploads go through the same path; genuine CFB binaries fail the zip open
// and degrade to empty text like any other unreadable file.
func extractDocx(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", err
			}
			break
		}
	}
	if docXML == nil {
		return "", errors.New("archive has no word/document.xml")
	}
	defer docXML.Close()

	return readParagraphs(docXML)
}

// readParagraphs walks the document XML collecting the text runs (<w:t>) of
// each paragraph (<w:p>).
func readParagraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = inPara
			case "tab":
				if inPara {
					current.WriteByte('\t')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara {
					if text := current.String(); strings.TrimSpace(text) != "" {
						paragraphs = append(paragraphs, text)
					}
					inPara = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
