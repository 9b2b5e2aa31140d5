package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"strings"
)

// ErrDRMProtected is returned for books whose content is encrypted.
var ErrDRMProtected = errors.New("epub: DRM-protected content cannot be imported")

type encryptionXML struct {
	XMLName       xml.Name        `xml:"encryption"`
	EncryptedData []encryptedData `xml:"EncryptedData"`
}

type encryptedData struct {
	Method encryptionMethod `xml:"EncryptionMethod"`
	Cipher cipherData       `xml:"CipherData"`
}

type encryptionMethod struct {
	Algorithm string `xml:"Algorithm,attr"`
}

type cipherData struct {
	Reference cipherReference `xml:"CipherReference"`
}

type cipherReference struct {
	URI string `xml:"URI,attr"`
}

// checkForDRM rejects books carrying DRM. An Adobe rights file means
// ADEPT protection; an encryption manifest is acceptable only when it
// covers nothing but obfuscated fonts.
func checkForDRM(zr *zip.Reader) error {
	for _, f := range zr.File {
		switch f.Name {
		case "META-INF/rights.xml":
			return ErrDRMProtected

		case "META-INF/encryption.xml":
			data, err := readFile(zr, f.Name)
			if err != nil {
				return ErrDRMProtected
			}
			encrypted, err := hasEncryptedContent(data)
			if err != nil || encrypted {
				return ErrDRMProtected
			}
		}
	}
	return nil
}

// hasEncryptedContent reports whether encryption.xml lists any content
// file under a non-obfuscation algorithm.
func hasEncryptedContent(data []byte) (bool, error) {
	var enc encryptionXML
	if err := xml.Unmarshal(data, &enc); err != nil {
		return false, err
	}

	for _, ed := range enc.EncryptedData {
		if isFontObfuscation(ed.Method.Algorithm) {
			continue
		}
		if isContentFile(ed.Cipher.Reference.URI) {
			return true, nil
		}
	}
	return false, nil
}

// isFontObfuscation reports whether the algorithm is a known font
// mangling scheme. Obfuscated fonts are not DRM; the text stays
// readable.
func isFontObfuscation(algorithm string) bool {
	switch algorithm {
	case "http://www.idpf.org/2008/embedding",
		"http://ns.adobe.com/pdf/enc#RC":
		return true
	}
	return strings.Contains(algorithm, "obfuscation")
}

// isContentFile reports whether the URI names a file whose encryption
// would make the book unreadable.
func isContentFile(uri string) bool {
	uri = strings.ToLower(uri)
	for _, suffix := range []string{".xhtml", ".html", ".htm", ".xml", ".css"} {
		if strings.HasSuffix(uri, suffix) {
			return true
		}
	}
	return false
}
