package locator

import (
	"fmt"
	"regexp"
	"strings"
)

// Identifier shapes. An IMSI is at most 15 digits (MCC+MNC+MSIN); AMF tables
// print the full 15 or, for 2-digit MNCs in some networks, 14. An IMEI is
// 15 digits and an IMEISV 16.
var (
	imsiShape = regexp.MustCompile(`^\d{14,15}$`)
	imeiShape = regexp.MustCompile(`^\d{15,16}$`)
)

// ValidateIMSI checks that imsi is a 14 or 15 digit string.
func ValidateIMSI(imsi string) error {
	if !imsiShape.MatchString(imsi) {
		return fmt.Errorf("%w: IMSI %q must be 14 or 15 digits", ErrInvalidIdentifier, imsi)
	}
	return nil
}

// ValidateIMEI checks that imei is a 15 digit IMEI or 16 digit IMEISV.
func ValidateIMEI(imei string) error {
	if !imeiShape.MatchString(imei) {
		return fmt.Errorf("%w: IMEI %q must be 15 or 16 digits", ErrInvalidIdentifier, imei)
	}
	return nil
}

// imsiAfterKeyword finds the first 15 digit run following an IMSI keyword.
var imsiAfterKeyword = regexp.MustCompile(`(?is)IMSI.*?(\d{15})`)

// resolveIMSI recovers the IMSI textually associated with imei. The strict
// rule needs an IMEI keyword, the equipment id, an IMSI keyword and the
// identifier in that order. The fallback looks for an IMSI keyword and
// identifier within proximity bytes after any occurrence of the equipment id;
// a non-positive proximity searches to the end of the text.
func resolveIMSI(text, imei string, proximity int) (string, bool) {
	quoted := regexp.QuoteMeta(imei)

	strict := regexp.MustCompile(`(?s)IMEI.*?` + quoted + `.*?IMSI.*?(\d{15})`)
	if m := strict.FindStringSubmatch(text); m != nil {
		return m[1], true
	}

	offset := 0
	for {
		i := strings.Index(text[offset:], imei)
		if i < 0 {
			return "", false
		}
		start := offset + i + len(imei)
		end := len(text)
		if proximity > 0 && start+proximity < end {
			end = start + proximity
		}
		if m := imsiAfterKeyword.FindStringSubmatch(text[start:end]); m != nil {
			return m[1], true
		}
		offset = start
	}
}
