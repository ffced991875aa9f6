// Package record reads the few fields of a raw brokerage transaction needed to
// index it. The rest of the record is kept as is.
package record

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/tdasync"
	"github.com/shopspring/decimal"
)

// JSON paths of the indexed fields.
const (
	idPath          = "$.transactionId"
	datePath        = "$.transactionDate"
	typePath        = "$.type"
	descriptionPath = "$.description"
	amountPath      = "$.netAmount"
)

// Fields are the indexed fields of a record.
type Fields struct {
	ID          string    // transactionId, or a hash of the record when missing.
	RawDate     string    // transactionDate as sent by the brokerage.
	Date        time.Time // decoded RawDate.
	Type        string
	Description string
	NetAmount   decimal.Decimal
}

// Extract decodes the indexed fields of raw. A record without a valid
// transactionDate cannot be ordered and is rejected with a parse error.
func Extract(raw json.RawMessage) (Fields, error) {
	var jobj any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber() // ids do not fit in a float64.
	if err := dec.Decode(&jobj); err != nil {
		return Fields{}, tdasync.NewParseError("decode record", err)
	}
	if _, ok := jobj.(map[string]any); !ok {
		return Fields{}, tdasync.NewParseError("decode record", fmt.Errorf("record is not a json object: %.40s", raw))
	}

	var f Fields
	rawDate, ok := lookup(jobj, datePath).(string)
	if !ok {
		return Fields{}, tdasync.NewParseError("decode record", fmt.Errorf("missing %s in %.80s", datePath, raw))
	}
	date, err := tdasync.DecodeTimestamp(rawDate)
	if err != nil {
		return Fields{}, err
	}
	f.RawDate, f.Date = rawDate, date

	switch id := lookup(jobj, idPath).(type) {
	case json.Number:
		f.ID = id.String()
	case string:
		f.ID = id
	default:
		// no id: the content identifies the record.
		f.ID = fmt.Sprintf("sha1:%x", sha1.Sum(raw))
	}

	f.Type, _ = lookup(jobj, typePath).(string)
	f.Description, _ = lookup(jobj, descriptionPath).(string)

	switch v := lookup(jobj, amountPath).(type) {
	case json.Number:
		if f.NetAmount, err = decimal.NewFromString(v.String()); err != nil {
			return Fields{}, tdasync.NewParseError("decode record", fmt.Errorf("invalid %s %q: %w", amountPath, v, err))
		}
	case string:
		if f.NetAmount, err = decimal.NewFromString(v); err != nil {
			return Fields{}, tdasync.NewParseError("decode record", fmt.Errorf("invalid %s %q: %w", amountPath, v, err))
		}
	}
	return f, nil
}

// lookup returns the value at path, nil when absent.
func lookup(jobj any, path string) any {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil
	}
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil
		}
		jval = jlist[0]
	}
	return jval
}
