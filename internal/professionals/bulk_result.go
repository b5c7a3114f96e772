package professionals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	StatusCreated = "created"
	StatusUpdated = "updated"
	StatusFailed  = "failed"
)

// BulkResultItem is the outcome of one submitted row. Index is the row's
// position in the submitted array. Fields the client does not model are
// kept in Extra and written back unchanged by MarshalJSON.
type BulkResultItem struct {
	Index  int
	Status string
	Error  string
	Extra  map[string]json.RawMessage
}

// ID returns the server-assigned id of the created or updated record, if sent.
func (i BulkResultItem) ID() (int64, bool) {
	raw, ok := i.Extra["id"]
	if !ok {
		return 0, false
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, false
	}
	return id, true
}

func (i BulkResultItem) Failed() bool {
	return strings.EqualFold(i.Status, StatusFailed)
}

func (i *BulkResultItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*i = BulkResultItem{}
	if raw, ok := fields["index"]; ok {
		if err := json.Unmarshal(raw, &i.Index); err != nil {
			return fmt.Errorf("bulk result index: %w", err)
		}
		delete(fields, "index")
	}
	if raw, ok := fields["status"]; ok {
		i.Status = looseString(raw)
		delete(fields, "status")
	}
	if raw, ok := fields["error"]; ok {
		i.Error = looseString(raw)
		delete(fields, "error")
	}
	if len(fields) > 0 {
		i.Extra = fields
	}
	return nil
}

func (i BulkResultItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(i.Extra)+3)
	for k, v := range i.Extra {
		out[k] = v
	}
	var err error
	if out["index"], err = json.Marshal(i.Index); err != nil {
		return nil, err
	}
	if out["status"], err = json.Marshal(i.Status); err != nil {
		return nil, err
	}
	if i.Error != "" {
		if out["error"], err = json.Marshal(i.Error); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// looseString reads a JSON string, or keeps the literal text of any other
// value so it can still be shown.
func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	return string(bytes.TrimSpace(raw))
}

// BulkResult is the body of a bulk upsert response, returned as sent. The
// counters are not reconciled against Results.
type BulkResult struct {
	Created int
	Updated int
	Failed  int
	Results []BulkResultItem
	Extra   map[string]json.RawMessage
}

// Total is the number of per-row results received, zero when absent.
func (r *BulkResult) Total() int {
	if r == nil {
		return 0
	}
	return len(r.Results)
}

// ItemFor finds the result whose Index matches the submitted position.
func (r *BulkResult) ItemFor(index int) (BulkResultItem, bool) {
	if r == nil {
		return BulkResultItem{}, false
	}
	for _, item := range r.Results {
		if item.Index == index {
			return item, true
		}
	}
	return BulkResultItem{}, false
}

func (r *BulkResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = BulkResult{}
	counters := map[string]*int{"created": &r.Created, "updated": &r.Updated, "failed": &r.Failed}
	for key, dst := range counters {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("bulk result %s: %w", key, err)
		}
		delete(fields, key)
	}
	if raw, ok := fields["results"]; ok {
		if err := json.Unmarshal(raw, &r.Results); err != nil {
			return fmt.Errorf("bulk result results: %w", err)
		}
		delete(fields, "results")
	}
	if len(fields) > 0 {
		r.Extra = fields
	}
	return nil
}

func (r BulkResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Extra)+4)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["created"] = r.Created
	out["updated"] = r.Updated
	out["failed"] = r.Failed
	results := r.Results
	if results == nil {
		results = []BulkResultItem{}
	}
	out["results"] = results
	return json.Marshal(out)
}

// Indicator is how a row status should be styled.
type Indicator string

const (
	IndicatorSuccess Indicator = "success"
	IndicatorInfo    Indicator = "info"
	IndicatorError   Indicator = "error"
	IndicatorDefault Indicator = "default"
)

type Presentation struct {
	Indicator Indicator
	// Label is always the status exactly as the server sent it.
	Label string
}

// PresentStatus maps a row status case-insensitively. Unknown statuses keep
// the default style.
func PresentStatus(status string) Presentation {
	switch strings.ToLower(status) {
	case StatusFailed:
		return Presentation{Indicator: IndicatorError, Label: status}
	case StatusCreated:
		return Presentation{Indicator: IndicatorSuccess, Label: status}
	case StatusUpdated:
		return Presentation{Indicator: IndicatorInfo, Label: status}
	default:
		return Presentation{Indicator: IndicatorDefault, Label: status}
	}
}
