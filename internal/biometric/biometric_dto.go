package biometric

import (
	"encoding/json"
	"strings"
	"time"
)

const vendorTimeLayout = "2006-01-02 15:04:05"

// ReportQuery selects a report window for one or more organizational scope
// codes, or a single person.
type ReportQuery struct {
	Begin      time.Time
	End        time.Time
	ScopeCodes []string
	PersonCode string
}

// ReportRecord is one vendor attendance report entry. Either side of the
// actual begin/end pair may be empty, and the self-reported durations are
// not fully trusted by downstream derivation.
type ReportRecord struct {
	PersonCode      string  `json:"personCode"`
	PersonName      string  `json:"personName"`
	PlanBegin       string  `json:"planBeginTime"`
	PlanEnd         string  `json:"planEndTime"`
	ActualBegin     string  `json:"actualBeginTime"`
	ActualEnd       string  `json:"actualEndTime"`
	LateDuration    float64 `json:"lateDuration"`
	EarlyDuration   float64 `json:"earlyDuration"`
	AbsenceDuration float64 `json:"absenceDuration"`
	NormalDuration  float64 `json:"normalDuration"`
	AllDuration     float64 `json:"allDuration"`
}

// ParseTime decodes a vendor timestamp field, treating empty and malformed
// values as absent.
func ParseTime(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	t, err := time.Parse(vendorTimeLayout, v)
	if err != nil {
		return nil
	}
	return &t
}

// Person is one vendor directory entry. The national ID lives somewhere in
// the custom attribute list under an inconsistent field name.
type Person struct {
	PersonCode   string        `json:"personCode"`
	Name         string        `json:"name"`
	CustomFields []CustomField `json:"customFields"`
}

type CustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// nationalIDAliases is the case-insensitive set of custom-field names the
// vendor has been observed using for the national ID.
var nationalIDAliases = map[string]struct{}{
	"pinfl":       {},
	"jshshir":     {},
	"national_id": {},
	"nid":         {},
}

func (p Person) NationalID() string {
	for _, f := range p.CustomFields {
		if _, ok := nationalIDAliases[strings.ToLower(strings.TrimSpace(f.Name))]; ok {
			if v := strings.TrimSpace(f.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// envelope is the vendor response wrapper. The row array arrives under
// either "record" or "list" depending on the endpoint, and paging completion
// is signalled either by an explicit nextPage flag or by total/page math.
type envelope struct {
	Code int      `json:"code"`
	Msg  string   `json:"msg"`
	Data pageData `json:"data"`
}

type pageData struct {
	Record   []json.RawMessage `json:"record"`
	List     []json.RawMessage `json:"list"`
	PageNo   int               `json:"pageNo"`
	PageSize int               `json:"pageSize"`
	NextPage *bool             `json:"nextPage"`
	Total    *int              `json:"total"`
}

func (d pageData) rows() []json.RawMessage {
	if len(d.Record) > 0 {
		return d.Record
	}
	return d.List
}

func (d pageData) hasNext() bool {
	if d.NextPage != nil {
		return *d.NextPage
	}
	if d.Total != nil && d.PageSize > 0 {
		return d.PageNo*d.PageSize < *d.Total
	}
	// No paging metadata at all: a full page means there may be more.
	return d.PageSize > 0 && len(d.rows()) == d.PageSize
}
