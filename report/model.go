// Package report turns a service report into a paginated document: header
// grid values, equipment table, the six narrative sections and the
// activities table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ByLCY/reportpress/chrome"
)

// Report is the input of one generation call. Values are expected to be
// validated and normalized by the caller.
type Report struct {
	RecordID string `json:"record_id,omitempty"`

	Client    string `json:"client"`
	Vessel    string `json:"vessel"`
	Contact   string `json:"contact"`
	Job       string `json:"job"`
	Location  string `json:"location"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	WorkOrder string `json:"work_order"`

	Equipment  []Equipment `json:"equipment,omitempty"`
	Activities []Activity  `json:"activities,omitempty"`

	Problem          string `json:"problem"`
	Service          string `json:"service"`
	Result           string `json:"result"`
	Pending          string `json:"pending"`
	ClientMaterial   string `json:"client_material"`
	SupplierMaterial string `json:"supplier_material"`
}

// Equipment is one row of the equipment table.
type Equipment struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Serial       string `json:"serial,omitempty"`
}

// Activity is one row of the activities table.
type Activity struct {
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	Type        string `json:"type"`
	KM          string `json:"km,omitempty"`
	Description string `json:"description,omitempty"`
	Technician1 string `json:"technician1"`
	Technician2 string `json:"technician2,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// Section keys, also used as style section keys.
const (
	SectionProblem          = "problem"
	SectionService          = "service"
	SectionResult           = "result"
	SectionPending          = "pending"
	SectionClientMaterial   = "client_material"
	SectionSupplierMaterial = "supplier_material"
)

// Section is one narrative section in declaration order.
type Section struct {
	Key   string
	Title string
	Body  string
}

// Sections returns the six narrative sections in document order.
func (r *Report) Sections() []Section {
	return []Section{
		{SectionProblem, "PROBLEMA RELATADO/ENCONTRADO", r.Problem},
		{SectionService, "SERVIÇO REALIZADO", r.Service},
		{SectionResult, "RESULTADO", r.Result},
		{SectionPending, "PENDÊNCIAS", r.Pending},
		{SectionClientMaterial, "MATERIAL FORNECIDO PELO CLIENTE", r.ClientMaterial},
		{SectionSupplierMaterial, "MATERIAL FORNECIDO PELA PRONAV", r.SupplierMaterial},
	}
}

// HeaderFields returns the header grid values, upper-cased. The location
// joins place, city and state with " - ", skipping empty parts.
func (r *Report) HeaderFields() chrome.Fields {
	up := newUpper()
	var place []string
	for _, s := range []string{r.Location, r.City, r.State} {
		if s = strings.TrimSpace(s); s != "" {
			place = append(place, up(s))
		}
	}
	return chrome.Fields{
		Vessel:    up(r.Vessel),
		Contact:   up(r.Contact),
		Location:  strings.Join(place, " - "),
		Client:    up(r.Client),
		Job:       up(r.Job),
		WorkOrder: up(r.WorkOrder),
	}
}

// Decode reads a report from JSON. Unknown fields are rejected.
func Decode(rd io.Reader) (*Report, error) {
	dec := json.NewDecoder(rd)
	dec.DisallowUnknownFields()
	var r Report
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("解析报告数据失败: %w", err)
	}
	return &r, nil
}
